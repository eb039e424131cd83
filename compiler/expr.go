package compiler

import (
	"fmt"
	"strings"

	"github.com/mna/pocketlang/token"
	"github.com/mna/pocketlang/value"
)

func literalNumber(c *Compiler, _ bool) {
	c.emitConstant(value.Num(c.lex.Previous.Num))
}

func literalString(c *Compiler, _ bool) {
	s := c.h.NewString([]byte(c.lex.Previous.Str))
	c.emitConstant(value.FromObj(s))
}

func literalBool(c *Compiler, _ bool) {
	c.emitConstant(value.FromBool(c.lex.Previous.Type == token.TRUE))
}

func literalNull(c *Compiler, _ bool) {
	c.emitOpcode(PUSH_NULL)
}

// literalTypeName compiles a builtin type-name keyword (Num, Bool, Str,
// List, Map, Range, Null) used on the right side of `is`, e.g. `x is Num`.
// It pushes a string literal naming the type; the interpreter (out of
// scope) is responsible for interpreting IS against that name.
func literalTypeName(c *Compiler, _ bool) {
	name := strings.ToLower(c.lex.Previous.Lit)
	s := c.h.NewString([]byte(name))
	c.emitConstant(value.FromObj(s))
}

func exprGrouping(c *Compiler, _ bool) {
	c.compileExpression()
	c.consume(token.RPAREN, "Expected ')' after expression.")
}

// exprArray compiles `[e1, e2, ...]`.
func exprArray(c *Compiler, _ bool) {
	count := 0
	if !c.check(token.RBRACKET) {
		for {
			c.skipLinesInBrackets()
			if c.check(token.RBRACKET) {
				break
			}
			c.parsePrecedence(PrecAssignment)
			count++
			c.skipLinesInBrackets()
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.skipLinesInBrackets()
	c.consume(token.RBRACKET, "Expected ']' after array elements.")
	c.emitOpcode(MAKE_LIST)
	c.emitShort(uint16(count))
	c.adjustStack(1 - count - opcodeInfo[MAKE_LIST].stack)
}

// exprMap compiles `{k1: v1, k2: v2, ...}`.
func exprMap(c *Compiler, _ bool) {
	count := 0
	if !c.check(token.RBRACE) {
		for {
			c.skipLinesInBrackets()
			if c.check(token.RBRACE) {
				break
			}
			c.parsePrecedence(PrecAssignment)
			c.consume(token.COLON, "Expected ':' after map key.")
			c.parsePrecedence(PrecAssignment)
			count++
			c.skipLinesInBrackets()
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.skipLinesInBrackets()
	c.consume(token.RBRACE, "Expected '}' after map entries.")
	c.emitOpcode(MAKE_MAP)
	c.emitShort(uint16(count))
	c.adjustStack(1 - 2*count - opcodeInfo[MAKE_MAP].stack)
}

// skipLinesInBrackets allows array/map literals to spread across multiple
// source lines without needing a continuation marker.
func (c *Compiler) skipLinesInBrackets() {
	for c.lex.Current.Type == token.LINE {
		c.advance()
	}
}

func exprUnary(c *Compiler, _ bool) {
	op := c.lex.Previous.Type
	line := c.lex.Previous.Line
	c.parsePrecedence(PrecUnary + 1)
	switch op {
	case token.TILD:
		c.emitOpcode(BIT_NOT)
	case token.MINUS:
		c.emitOpcode(NEGATIVE)
	case token.NOT, token.NOT_KW:
		c.emitOpcode(NOT)
	default:
		c.reportParse(line, fmt.Sprintf("unexpected unary operator %s", op))
	}
}

var binaryOps = map[token.Type]Opcode{
	token.DOTDOT:  RANGE,
	token.PERCENT: MOD,
	token.AMP:     BIT_AND,
	token.PIPE:    BIT_OR,
	token.CARET:   BIT_XOR,
	token.PLUS:    ADD,
	token.MINUS:   SUBTRACT,
	token.STAR:    MULTIPLY,
	token.SLASH:   DIVIDE,
	token.GT:      GT,
	token.LT:      LT,
	token.EQEQ:    EQEQ,
	token.NOTEQ:   NOTEQ,
	token.GTEQ:    GTEQ,
	token.LTEQ:    LTEQ,
	token.SRIGHT:  BIT_RSHIFT,
	token.SLEFT:   BIT_LSHIFT,
	token.IS:      IS,
	token.IN:      IN,
	token.AND:     AND,
	token.OR:      OR,
}

// exprBinary compiles a left-associative binary operator: recurse at one
// precedence tier above the operator's own (so `a + b + c` groups as
// `(a+b)+c`), then emit exactly one opcode for the operator.
func exprBinary(c *Compiler, _ bool) {
	op := c.lex.Previous.Type
	line := c.lex.Previous.Line
	r := getRule(op)
	c.parsePrecedence(r.prec + 1)
	code, ok := binaryOps[op]
	if !ok {
		c.reportParse(line, fmt.Sprintf("unexpected binary operator %s", op))
		return
	}
	c.emitOpcode(code)
}

// --- name resolution & assignment ---

func exprName(c *Compiler, canAssign bool) {
	name := c.lex.Previous.Lit
	line := c.lex.Previous.Line

	if canAssign && isAssignOp(c.lex.Current.Type) {
		compileNameAssignment(c, name, line)
		return
	}

	emitNameGet(c, name, line)
}

func isAssignOp(t token.Type) bool {
	switch t {
	case token.EQ, token.PLUSEQ, token.MINUSEQ, token.STAREQ, token.SLASHEQ:
		return true
	}
	return false
}

// emitNameGet resolves name and emits the appropriate GET opcode. An
// undefined name is a parse error; compilation recovers by pushing null so
// the simulated stack stays balanced.
func emitNameGet(c *Compiler, name string, line int) {
	switch kind, idx := c.resolveName(name); kind {
	case Local:
		c.emitOpcode(GET_LOCAL)
		c.emitByte(byte(idx))
	case FunctionRef:
		c.emitOpcode(GET_FUNCTION)
		c.emitShort(uint16(idx))
	case Global:
		c.emitOpcode(GET_GLOBAL)
		c.emitShort(uint16(idx))
	default:
		c.reportParse(line, fmt.Sprintf("Undefined name %q.", name))
		c.emitOpcode(PUSH_NULL)
	}
}

// emitNameSet emits the appropriate SET opcode for an already-resolved
// local/global. It must leave the stored value on the stack (SET_LOCAL and
// SET_GLOBAL have a zero net stack delta), so a plain assignment composes
// as an expression.
func emitNameSet(c *Compiler, kind ResolveKind, idx int) {
	switch kind {
	case Local:
		c.emitOpcode(SET_LOCAL)
		c.emitByte(byte(idx))
	case Global:
		c.emitOpcode(SET_GLOBAL)
		c.emitShort(uint16(idx))
	}
}

// declareName binds name as a new local (inside a function body or block)
// or a new global (at top level, scopeDepth == -1).
func declareName(c *Compiler, name string, line int) (ResolveKind, int) {
	if c.cur.scopeDepth == -1 {
		idx := c.script.AddGlobal(c.h, name)
		return Global, idx
	}
	idx := c.declareLocal(name, line)
	if idx < 0 {
		return NotDefined, -1
	}
	return Local, idx
}

// compileNameAssignment handles `name = expr` and the compound forms
// `name += expr` etc. A name not yet declared is only valid for plain `=`,
// which declares it (as a new local or global, per declareName); the
// compound forms require an existing binding.
func compileNameAssignment(c *Compiler, name string, line int) {
	kind, idx := c.resolveName(name)
	op := c.lex.Current.Type
	c.advance() // consume the assignment operator

	if op == token.EQ {
		fresh := false
		if kind == NotDefined {
			kind, idx = declareName(c, name, line)
			fresh = kind == Local
		} else if kind == FunctionRef {
			c.reportParse(line, fmt.Sprintf("Cannot assign to function %q.", name))
		}
		c.parsePrecedence(PrecAssignment)
		if fresh {
			// The RHS value just pushed already occupies the local's slot
			// (declareLocal reserved it ahead of time); emitting SET_LOCAL
			// here would be a self-copy, and the caller's usual POP would
			// destroy the only copy of the value. Neither is emitted.
			c.declaredLocal = true
		} else {
			emitNameSet(c, kind, idx)
		}
		return
	}

	// compound assignment: name must already exist
	if kind == NotDefined {
		c.reportParse(line, fmt.Sprintf("Undefined name %q.", name))
		kind = Global
	}
	if kind == FunctionRef {
		c.reportParse(line, fmt.Sprintf("Cannot assign to function %q.", name))
	}
	emitNameGet(c, name, line)
	c.parsePrecedence(PrecAssignment)
	c.emitOpcode(compoundOp(op))
	emitNameSet(c, kind, idx)
}

func compoundOp(t token.Type) Opcode {
	switch t {
	case token.PLUSEQ:
		return ADD
	case token.MINUSEQ:
		return SUBTRACT
	case token.STAREQ:
		return MULTIPLY
	case token.SLASHEQ:
		return DIVIDE
	}
	panic("compiler: not a compound-assignment operator")
}

// --- call, subscript, attribute ---

// exprCall compiles the argument list of a call whose callee value is
// already on the stack.
func exprCall(c *Compiler, _ bool) {
	line := c.lex.Previous.Line
	argc := 0
	if !c.check(token.RPAREN) {
		for {
			c.parsePrecedence(PrecAssignment)
			argc++
			if argc > 255 {
				c.reportParse(line, "Too many arguments in call (limit 255).")
			}
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expected ')' after arguments.")
	c.emitOpcode(CALL)
	c.emitByte(byte(argc))
	c.adjustStack(-argc)
}

// exprSubscript compiles `container[index]`, its plain read form, and the
// assignment forms `container[index] = v` / `container[index] += v`.
// Compound forms duplicate the container and index (DUP2) before reading,
// so the index expression is evaluated exactly once even though it is
// needed twice (once to read the current value, once to store the
// result).
func exprSubscript(c *Compiler, canAssign bool) {
	c.compileExpression()
	c.consume(token.RBRACKET, "Expected ']' after subscript index.")

	if canAssign && c.check(token.EQ) {
		c.advance()
		c.compileExpression()
		c.emitOpcode(SET_INDEX)
		c.emitOpcode(PUSH_NULL)
		return
	}
	if canAssign && isAssignOp(c.lex.Current.Type) {
		op := c.lex.Current.Type
		c.advance()
		c.emitOpcode(DUP2)
		c.emitOpcode(GET_INDEX)
		c.parsePrecedence(PrecAssignment)
		c.emitOpcode(compoundOp(op))
		c.emitOpcode(SET_INDEX)
		c.emitOpcode(PUSH_NULL)
		return
	}

	c.emitOpcode(GET_INDEX)
}

// exprAttr compiles `receiver.name`, and its assignment forms, with the
// same DUP-before-read strategy as exprSubscript for the compound case.
func exprAttr(c *Compiler, canAssign bool) {
	c.consume(token.NAME, "Expected attribute name after '.'.")
	name := c.lex.Previous.Lit
	nameIdx := c.script.Names.Add(c.h, name)

	if canAssign && c.check(token.EQ) {
		c.advance()
		c.compileExpression()
		c.emitOpcode(SET_ATTR)
		c.emitShort(uint16(nameIdx))
		c.emitOpcode(PUSH_NULL)
		return
	}
	if canAssign && isAssignOp(c.lex.Current.Type) {
		op := c.lex.Current.Type
		c.advance()
		c.emitOpcode(DUP)
		c.emitOpcode(GET_ATTR)
		c.emitShort(uint16(nameIdx))
		c.parsePrecedence(PrecAssignment)
		c.emitOpcode(compoundOp(op))
		c.emitOpcode(SET_ATTR)
		c.emitShort(uint16(nameIdx))
		c.emitOpcode(PUSH_NULL)
		return
	}

	c.emitOpcode(GET_ATTR)
	c.emitShort(uint16(nameIdx))
}
