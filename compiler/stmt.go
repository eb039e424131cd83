package compiler

import (
	"fmt"

	"github.com/mna/pocketlang/token"
)

// topLevelDeclaration compiles one top-level construct: a function
// declaration, a native declaration, an import, or (falling through) an
// ordinary statement. def/native/import are only recognized here; inside a
// nested block they are reported as misplaced.
func (c *Compiler) topLevelDeclaration() {
	switch c.lex.Current.Type {
	case token.DEF:
		c.defDeclaration()
	case token.NATIVE:
		c.nativeDeclaration()
	case token.IMPORT:
		c.importDeclaration()
	default:
		c.compileStatement()
	}
}

func (c *Compiler) blockTerminated(terms ...token.Type) bool {
	if c.lex.Current.Type == token.EOF {
		return true
	}
	for _, t := range terms {
		if c.lex.Current.Type == t {
			return true
		}
	}
	return false
}

// compileBlock compiles statements at a fresh scope depth until one of
// terms (or EOF) is reached. It does not consume the terminator itself;
// the caller does, so it can tell which terminator ended the block (`if`
// needs to distinguish elif/else/end).
func (c *Compiler) compileBlock(terms ...token.Type) {
	c.enterBlock()
	c.skipLines()
	for !c.blockTerminated(terms...) {
		c.compileStatement()
		c.skipLines()
	}
	c.exitBlock()
}

func (c *Compiler) compileStatement() {
	switch c.lex.Current.Type {
	case token.IF:
		c.ifStatement()
	case token.WHILE:
		c.whileStatement()
	case token.BREAK:
		c.breakStatement()
	case token.CONTINUE:
		c.continueStatement()
	case token.RETURN:
		c.returnStatement()
	case token.DEF, token.NATIVE, token.IMPORT:
		c.misplacedDeclaration()
	default:
		c.expressionStatement()
	}
}

// misplacedDeclaration reports and recovers from a def/native/import seen
// outside the top level. def opens a do/end block that must be skipped
// whole to keep the token stream in sync; native and import are single
// statements, skipped to the next statement boundary.
func (c *Compiler) misplacedDeclaration() {
	line := c.lex.Current.Line
	kind := c.lex.Current.Type
	c.reportParse(line, fmt.Sprintf("%s declarations are only allowed at the top level.", c.lex.Current.Type))
	c.advance()
	if kind == token.DEF {
		c.skipNestedBlock()
		return
	}
	for c.lex.Current.Type != token.LINE && c.lex.Current.Type != token.SEMI && c.lex.Current.Type != token.EOF {
		c.advance()
	}
}

// skipNestedBlock consumes tokens up to and including the `end` that
// matches the do/end block just opened, tracking nesting depth so inner
// if/while/def blocks don't terminate the skip early.
func (c *Compiler) skipNestedBlock() {
	depth := 1
	for depth > 0 && c.lex.Current.Type != token.EOF {
		switch c.lex.Current.Type {
		case token.IF, token.WHILE, token.DEF:
			depth++
		case token.END:
			depth--
		}
		c.advance()
	}
}

// ifStatement compiles `if cond do ... elif cond do ... else ... end`. Each
// condition block emits its own JUMP_IF_NOT past its body; every body but
// the last emits a JUMP past the remaining elif/else chain to the end.
func (c *Compiler) ifStatement() {
	c.advance() // 'if'
	c.compileExpression()
	c.consumeStartBlock()

	skip := c.emitJump(JUMP_IF_NOT)
	c.compileBlock(token.ELIF, token.ELSE, token.END)
	var toEnd []int

	for c.lex.Current.Type == token.ELIF {
		toEnd = append(toEnd, c.emitJump(JUMP))
		c.patchJump(skip)
		c.advance() // 'elif'
		c.compileExpression()
		c.consumeStartBlock()
		skip = c.emitJump(JUMP_IF_NOT)
		c.compileBlock(token.ELIF, token.ELSE, token.END)
	}

	hasElse := c.lex.Current.Type == token.ELSE
	if hasElse {
		toEnd = append(toEnd, c.emitJump(JUMP))
		c.patchJump(skip)
		c.advance() // 'else'
		c.consumeStartBlock()
		c.compileBlock(token.END)
	} else {
		c.patchJump(skip)
	}

	for _, j := range toEnd {
		c.patchJump(j)
	}
	c.consume(token.END, "Expected 'end' to close 'if'.")
}

// whileStatement compiles `while cond do ... end`. break/continue inside
// the body target, respectively, the jump past the loop and the jump back
// to the condition re-check; both are recorded on the Loop threaded
// through the frame for the duration of the body.
func (c *Compiler) whileStatement() {
	c.advance() // 'while'
	loop := &Loop{Start: c.cur.fn.Fn.Code.Len(), ExitJump: -1, Outer: c.cur.loop}
	c.cur.loop = loop

	c.compileExpression()
	c.consumeStartBlock()
	loop.ExitJump = c.emitJump(JUMP_IF_NOT)

	c.compileBlock(token.END)
	c.consume(token.END, "Expected 'end' to close 'while'.")

	c.emitOpcode(JUMP)
	c.emitShort(uint16(loop.Start))

	c.patchJump(loop.ExitJump)
	for _, b := range loop.Breaks {
		c.patchJump(b)
	}
	c.cur.loop = loop.Outer
}

func (c *Compiler) breakStatement() {
	line := c.lex.Current.Line
	c.advance()
	if c.cur.loop == nil {
		c.reportParse(line, "'break' outside of a loop.")
	} else if len(c.cur.loop.Breaks) >= MaxBreaks {
		c.reportParse(line, fmt.Sprintf("Too many break statements in one loop (limit %d).", MaxBreaks))
	} else {
		site := c.emitJump(JUMP)
		c.cur.loop.Breaks = append(c.cur.loop.Breaks, site)
	}
	c.consumeEndStatement()
}

func (c *Compiler) continueStatement() {
	line := c.lex.Current.Line
	c.advance()
	if c.cur.loop == nil {
		c.reportParse(line, "'continue' outside of a loop.")
	} else {
		c.emitOpcode(JUMP)
		c.emitShort(uint16(c.cur.loop.Start))
	}
	c.consumeEndStatement()
}

func (c *Compiler) returnStatement() {
	line := c.lex.Current.Line
	c.advance() // 'return'
	if c.cur.outer == nil {
		c.reportParse(line, "'return' outside of a function.")
	}
	switch c.lex.Current.Type {
	case token.LINE, token.SEMI, token.EOF:
		c.emitOpcode(PUSH_NULL)
	default:
		c.compileExpression()
	}
	c.emitOpcode(RETURN)
	c.consumeEndStatement()
}

func (c *Compiler) expressionStatement() {
	c.declaredLocal = false
	c.compileExpression()
	if c.declaredLocal {
		c.declaredLocal = false
	} else {
		c.emitOpcode(POP)
	}
	c.consumeEndStatement()
}

// defDeclaration compiles `def name(params) do ... end`. The function's
// code is emitted into a fresh frame pushed for the duration of the body
// and popped back to the enclosing (top-level) frame afterward; nested
// def is not supported, matching resolveName's script-flat function
// lookup.
func (c *Compiler) defDeclaration() {
	c.advance() // 'def'
	c.consume(token.NAME, "Expected function name after 'def'.")
	name := c.lex.Previous.Lit

	fn := c.h.NewFunction(c.script, name, 0)
	c.script.AddFunction(c.h, name, fn)

	outer := c.cur
	c.cur = &frame{fn: fn, scopeDepth: 0, outer: outer}

	arity := c.compileParamList()
	fn.Arity = arity

	c.consumeStartBlock()
	c.skipLines()
	for !c.blockTerminated(token.END) {
		c.compileStatement()
		c.skipLines()
	}
	c.consume(token.END, "Expected 'end' to close function body.")

	c.emitOpcode(PUSH_NULL)
	c.emitOpcode(RETURN)

	c.cur = outer
}

// nativeDeclaration compiles `native name(params)`, a forward declaration
// of a host-provided function: it records arity and a name binding, but no
// Go closure. Wiring Native is the embedding API's job, out of scope here.
func (c *Compiler) nativeDeclaration() {
	c.advance() // 'native'
	c.consume(token.NAME, "Expected function name after 'native'.")
	name := c.lex.Previous.Lit

	fn := c.h.NewNativeFunction(c.script, name, nil)
	fn.Arity = c.compileParamList()
	c.script.AddFunction(c.h, name, fn)
	c.consumeEndStatement()
}

// compileParamList parses `(name, name, ...)` and, when inside a function
// frame (scopeDepth >= 0), declares each parameter as a local; a native
// declaration's frame is the enclosing one, so its parameter names are
// parsed but not declared as locals.
func (c *Compiler) compileParamList() int {
	c.consume(token.LPAREN, "Expected '(' after function name.")
	arity := 0
	if !c.check(token.RPAREN) {
		for {
			c.consume(token.NAME, "Expected parameter name.")
			if c.cur.scopeDepth >= 0 {
				c.declareLocal(c.lex.Previous.Lit, c.lex.Previous.Line)
			}
			arity++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expected ')' after parameters.")
	return arity
}

// importDeclaration recognizes `import name` and records it on the
// script's Imports list and emits IMPORT with the name interned in the
// script's name table. No cross-script loading or linking happens here;
// resolving an imported name is an embedding/loader concern out of scope.
func (c *Compiler) importDeclaration() {
	c.advance() // 'import'
	c.consume(token.NAME, "Expected module name after 'import'.")
	name := c.lex.Previous.Lit
	c.script.Imports = append(c.script.Imports, name)

	idx := c.script.Names.Add(c.h, name)
	c.emitOpcode(IMPORT)
	c.emitShort(uint16(idx))
	c.consumeEndStatement()
}
