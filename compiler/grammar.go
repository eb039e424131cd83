package compiler

import "github.com/mna/pocketlang/token"

// Precedence levels, ascending. The position of each name in this list is
// its binding strength; parsePrecedence(p) only continues consuming infix
// operators whose own precedence is >= p.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecLowest
	PrecAssignment
	PrecLogicalOr
	PrecLogicalAnd
	PrecLogicalNot // reserved tier between and/or and equality; no rule uses it
	PrecEquality
	PrecIn
	PrecIs
	PrecComparison
	PrecBitwiseOr
	PrecBitwiseXor
	PrecBitwiseAnd
	PrecBitwiseShift
	PrecRange
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecSubscript
	PrecAttrib
	PrecPrimary
)

type (
	prefixFn func(c *Compiler, canAssign bool)
	infixFn  func(c *Compiler, canAssign bool)
)

type rule struct {
	prefix prefixFn
	infix  infixFn
	prec   Precedence
}

// rules is the fixed grammar table: one entry per token type, consulted by
// parsePrecedence to find the prefix handler for a token starting an
// expression and the infix handler (plus binding strength) for a token
// continuing one. This is the single declarative source of truth the
// reference implementation's stub comments describe as a per-token-type
// lookup table.
var rules map[token.Type]rule

func init() {
	rules = map[token.Type]rule{
		token.NUMBER:  {prefix: literalNumber},
		token.STRING:  {prefix: literalString},
		token.TRUE:    {prefix: literalBool},
		token.FALSE:   {prefix: literalBool},
		token.NULL_KW: {prefix: literalNull},

		token.TYPE_NULL:  {prefix: literalTypeName},
		token.TYPE_BOOL:  {prefix: literalTypeName},
		token.TYPE_NUM:   {prefix: literalTypeName},
		token.TYPE_STR:   {prefix: literalTypeName},
		token.TYPE_LIST:  {prefix: literalTypeName},
		token.TYPE_MAP:   {prefix: literalTypeName},
		token.TYPE_RANGE: {prefix: literalTypeName},

		token.NAME: {prefix: exprName},

		token.LPAREN:   {prefix: exprGrouping, infix: exprCall, prec: PrecCall},
		token.LBRACKET: {prefix: exprArray, infix: exprSubscript, prec: PrecSubscript},
		token.LBRACE:   {prefix: exprMap},
		token.DOT:      {infix: exprAttr, prec: PrecAttrib},

		token.TILD:   {prefix: exprUnary},
		token.MINUS:  {prefix: exprUnary, infix: exprBinary, prec: PrecTerm},
		token.NOT:    {prefix: exprUnary},
		token.NOT_KW: {prefix: exprUnary},

		token.PLUS:    {infix: exprBinary, prec: PrecTerm},
		token.STAR:    {infix: exprBinary, prec: PrecFactor},
		token.SLASH:   {infix: exprBinary, prec: PrecFactor},
		token.PERCENT: {infix: exprBinary, prec: PrecFactor},

		token.AMP:   {infix: exprBinary, prec: PrecBitwiseAnd},
		token.PIPE:  {infix: exprBinary, prec: PrecBitwiseOr},
		token.CARET: {infix: exprBinary, prec: PrecBitwiseXor},
		token.SLEFT: {infix: exprBinary, prec: PrecBitwiseShift},
		token.SRIGHT: {infix: exprBinary, prec: PrecBitwiseShift},

		token.DOTDOT: {infix: exprBinary, prec: PrecRange},

		token.GT:   {infix: exprBinary, prec: PrecComparison},
		token.GTEQ: {infix: exprBinary, prec: PrecComparison},
		token.LT:   {infix: exprBinary, prec: PrecComparison},
		token.LTEQ: {infix: exprBinary, prec: PrecComparison},

		token.EQEQ:  {infix: exprBinary, prec: PrecEquality},
		token.NOTEQ: {infix: exprBinary, prec: PrecEquality},

		token.IS: {infix: exprBinary, prec: PrecIs},
		token.IN: {infix: exprBinary, prec: PrecIn},

		token.AND: {infix: exprBinary, prec: PrecLogicalAnd},
		token.OR:  {infix: exprBinary, prec: PrecLogicalOr},

		// EQ/PLUSEQ/MINUSEQ/STAREQ/SLASHEQ have no entry of their own: they are
		// never dispatched through the infix loop. Each assignable target
		// (name, attribute, subscript) peeks for one of them itself, right
		// after parsing its base form, and only when canAssign is set — see
		// exprName, exprAttr, exprSubscript.
	}
}

func getRule(t token.Type) rule { return rules[t] }

// parsePrecedence implements precedence climbing: lex one token to advance
// the window (so Previous becomes the candidate prefix token), dispatch
// its prefix rule, then keep consuming infix operators whose precedence is
// at least p.
func (c *Compiler) parsePrecedence(p Precedence) {
	c.advance()
	pr := getRule(c.lex.Previous.Type)
	if pr.prefix == nil {
		c.reportParse(c.lex.Previous.Line, "Expected an expression.")
		return
	}

	canAssign := p <= PrecAssignment
	pr.prefix(c, canAssign)

	for {
		ir := getRule(c.lex.Current.Type)
		if ir.infix == nil || ir.prec < p {
			break
		}
		c.advance()
		ir.infix(c, canAssign)
	}
}

func (c *Compiler) compileExpression() { c.parsePrecedence(PrecLowest) }
