// Package compiler implements the single-pass lexer-driven compiler: a
// Pratt-style precedence-climbing expression parser and a recursive-descent
// statement compiler that emit bytecode directly into the script's
// functions as they parse, with no intermediate AST.
package compiler

import (
	"fmt"

	"github.com/mna/pocketlang/heap"
	"github.com/mna/pocketlang/lexer"
	"github.com/mna/pocketlang/token"
	"github.com/mna/pocketlang/value"
)

// MaxLocals bounds the variable table of a single function: a local's
// bytecode operand is one byte wide.
const MaxLocals = 256

// MaxBreaks bounds the number of break statements a single loop may
// contain: each needs a patch site recorded in a fixed-capacity array.
const MaxBreaks = 256

// Reporter routes a compile-time diagnostic to the embedder. Kind is
// either "lex" or "parse" (runtime errors are reported by the
// interpreter, out of scope here).
type Reporter func(kind, path string, line int, msg string)

// Variable is a compile-time (non-heap) record of one declared name.
// Depth -1 marks a global binding (recorded instead in the script's
// GlobalNames table; Variable itself is only used for locals, depth >= 0).
type Variable struct {
	Name  string
	Depth int
	Line  int
}

// Loop is a compile-time record of one innermost loop, threaded to the
// loop that encloses it so leaving a loop restores the outer one exactly
// as scope depths are restored on block exit.
type Loop struct {
	Start      int   // instruction offset the loop's condition starts at
	ExitJump   int   // patch site of the loop's own exit jump, or -1 until emitted
	Breaks     []int // patch sites of `break` jumps inside this loop, bounded MaxBreaks
	Outer      *Loop
}

// frame is the compile-time state for one function body being emitted:
// its own local-variable table, simulated stack size, and innermost loop.
// Entering a nested `def` pushes a new frame; leaving it pops back to the
// enclosing one, mirroring Loop's outer-pointer reconstruction.
type frame struct {
	fn         *heap.Function
	vars       []Variable
	scopeDepth int // -1 = top level (body), 0 = parameter scope, >0 = nested block
	stackSize  int
	loop       *Loop
	outer      *frame
}

// Compiler is the single-pass compiler's mutable state: the heap it
// allocates into, the lexer it consumes tokens from, and the chain of
// function frames currently being compiled.
type Compiler struct {
	h        *heap.Heap
	lex      *lexer.Lexer
	path     string
	reporter Reporter

	script *heap.Script
	cur    *frame

	hasErrors bool

	// declaredLocal is set by compileNameAssignment when `name = expr`
	// declares a fresh local, and consumed by expressionStatement: the
	// RHS's single pushed value *is* the local's permanent slot, so the
	// statement's usual trailing POP must be skipped instead of
	// discarding it.
	declaredLocal bool
}

// Compile compiles src (read from the logical path, used only in
// diagnostics) into a new Script. The returned script's HasErrors flag
// reports whether it is safe to execute; a script compiled with errors is
// still fully formed (compilation never stops early) but should not be
// run.
func Compile(h *heap.Heap, path, src string, reporter Reporter) *heap.Script {
	c := &Compiler{h: h, path: path, reporter: reporter}
	c.lex = lexer.New(src)
	c.lex.OnError = func(line int, msg string) { c.reportLex(line, msg) }

	c.script = h.NewScript(path)
	c.cur = &frame{fn: c.script.Body, scopeDepth: -1}

	c.lex.Advance()
	c.lex.Advance()
	c.skipLines()

	for c.lex.Current.Type != token.EOF {
		c.topLevelDeclaration()
		c.skipLines()
	}

	c.emitOpcode(PUSH_NULL)
	c.emitOpcode(RETURN)
	c.script.HasErrors = c.hasErrors
	return c.script
}

func (c *Compiler) skipLines() {
	for c.lex.Current.Type == token.LINE {
		c.lex.Advance()
	}
}

// --- error reporting ---

func (c *Compiler) reportLex(line int, msg string) {
	c.hasErrors = true
	if c.reporter != nil {
		c.reporter("lex", c.path, line, msg)
	}
}

// reportParse records a parse error, suppressing the report (but not the
// hasErrors flag) if the precipitating token is itself a lex-error token,
// to avoid a cascade of errors stemming from one bad token.
func (c *Compiler) reportParse(line int, msg string) {
	c.hasErrors = true
	if c.lex.Previous.Type == token.ERROR {
		return
	}
	if c.reporter != nil {
		c.reporter("parse", c.path, line, msg)
	}
}

// --- token flow helpers ---

func (c *Compiler) advance() { c.lex.Advance() }

func (c *Compiler) check(t token.Type) bool { return c.lex.Current.Type == t }

// match skips over any LINE tokens, then advances and returns true if the
// (post-skip) current token is t.
func (c *Compiler) match(t token.Type) bool {
	for c.lex.Current.Type == token.LINE && t != token.LINE {
		c.lex.Advance()
	}
	if c.lex.Current.Type != t {
		return false
	}
	c.lex.Advance()
	return true
}

// consume advances unconditionally; if the newly-previous token is not t,
// it records a parse error. As a bounded error-recovery measure, if the
// (new) current token is t, it is consumed too, so at most one bad token
// is swallowed by the cascade.
func (c *Compiler) consume(t token.Type, msg string) {
	c.lex.Advance()
	if c.lex.Previous.Type != t {
		c.reportParse(c.lex.Previous.Line, msg)
		if c.lex.Current.Type == t {
			c.lex.Advance()
		}
	}
}

// consumeEndStatement requires a `;`, at least one newline, or EOF.
func (c *Compiler) consumeEndStatement() {
	if c.lex.Current.Type == token.SEMI {
		c.lex.Advance()
		return
	}
	if c.lex.Current.Type == token.EOF {
		return
	}
	if c.lex.Current.Type != token.LINE {
		c.reportParse(c.lex.Current.Line, "Expected end of statement.")
		return
	}
	for c.lex.Current.Type == token.LINE {
		c.lex.Advance()
	}
}

// consumeStartBlock requires `do` or a newline.
func (c *Compiler) consumeStartBlock() {
	if c.lex.Current.Type == token.DO {
		c.lex.Advance()
		return
	}
	if c.lex.Current.Type != token.LINE {
		c.reportParse(c.lex.Current.Line, "Expected 'do' or a newline to start a block.")
		return
	}
	for c.lex.Current.Type == token.LINE {
		c.lex.Advance()
	}
}

// --- emission primitives ---

// emitByte appends b to the current function's opcode buffer and the
// previous token's line number to the parallel line buffer, returning the
// index just written.
func (c *Compiler) emitByte(b byte) int {
	fn := c.cur.fn.Fn
	fn.Code.Push(b)
	return fn.Lines.Push(int32(c.lex.Previous.Line))
}

// emitShort emits the big-endian high byte then low byte of n, returning
// the index of the high byte.
func (c *Compiler) emitShort(n uint16) int {
	idx := c.emitByte(byte(n >> 8))
	c.emitByte(byte(n))
	return idx
}

// emitOpcode emits one opcode byte and applies its fixed stack-delta to
// the running simulated stack size, tracking the running maximum onto the
// function's StackSize.
func (c *Compiler) emitOpcode(op Opcode) int {
	idx := c.emitByte(byte(op))
	c.adjustStack(op.StackDelta())
	return idx
}

// adjustStack applies delta to the current frame's simulated stack and
// updates the function's recorded maximum.
func (c *Compiler) adjustStack(delta int) {
	c.cur.stackSize += delta
	if c.cur.stackSize < 0 {
		c.cur.stackSize = 0
	}
	if c.cur.stackSize > c.cur.fn.Fn.StackSize {
		c.cur.fn.Fn.StackSize = c.cur.stackSize
	}
}

// emitConstant adds v to the current script's literal pool (deduplicating
// by value equality) and emits CONSTANT followed by its 2-byte index.
func (c *Compiler) emitConstant(v value.Value) {
	if c.script.Literals.Len() >= heap.MaxLiterals {
		c.reportParse(c.lex.Previous.Line, "Too many constants in one script.")
		return
	}
	idx := c.script.AddLiteral(v)
	c.emitOpcode(CONSTANT)
	c.emitShort(uint16(idx))
}

// patchJump writes the current opcode-buffer length as the 2-byte
// big-endian operand at [site, site+1], the target of a previously-emitted
// jump whose destination wasn't yet known.
func (c *Compiler) patchJump(site int) {
	target := c.cur.fn.Fn.Code.Len()
	if target >= 1<<16 {
		panic(fmt.Sprintf("compiler: jump target %d exceeds 16-bit range", target))
	}
	c.cur.fn.Fn.Code.Set(site, byte(target>>8))
	c.cur.fn.Fn.Code.Set(site+1, byte(target))
}

// emitJump emits op followed by a 2-byte placeholder and returns the
// index of the placeholder's high byte, to be patched later.
func (c *Compiler) emitJump(op Opcode) int {
	c.emitOpcode(op)
	return c.emitShort(0xFFFF)
}

// --- scope helpers ---

func (c *Compiler) enterBlock() { c.cur.scopeDepth++ }

// exitBlock pops every local declared at or below the current depth from
// both the variable table and the simulated stack, then decrements depth.
// No POP opcodes are emitted for these locals: trimming the simulated
// stack size is exactly equivalent, since each local occupies one stack
// slot and nothing below the block's start is moved.
func (c *Compiler) exitBlock() {
	depth := c.cur.scopeDepth
	for len(c.cur.vars) > 0 && c.cur.vars[len(c.cur.vars)-1].Depth >= depth {
		c.cur.vars = c.cur.vars[:len(c.cur.vars)-1]
		c.cur.stackSize--
	}
	c.cur.scopeDepth--
}

// declareLocal adds name as a new local at the current scope depth,
// reporting a parse error (compilation continues) if the variable table
// is full.
func (c *Compiler) declareLocal(name string, line int) int {
	if len(c.cur.vars) >= MaxLocals {
		c.reportParse(line, fmt.Sprintf("Too many local variables in one function (limit %d).", MaxLocals))
		return -1
	}
	c.cur.vars = append(c.cur.vars, Variable{Name: name, Depth: c.cur.scopeDepth, Line: line})
	idx := len(c.cur.vars) - 1
	c.adjustStack(1)
	return idx
}

// ResolveKind distinguishes how a name was found by name resolution.
type ResolveKind int

const (
	NotDefined ResolveKind = iota
	Local
	Global
	FunctionRef
)

// resolveName searches, in order: the local variable table of the current
// frame (innermost declaration wins on a naming collision, since locals
// are appended and this scans back-to-front), then the enclosing script's
// functions, then its globals. Cross-script (imported) resolution is not
// implemented: see DESIGN.md for why that's consistent with the `import`
// non-goal.
func (c *Compiler) resolveName(name string) (ResolveKind, int) {
	if c.cur.scopeDepth >= 0 {
		for i := len(c.cur.vars) - 1; i >= 0; i-- {
			if c.cur.vars[i].Name == name {
				return Local, i
			}
		}
	}
	if i := c.script.ResolveFunction(name); i >= 0 {
		return FunctionRef, i
	}
	if i := c.script.ResolveGlobal(name); i >= 0 {
		return Global, i
	}
	return NotDefined, -1
}
