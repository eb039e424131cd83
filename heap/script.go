package heap

import (
	"fmt"

	"github.com/mna/pocketlang/buffer"
	"github.com/mna/pocketlang/value"
)

// MaxLiterals bounds the constant pool: a literal index is encoded as a
// 2-byte big-endian operand, so no script may have more than 2^16 unique
// constants.
const MaxLiterals = 1 << 16

// Script is a compilation unit: the dynamic counterpart to one source
// file. It owns its globals, its literal pool, every function defined in
// it (including the distinguished top-level Body), and the names buffer
// that GET_ATTR/SET_ATTR/IMPORT opcodes index into.
type Script struct {
	value.Header

	Name string // logical path, used in diagnostics

	Globals     buffer.Buffer[value.Value]
	GlobalNames NameTable // index-aligned with Globals

	Literals buffer.Buffer[value.Value] // constant pool, deduplicated, capped at MaxLiterals

	Functions     []*Function
	FunctionNames NameTable // index-aligned with Functions

	Names NameTable // interned identifiers referenced by bytecode (attrs, etc.)

	Imports []string // names recognized by `import`; linking is out of scope

	Body *Function // compiled from top-level statements

	HasErrors bool // sticky: set once any compile error is reported
}

// NewScript creates a script and its initial Body function, which becomes
// the initial emission target for top-level statements.
func (h *Heap) NewScript(name string) *Script {
	s := &Script{
		Header:        value.Header{Type: value.TScript},
		Name:          name,
		GlobalNames:   *NewNameTable(),
		FunctionNames: *NewNameTable(),
		Names:         *NewNameTable(),
	}
	h.link(s, 128)
	s.Body = h.NewFunction(s, "", 0)
	return s
}

// AddGlobal declares a new global named name (if not already declared) and
// returns its index. Newly declared slots are initialized to null.
func (s *Script) AddGlobal(h *Heap, name string) int {
	if i := s.GlobalNames.Lookup(name); i >= 0 {
		return i
	}
	i := s.GlobalNames.Add(h, name)
	s.Globals.Push(value.NullValue)
	if s.Globals.Len() != s.GlobalNames.Len() {
		panic("heap: globals/global_names length mismatch")
	}
	return i
}

// ResolveGlobal returns the index of an already-declared global, or -1.
func (s *Script) ResolveGlobal(name string) int { return s.GlobalNames.Lookup(name) }

// AddFunction registers fn (already constructed via NewFunction) under
// name and returns its index.
func (s *Script) AddFunction(h *Heap, name string, fn *Function) int {
	i := len(s.Functions)
	s.Functions = append(s.Functions, fn)
	s.FunctionNames.Add(h, name)
	if len(s.Functions) != s.FunctionNames.Len() {
		panic("heap: functions/function_names length mismatch")
	}
	return i
}

// ResolveFunction returns the index of an already-declared function, or
// -1.
func (s *Script) ResolveFunction(name string) int { return s.FunctionNames.Lookup(name) }

// AddLiteral adds v to the constant pool, deduplicating by value equality,
// and returns its index. It panics if the pool is full; the compiler is
// responsible for turning that into a recoverable parse error before it
// happens (see the MaxLiterals check in the compiler's emitConstant).
func (s *Script) AddLiteral(v value.Value) int {
	for i := 0; i < s.Literals.Len(); i++ {
		if value.IsEqual(s.Literals.At(i), v) {
			return i
		}
	}
	if s.Literals.Len() >= MaxLiterals {
		panic(fmt.Sprintf("heap: literal pool exceeds %d entries", MaxLiterals))
	}
	return s.Literals.Push(v)
}

// blackenScript grays every object a script transitively owns: its
// globals, global names, literals, functions, function names, names
// buffer, and body.
func (h *Heap) blackenScript(s *Script) {
	for i := 0; i < s.Globals.Len(); i++ {
		h.grayValue(s.Globals.At(i))
	}
	s.GlobalNames.Each(func(str *value.String) { h.gray(str) })
	for i := 0; i < s.Literals.Len(); i++ {
		h.grayValue(s.Literals.At(i))
	}
	for _, fn := range s.Functions {
		h.gray(fn)
	}
	s.FunctionNames.Each(func(str *value.String) { h.gray(str) })
	s.Names.Each(func(str *value.String) { h.gray(str) })
	if s.Body != nil {
		h.gray(s.Body)
	}
}
