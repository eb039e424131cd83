package heap

import (
	"github.com/mna/pocketlang/buffer"
	"github.com/mna/pocketlang/value"
)

// NativeFn is the host callback signature for a `native` declaration. The
// actual calling convention (argument marshaling) belongs to the
// interpreter and embedding API, both out of scope here; the compiler only
// needs to know a function is native so it can skip emitting a body.
type NativeFn func(args []value.Value) (value.Value, error)

// Fn holds the bytecode of a scripted (non-native) function: its opcode
// stream, a line number parallel to every opcode for error reporting, and
// the maximum operand-stack depth observed while compiling it.
type Fn struct {
	Code      buffer.Buffer[byte]
	Lines     buffer.Buffer[int32] // Lines.At(i) is the source line of Code.At(i)
	StackSize int
}

// ArityVariadic marks a native function as accepting any number of
// arguments. Other negative arities besides -1 are undefined, per the
// reference implementation's own comment on this point (see DESIGN.md).
const ArityVariadic = -1

// arityUnset is the sentinel a freshly-created native function starts
// with, before its declared parameter list is compiled.
const arityUnset = -2

// Function is either native or scripted, never both. A scripted function
// has Fn != nil. A native one has Fn == nil and Native holding the host
// callback; a `native` declaration compiled without a callback has both
// nil, and IsNative reports false for it. A function knows its owning
// script, declared arity, and the name it was constructed with.
type Function struct {
	value.Header

	Owner *Script // non-owning back-reference; never affects destruction order
	Name_ string
	Arity int

	Native NativeFn
	Fn     *Fn
}

func (fn *Function) Name() string {
	if fn.Name_ == "" {
		return "<body>"
	}
	return fn.Name_
}

func (fn *Function) IsNative() bool { return fn.Native != nil }

// NewFunction allocates a scripted function owned by owner.
func (h *Heap) NewFunction(owner *Script, name string, arity int) *Function {
	fn := &Function{
		Header: value.Header{Type: value.TFunction},
		Owner:  owner,
		Name_:  name,
		Arity:  arity,
		Fn:     &Fn{},
	}
	h.link(fn, 64)
	return fn
}

// NewNativeFunction allocates a native function stub owned by owner. Its
// arity starts at arityUnset and must be set once its parameter list is
// known.
func (h *Heap) NewNativeFunction(owner *Script, name string, native NativeFn) *Function {
	fn := &Function{
		Header: value.Header{Type: value.TFunction},
		Owner:  owner,
		Name_:  name,
		Arity:  arityUnset,
		Native: native,
	}
	h.link(fn, 48)
	return fn
}

func (h *Heap) blackenFunction(fn *Function) {
	if fn.Owner != nil {
		h.gray(fn.Owner)
	}
}
