package heap

import "github.com/mna/pocketlang/value"

// frame is one call-frame of a fiber's call stack: the function executing
// and the instruction offset to resume at. Execution itself (the dispatch
// loop) is out of scope; Fiber exists here only so the collector knows how
// to blacken it.
type frame struct {
	Fn *Function
	PC int
}

// Fiber is a cooperatively scheduled execution context: its own value
// stack, frame stack, and last error. The interpreter that would push and
// pop these is not part of this package.
type Fiber struct {
	value.Header

	Stack []value.Value
	SP    int
	Frames []frame
	Fn     *Function // currently executing function, if any
	Err    error
}

// NewFiber allocates an empty fiber.
func (h *Heap) NewFiber() *Fiber {
	f := &Fiber{Header: value.Header{Type: value.TFiber}}
	h.link(f, 256)
	return f
}

func (h *Heap) blackenFiber(f *Fiber) {
	if f.Fn != nil {
		h.gray(f.Fn)
	}
	for i := 0; i < f.SP && i < len(f.Stack); i++ {
		h.grayValue(f.Stack[i])
	}
	for _, fr := range f.Frames {
		if fr.Fn != nil {
			h.gray(fr.Fn)
			if fr.Fn.Owner != nil {
				h.gray(fr.Fn.Owner)
			}
		}
	}
}
