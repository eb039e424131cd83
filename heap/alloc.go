package heap

import "github.com/mna/pocketlang/value"

// NewString interns a copy of b (plus hashing it) into a new heap-tracked
// String and links it into the sweep list.
func (h *Heap) NewString(b []byte) *value.String {
	cp := make([]byte, len(b))
	copy(cp, b)
	s := &value.String{
		Header: value.Header{Type: value.TString},
		Data:   cp,
		Hash:   value.HashBytes(cp),
	}
	h.link(s, len(cp)+16)
	return s
}

// NewList returns a new, empty heap-tracked List.
func (h *Heap) NewList() *value.List {
	l := value.NewList()
	h.link(l, 32)
	return l
}

// NewMap returns a new, empty heap-tracked Map.
func (h *Heap) NewMap() *value.Map {
	m := value.NewMap()
	h.link(m, 32)
	return m
}

// NewRange returns a new heap-tracked Range.
func (h *Heap) NewRange(from, to float64) *value.Range {
	r := value.NewRange(from, to)
	h.link(r, 24)
	return r
}
