package heap

import "github.com/mna/pocketlang/value"

// NameTable is an ordered, deduplicating registry of interned strings.
// Indices are stable for the life of the table and are used directly as
// bytecode operands (a script's global names, its function names, and the
// names buffer referenced by GET_ATTR/SET_ATTR/IMPORT opcodes are all
// backed by one of these).
type NameTable struct {
	names []*value.String
	index map[string]int
}

// NewNameTable returns an empty name table.
func NewNameTable() *NameTable {
	return &NameTable{index: make(map[string]int)}
}

// Len returns the number of interned names.
func (nt *NameTable) Len() int { return len(nt.names) }

// Add returns the index of the existing string matching name, or interns
// a new heap-tracked String for it and returns the new index.
func (nt *NameTable) Add(h *Heap, name string) int {
	if i, ok := nt.index[name]; ok {
		return i
	}
	s := h.NewString([]byte(name))
	i := len(nt.names)
	nt.names = append(nt.names, s)
	nt.index[name] = i
	return i
}

// Lookup returns the index of name without interning it, or -1 if absent.
func (nt *NameTable) Lookup(name string) int {
	if i, ok := nt.index[name]; ok {
		return i
	}
	return -1
}

// Get returns the interned string at index i.
func (nt *NameTable) Get(i int) *value.String { return nt.names[i] }

// Each calls fn for every interned string, in insertion order.
func (nt *NameTable) Each(fn func(*value.String)) {
	for _, s := range nt.names {
		fn(s)
	}
}
