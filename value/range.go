package value

// Range is an immutable pair of endpoints produced by the `..` operator.
// Its semantics (inclusive/exclusive, step direction) belong to the
// interpreter; the compiler and heap only need to construct, hash, and
// compare them.
type Range struct {
	Header
	From, To float64
}

// NewRange returns a new range object.
func NewRange(from, to float64) *Range {
	return &Range{Header: Header{Type: TRange}, From: from, To: to}
}
