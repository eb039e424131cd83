// Package buffer implements the growable typed sequences used throughout
// the compiler and object heap: opcode streams, parallel line tables,
// literal pools, and list backing stores are all instances of the same
// grow/shrink policy.
package buffer

// Buffer is a growable typed sequence. It grows by doubling when an append
// would overflow its capacity, and the zero value is ready to use.
//
// Unlike a plain Go slice, Buffer exposes Shrink so callers that need the
// reference implementation's shrink-on-low-occupancy behavior (List.insert
// /removeAt) can ask for it explicitly; plain append never shrinks.
type Buffer[T any] struct {
	data []T
}

// Len returns the number of elements currently stored.
func (b *Buffer[T]) Len() int { return len(b.data) }

// Cap returns the current backing capacity.
func (b *Buffer[T]) Cap() int { return cap(b.data) }

// At returns the element at index i.
func (b *Buffer[T]) At(i int) T { return b.data[i] }

// Set overwrites the element at index i.
func (b *Buffer[T]) Set(i int, v T) { b.data[i] = v }

// Slice returns the live portion of the buffer. The caller must not retain
// it across a mutating call, since growth reallocates.
func (b *Buffer[T]) Slice() []T { return b.data }

// Push appends v, growing the backing array by a factor of 2 if the
// current capacity is exhausted.
func (b *Buffer[T]) Push(v T) int {
	if len(b.data) == cap(b.data) {
		b.grow()
	}
	b.data = append(b.data, v)
	return len(b.data) - 1
}

func (b *Buffer[T]) grow() {
	newCap := cap(b.data) * 2
	if newCap == 0 {
		newCap = 8
	}
	nd := make([]T, len(b.data), newCap)
	copy(nd, b.data)
	b.data = nd
}

// InsertAt grows the buffer by one, shifts every element at or after i one
// slot to the right, and stores v at i.
func (b *Buffer[T]) InsertAt(i int, v T) {
	var zero T
	b.Push(zero)
	copy(b.data[i+1:], b.data[i:len(b.data)-1])
	b.data[i] = v
}

// RemoveAt shifts every element after i one slot to the left, shrinking the
// logical length by one, then shrinks the backing capacity if occupancy has
// dropped to or below 1/shrinkFactor of capacity (cap/shrinkFactor >= len).
// Callers pick shrinkFactor for their own element kind; value/list.go uses 4.
func (b *Buffer[T]) RemoveAt(i int, shrinkFactor int) T {
	v := b.data[i]
	copy(b.data[i:], b.data[i+1:])
	var zero T
	b.data[len(b.data)-1] = zero
	b.data = b.data[:len(b.data)-1]
	if shrinkFactor > 0 && cap(b.data)/shrinkFactor >= len(b.data) {
		b.Shrink()
	}
	return v
}

// Shrink reallocates the backing array at half the current capacity, or at
// the current length if that is larger.
func (b *Buffer[T]) Shrink() {
	newCap := cap(b.data) / 2
	if newCap < len(b.data) {
		newCap = len(b.data)
	}
	nd := make([]T, len(b.data), newCap)
	copy(nd, b.data)
	b.data = nd
}

// Truncate drops every element from index n onward, without reallocating.
func (b *Buffer[T]) Truncate(n int) {
	var zero T
	for i := n; i < len(b.data); i++ {
		b.data[i] = zero
	}
	b.data = b.data[:n]
}
