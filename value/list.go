package value

import "github.com/mna/pocketlang/buffer"

// listShrinkFactor mirrors the reference implementation's list capacity
// policy: capacity is halved once it reaches shrinkFactor times the live
// count.
const listShrinkFactor = 4

// List is a growable, random-access sequence of values.
type List struct {
	Header
	buf buffer.Buffer[Value]
}

// NewList returns an empty list.
func NewList() *List {
	return &List{Header: Header{Type: TList}}
}

func (l *List) Len() int { return l.buf.Len() }

func (l *List) At(i int) Value { return l.buf.At(i) }

func (l *List) Set(i int, v Value) { l.buf.Set(i, v) }

// Append adds v to the end of the list, growing by a factor of 2 if
// needed.
func (l *List) Append(v Value) { l.buf.Push(v) }

// Insert grows the list by one, shifts every element at or after i right
// by one, and stores v at i. i must satisfy 0 <= i <= Len().
func (l *List) Insert(i int, v Value) { l.buf.InsertAt(i, v) }

// RemoveAt shifts every element after i left by one and shrinks capacity
// to capacity/2 once capacity/listShrinkFactor >= the new count.
func (l *List) RemoveAt(i int) Value { return l.buf.RemoveAt(i, listShrinkFactor) }

// Values returns the live elements. The caller must not retain the slice
// across a mutating call.
func (l *List) Values() []Value { return l.buf.Slice() }
