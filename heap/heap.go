// Package heap is the object memory manager: it allocates every
// garbage-collectable value (strings, lists, maps, ranges, scripts,
// functions, fibers), links them into a sweep list, and implements the
// tri-color mark-sweep collector that reclaims them.
//
// The VM is the single authoritative owner of the sweep list, the gray
// worklist, and the temp-root stack; every heap-touching operation takes a
// *Heap explicitly rather than reaching for global state, so that multiple
// independent VMs can coexist in one process as long as they never share
// objects.
package heap

import (
	"fmt"

	"github.com/mna/pocketlang/value"
)

// tempRootCapacity bounds the temp-root stack. Exceeding it is a
// programmer error (an allocation-heavy routine failed to pop what it
// pushed) and is reported via a panic rather than silently growing, per
// the reference implementation's assertion-based discipline.
const tempRootCapacity = 64

// Root is implemented by anything the VM threads through the collector as
// an additional source of roots beyond the sweep list itself: the
// temp-root stack, fiber value stacks, and the compiler's live state.
type Root interface {
	// GrayRoots grays every object directly reachable from this root by
	// calling gray on each.
	GrayRoots(gray func(value.Obj))
}

// Heap is the VM's object memory manager.
type Heap struct {
	all   value.Obj // head of the intrusive sweep list (most recently allocated first)
	count int       // live objects, for diagnostics and tests

	grayList []value.Obj // gray worklist: marked, not yet blackened

	tempRoots []value.Obj // temp-root stack

	extraRoots []Root // embedder/compiler-registered root providers

	bytesAllocated int
}

// New returns an empty heap.
func New() *Heap { return &Heap{} }

// Len returns the number of currently live (allocated, not yet swept)
// objects.
func (h *Heap) Len() int { return h.count }

// BytesAllocated is a rough accounting counter, incremented by each
// allocation with an approximate size; it exists so a future interpreter
// can decide when to trigger a collection, mirroring the reference
// implementation's bytes-allocated trigger.
func (h *Heap) BytesAllocated() int { return h.bytesAllocated }

// link prepends o to the sweep list, counts it as live, and adds size to
// the bytes-allocated counter.
func (h *Heap) link(o value.Obj, size int) {
	o.Head().Next = h.all
	h.all = o
	h.count++
	h.bytesAllocated += size
}

// AddRoot registers an additional root provider (e.g. the active compiler
// state, or a fiber's value stack) with the collector.
func (h *Heap) AddRoot(r Root) { h.extraRoots = append(h.extraRoots, r) }

// RemoveRoot unregisters a root provider previously passed to AddRoot.
func (h *Heap) RemoveRoot(r Root) {
	for i, x := range h.extraRoots {
		if x == r {
			h.extraRoots = append(h.extraRoots[:i], h.extraRoots[i+1:]...)
			return
		}
	}
}

// PushTempRoot protects o from collection until the matching PopTempRoot.
// Any object assembled across more than one allocation (for example, a
// list literal whose elements are compiled and pushed one at a time) must
// sit on this stack from the moment it is allocated until it becomes
// reachable through some other root; otherwise a collection triggered by a
// later allocation could reclaim it.
func (h *Heap) PushTempRoot(o value.Obj) {
	if len(h.tempRoots) >= tempRootCapacity {
		panic(fmt.Sprintf("heap: temp-root stack overflow (capacity %d)", tempRootCapacity))
	}
	h.tempRoots = append(h.tempRoots, o)
}

// PopTempRoot removes the most recently pushed temp root. It panics if the
// stack is empty, since every push must be balanced by exactly one pop.
func (h *Heap) PopTempRoot() {
	if len(h.tempRoots) == 0 {
		panic("heap: temp-root stack underflow")
	}
	h.tempRoots = h.tempRoots[:len(h.tempRoots)-1]
}

// gray marks o, if not already marked, and adds it to the gray worklist.
// Graying an already-marked object is a no-op, which is what terminates
// cycles during Collect.
func (h *Heap) gray(o value.Obj) {
	if o == nil {
		return
	}
	hd := o.Head()
	if hd.Marked {
		return
	}
	hd.Marked = true
	h.grayList = append(h.grayList, o)
}

// Collect runs one full mark-sweep cycle: root, blacken until the gray
// worklist is empty, then sweep. It returns the number of objects freed.
func (h *Heap) Collect() int {
	h.markRoots()
	h.blackenAll()
	return h.sweep()
}

func (h *Heap) markRoots() {
	for _, o := range h.tempRoots {
		h.gray(o)
	}
	for _, r := range h.extraRoots {
		r.GrayRoots(h.gray)
	}
}

func (h *Heap) blackenAll() {
	for len(h.grayList) > 0 {
		n := len(h.grayList) - 1
		o := h.grayList[n]
		h.grayList = h.grayList[:n]
		h.blacken(o)
	}
}

// blacken grays every object o directly references, dispatching on its
// concrete type.
func (h *Heap) blacken(o value.Obj) {
	switch v := o.(type) {
	case *value.String:
		// leaf: no outgoing references
	case *value.List:
		for _, e := range v.Values() {
			h.grayValue(e)
		}
	case *value.Map:
		v.Each(func(k, val value.Value) {
			h.grayValue(k)
			h.grayValue(val)
		})
	case *value.Range:
		// leaf: endpoints are plain floats
	case *Script:
		h.blackenScript(v)
	case *Function:
		h.blackenFunction(v)
	case *Fiber:
		h.blackenFiber(v)
	}
}

func (h *Heap) grayValue(v value.Value) {
	if v.IsObj() {
		h.gray(v.AsObj())
	}
}

// sweep walks the sweep list, unlinking and discarding every object whose
// mark bit is clear, and clears the mark bit on survivors so the next
// collection starts from a clean slate.
func (h *Heap) sweep() int {
	var (
		freed int
		head  value.Obj
		tail  value.Obj
	)
	for o := h.all; o != nil; {
		hd := o.Head()
		next := hd.Next
		if hd.Marked {
			hd.Marked = false
			hd.Next = nil
			if head == nil {
				head = o
			} else {
				tail.Head().Next = o
			}
			tail = o
		} else {
			freed++
			h.count--
		}
		o = next
	}
	h.all = head
	return freed
}

// Walk calls fn for every currently live object, in sweep-list order. It
// is meant for tests and diagnostics, not for use during a collection.
func (h *Heap) Walk(fn func(value.Obj)) {
	for o := h.all; o != nil; o = o.Head().Next {
		fn(o)
	}
}
