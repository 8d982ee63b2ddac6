// Package ring is a specialized adaption of `container/ring`
// used as an intrusive, unordered membership list.
package ring

import "iter"

// A Ring is an element of a circular list.
// The zero value is a one-element ring,
// which serves as the sentinel of an empty list.
type Ring[Value any] struct {
	next, prev *Ring[Value]
	Value      Value
}

func (r *Ring[Value]) init() *Ring[Value] {
	r.next = r
	r.prev = r
	return r
}

// Next returns the next ring element. r must not be nil.
func (r *Ring[Value]) Next() *Ring[Value] {
	if r.next == nil {
		return r.init()
	}
	return r.next
}

// Prev returns the previous ring element. r must not be nil.
func (r *Ring[Value]) Prev() *Ring[Value] {
	if r.next == nil {
		return r.init()
	}
	return r.prev
}

// Linked reports whether r shares a ring with any other element.
func (r *Ring[Value]) Linked() bool {
	return r.next != nil && r.next != r
}

// PushBack links element before the sentinel r,
// making it the last element of the list r heads.
// element must not be linked to another ring.
func (r *Ring[Value]) PushBack(element *Ring[Value]) {
	var (
		last = r.Prev()
		self = element.init()
	)
	// Note: Cannot use multiple assignment because
	// evaluation order of LHS is not specified.
	last.next = self
	self.prev = last
	self.next = r
	r.prev = self
}

// Remove unlinks r from whatever ring it belongs to,
// leaving it as a one-element ring.
func (r *Ring[Value]) Remove() {
	if !r.Linked() {
		return
	}
	r.prev.next = r.next
	r.next.prev = r.prev
	r.init()
}

// Len computes the number of elements in ring r,
// excluding r itself.
// It executes in time proportional to the number of elements.
func (r *Ring[Value]) Len() int {
	n := 0
	for p := r.Next(); p != r; p = p.next {
		n++
	}
	return n
}

// All returns an iterator over the values of every element
// after r, in link order, excluding r itself.
// The iterator tolerates removal of the element being yielded.
func (r *Ring[Value]) All() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for p := r.Next(); p != r; {
			next := p.next
			if !yield(p.Value) {
				return
			}
			p = next
		}
	}
}
