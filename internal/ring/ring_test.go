package ring_test

import (
	"slices"
	"testing"

	"github.com/djdv/go-voxel/internal/ring"
)

func TestRing(t *testing.T) {
	t.Run("empty", empty)
	t.Run("push back", pushBack)
	t.Run("remove", remove)
	t.Run("remove while iterating", removeWhileIterating)
}

func empty(t *testing.T) {
	t.Parallel()
	var list ring.Ring[int]
	if got := list.Len(); got != 0 {
		t.Errorf("zero ring reports %d elements", got)
	}
	if list.Linked() {
		t.Error("zero ring reports being linked")
	}
	for range list.All() {
		t.Fatal("zero ring yielded an element")
	}
}

func pushBack(t *testing.T) {
	t.Parallel()
	list, _ := newList(t, 1, 2, 3)
	checkValues(t, list, []int{1, 2, 3})
}

func remove(t *testing.T) {
	t.Parallel()
	list, elements := newList(t, 1, 2, 3)
	elements[1].Remove()
	checkValues(t, list, []int{1, 3})
	if elements[1].Linked() {
		t.Error("removed element still linked")
	}
	elements[1].Remove() // Removing twice must be harmless.
	checkValues(t, list, []int{1, 3})
	list.PushBack(elements[1])
	checkValues(t, list, []int{1, 3, 2})
}

func removeWhileIterating(t *testing.T) {
	t.Parallel()
	list, elements := newList(t, 1, 2, 3, 4)
	var seen []int
	for value := range list.All() {
		seen = append(seen, value)
		elements[value-1].Remove()
	}
	if want := []int{1, 2, 3, 4}; !slices.Equal(seen, want) {
		t.Errorf("iteration skipped elements"+
			"\n\tgot: %v"+
			"\n\twant: %v",
			seen, want)
	}
	checkValues(t, list, nil)
}

func newList(tb testing.TB, values ...int) (*ring.Ring[int], []*ring.Ring[int]) {
	tb.Helper()
	var (
		list     = new(ring.Ring[int])
		elements = make([]*ring.Ring[int], len(values))
	)
	for i, value := range values {
		elements[i] = &ring.Ring[int]{Value: value}
		list.PushBack(elements[i])
	}
	return list, elements
}

func checkValues(tb testing.TB, list *ring.Ring[int], want []int) {
	tb.Helper()
	got := slices.Collect(list.All())
	if !slices.Equal(got, want) {
		tb.Fatalf("unexpected list contents"+
			"\n\tgot: %v"+
			"\n\twant: %v",
			got, want)
	}
	if length := list.Len(); length != len(want) {
		tb.Fatalf("list length %d does not match %d values",
			length, len(want))
	}
}
