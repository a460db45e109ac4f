package detect

import (
	"sort"
	"testing"
)

func sortBoxes(boxes []Box) []Box {
	out := make([]Box, len(boxes))
	copy(out, boxes)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func sameSet(a, b []Box) bool {
	if len(a) != len(b) {
		return false
	}
	a, b = sortBoxes(a), sortBoxes(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMergeOverlapping_Disjoint(t *testing.T) {
	boxes := []Box{
		{X: 0, Y: 0, Width: 10, Height: 10},
		{X: 20, Y: 20, Width: 10, Height: 10},
	}
	got := MergeOverlapping(boxes)
	if !sameSet(got, boxes) {
		t.Errorf("disjoint boxes changed: %+v", got)
	}
}

func TestMergeOverlapping_EdgeTouchingStaysSeparate(t *testing.T) {
	// Sharing an edge is not area overlap.
	boxes := []Box{
		{X: 0, Y: 0, Width: 10, Height: 10},
		{X: 10, Y: 0, Width: 10, Height: 10},
	}
	if got := MergeOverlapping(boxes); len(got) != 2 {
		t.Errorf("got %d boxes, want 2", len(got))
	}
}

func TestMergeOverlapping_TransitiveChain(t *testing.T) {
	// A overlaps B, B overlaps C, A does not overlap C: all three must
	// collapse into one union.
	boxes := []Box{
		{X: 0, Y: 0, Width: 12, Height: 10},
		{X: 10, Y: 0, Width: 12, Height: 10},
		{X: 20, Y: 0, Width: 12, Height: 10},
	}
	got := MergeOverlapping(boxes)
	if len(got) != 1 {
		t.Fatalf("got %d boxes, want 1", len(got))
	}
	want := Box{X: 0, Y: 0, Width: 32, Height: 10}
	if got[0] != want {
		t.Errorf("union = %+v, want %+v", got[0], want)
	}
}

func TestMergeOverlapping_Idempotent(t *testing.T) {
	boxes := []Box{
		{X: 0, Y: 0, Width: 12, Height: 10},
		{X: 10, Y: 5, Width: 12, Height: 10},
		{X: 40, Y: 40, Width: 5, Height: 5},
		{X: 42, Y: 42, Width: 8, Height: 8},
	}
	once := MergeOverlapping(boxes)
	twice := MergeOverlapping(once)
	if !sameSet(once, twice) {
		t.Errorf("not idempotent: %+v vs %+v", once, twice)
	}
}

func TestMergeOverlapping_OrderInsensitive(t *testing.T) {
	boxes := []Box{
		{X: 0, Y: 0, Width: 12, Height: 10},
		{X: 10, Y: 5, Width: 12, Height: 10},
		{X: 40, Y: 40, Width: 5, Height: 5},
		{X: 42, Y: 42, Width: 8, Height: 8},
		{X: 18, Y: 8, Width: 10, Height: 10},
	}

	want := MergeOverlapping(boxes)

	// A handful of fixed permutations; the partition must not depend on
	// input order.
	perms := [][]int{
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 3, 0, 4, 2},
	}
	for _, p := range perms {
		shuffled := make([]Box, len(boxes))
		for i, j := range p {
			shuffled[i] = boxes[j]
		}
		got := MergeOverlapping(shuffled)
		if !sameSet(got, want) {
			t.Errorf("perm %v: got %+v, want %+v", p, got, want)
		}
	}
}

func TestMergeOverlapping_InputUntouched(t *testing.T) {
	boxes := []Box{
		{X: 0, Y: 0, Width: 12, Height: 10},
		{X: 10, Y: 0, Width: 12, Height: 10},
	}
	orig := make([]Box, len(boxes))
	copy(orig, boxes)

	MergeOverlapping(boxes)
	for i := range boxes {
		if boxes[i] != orig[i] {
			t.Fatalf("input slice mutated at %d: %+v", i, boxes[i])
		}
	}
}

func TestMergeOverlapping_Empty(t *testing.T) {
	if got := MergeOverlapping(nil); len(got) != 0 {
		t.Errorf("got %d boxes, want 0", len(got))
	}
}
