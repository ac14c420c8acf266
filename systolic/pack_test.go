package systolic

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPackWestSkewsByRow(t *testing.T) {
	west, _ := TensorFromRows([][][]int64{
		{{1, 2}, {3, 4}},
	})
	fifos := PackWest(west, nil)
	if len(fifos) != 2 {
		t.Fatalf("expected 2 FIFOs, got %d", len(fifos))
	}

	v0, _ := fifos[0].PopHead(0)
	if v0.IsBubble() {
		t.Fatal("row 0 should have no leading Bubble")
	}

	b, _ := fifos[1].PopHead(0)
	if !b.IsBubble() {
		t.Fatal("row 1 should have exactly one leading Bubble")
	}
	v, _ := fifos[1].PopHead(0)
	if v.Value() != 3 {
		t.Fatalf("expected row 1's first real value to be 3, got %v", v)
	}
}

func TestPackNorthSkewsByColumn(t *testing.T) {
	north, _ := TensorFromRows([][][]int64{
		{{5, 6}, {7, 8}},
	})
	fifos := PackNorth(north, nil)
	if len(fifos) != 2 {
		t.Fatalf("expected 2 FIFOs, got %d", len(fifos))
	}

	v0, _ := fifos[0].PopHead(0)
	if v0.IsBubble() {
		t.Fatal("column 0 should have no leading Bubble")
	}

	b, _ := fifos[1].PopHead(0)
	if !b.IsBubble() {
		t.Fatal("column 1 should have exactly one leading Bubble")
	}
	v, _ := fifos[1].PopHead(0)
	if v.Value() != 6 {
		t.Fatalf("expected column 1's first real value to be 6, got %v", v)
	}
}

// TestPackUnpackRoundTrips drains west/north straight across a 1x1 mesh
// (no skew bubbles; the PE passes each thread's two real pairs through) and
// checks the reassembled east/south tensors against the originals with
// cmp.Diff, exercising Tensor3's Equal-based diffing instead of a
// marshal/unmarshal grid.
func TestPackUnpackRoundTrips(t *testing.T) {
	west, _ := TensorFromRows([][][]int64{
		{{1, 2}},
		{{3, 4}},
	})
	north, _ := TensorFromRows([][][]int64{
		{{5}, {6}},
		{{7}, {8}},
	})

	arr, err := NewArray(1, -1, false, west, north, nil)
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	for !arr.IsDone() {
		arr.Tick()
	}

	eastGot := UnpackEast(arr.outputColumn(), 2, 2)
	if diff := cmp.Diff(west, eastGot); diff != "" {
		t.Errorf("east output diverged from west operand (-want +got):\n%s", diff)
	}

	southGot := UnpackSouth(arr.outputRow(), 2, 2)
	if diff := cmp.Diff(north, southGot); diff != "" {
		t.Errorf("south output diverged from north operand (-want +got):\n%s", diff)
	}
}

func TestUnpackEastSkipsPartialSequences(t *testing.T) {
	full := NewOutputBuffer(1, 0, 0)
	full.Push(0, NewValue(1))
	full.Push(0, NewValue(2))

	partial := NewOutputBuffer(1, 1, 0)
	partial.Push(0, NewValue(9))

	got := UnpackEast([]*OutputBuffer{full, partial}, 1, 2)
	if got.Get(0, 0, 0) != 1 || got.Get(0, 0, 1) != 2 {
		t.Fatalf("expected row 0 to carry [1,2], got [%d,%d]", got.Get(0, 0, 0), got.Get(0, 0, 1))
	}
	if got.Get(0, 1, 0) != 0 || got.Get(0, 1, 1) != 0 {
		t.Fatal("expected partial sequence to be left zero-filled")
	}
}
