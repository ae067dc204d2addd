package scene

import (
	"errors"
	"testing"

	"github.com/seqsense/pcgol/mat"
)

func TestCombine_SingleItem(t *testing.T) {
	points := []mat.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	cells := []int32{3, 0, 1, 2}
	colors := []RGBA{{1, 0, 0, 1}, {1, 0, 0, 1}, {1, 0, 0, 1}}

	outPoints, outCells, outColors, err := Combine(
		[][]mat.Vec3{points}, [][]int32{cells}, [][]RGBA{colors},
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(outPoints) != len(points) {
		t.Fatalf("Expected %d points, got: %d", len(points), len(outPoints))
	}
	for i, p := range points {
		if !outPoints[i].Equal(p) {
			t.Errorf("Expected point %d: %v, got: %v", i, p, outPoints[i])
		}
	}
	if len(outCells) != len(cells) {
		t.Fatalf("Expected %d cell entries, got: %d", len(cells), len(outCells))
	}
	for i, c := range cells {
		if outCells[i] != c {
			t.Errorf("Expected cell entry %d: %d, got: %d", i, c, outCells[i])
		}
	}
	for i, c := range colors {
		if outColors[i] != c {
			t.Errorf("Expected color %d: %v, got: %v", i, c, outColors[i])
		}
	}
}

func TestCombine_Offsets(t *testing.T) {
	points := [][]mat.Vec3{
		{{0, 0, 0}, {1, 0, 0}},
		{{2, 0, 0}, {3, 0, 0}, {4, 0, 0}},
		{{5, 0, 0}},
	}
	cells := [][]int32{
		{2, 0, 1},
		{3, 0, 1, 2},
		{1, 0},
	}
	colors := [][]RGBA{
		{{1, 1, 1, 1}, {1, 1, 1, 1}},
		{{0, 1, 0, 1}, {0, 1, 0, 1}, {0, 1, 0, 1}},
		{{0, 0, 1, 1}},
	}

	outPoints, outCells, _, err := Combine(points, cells, colors)
	if err != nil {
		t.Fatal(err)
	}
	if len(outPoints) != 6 {
		t.Fatalf("Expected 6 points, got: %d", len(outPoints))
	}

	expected := []int32{2, 0, 1, 3, 2, 3, 4, 1, 5}
	if len(outCells) != len(expected) {
		t.Fatalf("Expected %d cell entries, got: %d", len(expected), len(outCells))
	}
	for i, e := range expected {
		if outCells[i] != e {
			t.Errorf("Expected cell entry %d: %d, got: %d", i, e, outCells[i])
		}
	}

	// Splitting back by the known offsets must recover the per-item
	// topology.
	offsets := []int32{0, 2, 5}
	j := 0
	for i := range cells {
		for k := 0; k < len(cells[i]); {
			n := outCells[j+k]
			if n != cells[i][k] {
				t.Fatalf("Expected record size %d, got: %d", cells[i][k], n)
			}
			for l := 1; l <= int(n); l++ {
				idx := outCells[j+k+l] - offsets[i]
				if idx != cells[i][k+l] {
					t.Errorf("Expected index %d in item %d, got: %d", cells[i][k+l], i, idx)
				}
				if idx < 0 || int(idx) >= len(points[i]) {
					t.Errorf("Index %d out of range of item %d", idx, i)
				}
			}
			k += int(n) + 1
		}
		j += len(cells[i])
	}
}

func TestCombine_MalformedTopology(t *testing.T) {
	points := [][]mat.Vec3{{{0, 0, 0}, {1, 0, 0}}}
	colors := [][]RGBA{{{1, 1, 1, 1}, {1, 1, 1, 1}}}

	for _, cells := range [][]int32{
		{3, 0, 1},     // record truncated
		{-1, 0, 1, 2}, // negative count
	} {
		_, _, _, err := Combine(points, [][]int32{cells}, colors)
		if !errors.Is(err, ErrMalformedTopology) {
			t.Errorf("Expected ErrMalformedTopology for %v, got: %v", cells, err)
		}
	}
}

func TestCombine_BufferLengthMismatch(t *testing.T) {
	points := [][]mat.Vec3{{{0, 0, 0}, {1, 0, 0}}}
	cells := [][]int32{{2, 0, 1}}
	colors := [][]RGBA{{{1, 1, 1, 1}}}

	_, _, _, err := Combine(points, cells, colors)
	if !errors.Is(err, ErrBufferLengthMismatch) {
		t.Errorf("Expected ErrBufferLengthMismatch, got: %v", err)
	}
}
