package scene

import (
	"testing"

	"github.com/seqsense/pcgol/mat"
)

func newTestChild(name string, nPoints int) *Component {
	c := New(name)
	c.Shape = ShapePolygon
	points := make([]mat.Vec3, nPoints)
	colors := make([]RGBA, nPoints)
	cells := []int32{int32(nPoints)}
	for i := 0; i < nPoints; i++ {
		points[i] = mat.Vec3{float32(i), 0, 0}
		cells = append(cells, int32(i))
		colors[i] = RGBA{1, 1, 1, 1}
	}
	c.Points = [][]mat.Vec3{points}
	c.Cells = [][]int32{cells}
	c.Colors = [][]RGBA{colors}
	return c
}

func TestReduce(t *testing.T) {
	const (
		k = 4
		p = 5
	)
	root := New("root")
	for i := 0; i < k; i++ {
		child := newTestChild("Chamber", p)
		child.Children = append(child.Children, New("Gas"))
		root.Children = append(root.Children, child)
	}
	root.Children = append(root.Children, newTestChild("World", 3))

	if err := Reduce([]*Component{root}); err != nil {
		t.Fatal(err)
	}

	if len(root.Children) != 2 {
		t.Fatalf("Expected 2 children after reduction, got: %d", len(root.Children))
	}
	combined := root.Children[0]
	if combined.Name != "Chamber" {
		t.Errorf("Expected first child name Chamber, got: %s", combined.Name)
	}
	if len(combined.Points) != 1 {
		t.Fatalf("Expected a single combined point buffer, got: %d", len(combined.Points))
	}
	if n := len(combined.Points[0]); n != k*p {
		t.Errorf("Expected %d combined points, got: %d", k*p, n)
	}
	if n := len(combined.Colors[0]); n != k*p {
		t.Errorf("Expected %d combined colors, got: %d", k*p, n)
	}

	// One record per merged child, each of size p.
	var records int
	cells := combined.Cells[0]
	for j := 0; j < len(cells); j += int(cells[j]) + 1 {
		records++
		if cells[j] != p {
			t.Errorf("Expected record size %d, got: %d", p, cells[j])
		}
	}
	if records != k {
		t.Errorf("Expected %d topology records, got: %d", k, records)
	}

	// Descendants of all merged children are concatenated.
	if len(combined.Children) != k {
		t.Errorf("Expected %d grandchildren, got: %d", k, len(combined.Children))
	}

	// The group of size 1 passes through unchanged.
	if root.Children[1].Name != "World" {
		t.Errorf("Expected second child name World, got: %s", root.Children[1].Name)
	}
}

func TestReduce_PreservesFlags(t *testing.T) {
	root := New("root")
	a := newTestChild("Dot", 2)
	a.IsDot = true
	a.Visible = false
	b := newTestChild("Dot", 2)
	root.Children = []*Component{a, b}

	if err := Reduce([]*Component{root}); err != nil {
		t.Fatal(err)
	}
	combined := root.Children[0]
	if !combined.IsDot {
		t.Error("Expected IsDot to be preserved from the first child")
	}
	if combined.Visible {
		t.Error("Expected Visible to be preserved from the first child")
	}
	if combined.Shape != ShapePolygon {
		t.Errorf("Expected shape Polygon, got: %v", combined.Shape)
	}
}

func TestForestCount(t *testing.T) {
	root := New("root")
	root.Children = []*Component{New("a"), New("b")}
	root.Children[0].Children = []*Component{New("c")}

	var f Forest
	f.Add(root)
	if n := f.Count(); n != 4 {
		t.Errorf("Expected 4 components, got: %d", n)
	}
	f.Clear()
	if n := f.Count(); n != 0 {
		t.Errorf("Expected 0 components after clear, got: %d", n)
	}
}
