// Package scene holds the component tree shared by the file parsers and
// the overlap detector. Components carry raw per-primitive geometry
// buffers while a file is being parsed and a single combined mesh once
// building is done.
package scene

import (
	"strings"

	"github.com/google/uuid"
	"github.com/seqsense/pcgol/mat"
)

type ShapeKind int

const (
	ShapeNone ShapeKind = iota
	ShapePrism
	ShapeCylinder
	ShapePolygon
	ShapePoint
	ShapeLine
	ShapeTrack
	ShapeMarker
	ShapeSolid
)

var shapeNames = map[ShapeKind]string{
	ShapeNone:     "None",
	ShapePrism:    "Prism",
	ShapeCylinder: "Cylinder",
	ShapePolygon:  "Polygon",
	ShapePoint:    "Point",
	ShapeLine:     "Line",
	ShapeTrack:    "Track",
	ShapeMarker:   "Marker",
	ShapeSolid:    "Solid",
}

func (k ShapeKind) String() string {
	if n, ok := shapeNames[k]; ok {
		return n
	}
	return "None"
}

// ParseShapeKind maps a DrawAs attribute value to a ShapeKind.
// Unknown values map to ShapeNone.
func ParseShapeKind(s string) ShapeKind {
	for k, n := range shapeNames {
		if n == s {
			return k
		}
	}
	return ShapeNone
}

// RGBA is a per-point color. Alpha encodes 1-transparency.
type RGBA [4]float32

// Mesh is the combined, renderable geometry of a component.
// Cells is a sequence of count-prefixed index records [k, i0..i(k-1)],
// the single encoding used for lines, triangles, quads and n-gon fans.
type Mesh struct {
	Points []mat.Vec3
	Cells  []int32
	Colors []RGBA
}

// Component is one node of the scene tree.
type Component struct {
	Name string
	ID   string

	Shape ShapeKind

	// Raw buffers, one entry per primitive instance. BuildMesh combines
	// them into Mesh; after reduction they hold a single combined entry.
	Points [][]mat.Vec3
	Cells  [][]int32
	Colors [][]RGBA

	IsDot    bool
	IsEvent  bool
	Visible  bool
	HasActor bool

	Mesh *Mesh

	Children []*Component
}

// New creates a component with a fresh unique id. Components named after
// an event record are marked so that the single-event display filter can
// find them.
func New(name string) *Component {
	return &Component{
		Name:    name,
		ID:      uuid.NewString(),
		Visible: true,
		IsEvent: strings.Contains(name, "Event"),
	}
}

// BuildMesh combines the raw per-primitive buffers into a single mesh.
// A component without raw buffers keeps a nil mesh.
func (c *Component) BuildMesh() error {
	if len(c.Points) == 0 {
		return nil
	}
	pts, cells, colors, err := Combine(c.Points, c.Cells, c.Colors)
	if err != nil {
		return err
	}
	c.Mesh = &Mesh{Points: pts, Cells: cells, Colors: colors}
	return nil
}

// Forest is the process-wide set of loaded scene trees.
type Forest struct {
	Roots []*Component
}

func (f *Forest) Add(roots ...*Component) {
	f.Roots = append(f.Roots, roots...)
}

func (f *Forest) Clear() {
	f.Roots = nil
}

// Count returns the number of components in the forest, including all
// descendants.
func (f *Forest) Count() int {
	var n int
	f.Walk(func(*Component, int) { n++ })
	return n
}

// Walk visits every component depth-first in insertion order.
func (f *Forest) Walk(fn func(c *Component, depth int)) {
	var walk func(comps []*Component, depth int)
	walk = func(comps []*Component, depth int) {
		for _, c := range comps {
			fn(c, depth)
			if len(c.Children) > 0 {
				walk(c.Children, depth+1)
			}
		}
	}
	walk(f.Roots, 0)
}
