package heprep

import (
	"math"

	"github.com/detgeo/gxviewer/scene"
	"github.com/seqsense/pcgol/mat"
)

// builder accumulates primitives per component id during the populate
// pass and turns them into raw geometry buffers afterwards.
type builder struct {
	prims    map[string][]primitive
	segments int
}

// prismCellsTemplate is the quad topology of an 8-vertex box in HepRep
// vertex order.
var prismCellsTemplate = []int32{
	4, 0, 1, 2, 3,
	4, 4, 5, 1, 0,
	4, 7, 4, 0, 3,
	4, 6, 7, 3, 2,
	4, 5, 6, 2, 1,
	4, 7, 6, 5, 4,
}

const cylinderSegments = 20

// build converts the collected primitives of the component and its
// descendants into raw buffers, bottom-up. Components without
// primitives or without a recognized shape are left untouched.
func (b *builder) build(c *scene.Component, progress func()) error {
	for _, ch := range c.Children {
		if err := b.build(ch, progress); err != nil {
			return err
		}
	}
	defer progress()

	prims := b.prims[c.ID]
	if len(prims) == 0 {
		return nil
	}
	base := baseColor(c)

	switch c.Shape {
	case scene.ShapePrism:
		c.Points = nil
		c.Cells = nil
		c.Colors = nil
		for _, pr := range prims {
			if len(pr.points) != 8 {
				continue
			}
			cells := make([]int32, len(prismCellsTemplate))
			copy(cells, prismCellsTemplate)
			c.Points = append(c.Points, pr.points)
			c.Cells = append(c.Cells, cells)
			c.Colors = append(c.Colors, repeatColor(base, len(pr.points)))
		}

	case scene.ShapeCylinder:
		c.Points = nil
		c.Cells = nil
		c.Colors = nil
		for _, pr := range prims {
			if len(pr.points) < 2 || len(pr.radii) < 2 {
				continue
			}
			pts, cells := cylinderMesh(pr.points[0], pr.points[1], pr.radii[0], pr.radii[1], b.segments)
			c.Points = append(c.Points, pts)
			c.Cells = append(c.Cells, cells)
			c.Colors = append(c.Colors, repeatColor(base, len(pts)))
		}

	case scene.ShapePolygon, scene.ShapeLine:
		// All primitives share one point buffer with one
		// count-prefixed record per primitive.
		var pts []mat.Vec3
		var cells []int32
		for _, pr := range prims {
			if len(pr.points) == 0 {
				continue
			}
			cells = append(cells, int32(len(pr.points)))
			for i := range pr.points {
				cells = append(cells, int32(len(pts)+i))
			}
			pts = append(pts, pr.points...)
		}
		c.Points = [][]mat.Vec3{pts}
		c.Cells = [][]int32{cells}
		c.Colors = [][]scene.RGBA{repeatColor(base, len(pts))}

	case scene.ShapePoint:
		c.Points = nil
		c.Cells = nil
		c.Colors = nil
		for _, pr := range prims {
			c.Points = append(c.Points, pr.points)
			c.Cells = append(c.Cells, nil)
			c.Colors = append(c.Colors, repeatColor(base, len(pr.points)))
		}
	}
	return nil
}

// baseColor returns the component's declared color, white when none was
// declared.
func baseColor(c *scene.Component) scene.RGBA {
	if len(c.Colors) == 1 && len(c.Colors[0]) == 1 {
		return c.Colors[0][0]
	}
	return scene.RGBA{1, 1, 1, 1}
}

func repeatColor(c scene.RGBA, n int) []scene.RGBA {
	out := make([]scene.RGBA, n)
	for i := range out {
		out[i] = c
	}
	return out
}

// cylinderMesh tessellates an open-ended tube between two endpoints
// with possibly different end radii. The side is a ring of quads; the
// end caps are intentionally left open.
func cylinderMesh(p1, p2 mat.Vec3, r1, r2 float32, segments int) ([]mat.Vec3, []int32) {
	axis := p2.Sub(p1).Normalized()

	var notAxis mat.Vec3
	if axis[0] != 0 || axis[1] != 0 {
		notAxis = mat.Vec3{axis[1], -axis[0], 0}
	} else {
		notAxis = mat.Vec3{0, axis[2], -axis[1]}
	}
	v := axis.Cross(notAxis).Normalized()
	u := v.Cross(axis).Normalized()

	points := make([]mat.Vec3, 0, 2*segments)
	for _, end := range []struct {
		center mat.Vec3
		radius float32
	}{{p1, r1}, {p2, r2}} {
		for i := 0; i < segments; i++ {
			angle := 2 * math.Pi * float64(i) / float64(segments)
			offset := u.Mul(end.radius * float32(math.Cos(angle))).
				Add(v.Mul(end.radius * float32(math.Sin(angle))))
			points = append(points, end.center.Add(offset))
		}
	}

	cells := make([]int32, 0, 5*segments)
	for i := 0; i < segments; i++ {
		next := (i + 1) % segments
		cells = append(cells, 4,
			int32(i), int32(next), int32(next+segments), int32(i+segments))
	}
	return points, cells
}
