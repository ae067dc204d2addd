package clash

import (
	"github.com/detgeo/gxviewer/scene"
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
)

func float32Min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func float32Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

type rect struct {
	min, max mat.Vec3
}

func (r *rect) IsInside(v mat.Vec3) bool {
	return !(v[0] < r.min[0] ||
		v[1] < r.min[1] ||
		v[2] < r.min[2] ||
		r.max[0] < v[0] ||
		r.max[1] < v[1] ||
		r.max[2] < v[2])
}

// containedIn reports whether r lies entirely within o. Touching faces
// count as contained, matching the daughter volume convention where a
// volume fills its mother exactly.
func (r *rect) containedIn(o rect) bool {
	return r.min[0] >= o.min[0] && r.max[0] <= o.max[0] &&
		r.min[1] >= o.min[1] && r.max[1] <= o.max[1] &&
		r.min[2] >= o.min[2] && r.max[2] <= o.max[2]
}

// overlaps reports whether r and o share interior volume. Touching
// faces do not overlap.
func (r *rect) overlaps(o rect) bool {
	return !(r.min[0] >= o.max[0] || r.max[0] <= o.min[0] ||
		r.min[1] >= o.max[1] || r.max[1] <= o.min[1] ||
		r.min[2] >= o.max[2] || r.max[2] <= o.min[2])
}

func (r *rect) diagonal() float32 {
	return r.max.Sub(r.min).Norm()
}

// triMesh is a triangulated view of a component mesh with the bounds,
// centroid and edge data the overlap tests need. Quads and n-gons are
// fan-triangulated; line records are ignored.
type triMesh struct {
	bounds    rect
	points    []mat.Vec3
	tris      [][3]int32
	centroids pc.Vec3Slice
	maxRadius float32
	openEdges int
}

func newTriMesh(m *scene.Mesh) *triMesh {
	if m == nil || len(m.Points) == 0 {
		return nil
	}
	t := &triMesh{points: m.Points}

	t.bounds = rect{min: m.Points[0], max: m.Points[0]}
	for _, p := range m.Points[1:] {
		for i := range p {
			t.bounds.min[i] = float32Min(t.bounds.min[i], p[i])
			t.bounds.max[i] = float32Max(t.bounds.max[i], p[i])
		}
	}

	cells := m.Cells
	for j := 0; j < len(cells); {
		k := int(cells[j])
		if k <= 0 || j+k+1 > len(cells) {
			break
		}
		idx := cells[j+1 : j+1+k]
		for i := 1; i+1 < k; i++ {
			t.tris = append(t.tris, [3]int32{idx[0], idx[i], idx[i+1]})
		}
		j += k + 1
	}

	edges := map[[2]int32]int{}
	t.centroids = make(pc.Vec3Slice, len(t.tris))
	for i, tr := range t.tris {
		a, b, c := t.points[tr[0]], t.points[tr[1]], t.points[tr[2]]
		cen := a.Add(b).Add(c).Mul(1.0 / 3.0)
		t.centroids[i] = cen
		for _, v := range []mat.Vec3{a, b, c} {
			if d := v.Sub(cen).Norm(); d > t.maxRadius {
				t.maxRadius = d
			}
		}
		for e := 0; e < 3; e++ {
			i0, i1 := tr[e], tr[(e+1)%3]
			if i0 > i1 {
				i0, i1 = i1, i0
			}
			edges[[2]int32{i0, i1}]++
		}
	}
	for _, n := range edges {
		if n == 1 {
			t.openEdges++
		}
	}
	return t
}

// rayDir is the fixed test-ray direction of the parity test. The
// components differ slightly so the ray does not run parallel to the
// axis-aligned faces common in detector geometry.
var rayDir = mat.Vec3{0.5759312, 0.5928147, 0.5630163}

// contains reports whether p lies inside the closed surface, by parity
// of the triangle crossings of a ray cast from p.
func (t *triMesh) contains(p mat.Vec3) bool {
	if !t.bounds.IsInside(p) {
		return false
	}
	var hits int
	for _, tr := range t.tris {
		if rayIntersectsTriangle(p, rayDir, t.points[tr[0]], t.points[tr[1]], t.points[tr[2]]) {
			hits++
		}
	}
	return hits%2 == 1
}

func rayIntersectsTriangle(orig, dir, v0, v1, v2 mat.Vec3) bool {
	const eps = 1e-7
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	h := dir.Cross(e2)
	a := e1.Dot(h)
	if a > -eps && a < eps {
		return false
	}
	f := 1 / a
	s := orig.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return false
	}
	q := s.Cross(e1)
	v := f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return false
	}
	return f*e2.Dot(q) > eps
}

// surfaceFarther reports whether every triangle is farther than thresh
// from p.
func (t *triMesh) surfaceFarther(p mat.Vec3, thresh float32) bool {
	threshSq := thresh * thresh
	for _, tr := range t.tris {
		if pointTriangleDistSq(p, t.points[tr[0]], t.points[tr[1]], t.points[tr[2]]) <= threshSq {
			return false
		}
	}
	return true
}

// pointTriangleDistSq returns the squared distance from p to the
// closest point of triangle abc, by Voronoi region classification.
func pointTriangleDistSq(p, a, b, c mat.Vec3) float32 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return ap.NormSq()
	}
	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return bp.NormSq()
	}
	if vc := d1*d4 - d3*d2; vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return ap.Sub(ab.Mul(v)).NormSq()
	}
	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return cp.NormSq()
	}
	if vb := d5*d2 - d1*d6; vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return ap.Sub(ac.Mul(w)).NormSq()
	}
	if va := d3*d6 - d5*d4; va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return bp.Sub(c.Sub(b).Mul(w)).NormSq()
	}
	vc := d1*d4 - d3*d2
	vb := d5*d2 - d1*d6
	va := d3*d6 - d5*d4
	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return ap.Sub(ab.Mul(v)).Sub(ac.Mul(w)).NormSq()
}
