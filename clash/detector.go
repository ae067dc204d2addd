// Package clash finds geometric overlaps between the volumes of a
// scene tree. Candidate sibling pairs pass cheap bounding box tests
// first; surviving pairs are checked by Monte Carlo sampling of one
// volume and point-in-mesh tests against the other.
package clash

import (
	"fmt"
	"math/rand"

	"github.com/detgeo/gxviewer/internal/logging"
	"github.com/detgeo/gxviewer/scene"
	"github.com/seqsense/pcgol/pc"
	"github.com/seqsense/pcgol/pc/storage/kdtree"
)

const (
	DefaultTolerance = 0.001
	DefaultSamples   = 100000
)

// Detector holds the overlap check parameters. Tolerance sets both the
// surface exclusion band and the flagging threshold; Samples is the
// number of Monte Carlo points per candidate pair. Zero values use the
// defaults. A nil Rand uses the global generator.
type Detector struct {
	Tolerance float32
	Samples   int
	Rand      *rand.Rand

	sampleRuns int
}

// Overlap is one flagged pair. Fraction is the share of sampled points
// inside the first volume that also lie well inside the second.
type Overlap struct {
	IDA, IDB     string
	NameA, NameB string
	Fraction     float32
}

// Result is the outcome of one sweep. IDs lists every flagged
// component once, in flagging order. Witness holds one point cloud per
// flagged pair marking where the volumes interpenetrate. Warnings
// lists the pairs that could not be checked.
type Result struct {
	IDs      []string
	Pairs    []Overlap
	Witness  []*pc.PointCloud
	Warnings []string
}

func eligible(c *scene.Component) bool {
	return c.Mesh != nil && c.Shape != scene.ShapePoint && c.Shape != scene.ShapeLine
}

// Check sweeps the trees pairing every eligible component against the
// not yet checked rest of the forest. Only the first root's subtree is
// swept; additional roots serve as overlap partners.
func (d *Detector) Check(roots []*scene.Component) *Result {
	tol := d.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}
	samples := d.Samples
	if samples <= 0 {
		samples = DefaultSamples
	}

	res := &Result{}
	meshes := map[string]*triMesh{}
	triFor := func(c *scene.Component) *triMesh {
		tm, ok := meshes[c.ID]
		if !ok {
			tm = newTriMesh(c.Mesh)
			meshes[c.ID] = tm
		}
		return tm
	}

	checked := map[string]bool{}
	flagged := map[string]bool{}
	flag := func(id string) {
		if !flagged[id] {
			flagged[id] = true
			res.IDs = append(res.IDs, id)
		}
	}

	pairCheck := func(c1, c2 *scene.Component) {
		tm1 := triFor(c1)
		tm2 := triFor(c2)
		if tm1 == nil || tm2 == nil || len(tm1.tris) == 0 || len(tm2.tris) == 0 {
			return
		}
		if tm1.bounds.containedIn(tm2.bounds) || tm2.bounds.containedIn(tm1.bounds) {
			return
		}
		if !tm1.bounds.overlaps(tm2.bounds) {
			return
		}
		if tm1.openEdges+tm2.openEdges > 0 {
			w := fmt.Sprintf("unable to check for overlap between %s and %s", c1.Name, c2.Name)
			if tm1.openEdges > 0 {
				w += fmt.Sprintf(": %s has %d open edges", c1.Name, tm1.openEdges)
			} else {
				w += fmt.Sprintf(": %s has %d open edges", c2.Name, tm2.openEdges)
			}
			res.Warnings = append(res.Warnings, w)
			logging.Warnf("%s", w)
			return
		}

		d.sampleRuns++
		witness, fraction := d.sampleOverlap(tm1, tm2, tol, samples)
		if float32(len(witness)) > float32(samples)*tol {
			flag(c1.ID)
			flag(c2.ID)
			res.Pairs = append(res.Pairs, Overlap{
				IDA: c1.ID, IDB: c2.ID,
				NameA: c1.Name, NameB: c2.Name,
				Fraction: fraction,
			})
			res.Witness = append(res.Witness, witnessCloud(witness))
			logging.Warnf("%s may overlap %s by %.3f percent", c1.Name, c2.Name, 100*fraction)
		}
	}

	var checkAgainst func(c1 *scene.Component, comps []*scene.Component)
	checkAgainst = func(c1 *scene.Component, comps []*scene.Component) {
		for _, c2 := range comps {
			if eligible(c2) && c2.ID != c1.ID && !checked[c2.ID] {
				pairCheck(c1, c2)
			}
			if len(c2.Children) > 0 {
				checkAgainst(c1, c2.Children)
			}
		}
	}

	var sweep func(comps []*scene.Component, level int)
	sweep = func(comps []*scene.Component, level int) {
		for _, c := range comps {
			if eligible(c) {
				checkAgainst(c, comps)
			}
			if len(c.Children) > 0 {
				sweep(c.Children, level+1)
			}
			checked[c.ID] = true
			if level == 0 {
				break
			}
		}
	}
	sweep(roots, 0)
	return res
}

// sampleOverlap samples the first volume's bounding box and counts the
// points that land inside both volumes and farther than the tolerance
// band from the second volume's surface. Points that merely graze the
// shared surface of a touching pair are excluded by the band.
func (d *Detector) sampleOverlap(tm1, tm2 *triMesh, tol float32, samples int) (pc.Vec3Slice, float32) {
	s := &boxSampler{bounds: tm1.bounds, rnd: d.Rand}
	thresh := tol * tm2.bounds.diagonal()
	kdt := kdtree.New(tm2.centroids)

	var surviving int
	var deep pc.Vec3Slice
	for i := 0; i < samples; i++ {
		p := s.Sample()
		if !tm1.contains(p) {
			continue
		}
		surviving++
		if !tm2.contains(p) {
			continue
		}
		// A nearest centroid search prunes the exact distance test:
		// with no centroid within thresh+maxRadius, every triangle is
		// farther than thresh.
		if n := kdt.Nearest(p, thresh+tm2.maxRadius); n.ID >= 0 {
			if !tm2.surfaceFarther(p, thresh) {
				continue
			}
		}
		deep = append(deep, p)
	}
	if surviving == 0 {
		return nil, 0
	}
	return deep, float32(len(deep)) / float32(surviving)
}
