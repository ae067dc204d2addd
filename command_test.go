package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/detgeo/gxviewer/scene"
	"github.com/seqsense/pcgol/mat"
)

const vrmlSample = `#VRML V2.0 utf8
Viewpoint {
	fieldOfView 0.785398
	position 0 0 10
}
Shape {
	appearance Appearance {
		material Material {
			diffuseColor 1 0 0
		}
	}
	geometry IndexedLineSet {
		coord Coordinate {
			point [
				0 0 0,
				1 0 0,
			]
		}
		coordIndex [
			0, 1, -1,
		]
	}
}
`

const heprepSample = `<?xml version="1.0" ?>
<heprep:heprep xmlns:heprep="http://www.example.org/heprep">
  <heprep:type name="Geometry" version="null">
    <heprep:instance>
      <heprep:type name="World_0">
        <heprep:instance>
          <heprep:attvalue name="DrawAs" value="Polygon"/>
          <heprep:attvalue name="Visibility" value="True"/>
          <heprep:primitive>
            <heprep:point x="0" y="0" z="0"/>
            <heprep:point x="1" y="0" z="0"/>
            <heprep:point x="0" y="1" z="0"/>
          </heprep:primitive>
        </heprep:instance>
      </heprep:type>
    </heprep:instance>
  </heprep:type>
</heprep:heprep>
`

var testBoxQuads = [][4]int32{
	{0, 1, 2, 3},
	{4, 5, 6, 7},
	{0, 1, 5, 4},
	{1, 2, 6, 5},
	{2, 3, 7, 6},
	{3, 0, 4, 7},
}

func testBoxComponent(name string, min, max mat.Vec3) *scene.Component {
	c := scene.New(name)
	c.Shape = scene.ShapeSolid
	points := []mat.Vec3{
		{min[0], min[1], min[2]},
		{max[0], min[1], min[2]},
		{max[0], max[1], min[2]},
		{min[0], max[1], min[2]},
		{min[0], min[1], max[2]},
		{max[0], min[1], max[2]},
		{max[0], max[1], max[2]},
		{min[0], max[1], max[2]},
	}
	var cells []int32
	for _, q := range testBoxQuads {
		cells = append(cells, 4, q[0], q[1], q[2], q[3])
	}
	colors := make([]scene.RGBA, len(points))
	for i := range colors {
		colors[i] = scene.RGBA{1, 1, 1, 1}
	}
	c.Mesh = &scene.Mesh{Points: points, Cells: cells, Colors: colors}
	return c
}

func TestLoadReader(t *testing.T) {
	cmd := newCommandContext(defaultConfig())

	if err := cmd.LoadReader(strings.NewReader(vrmlSample), "run0", ".wrl"); err != nil {
		t.Fatal(err)
	}
	if n := cmd.Count(); n != 4 {
		t.Errorf("Expected 4 components after VRML load, got: %d", n)
	}
	if cmd.Viewpoint() == nil || cmd.Viewpoint().FOV == nil {
		t.Error("Expected the viewpoint to be stored")
	}

	if err := cmd.LoadReader(strings.NewReader(heprepSample), "det", ".heprep"); err != nil {
		t.Fatal(err)
	}
	if n := len(cmd.forest.Roots); n != 2 {
		t.Errorf("Expected 2 roots after loading both files, got: %d", n)
	}

	err := cmd.LoadReader(strings.NewReader(""), "x", ".stl")
	if !errors.Is(err, errUnsupportedExtension) {
		t.Errorf("Expected errUnsupportedExtension, got: %v", err)
	}

	cmd.Clear()
	if cmd.Count() != 0 || cmd.Viewpoint() != nil {
		t.Error("Expected clear to drop the forest and viewpoint")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run0.wrl")
	if err := os.WriteFile(path, []byte(vrmlSample), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd := newCommandContext(defaultConfig())
	if err := cmd.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if cmd.forest.Roots[0].Name != "run0" {
		t.Errorf("Expected root named after the file, got: %s", cmd.forest.Roots[0].Name)
	}
}

func TestSetters(t *testing.T) {
	cmd := newCommandContext(defaultConfig())
	if err := cmd.SetTolerance(0.01); err != nil {
		t.Fatal(err)
	}
	if cmd.Tolerance() != 0.01 {
		t.Errorf("Expected tolerance 0.01, got: %f", cmd.Tolerance())
	}
	if err := cmd.SetTolerance(2); !errors.Is(err, errInvalidValue) {
		t.Errorf("Expected errInvalidValue, got: %v", err)
	}
	if err := cmd.SetSamples(0); !errors.Is(err, errInvalidValue) {
		t.Errorf("Expected errInvalidValue, got: %v", err)
	}
	if err := cmd.SetSamples(5000); err != nil {
		t.Fatal(err)
	}
	if cmd.Samples() != 5000 {
		t.Errorf("Expected 5000 samples, got: %d", cmd.Samples())
	}
}

func TestCheckAndExportWitness(t *testing.T) {
	cfg := defaultConfig()
	cfg.Samples = 10000
	cfg.Seed = 7
	cmd := newCommandContext(cfg)

	root := scene.New("world")
	root.Children = []*scene.Component{
		testBoxComponent("a", mat.Vec3{0, 0, 0}, mat.Vec3{1, 1, 1}),
		testBoxComponent("b", mat.Vec3{0.5, 0, 0}, mat.Vec3{1.5, 1, 1}),
	}
	cmd.forest.Add(root)

	res := cmd.Check()
	if len(res.Pairs) != 1 {
		t.Fatalf("Expected 1 overlap, got: %d", len(res.Pairs))
	}

	path := filepath.Join(t.TempDir(), "witness.pcd")
	if err := cmd.ExportWitness(path); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), "VERSION .7\nFIELDS x y z\n") {
		t.Errorf("Unexpected PCD header: %q", string(b[:40]))
	}
}

func TestExportWitness_NoResult(t *testing.T) {
	cmd := newCommandContext(defaultConfig())
	err := cmd.ExportWitness(filepath.Join(t.TempDir(), "witness.pcd"))
	if !errors.Is(err, errNoOverlaps) {
		t.Errorf("Expected errNoOverlaps, got: %v", err)
	}
}

func TestCheck_Seeded(t *testing.T) {
	cfg := defaultConfig()
	cfg.Samples = 5000
	cfg.Seed = 42
	run := func() float32 {
		cmd := newCommandContext(cfg)
		root := scene.New("world")
		root.Children = []*scene.Component{
			testBoxComponent("a", mat.Vec3{0, 0, 0}, mat.Vec3{1, 1, 1}),
			testBoxComponent("b", mat.Vec3{0.5, 0, 0}, mat.Vec3{1.5, 1, 1}),
		}
		cmd.forest.Add(root)
		res := cmd.Check()
		if len(res.Pairs) != 1 {
			t.Fatalf("Expected 1 overlap, got: %d", len(res.Pairs))
		}
		return res.Pairs[0].Fraction
	}
	if a, b := run(), run(); a != b {
		t.Errorf("Expected seeded runs to agree, got: %f and %f", a, b)
	}
}

func TestList(t *testing.T) {
	cmd := newCommandContext(defaultConfig())
	root := scene.New("world")
	root.Children = []*scene.Component{scene.New("child")}
	cmd.forest.Add(root)

	lines := cmd.List()
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got: %d", len(lines))
	}
	if lines[0] != "world" {
		t.Errorf("Expected unindented root, got: %q", lines[0])
	}
	if lines[1] != "  child" {
		t.Errorf("Expected indented child, got: %q", lines[1])
	}
}
