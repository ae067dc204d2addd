package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	"github.com/seqsense/pcgol/pc/filter/voxelgrid"

	"github.com/detgeo/gxviewer/clash"
	"github.com/detgeo/gxviewer/heprep"
	"github.com/detgeo/gxviewer/internal/logging"
	"github.com/detgeo/gxviewer/scene"
	"github.com/detgeo/gxviewer/vrml"
)

var (
	errUnsupportedExtension = errors.New("unsupported file extension")
	errNoOverlaps           = errors.New("no overlap witness points to export")
	errInvalidValue         = errors.New("value out of range")
)

// commandContext holds the loaded forest and the check parameters, and
// backs both the console commands and the command line flags.
type commandContext struct {
	forest    scene.Forest
	viewpoint *vrml.Viewpoint

	tolerance         float32
	samples           int
	seed              int64
	cylinderSegments  int
	witnessResolution float32

	lastResult *clash.Result
}

func newCommandContext(cfg Config) *commandContext {
	return &commandContext{
		tolerance:         cfg.Tolerance,
		samples:           cfg.Samples,
		seed:              cfg.Seed,
		cylinderSegments:  cfg.CylinderSegments,
		witnessResolution: cfg.WitnessResolution,
	}
}

// LoadFile parses the file into the forest, dispatching on the file
// extension. The component tree is named after the file.
func (c *commandContext) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	base := filepath.Base(path)
	name := strings.SplitN(base, ".", 2)[0]
	ext := filepath.Ext(path)
	if strings.HasSuffix(strings.ToLower(base), ".heprep.xml") {
		ext = ".heprep"
	}
	return c.LoadReader(f, name, ext)
}

// LoadReader parses one file worth of data from r. ext selects the
// parser the way LoadFile does.
func (c *commandContext) LoadReader(r io.Reader, name, ext string) error {
	progress := func(cur, max int) {
		if cur == max {
			logging.Debugf("built %d blocks of %s", max, name)
		}
	}
	switch strings.ToLower(ext) {
	case ".wrl", ".vrml":
		p := &vrml.Parser{Progress: progress}
		s, err := p.Parse(r, name)
		if err != nil {
			return err
		}
		c.forest.Add(s.Root)
		if s.Viewpoint != nil {
			c.viewpoint = s.Viewpoint
		}
	case ".heprep":
		p := &heprep.Parser{Progress: progress, Segments: c.cylinderSegments}
		comps, err := p.Parse(r, name)
		if err != nil {
			return err
		}
		c.forest.Add(comps...)
	default:
		return fmt.Errorf("%w: %q", errUnsupportedExtension, ext)
	}
	logging.Infof("loaded %s, %d components in forest", name, c.forest.Count())
	return nil
}

// Check runs the overlap detector over the forest and stores the
// result for later witness export.
func (c *commandContext) Check() *clash.Result {
	d := clash.Detector{
		Tolerance: c.tolerance,
		Samples:   c.samples,
	}
	if c.seed != 0 {
		d.Rand = rand.New(rand.NewSource(c.seed))
	}
	res := d.Check(c.forest.Roots)
	c.lastResult = res
	return res
}

func (c *commandContext) Count() int {
	return c.forest.Count()
}

// List returns one line per component, indented by tree depth and
// marking components that carry geometry.
func (c *commandContext) List() []string {
	var out []string
	c.forest.Walk(func(comp *scene.Component, depth int) {
		line := strings.Repeat("  ", depth) + comp.Name
		if comp.Mesh != nil {
			line += fmt.Sprintf(" [%d points]", len(comp.Mesh.Points))
		}
		out = append(out, line)
	})
	return out
}

func (c *commandContext) Clear() {
	c.forest.Clear()
	c.viewpoint = nil
	c.lastResult = nil
}

func (c *commandContext) Tolerance() float32 {
	return c.tolerance
}

func (c *commandContext) SetTolerance(v float32) error {
	if v <= 0 || v >= 1 {
		return fmt.Errorf("%w: tolerance must be in (0, 1)", errInvalidValue)
	}
	c.tolerance = v
	return nil
}

func (c *commandContext) Samples() int {
	return c.samples
}

func (c *commandContext) SetSamples(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: samples must be positive", errInvalidValue)
	}
	c.samples = n
	return nil
}

func (c *commandContext) Seed() int64 {
	return c.seed
}

func (c *commandContext) SetSeed(n int64) {
	c.seed = n
}

func (c *commandContext) Viewpoint() *vrml.Viewpoint {
	return c.viewpoint
}

// ExportWitness merges the witness clouds of the last check, thins
// them on a voxel grid and writes the result as a PCD file.
func (c *commandContext) ExportWitness(path string) error {
	if c.lastResult == nil || len(c.lastResult.Witness) == 0 {
		return errNoOverlaps
	}
	pp := mergeClouds(c.lastResult.Witness)
	if c.witnessResolution > 0 {
		r := c.witnessResolution
		filtered, err := voxelgrid.New(mat.Vec3{r, r, r}).Filter(pp)
		if err != nil {
			return err
		}
		pp = filtered
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := writePCD(f, pp); err != nil {
		return err
	}
	logging.Infof("wrote %d witness points to %s", pp.Points, path)
	return nil
}

// mergeClouds concatenates clouds sharing the x, y, z layout.
func mergeClouds(clouds []*pc.PointCloud) *pc.PointCloud {
	var total int
	for _, w := range clouds {
		total += w.Points
	}
	header := clouds[0].PointCloudHeader.Clone()
	header.Width = total
	header.Height = 1
	out := &pc.PointCloud{
		PointCloudHeader: header,
		Points:           total,
		Data:             make([]byte, 0, total*clouds[0].Stride()),
	}
	for _, w := range clouds {
		out.Data = append(out.Data, w.Data...)
	}
	return out
}
