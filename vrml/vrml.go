// Package vrml parses the VRML-like scene text exported by detector
// simulations into a scene component tree. The format is line oriented:
// brace-delimited Shape/Anchor/Viewpoint blocks holding point and index
// lists plus a handful of scalar fields.
package vrml

import (
	"bufio"
	"errors"
	"io"
	"math"
	"strings"

	"github.com/detgeo/gxviewer/scene"
	"github.com/seqsense/pcgol/mat"
)

// ErrUnterminatedBlock is returned when a block's braces never balance
// before the end of the file.
var ErrUnterminatedBlock = errors.New("unterminated block")

// Viewpoint is the camera declaration of a file, if any.
// FOV is in degrees; Orientation is a rotation axis plus an angle in
// radians.
type Viewpoint struct {
	FOV         *float32
	Position    *mat.Vec3
	Orientation *[4]float32
}

// Scene is the result of parsing one file.
type Scene struct {
	Root      *scene.Component
	Viewpoint *Viewpoint
}

// Parser parses VRML-like scene text. Progress, when set, is called once
// per processed block with monotonically increasing counts.
type Parser struct {
	Progress func(cur, max int)
}

type blockKind int

const (
	blockTrack blockKind = iota
	blockMarker
	blockSolid
	blockViewpoint
	blockUnknown
)

// classify tags a closed block by substring presence, in priority order.
func classify(block string) blockKind {
	switch {
	case strings.Contains(block, "IndexedLineSet"):
		return blockTrack
	case strings.Contains(block, "Sphere"):
		return blockMarker
	case strings.Contains(block, "IndexedFaceSet"):
		return blockSolid
	case strings.Contains(block, "Viewpoint"):
		return blockViewpoint
	}
	return blockUnknown
}

// Parse reads the whole file and returns one root component whose
// children are the file's categories: Trajectories, Step Markers and
// Geometry. A file without any recognized block yields a root with
// empty children, not an error.
func (p *Parser) Parse(r io.Reader, name string) (*Scene, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	viewpointBlock, trackBlocks, markerBlocks, solidBlocks, err := extractBlocks(lines)
	if err != nil {
		return nil, err
	}

	total := len(trackBlocks) + len(markerBlocks) + len(solidBlocks)
	var done int
	progress := func() {
		done++
		if p.Progress != nil {
			p.Progress(done, total)
		}
	}

	root := scene.New(name)

	tracks := scene.New("Trajectories")
	tracks.Shape = scene.ShapeTrack
	if err := buildBlocks(tracks, trackBlocks, parseTrackBlock, progress); err != nil {
		return nil, err
	}

	markers := scene.New("Step Markers")
	markers.Shape = scene.ShapeMarker
	if err := buildMarkers(markers, markerBlocks, progress); err != nil {
		return nil, err
	}

	solids := scene.New("Geometry")
	solids.Shape = scene.ShapeSolid
	if err := buildBlocks(solids, solidBlocks, parseSolidBlock, progress); err != nil {
		return nil, err
	}

	root.Children = []*scene.Component{tracks, markers, solids}

	s := &Scene{Root: root, Viewpoint: &Viewpoint{}}
	if viewpointBlock != "" {
		s.Viewpoint = parseViewpointBlock(viewpointBlock)
	}
	return s, nil
}

// readLines reads the input dropping comment lines.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// extractBlocks runs the brace-balanced block state machine over the
// lines. A block starts at a line whose trimmed text begins with a
// recognized keyword and ends on the line where the brace depth returns
// to zero. Nested braces inside a block never close it early.
// At most one viewpoint block is kept; the last one wins.
func extractBlocks(lines []string) (viewpoint string, tracks, markers, solids []string, err error) {
	var block []string
	insideBlock := false
	braceCount := 0

	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "Shape") ||
			strings.HasPrefix(stripped, "Anchor") ||
			strings.HasPrefix(stripped, "Viewpoint") {
			insideBlock = true
			braceCount = 0
		}
		if !insideBlock {
			continue
		}
		block = append(block, line)
		braceCount += strings.Count(line, "{") - strings.Count(line, "}")
		if braceCount == 0 {
			content := strings.Join(block, "\n")
			switch classify(content) {
			case blockTrack:
				tracks = append(tracks, content)
			case blockMarker:
				markers = append(markers, content)
			case blockSolid:
				solids = append(solids, content)
			case blockViewpoint:
				viewpoint = content
			}
			block = nil
			insideBlock = false
		}
	}
	if insideBlock {
		return "", nil, nil, nil, ErrUnterminatedBlock
	}
	return viewpoint, tracks, markers, solids, nil
}

type blockParser func(block string) ([]mat.Vec3, []int32, scene.RGBA)

// buildBlocks parses each block, assigns the block color to every point
// and combines the per-block buffers into the component's mesh.
func buildBlocks(c *scene.Component, blocks []string, parse blockParser, progress func()) error {
	for _, block := range blocks {
		points, cells, color := parse(block)
		colors := make([]scene.RGBA, len(points))
		for i := range colors {
			colors[i] = color
		}
		c.Points = append(c.Points, points)
		c.Cells = append(c.Cells, cells)
		c.Colors = append(c.Colors, colors)
		progress()
	}
	if len(c.Points) == 0 {
		return nil
	}
	return c.BuildMesh()
}

// buildMarkers tessellates one sphere per marker block.
func buildMarkers(c *scene.Component, blocks []string, progress func()) error {
	for _, block := range blocks {
		center, radius, color := parseMarkerBlock(block)
		points, cells := sphereMesh(center, radius, sphereStacks, sphereSlices)
		colors := make([]scene.RGBA, len(points))
		for i := range colors {
			colors[i] = color
		}
		c.Points = append(c.Points, points)
		c.Cells = append(c.Cells, cells)
		c.Colors = append(c.Colors, colors)
		progress()
	}
	if len(c.Points) == 0 {
		return nil
	}
	return c.BuildMesh()
}

const (
	sphereStacks = 8
	sphereSlices = 16
)

// sphereMesh builds a closed UV sphere: one vertex per pole, stacks-1
// rings of slices vertices, triangle fans at the poles and quads in
// between.
func sphereMesh(center mat.Vec3, radius float32, stacks, slices int) ([]mat.Vec3, []int32) {
	points := make([]mat.Vec3, 0, (stacks-1)*slices+2)
	points = append(points, center.Add(mat.Vec3{0, 0, radius}))
	for i := 1; i < stacks; i++ {
		theta := math.Pi * float64(i) / float64(stacks)
		for j := 0; j < slices; j++ {
			phi := 2 * math.Pi * float64(j) / float64(slices)
			points = append(points, center.Add(mat.Vec3{
				radius * float32(math.Sin(theta)*math.Cos(phi)),
				radius * float32(math.Sin(theta)*math.Sin(phi)),
				radius * float32(math.Cos(theta)),
			}))
		}
	}
	points = append(points, center.Add(mat.Vec3{0, 0, -radius}))
	bottom := int32(len(points) - 1)

	ring := func(i, j int) int32 {
		return int32(1 + (i-1)*slices + j%slices)
	}

	var cells []int32
	for j := 0; j < slices; j++ {
		cells = append(cells, 3, 0, ring(1, j), ring(1, j+1))
	}
	for i := 1; i < stacks-1; i++ {
		for j := 0; j < slices; j++ {
			cells = append(cells, 4,
				ring(i, j), ring(i, j+1), ring(i+1, j+1), ring(i+1, j))
		}
	}
	for j := 0; j < slices; j++ {
		cells = append(cells, 3, bottom, ring(stacks-1, j+1), ring(stacks-1, j))
	}
	return points, cells
}
