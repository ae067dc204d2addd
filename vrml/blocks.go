package vrml

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/detgeo/gxviewer/scene"
	"github.com/seqsense/pcgol/mat"
)

var numberRe = regexp.MustCompile(`[-+]?\d*\.?\d+(?:[eE][-+]?\d+)?`)

// findFloats returns the floating point tokens of a line, in order.
// Keyword lines are matched permissively: any line containing the field
// name is scanned, regardless of surrounding syntax.
func findFloats(line string) []float32 {
	matches := numberRe.FindAllString(line, -1)
	out := make([]float32, 0, len(matches))
	for _, m := range matches {
		f, err := strconv.ParseFloat(m, 32)
		if err != nil {
			continue
		}
		out = append(out, float32(f))
	}
	return out
}

// parseCoordBlock runs the point/coordIndex sub-state machine shared by
// track and solid blocks, and scans color and transparency lines.
func parseCoordBlock(block string) (points []mat.Vec3, indices []int32, color scene.RGBA) {
	rgb := [3]float32{1, 1, 1}
	var transparency float32

	readingPoints := false
	readingIndices := false
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "point ["):
			readingPoints = true
			continue
		case strings.HasPrefix(line, "]"):
			readingPoints = false
			readingIndices = false
			continue
		case strings.HasPrefix(line, "coordIndex ["):
			readingIndices = true
			continue
		case strings.Contains(line, "diffuseColor"):
			if f := findFloats(line); len(f) >= 3 {
				rgb = [3]float32{f[0], f[1], f[2]}
			}
			continue
		case strings.Contains(line, "transparency"):
			if f := findFloats(line); len(f) >= 1 {
				transparency = f[0]
			}
			continue
		}
		if readingPoints {
			fields := strings.Fields(strings.ReplaceAll(line, ",", ""))
			if len(fields) != 3 {
				continue
			}
			var p mat.Vec3
			ok := true
			for i, s := range fields {
				f, err := strconv.ParseFloat(s, 32)
				if err != nil {
					ok = false
					break
				}
				p[i] = float32(f)
			}
			if ok {
				points = append(points, p)
			}
		} else if readingIndices {
			for _, s := range strings.Fields(strings.ReplaceAll(line, ",", "")) {
				n, err := strconv.Atoi(s)
				if err != nil {
					continue
				}
				indices = append(indices, int32(n))
			}
		}
	}
	return points, indices, scene.RGBA{rgb[0], rgb[1], rgb[2], 1 - transparency}
}

// parseTrackBlock converts a polyline block into 2-index line records.
// A -1 sentinel ends a polyline run; consecutive index pairs within one
// run each become a segment, so a run of length 1 yields nothing.
// Track colors are always opaque; transparency only applies to solid
// and marker blocks.
func parseTrackBlock(block string) ([]mat.Vec3, []int32, scene.RGBA) {
	points, indices, color := parseCoordBlock(block)
	color[3] = 1
	var cells []int32
	for i := 0; i+1 < len(indices); i++ {
		if indices[i] != -1 && indices[i+1] != -1 {
			cells = append(cells, 2, indices[i], indices[i+1])
		}
	}
	return points, cells, color
}

// parseSolidBlock converts a face-set block into 3- and 4-index face
// records. A -1 sentinel terminates a face; faces of any other size are
// dropped.
func parseSolidBlock(block string) ([]mat.Vec3, []int32, scene.RGBA) {
	points, indices, color := parseCoordBlock(block)
	var cells []int32
	var face []int32
	for _, idx := range indices {
		if idx == -1 {
			if len(face) == 3 || len(face) == 4 {
				cells = append(cells, int32(len(face)))
				cells = append(cells, face...)
			}
			face = face[:0]
			continue
		}
		face = append(face, idx)
	}
	return points, cells, color
}

// parseMarkerBlock extracts the center, radius and color of a sphere
// marker. Radius defaults to 1 and transparency to 0.
func parseMarkerBlock(block string) (center mat.Vec3, radius float32, color scene.RGBA) {
	rgb := [3]float32{1, 1, 1}
	var transparency float32
	radius = 1

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "translation"):
			if f := findFloats(line); len(f) >= 3 {
				center = mat.Vec3{f[0], f[1], f[2]}
			}
		case strings.Contains(line, "diffuseColor"):
			if f := findFloats(line); len(f) >= 3 {
				rgb = [3]float32{f[0], f[1], f[2]}
			}
		case strings.Contains(line, "transparency"):
			if f := findFloats(line); len(f) >= 1 {
				transparency = f[0]
			}
		case strings.Contains(line, "radius"):
			if f := findFloats(line); len(f) >= 1 {
				radius = f[0]
			}
		}
	}
	return center, radius, scene.RGBA{rgb[0], rgb[1], rgb[2], 1 - transparency}
}

const radToDeg = 180 / 3.14159265358979323846

// parseViewpointBlock extracts the camera parameters. The field of view
// is converted from radians to degrees; the orientation stays as an
// axis plus an angle in radians.
func parseViewpointBlock(block string) *Viewpoint {
	v := &Viewpoint{}
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.Contains(line, "fieldOfView"):
			if f := findFloats(line); len(f) >= 1 {
				fov := f[0] * radToDeg
				v.FOV = &fov
			}
		case strings.Contains(line, "position"):
			if f := findFloats(line); len(f) >= 3 {
				p := mat.Vec3{f[0], f[1], f[2]}
				v.Position = &p
			}
		case strings.Contains(line, "orientation"):
			if f := findFloats(line); len(f) >= 4 {
				o := [4]float32{f[0], f[1], f[2], f[3]}
				v.Orientation = &o
			}
		}
	}
	return v
}
