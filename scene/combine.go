package scene

import (
	"errors"

	"github.com/seqsense/pcgol/mat"
)

var (
	// ErrMalformedTopology is returned when a cell buffer is not a valid
	// sequence of count-prefixed records.
	ErrMalformedTopology = errors.New("malformed topology record")
	// ErrBufferLengthMismatch is returned when the points and colors of
	// one item disagree in length, or the input lists are not parallel.
	ErrBufferLengthMismatch = errors.New("points/colors buffer length mismatch")
)

// Combine merges N (points, cells, colors) triples into one, adjusting
// every cell index by the cumulative point count of the preceding items.
// Cell buffers are walked record by record so the count prefixes stay
// untouched.
func Combine(points [][]mat.Vec3, cells [][]int32, colors [][]RGBA) ([]mat.Vec3, []int32, []RGBA, error) {
	if len(points) != len(cells) || len(points) != len(colors) {
		return nil, nil, nil, ErrBufferLengthMismatch
	}

	var nPoints, nCells int
	for i := range points {
		if len(points[i]) != len(colors[i]) {
			return nil, nil, nil, ErrBufferLengthMismatch
		}
		nPoints += len(points[i])
		nCells += len(cells[i])
	}

	outPoints := make([]mat.Vec3, 0, nPoints)
	outCells := make([]int32, 0, nCells)
	outColors := make([]RGBA, 0, nPoints)

	var offset int32
	for i := range points {
		cell := cells[i]
		for j := 0; j < len(cell); {
			k := cell[j]
			if k < 0 || j+int(k)+1 > len(cell) {
				return nil, nil, nil, ErrMalformedTopology
			}
			outCells = append(outCells, k)
			for _, idx := range cell[j+1 : j+int(k)+1] {
				outCells = append(outCells, idx+offset)
			}
			j += int(k) + 1
		}
		outPoints = append(outPoints, points[i]...)
		outColors = append(outColors, colors[i]...)
		offset += int32(len(points[i]))
	}
	return outPoints, outCells, outColors, nil
}
