package clash

import (
	"github.com/seqsense/pcgol/pc"
)

// witnessCloud wraps the surviving sample points of one flagged pair
// into a point cloud so they can be exported or rendered.
func witnessCloud(points pc.Vec3Slice) *pc.PointCloud {
	pp := &pc.PointCloud{
		PointCloudHeader: pc.PointCloudHeader{
			Version: 0.7,
			Fields:  []string{"x", "y", "z"},
			Size:    []int{4, 4, 4},
			Type:    []string{"F", "F", "F"},
			Count:   []int{1, 1, 1},
			Width:   len(points),
			Height:  1,
		},
		Points: len(points),
		Data:   make([]byte, len(points)*4*3),
	}
	it, err := pp.Vec3Iterator()
	if err != nil {
		return pp
	}
	for _, p := range points {
		it.SetVec3(p)
		it.Incr()
	}
	return pp
}
