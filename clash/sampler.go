package clash

import (
	"math/rand"

	"github.com/seqsense/pcgol/mat"
)

// boxSampler draws uniformly distributed points from an axis-aligned
// box. A nil source falls back to the global generator.
type boxSampler struct {
	bounds rect
	rnd    *rand.Rand
}

func (s *boxSampler) rand01() float32 {
	if s.rnd != nil {
		return s.rnd.Float32()
	}
	return rand.Float32()
}

func (s *boxSampler) Sample() mat.Vec3 {
	size := s.bounds.max.Sub(s.bounds.min)
	return s.bounds.min.Add(mat.Vec3{
		size[0] * s.rand01(),
		size[1] * s.rand01(),
		size[2] * s.rand01(),
	})
}
