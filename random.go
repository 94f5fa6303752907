package gpuparticles

import (
	"fmt"
	"math/rand/v2"
)

// DefaultRandomCount is the size of the precomputed stream.
const DefaultRandomCount = 100000

// RandomStream yields jitter values in [-0.5, 0.5). A single stream is shared
// by every pool of a system, so consecutive draws are not independent across
// attributes of the same spawn.
type RandomStream interface {
	Next() float32
}

// PrecomputedStream cycles through a fixed table of seeded values.
type PrecomputedStream struct {
	values []float32
	cursor int
}

func NewPrecomputedStream(count int, seed uint64) (*PrecomputedStream, error) {
	if count < 2 {
		return nil, fmt.Errorf("%w: random stream needs at least 2 values, got %d", ErrInvalidConfig, count)
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	values := make([]float32, count)
	for i := range values {
		values[i] = r.Float32() - 0.5
	}
	return &PrecomputedStream{values: values}, nil
}

// Next advances the cursor then reads. On overflow the cursor restarts at 1,
// so index 0 is never returned.
func (s *PrecomputedStream) Next() float32 {
	s.cursor++
	if s.cursor >= len(s.values) {
		s.cursor = 1
	}
	return s.values[s.cursor]
}

func (s *PrecomputedStream) Len() int    { return len(s.values) }
func (s *PrecomputedStream) Cursor() int { return s.cursor }

// At returns the raw table value at i.
func (s *PrecomputedStream) At(i int) float32 { return s.values[i] }
