package gpuparticles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrecomputedStreamRange(t *testing.T) {
	s, err := NewPrecomputedStream(DefaultRandomCount, 1)
	require.NoError(t, err)
	require.Equal(t, DefaultRandomCount, s.Len())

	for i := 0; i < s.Len(); i++ {
		v := s.At(i)
		assert.GreaterOrEqual(t, v, float32(-0.5))
		assert.Less(t, v, float32(0.5))
	}
}

func TestPrecomputedStreamWrapsToOne(t *testing.T) {
	s, err := NewPrecomputedStream(3, 9)
	require.NoError(t, err)

	want := []float32{s.At(1), s.At(2), s.At(1), s.At(2), s.At(1)}
	for i, w := range want {
		assert.Equal(t, w, s.Next(), "draw %d", i)
	}
	assert.Equal(t, 1, s.Cursor())
}

func TestPrecomputedStreamDeterministic(t *testing.T) {
	a, err := NewPrecomputedStream(100, 5)
	require.NoError(t, err)
	b, err := NewPrecomputedStream(100, 5)
	require.NoError(t, err)
	c, err := NewPrecomputedStream(100, 6)
	require.NoError(t, err)

	same := true
	for i := 0; i < 250; i++ {
		va, vb, vc := a.Next(), b.Next(), c.Next()
		assert.Equal(t, va, vb)
		if va != vc {
			same = false
		}
	}
	assert.False(t, same, "different seeds should differ")
}

func TestPrecomputedStreamTooSmall(t *testing.T) {
	_, err := NewPrecomputedStream(1, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
