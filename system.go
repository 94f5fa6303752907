package gpuparticles

import (
	"errors"
	"fmt"

	"github.com/gekko3d/gpuparticles/rt/core"

	"github.com/google/uuid"
)

// System spreads a particle budget over several fixed-capacity pools that
// share one random stream. Spawn and Advance must not be called concurrently.
type System struct {
	id string

	totalCapacity        int
	containerCount       int
	perContainerCapacity int

	// Selects the target pool, not a slot. Wraps to 1, never back to 0.
	cursor int
	time   float32
	scale  float32

	pools    []*Pool
	random   RandomStream
	uploader Uploader
	logger   Logger
}

type Option func(*System)

// WithRandomStream replaces the seeded stream built from the config.
func WithRandomStream(r RandomStream) Option {
	return func(s *System) { s.random = r }
}

// WithUploader sets the collaborator that receives dirty ranges and uniforms.
func WithUploader(u Uploader) Option {
	return func(s *System) { s.uploader = u }
}

func WithLogger(l Logger) Option {
	return func(s *System) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSystem validates cfg and creates its pools. random_count is only
// consulted when no stream is injected with WithRandomStream.
func NewSystem(cfg Config, opts ...Option) (*System, error) {
	if err := cfg.validateLayout(); err != nil {
		return nil, err
	}
	s := &System{
		id:                   uuid.NewString(),
		totalCapacity:        cfg.MaxParticles,
		containerCount:       cfg.ContainerCount,
		perContainerCapacity: cfg.PerContainerCapacity(),
		scale:                cfg.PointScale,
		logger:               NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Scoped("system " + s.id)

	if s.random == nil {
		stream, err := NewPrecomputedStream(cfg.RandomCount, cfg.RandomSeed)
		if err != nil {
			return nil, err
		}
		s.random = stream
	}

	sizeScale := cfg.PixelRatio
	if sizeScale <= 0 {
		sizeScale = 1
	}

	s.pools = make([]*Pool, 0, s.containerCount)
	for i := 0; i < s.containerCount; i++ {
		p, err := NewPool(s.perContainerCapacity, s.random,
			WithSizeScale(sizeScale),
			WithPoolUploader(s.uploader),
			WithPoolLogger(s.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("creating pool %d: %w", i, err)
		}
		s.pools = append(s.pools, p)
	}

	s.logger.Infof("%d particles in %d pools of %d",
		s.totalCapacity, s.containerCount, s.perContainerCapacity)
	return s, nil
}

func (s *System) Id() string                { return s.id }
func (s *System) Pools() []*Pool            { return s.pools }
func (s *System) Pool(i int) *Pool          { return s.pools[i] }
func (s *System) ContainerCount() int       { return s.containerCount }
func (s *System) PerContainerCapacity() int { return s.perContainerCapacity }
func (s *System) TotalCapacity() int        { return s.totalCapacity }
func (s *System) Cursor() int               { return s.cursor }
func (s *System) Time() float32             { return s.time }
func (s *System) Random() RandomStream      { return s.random }

// Uniforms returns the shader uniforms for the current frame.
func (s *System) Uniforms() core.Uniforms {
	return core.Uniforms{Time: s.time, Scale: s.scale}
}

// poolIndex maps the global cursor to a pool, clamped to the pool range.
func (s *System) poolIndex() int {
	idx := s.cursor / s.perContainerCapacity
	if idx < 0 {
		return 0
	}
	if idx >= s.containerCount {
		return s.containerCount - 1
	}
	return idx
}

// Spawn routes one particle to a pool chosen from the global cursor alone and
// returns the pool index and the slot written.
func (s *System) Spawn(params SpawnParams) (int, int) {
	s.cursor++
	if s.cursor >= s.totalCapacity {
		// Wraps to 1, not 0: existing pool distributions depend on it.
		s.cursor = 1
	}
	idx := s.poolIndex()
	return idx, s.pools[idx].Spawn(params)
}

// Advance publishes the new time and uploads each pool's dirty ranges.
// Every pool is advanced even if an earlier one fails.
func (s *System) Advance(time float32) error {
	s.time = time

	var errs []error
	if s.uploader != nil {
		if err := s.uploader.UploadUniforms(s.Uniforms()); err != nil {
			s.logger.Warnf("uniform upload failed: %v", err)
			errs = append(errs, fmt.Errorf("uniforms: %w", err))
		}
	}
	for _, p := range s.pools {
		if err := p.Advance(time); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *System) SpawnParticle(params SpawnParams) { s.Spawn(params) }

// Release frees the device buffers of every pool when the uploader holds
// any. The system must not be advanced afterwards.
func (s *System) Release() {
	r, ok := s.uploader.(PoolReleaser)
	if !ok {
		return
	}
	for _, p := range s.pools {
		r.ReleasePool(p.Id())
	}
	s.logger.Debugf("released %d pools", len(s.pools))
}
