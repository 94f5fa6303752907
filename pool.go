package gpuparticles

import (
	"fmt"

	"github.com/gekko3d/gpuparticles/rt/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// startTimeJitter desynchronizes particles spawned in the same frame.
const startTimeJitter = 2e-2

// Uploader pushes attribute data to the graphics device. Implemented by
// rt/gpu.BufferManager.
type Uploader interface {
	UploadAttributes(src core.AttributeSource, ranges []core.DirtyRange) error
	UploadUniforms(u core.Uniforms) error
}

// PoolReleaser is implemented by uploaders that hold per-pool device
// resources.
type PoolReleaser interface {
	ReleasePool(poolId string)
}

// Pool is one fixed-capacity ring of particle slots backed by flat
// attribute buffers. It is not safe for concurrent use.
type Pool struct {
	id       string
	capacity int
	cursor   int

	// Region written since the last collection.
	pendingOffset int
	pendingCount  int
	dirty         bool
	// Set when an upload failed; the next collection reports every buffer.
	forceWhole bool

	time      float32
	sizeScale float32

	buffers  *core.AttributeBuffers
	random   RandomStream
	uploader Uploader
	logger   Logger
}

type PoolOption func(*Pool)

// WithSizeScale multiplies every spawned size, typically by the device pixel ratio.
func WithSizeScale(scale float32) PoolOption {
	return func(p *Pool) { p.sizeScale = scale }
}

func WithPoolUploader(u Uploader) PoolOption {
	return func(p *Pool) { p.uploader = u }
}

func WithPoolLogger(l Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewPool(capacity int, random RandomStream, opts ...PoolOption) (*Pool, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: pool capacity must be positive, got %d", ErrInvalidConfig, capacity)
	}
	if random == nil {
		return nil, fmt.Errorf("%w: pool needs a random stream", ErrInvalidConfig)
	}
	p := &Pool{
		id:        uuid.NewString(),
		capacity:  capacity,
		sizeScale: 1,
		buffers:   core.NewAttributeBuffers(capacity),
		random:    random,
		logger:    NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Scoped("pool " + p.id)
	return p, nil
}

func (p *Pool) Id() string { return p.id }
func (p *Pool) Capacity() int { return p.capacity }
func (p *Pool) Cursor() int { return p.cursor }
func (p *Pool) Dirty() bool { return p.dirty }
func (p *Pool) Time() float32 { return p.time }
func (p *Pool) Buffers() *core.AttributeBuffers { return p.buffers }

func (p *Pool) Attribute(a core.AttributeID) []float32 { return p.buffers.Data(a) }

func (p *Pool) SpawnParticle(params SpawnParams) { p.Spawn(params) }

// Pending returns the slot region accumulated since the last collection.
func (p *Pool) Pending() (offset, count int) { return p.pendingOffset, p.pendingCount }

// Spawn writes one particle at the cursor and returns its slot. Once the
// ring is full the oldest slot is overwritten.
func (p *Pool) Spawn(params SpawnParams) int {
	i := p.cursor
	b := p.buffers
	rnd := p.random

	// position
	pos := mgl32.Vec3{
		params.Position[0] + rnd.Next()*params.PositionRandomness,
		params.Position[1] + rnd.Next()*params.PositionRandomness,
		params.Position[2] + rnd.Next()*params.PositionRandomness,
	}
	if params.SmoothPosition {
		pos[0] -= params.Velocity[0] * rnd.Next()
		pos[1] -= params.Velocity[1] * rnd.Next()
		pos[2] -= params.Velocity[2] * rnd.Next()
	}
	b.SetVec3(core.AttrPositionStart, i, pos)

	// velocity
	var vel mgl32.Vec3
	for axis := 0; axis < 3; axis++ {
		vel[axis] = core.EncodeVelocity(params.Velocity[axis] + rnd.Next()*params.VelocityRandomness)
	}
	b.SetVec3(core.AttrVelocity, i, vel)

	// color
	var col mgl32.Vec3
	for ch := 0; ch < 3; ch++ {
		col[ch] = mgl32.Clamp(params.Color[ch]+rnd.Next()*params.ColorRandomness, 0, 1)
	}
	b.SetVec3(core.AttrColor, i, col)

	// turbulence, size, lifetime and start time
	b.SetScalar(core.AttrTurbulence, i, params.Turbulence)
	b.SetScalar(core.AttrSize, i, params.Size*p.sizeScale+rnd.Next()*params.SizeRandomness)
	b.SetScalar(core.AttrLifeTime, i, params.Lifetime)
	b.SetScalar(core.AttrStartTime, i, p.time+rnd.Next()*startTimeJitter)

	if !p.dirty {
		p.pendingOffset = i
	}
	p.pendingCount++
	p.dirty = true

	p.cursor++
	if p.cursor >= p.capacity {
		p.cursor = 0
	}
	return i
}

// wrapped reports whether the pending region runs past the end of the ring.
func (p *Pool) wrapped() bool {
	return p.pendingOffset+p.pendingCount > p.capacity
}

// CollectDirtyRanges returns one range per attribute covering every slot
// written since the previous collection, then resets the pending region.
// A region that wrapped is reported as whole-buffer ranges.
func (p *Pool) CollectDirtyRanges() []core.DirtyRange {
	if !p.dirty && !p.forceWhole {
		return nil
	}

	ranges := make([]core.DirtyRange, 0, core.AttributeCount)
	whole := p.forceWhole || p.wrapped()
	for _, a := range core.Attributes() {
		if whole {
			ranges = append(ranges, core.WholeRange(a, p.capacity))
		} else {
			ranges = append(ranges, core.SlotRange(a, p.pendingOffset, p.pendingCount))
		}
	}
	if whole && p.logger.DebugEnabled() {
		p.logger.Debugf("full upload (offset=%d count=%d capacity=%d)", p.pendingOffset, p.pendingCount, p.capacity)
	}

	p.pendingOffset = 0
	p.pendingCount = 0
	p.dirty = false
	p.forceWhole = false
	return ranges
}

// Advance sets the pool time used for start-time stamping and uploads
// whatever changed since the previous advance.
func (p *Pool) Advance(time float32) error {
	p.time = time
	ranges := p.CollectDirtyRanges()
	if len(ranges) == 0 || p.uploader == nil {
		return nil
	}
	if err := p.uploader.UploadAttributes(p, ranges); err != nil {
		p.forceWhole = true
		p.logger.Warnf("upload failed, retrying whole buffers next frame: %v", err)
		return fmt.Errorf("pool %s upload: %w", p.id, err)
	}
	return nil
}
