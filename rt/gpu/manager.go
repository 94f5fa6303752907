package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gekko3d/gpuparticles/rt/core"

	"github.com/cogentcore/webgpu/wgpu"
)

// UniformsSize is the padded size of core.Uniforms on the GPU.
const UniformsSize = 16

type poolBuffers struct {
	bufs [core.AttributeCount]*wgpu.Buffer
}

// BufferManager owns the vertex buffers of every pool and uploads the dirty
// ranges reported on each advance.
type BufferManager struct {
	Device *wgpu.Device

	UniformBuf *wgpu.Buffer

	pools map[string]*poolBuffers

	// Stats for the last frame
	BytesUploaded int
	WholeUploads  int
}

func NewBufferManager(device *wgpu.Device) *BufferManager {
	return &BufferManager{
		Device: device,
		pools:  make(map[string]*poolBuffers),
	}
}

// ensureBuffer creates buf if it is missing or smaller than size. It reports
// whether a new, still empty buffer was created.
func (m *BufferManager) ensureBuffer(name string, buf **wgpu.Buffer, size uint64, usage wgpu.BufferUsage) (bool, error) {
	neededSize := alignSize(size)

	current := *buf
	var currentSize uint64
	if current != nil {
		currentSize = current.GetSize()
	}
	if !needsCreate(currentSize, neededSize) {
		return false, nil
	}
	if current != nil {
		current.Release()
	}

	newBuf, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            name,
		Size:             neededSize,
		Usage:            usage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return false, fmt.Errorf("creating buffer %s: %w", name, err)
	}
	*buf = newBuf
	return true, nil
}

// UploadAttributes writes the given dirty ranges of src to its GPU buffers.
// Only the ranges are converted, except for buffers created by this call
// which get the whole attribute array once.
func (m *BufferManager) UploadAttributes(src core.AttributeSource, ranges []core.DirtyRange) error {
	if len(ranges) == 0 {
		return nil
	}
	bufs := src.Buffers()

	pb, ok := m.pools[src.Id()]
	if !ok {
		pb = &poolBuffers{}
		m.pools[src.Id()] = pb
	}

	for _, r := range ranges {
		name := bufferLabel(src.Id(), r.Attribute)
		created, err := m.ensureBuffer(name, &pb.bufs[r.Attribute], uint64(bufs.ByteLen(r.Attribute)), wgpu.BufferUsageVertex)
		if err != nil {
			return err
		}

		offset, payload := attributePayload(bufs.Data(r.Attribute), r, created)
		if len(payload) == 0 {
			continue
		}
		if err := m.Device.GetQueue().WriteBuffer(pb.bufs[r.Attribute], offset, payload); err != nil {
			return fmt.Errorf("writing %s: %w", r, err)
		}
		m.BytesUploaded += len(payload)
		if r.Whole || created {
			m.WholeUploads++
		}
	}
	return nil
}

// UploadUniforms writes uTime and uScale.
func (m *BufferManager) UploadUniforms(u core.Uniforms) error {
	if _, err := m.ensureBuffer("particleUniforms", &m.UniformBuf, UniformsSize, wgpu.BufferUsageUniform); err != nil {
		return err
	}
	if err := m.Device.GetQueue().WriteBuffer(m.UniformBuf, 0, uniformsToBytes(u)); err != nil {
		return fmt.Errorf("writing uniforms: %w", err)
	}
	return nil
}

// BeginFrame resets the per-frame stats.
func (m *BufferManager) BeginFrame() {
	m.BytesUploaded = 0
	m.WholeUploads = 0
}

// AttributeBuffer returns the GPU buffer for one attribute of a pool, or nil
// if nothing was uploaded for it yet.
func (m *BufferManager) AttributeBuffer(poolId string, a core.AttributeID) *wgpu.Buffer {
	pb, ok := m.pools[poolId]
	if !ok {
		return nil
	}
	return pb.bufs[a]
}

// ReleasePool drops the buffers of one pool.
func (m *BufferManager) ReleasePool(poolId string) {
	pb, ok := m.pools[poolId]
	if !ok {
		return
	}
	for i, b := range pb.bufs {
		if b != nil {
			b.Release()
			pb.bufs[i] = nil
		}
	}
	delete(m.pools, poolId)
}

func (m *BufferManager) Release() {
	for id := range m.pools {
		m.ReleasePool(id)
	}
	if m.UniformBuf != nil {
		m.UniformBuf.Release()
		m.UniformBuf = nil
	}
}

// VertexBufferLayouts describes one non-interleaved vertex buffer per
// attribute, bound at the attribute's location.
func VertexBufferLayouts() []wgpu.VertexBufferLayout {
	layouts := make([]wgpu.VertexBufferLayout, 0, core.AttributeCount)
	for _, a := range core.Attributes() {
		layouts = append(layouts, wgpu.VertexBufferLayout{
			ArrayStride: uint64(a.ItemSize() * core.BytesPerElement),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: vertexFormat(a), Offset: 0, ShaderLocation: uint32(a)},
			},
		})
	}
	return layouts
}

func vertexFormat(a core.AttributeID) wgpu.VertexFormat {
	if a.ItemSize() == 3 {
		return wgpu.VertexFormatFloat32x3
	}
	return wgpu.VertexFormatFloat32
}

func bufferLabel(poolId string, a core.AttributeID) string {
	return fmt.Sprintf("particles/%s/%s", poolId, a.Name())
}

// Helpers

func alignSize(n uint64) uint64 {
	if n%4 != 0 {
		n += 4 - (n % 4)
	}
	return n
}

// needsCreate reports whether a buffer of have bytes (0 when missing) must be
// replaced to hold need bytes.
func needsCreate(have, need uint64) bool {
	return have == 0 || have < need
}

// attributePayload picks what to write for r. A freshly created buffer
// needs the whole array, an existing one only the range.
func attributePayload(data []float32, r core.DirtyRange, created bool) (uint64, []byte) {
	if created {
		if len(data) == 0 {
			return 0, nil
		}
		return 0, float32sToBytes(data)
	}
	return rangePayload(data, r)
}

// rangePayload returns the byte offset and bytes of data covered by r,
// clipped to the array.
func rangePayload(data []float32, r core.DirtyRange) (uint64, []byte) {
	start, end := r.Offset, r.End()
	if r.Whole {
		start, end = 0, len(data)
	}
	if start < 0 {
		start = 0
	}
	if end > len(data) {
		end = len(data)
	}
	if start >= end {
		return 0, nil
	}
	return uint64(start * core.BytesPerElement), float32sToBytes(data[start:end])
}

func float32sToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func uniformsToBytes(u core.Uniforms) []byte {
	buf := make([]byte, UniformsSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(u.Time))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(u.Scale))
	return buf
}
