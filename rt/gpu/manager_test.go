package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	gpuparticles "github.com/gekko3d/gpuparticles"
	"github.com/gekko3d/gpuparticles/rt/core"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ gpuparticles.Uploader     = (*BufferManager)(nil)
	_ gpuparticles.PoolReleaser = (*BufferManager)(nil)
)

func readFloat(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}

func TestRangePayloadContiguous(t *testing.T) {
	bufs := core.NewAttributeBuffers(4)
	bufs.SetVec3(core.AttrColor, 1, [3]float32{0.1, 0.2, 0.3})
	bufs.SetVec3(core.AttrColor, 2, [3]float32{0.4, 0.5, 0.6})

	offset, payload := rangePayload(bufs.Data(core.AttrColor), core.SlotRange(core.AttrColor, 1, 2))
	assert.Equal(t, uint64(12), offset)
	require.Len(t, payload, 6*4)
	assert.Equal(t, float32(0.1), readFloat(payload, 0))
	assert.Equal(t, float32(0.6), readFloat(payload, 5))
}

func TestRangePayloadWhole(t *testing.T) {
	bufs := core.NewAttributeBuffers(5)
	bufs.SetScalar(core.AttrSize, 4, 9)

	offset, payload := rangePayload(bufs.Data(core.AttrSize), core.WholeRange(core.AttrSize, 5))
	assert.Equal(t, uint64(0), offset)
	require.Len(t, payload, 5*4)
	assert.Equal(t, float32(9), readFloat(payload, 4))
}

func TestRangePayloadClipped(t *testing.T) {
	data := make([]float32, 3)
	offset, payload := rangePayload(data, core.DirtyRange{Attribute: core.AttrSize, Offset: 2, Count: 10})
	assert.Equal(t, uint64(8), offset)
	assert.Len(t, payload, 4)

	_, payload = rangePayload(data, core.DirtyRange{Attribute: core.AttrSize, Offset: 5, Count: 1})
	assert.Nil(t, payload)
}

func TestUniformsToBytes(t *testing.T) {
	b := uniformsToBytes(core.Uniforms{Time: 1.5, Scale: 2})
	require.Len(t, b, UniformsSize)
	assert.Equal(t, float32(1.5), readFloat(b, 0))
	assert.Equal(t, float32(2), readFloat(b, 1))
}

func TestAlignSize(t *testing.T) {
	assert.Equal(t, uint64(0), alignSize(0))
	assert.Equal(t, uint64(4), alignSize(1))
	assert.Equal(t, uint64(12), alignSize(12))
	assert.Equal(t, uint64(16), alignSize(13))
}

func TestVertexBufferLayouts(t *testing.T) {
	layouts := VertexBufferLayouts()
	require.Len(t, layouts, core.AttributeCount)

	pos := layouts[core.AttrPositionStart]
	assert.Equal(t, uint64(12), pos.ArrayStride)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, pos.Attributes[0].Format)
	assert.Equal(t, uint32(0), pos.Attributes[0].ShaderLocation)

	life := layouts[core.AttrLifeTime]
	assert.Equal(t, uint64(4), life.ArrayStride)
	assert.Equal(t, wgpu.VertexFormatFloat32, life.Attributes[0].Format)
	assert.Equal(t, uint32(core.AttrLifeTime), life.Attributes[0].ShaderLocation)
}

func TestBufferManagerWithoutDevice(t *testing.T) {
	m := NewBufferManager(nil)
	assert.Nil(t, m.AttributeBuffer("missing", core.AttrSize))
	assert.NoError(t, m.UploadAttributes(fakeSource{}, nil))
	m.ReleasePool("missing")
	m.Release()
}

type fakeSource struct{}

func (fakeSource) Id() string                      { return "fake" }
func (fakeSource) Buffers() *core.AttributeBuffers { return core.NewAttributeBuffers(1) }

func TestNeedsCreate(t *testing.T) {
	assert.True(t, needsCreate(0, 16), "missing buffer")
	assert.True(t, needsCreate(12, 16), "too small")
	assert.False(t, needsCreate(16, 16))
	assert.False(t, needsCreate(64, 16))
}

func TestAttributePayloadExistingBufferSendsOnlyRange(t *testing.T) {
	bufs := core.NewAttributeBuffers(100000)
	bufs.SetVec3(core.AttrVelocity, 500, [3]float32{0.1, 0.2, 0.3})
	r := core.SlotRange(core.AttrVelocity, 500, 1)

	offset, payload := attributePayload(bufs.Data(core.AttrVelocity), r, false)
	assert.Equal(t, uint64(500*3*4), offset)
	require.Len(t, payload, 3*4)
	assert.Equal(t, float32(0.1), readFloat(payload, 0))
	assert.Equal(t, float32(0.3), readFloat(payload, 2))
}

func TestAttributePayloadNewBufferSendsWholeArray(t *testing.T) {
	bufs := core.NewAttributeBuffers(8)
	bufs.SetScalar(core.AttrSize, 7, 5)
	r := core.SlotRange(core.AttrSize, 2, 1)

	offset, payload := attributePayload(bufs.Data(core.AttrSize), r, true)
	assert.Equal(t, uint64(0), offset)
	require.Len(t, payload, bufs.ByteLen(core.AttrSize))
	assert.Equal(t, float32(5), readFloat(payload, 7))
}
