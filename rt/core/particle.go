package core

import "github.com/go-gl/mathgl/mgl32"

// AttributeID names one column of the particle attribute record.
// The order matches the shader's vertex attribute locations.
type AttributeID uint8

const (
	AttrPositionStart AttributeID = iota
	AttrStartTime
	AttrVelocity
	AttrTurbulence
	AttrColor
	AttrSize
	AttrLifeTime

	AttributeCount = int(AttrLifeTime) + 1
)

// BytesPerElement is the size of one float32 attribute element.
const BytesPerElement = 4

// MaxVelocity bounds the signed velocity representable by the [0,1] encoding.
const MaxVelocity = 2.0

var attributeNames = [AttributeCount]string{
	"positionStart",
	"startTime",
	"velocity",
	"turbulence",
	"color",
	"size",
	"lifeTime",
}

var attributeItemSizes = [AttributeCount]int{3, 1, 3, 1, 3, 1, 1}

// Attributes lists every attribute in location order.
func Attributes() []AttributeID {
	ids := make([]AttributeID, AttributeCount)
	for i := range ids {
		ids[i] = AttributeID(i)
	}
	return ids
}

// Name returns the shader-side attribute name.
func (a AttributeID) Name() string {
	if int(a) >= AttributeCount {
		return "unknown"
	}
	return attributeNames[a]
}

func (a AttributeID) String() string { return a.Name() }

// ItemSize is the number of float32 components per slot.
func (a AttributeID) ItemSize() int {
	if int(a) >= AttributeCount {
		return 0
	}
	return attributeItemSizes[a]
}

// AttributeBuffers holds one flat array per attribute for a fixed slot count.
// Arrays are allocated once and never resized.
type AttributeBuffers struct {
	capacity int
	data     [AttributeCount][]float32
}

func NewAttributeBuffers(capacity int) *AttributeBuffers {
	b := &AttributeBuffers{capacity: capacity}
	for i := range b.data {
		b.data[i] = make([]float32, capacity*attributeItemSizes[i])
	}
	return b
}

func (b *AttributeBuffers) Capacity() int { return b.capacity }

// Data returns the backing array of one attribute. Callers may read it for
// upload; writes should go through the Set helpers.
func (b *AttributeBuffers) Data(a AttributeID) []float32 {
	return b.data[a]
}

// Len returns the element count of one attribute array.
func (b *AttributeBuffers) Len(a AttributeID) int {
	return len(b.data[a])
}

// ByteLen returns the byte size of one attribute array.
func (b *AttributeBuffers) ByteLen(a AttributeID) int {
	return len(b.data[a]) * BytesPerElement
}

func (b *AttributeBuffers) SetVec3(a AttributeID, slot int, v mgl32.Vec3) {
	d := b.data[a]
	d[slot*3+0] = v[0]
	d[slot*3+1] = v[1]
	d[slot*3+2] = v[2]
}

func (b *AttributeBuffers) Vec3(a AttributeID, slot int) mgl32.Vec3 {
	d := b.data[a]
	return mgl32.Vec3{d[slot*3+0], d[slot*3+1], d[slot*3+2]}
}

func (b *AttributeBuffers) SetScalar(a AttributeID, slot int, v float32) {
	b.data[a][slot] = v
}

func (b *AttributeBuffers) Scalar(a AttributeID, slot int) float32 {
	return b.data[a][slot]
}

// AttributeSource is a pool as seen by an upload collaborator.
type AttributeSource interface {
	Id() string
	Buffers() *AttributeBuffers
}

// EncodeVelocity maps a signed component in [-MaxVelocity, MaxVelocity] to
// [0,1]. Values outside the range are clamped.
func EncodeVelocity(v float32) float32 {
	return mgl32.Clamp((v-(-MaxVelocity))/(MaxVelocity-(-MaxVelocity)), 0, 1)
}

// DecodeVelocity is the inverse affine transform applied by the shader.
func DecodeVelocity(e float32) float32 {
	return e*(2*MaxVelocity) - MaxVelocity
}

// Uniforms are the scalar shader inputs shared by every pool of a system.
// Layout matches `struct Uniforms { uTime: f32, uScale: f32 }` padded to 16 bytes.
type Uniforms struct {
	Time  float32
	Scale float32
}
