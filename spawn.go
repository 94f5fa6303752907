package gpuparticles

import "github.com/go-gl/mathgl/mgl32"

// SpawnParams describes one particle. Start from DefaultSpawnParams; the zero
// value is valid but yields black, zero-sized, zero-lifetime particles.
type SpawnParams struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Color    mgl32.Vec3 // RGB in 0..1

	// Multipliers applied to draws from the shared random stream.
	PositionRandomness float32
	VelocityRandomness float32
	ColorRandomness    float32
	SizeRandomness     float32

	Turbulence float32
	Lifetime   float32 // seconds
	Size       float32 // before pixel-ratio scaling

	// SmoothPosition back-projects the start along the velocity to hide
	// popping when spawning from a moving source.
	SmoothPosition bool
}

func DefaultSpawnParams() SpawnParams {
	return SpawnParams{
		Color:           mgl32.Vec3{1, 1, 1},
		ColorRandomness: 1,
		Turbulence:      1,
		Lifetime:        5,
		Size:            10,
	}
}

// ColorFromHex converts 0xRRGGBB to a 0..1 RGB vector.
func ColorFromHex(hex uint32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32((hex>>16)&0xff) / 255,
		float32((hex>>8)&0xff) / 255,
		float32(hex&0xff) / 255,
	}
}
