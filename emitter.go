package gpuparticles

// Spawner accepts particles without reporting where they landed. Both Pool
// and System implement it.
type Spawner interface {
	SpawnParticle(params SpawnParams)
}

// Emitter spawns particles at a steady rate, carrying the fractional part
// between frames.
type Emitter struct {
	Params    SpawnParams
	SpawnRate float32 // particles per second
	Enabled   bool

	spawnAcc float32
}

func NewEmitter(params SpawnParams, rate float32) *Emitter {
	return &Emitter{
		Params:    params,
		SpawnRate: rate,
		Enabled:   true,
	}
}

// Emit spawns the particles due for dt seconds and returns how many it spawned.
func (e *Emitter) Emit(target Spawner, dt float32) int {
	if !e.Enabled || e.SpawnRate <= 0 || dt <= 0 {
		return 0
	}
	e.spawnAcc += e.SpawnRate * dt
	n := int(e.spawnAcc)
	if n <= 0 {
		return 0
	}
	e.spawnAcc -= float32(n)
	for i := 0; i < n; i++ {
		target.SpawnParticle(e.Params)
	}
	return n
}

// Reset drops any accumulated fraction.
func (e *Emitter) Reset() { e.spawnAcc = 0 }
