package gpuparticles

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is wrapped by every construction-time validation error.
var ErrInvalidConfig = errors.New("invalid particle config")

// Config holds the construction-time settings of a System.
type Config struct {
	MaxParticles   int     `yaml:"max_particles"`   // total budget across all pools
	ContainerCount int     `yaml:"container_count"` // number of pools
	RandomCount    int     `yaml:"random_count"`    // size of the shared random table
	RandomSeed     uint64  `yaml:"random_seed"`
	PixelRatio     float32 `yaml:"pixel_ratio"` // multiplies spawned sizes
	PointScale     float32 `yaml:"point_scale"` // uScale uniform
}

// DefaultConfig returns the embedded defaults.
func DefaultConfig() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		panic(fmt.Sprintf("gpuparticles: parsing embedded defaults: %v", err))
	}
	return cfg
}

// LoadConfig reads a YAML file over the embedded defaults. Fields missing
// from the file keep their default. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field, including the random table size.
func (c Config) Validate() error {
	if err := c.validateLayout(); err != nil {
		return err
	}
	if c.RandomCount < 2 {
		return fmt.Errorf("%w: random_count must be at least 2, got %d", ErrInvalidConfig, c.RandomCount)
	}
	return nil
}

// validateLayout checks the fields that partition the particle budget.
func (c Config) validateLayout() error {
	if c.MaxParticles <= 0 {
		return fmt.Errorf("%w: max_particles must be positive, got %d", ErrInvalidConfig, c.MaxParticles)
	}
	if c.ContainerCount <= 0 {
		return fmt.Errorf("%w: container_count must be positive, got %d", ErrInvalidConfig, c.ContainerCount)
	}
	return nil
}

// PerContainerCapacity is ceil(MaxParticles / ContainerCount).
func (c Config) PerContainerCapacity() int {
	if c.ContainerCount <= 0 {
		return 0
	}
	return (c.MaxParticles + c.ContainerCount - 1) / c.ContainerCount
}

// WriteYAML writes the configuration to a YAML file.
func (c Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
