// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all simulation configuration parameters.
type Config struct {
	Landscape  LandscapeConfig  `yaml:"landscape"`
	Population PopulationConfig `yaml:"population"`
	Agent      AgentConfig      `yaml:"agent"`
	Capacity   CapacityConfig   `yaml:"capacity"`
	Run        RunConfig        `yaml:"run"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// LandscapeConfig holds grid dimensions and regrowth behavior.
type LandscapeConfig struct {
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	RegrowthRate float64 `yaml:"regrowth_rate"` // resource replenished per cell per tick
}

// PopulationConfig holds initial population parameters.
type PopulationConfig struct {
	Initial int `yaml:"initial"` // requested agents; clamped to empty cells at placement
}

// Range is a closed [Min, Max] sampling interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// IntRange is a closed [Min, Max] integer sampling interval.
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// AgentConfig holds the sampling intervals for randomized agent attributes.
type AgentConfig struct {
	FieldOfView IntRange `yaml:"field_of_view"` // von Neumann radius
	Metabolism  Range    `yaml:"metabolism"`    // consumption per tick
	Endowment   Range    `yaml:"endowment"`     // initial wealth, doubles as fertility floor
	Lifespan    Range    `yaml:"lifespan"`      // age ceiling

	FertilityBegin     Range `yaml:"fertility_begin"`
	FertilityEndFemale Range `yaml:"fertility_end_female"`
	FertilityEndMale   Range `yaml:"fertility_end_male"`
}

// CapacityConfig selects and parameterizes the capacity field model.
type CapacityConfig struct {
	Model   string        `yaml:"model"` // "two_peak" or "simplex"
	TwoPeak TwoPeakConfig `yaml:"two_peak"`
	Simplex SimplexConfig `yaml:"simplex"`
}

// TwoPeakConfig parameterizes the default two-peak Gaussian field.
// Peaks and spreads are fractions of the grid bounds.
type TwoPeakConfig struct {
	Psi    float64    `yaml:"psi"` // shared amplitude
	Peak1  [2]float64 `yaml:"peak1"`
	Peak2  [2]float64 `yaml:"peak2"`
	ThetaX float64    `yaml:"theta_x"`
	ThetaY float64    `yaml:"theta_y"`
}

// SimplexConfig parameterizes the OpenSimplex capacity field.
type SimplexConfig struct {
	Frequency   float64 `yaml:"frequency"`    // noise frequency per cell
	MaxCapacity int     `yaml:"max_capacity"` // noise is scaled to [0, MaxCapacity]
}

// RunConfig holds run-length defaults overridable from the CLI.
type RunConfig struct {
	Ticks int `yaml:"ticks"` // tick budget
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	WindowTicks int `yaml:"window_ticks"` // ticks per stats window
	LogInterval int `yaml:"log_interval"` // ticks between population log lines
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports fatal configuration problems. Failures wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Landscape.Width <= 0 || c.Landscape.Height <= 0 {
		return fmt.Errorf("%w: landscape dimensions must be positive, got %dx%d",
			ErrInvalidConfig, c.Landscape.Width, c.Landscape.Height)
	}
	if c.Landscape.RegrowthRate < 0 {
		return fmt.Errorf("%w: regrowth rate must be non-negative, got %g",
			ErrInvalidConfig, c.Landscape.RegrowthRate)
	}
	if c.Population.Initial < 0 {
		return fmt.Errorf("%w: initial population must be non-negative, got %d",
			ErrInvalidConfig, c.Population.Initial)
	}
	if c.Agent.FieldOfView.Min < 1 || c.Agent.FieldOfView.Max < c.Agent.FieldOfView.Min {
		return fmt.Errorf("%w: field of view range [%d, %d] must satisfy 1 <= min <= max",
			ErrInvalidConfig, c.Agent.FieldOfView.Min, c.Agent.FieldOfView.Max)
	}
	if c.Agent.Metabolism.Min <= 0 {
		return fmt.Errorf("%w: metabolism must be positive, got min %g",
			ErrInvalidConfig, c.Agent.Metabolism.Min)
	}
	if c.Agent.Lifespan.Min <= 0 {
		return fmt.Errorf("%w: lifespan must be positive, got min %g",
			ErrInvalidConfig, c.Agent.Lifespan.Min)
	}
	for _, r := range []struct {
		name string
		rng  Range
	}{
		{"metabolism", c.Agent.Metabolism},
		{"endowment", c.Agent.Endowment},
		{"lifespan", c.Agent.Lifespan},
		{"fertility_begin", c.Agent.FertilityBegin},
		{"fertility_end_female", c.Agent.FertilityEndFemale},
		{"fertility_end_male", c.Agent.FertilityEndMale},
	} {
		if r.rng.Max < r.rng.Min {
			return fmt.Errorf("%w: %s range [%g, %g] is inverted",
				ErrInvalidConfig, r.name, r.rng.Min, r.rng.Max)
		}
	}
	switch c.Capacity.Model {
	case "two_peak", "simplex":
	default:
		return fmt.Errorf("%w: unknown capacity model %q", ErrInvalidConfig, c.Capacity.Model)
	}
	if c.Run.Ticks <= 0 {
		return fmt.Errorf("%w: tick budget must be positive, got %d",
			ErrInvalidConfig, c.Run.Ticks)
	}
	if c.Telemetry.WindowTicks < 1 {
		return fmt.Errorf("%w: telemetry window must be at least one tick, got %d",
			ErrInvalidConfig, c.Telemetry.WindowTicks)
	}
	if c.Telemetry.LogInterval < 1 {
		return fmt.Errorf("%w: log interval must be at least one tick, got %d",
			ErrInvalidConfig, c.Telemetry.LogInterval)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
