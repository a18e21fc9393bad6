package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/grnsim/internal/circuits"
	"github.com/san-kum/grnsim/internal/dynamo"
	"github.com/san-kum/grnsim/internal/optim"
)

const (
	DefaultCircuit    = "counter"
	DefaultIntegrator = "rosenbrock"
	DefaultDepth      = 3
	DefaultDuration   = 250.0
	DefaultSamples    = 251
	DefaultCycles     = 10
)

type Config struct {
	Circuit    string                 `yaml:"circuit"`
	Depth      int                    `yaml:"depth"`
	Integrator string                 `yaml:"integrator"`
	Duration   float64                `yaml:"duration"`
	Samples    int                    `yaml:"samples"`
	RelTol     float64                `yaml:"rtol,omitempty"`
	AbsTol     float64                `yaml:"atol,omitempty"`
	MaxSteps   int                    `yaml:"max_steps,omitempty"`
	Seed       int64                  `yaml:"seed"`
	Clock      ClockConfig            `yaml:"clock"`
	Inputs     map[string][]float64   `yaml:"inputs,omitempty"`
	Params     circuits.CounterParams `yaml:"params"`
	Optimize   OptimizeConfig         `yaml:"optimize"`
}

// ClockConfig describes the clock input, one value per segment. Explicit
// Values win; otherwise Period 0 or 2 gives a square wave of Cycles periods
// and any other Period gives Cycles pulses after Lead low segments.
type ClockConfig struct {
	Values []float64 `yaml:"values,omitempty"`
	Cycles int       `yaml:"cycles,omitempty"`
	High   float64   `yaml:"high,omitempty"`
	Lead   int       `yaml:"lead,omitempty"`
	Period int       `yaml:"period,omitempty"`
}

type OptimizeConfig struct {
	Generations         int          `yaml:"generations"`
	Population          int          `yaml:"population"`
	ParentsMating       int          `yaml:"parents_mating"`
	KeepParents         int          `yaml:"keep_parents"`
	MutationProbability float64      `yaml:"mutation_probability"`
	Workers             int          `yaml:"workers,omitempty"`
	Layout              optim.Layout `yaml:"layout"`
	Pools               optim.Pools  `yaml:"pools"`
}

func DefaultConfig() *Config {
	ga := optim.DefaultGAConfig()
	return &Config{
		Circuit:    DefaultCircuit,
		Depth:      DefaultDepth,
		Integrator: DefaultIntegrator,
		Duration:   DefaultDuration,
		Samples:    DefaultSamples,
		Seed:       ga.Seed,
		Clock:      ClockConfig{Cycles: DefaultCycles, High: circuits.DefaultHigh},
		Optimize: OptimizeConfig{
			Generations:         ga.Generations,
			Population:          ga.Population,
			ParentsMating:       ga.ParentsMating,
			KeepParents:         ga.KeepParents,
			MutationProbability: ga.MutationProbability,
			Layout:              optim.DefaultLayout(),
			Pools:               optim.DefaultPools(),
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Circuit == "" {
		return fmt.Errorf("config: circuit is required")
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("config: duration must be positive, got %g", c.Duration)
	}
	if c.Samples != 0 && c.Samples < 2 {
		return fmt.Errorf("config: samples must be at least 2, got %d", c.Samples)
	}
	if c.Depth < 0 {
		return fmt.Errorf("config: depth must be non-negative, got %d", c.Depth)
	}
	if len(c.ClockPattern()) == 0 {
		return fmt.Errorf("config: clock pattern is empty")
	}
	return nil
}

func (c *Config) High() float64 {
	if c.Clock.High > 0 {
		return c.Clock.High
	}
	return circuits.DefaultHigh
}

// ClockPattern returns the clock value of every segment.
func (c *Config) ClockPattern() []float64 {
	if len(c.Clock.Values) > 0 {
		return append([]float64(nil), c.Clock.Values...)
	}
	if c.Clock.Period == 0 || c.Clock.Period == 2 {
		return append(make([]float64, c.Clock.Lead), circuits.Clock(c.Clock.Cycles, c.High())...)
	}
	return circuits.Pulses(c.Clock.Lead, c.Clock.Period, c.Clock.Cycles, c.High())
}

// IntegrationConfig returns the solver settings, defaults filled in for every
// zero field.
func (c *Config) IntegrationConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	if c.RelTol > 0 {
		cfg.RelTol = c.RelTol
	}
	if c.AbsTol > 0 {
		cfg.AbsTol = c.AbsTol
	}
	if c.MaxSteps > 0 {
		cfg.MaxSteps = c.MaxSteps
	}
	return cfg
}

func (c *Config) GAConfig() optim.GAConfig {
	return optim.GAConfig{
		Generations:         c.Optimize.Generations,
		Population:          c.Optimize.Population,
		ParentsMating:       c.Optimize.ParentsMating,
		KeepParents:         c.Optimize.KeepParents,
		MutationProbability: c.Optimize.MutationProbability,
		Workers:             c.Optimize.Workers,
		Seed:                c.Seed,
	}
}

func (c *Config) Space() optim.Space {
	return optim.Space{Pools: c.Optimize.Pools, Layout: c.Optimize.Layout}
}
