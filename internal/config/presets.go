package config

import (
	"sort"

	"github.com/san-kum/grnsim/internal/circuits"
)

var Presets = map[string]map[string]*Config{
	"inverter": {
		"pulse": {
			Circuit: "inverter", Integrator: "rosenbrock", Duration: 250, Samples: 251,
			Clock: ClockConfig{Cycles: 1, High: 100},
		},
		"fast": {
			Circuit: "inverter", Integrator: "rk45", Duration: 50, Samples: 101,
			Clock: ClockConfig{Cycles: 4, High: 100},
		},
	},
	"flipflop": {
		"latch": {
			Circuit: "flipflop", Integrator: "rosenbrock", Duration: 250, Samples: 251,
			Clock:  ClockConfig{Cycles: 4, High: 100},
			Inputs: map[string][]float64{"D": {100, 100, 0, 0, 0, 0, 100, 100}},
		},
		"hold": {
			Circuit: "flipflop", Integrator: "rosenbrock", Duration: 250, Samples: 251,
			Clock:  ClockConfig{Cycles: 3, High: 100},
			Inputs: map[string][]float64{"D": {100, 100, 0, 100, 0, 100}},
		},
	},
	"counter": {
		"toggle": {
			Circuit: "counter", Depth: 1, Integrator: "rosenbrock", Duration: 250, Samples: 251,
			Clock: ClockConfig{Cycles: 4, High: 100},
		},
		"johnson2": {
			Circuit: "counter", Depth: 2, Integrator: "rosenbrock", Duration: 250, Samples: 251,
			Clock: ClockConfig{Cycles: 6, High: 100},
		},
		"johnson3": {
			Circuit: "counter", Depth: 3, Integrator: "rosenbrock", Duration: 250, Samples: 251,
			Clock: ClockConfig{Cycles: 10, High: 100},
		},
		"pulses": {
			Circuit: "counter", Depth: 1, Integrator: "rosenbrock", Duration: 250, Samples: 251,
			Clock: ClockConfig{Lead: 5, Period: 4, Cycles: 4, High: 100},
		},
		"slow-decoder": {
			Circuit: "counter", Depth: 2, Integrator: "rosenbrock", Duration: 250, Samples: 251,
			Clock:  ClockConfig{Cycles: 6, High: 100},
			Params: circuits.CounterParams{InstrDecays: []float64{0.05}, ConnNs: []float64{2}},
		},
	},
}

// GetPreset returns a copy of the named preset with defaults filled in for
// every setting the preset leaves out.
func GetPreset(circuit, preset string) *Config {
	circuitPresets, ok := Presets[circuit]
	if !ok {
		return nil
	}
	p, ok := circuitPresets[preset]
	if !ok {
		return nil
	}

	cfg := DefaultConfig()
	cfg.Circuit = p.Circuit
	cfg.Depth = p.Depth
	cfg.Integrator = p.Integrator
	cfg.Duration = p.Duration
	cfg.Samples = p.Samples
	cfg.Clock = p.Clock
	cfg.Clock.Values = append([]float64(nil), p.Clock.Values...)
	cfg.Params = p.Params
	if len(p.Inputs) > 0 {
		cfg.Inputs = make(map[string][]float64, len(p.Inputs))
		for name, values := range p.Inputs {
			cfg.Inputs[name] = append([]float64(nil), values...)
		}
	}
	return cfg
}

// ListPresets returns the preset names of circuit in lexical order.
func ListPresets(circuit string) []string {
	circuitPresets, ok := Presets[circuit]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(circuitPresets))
	for name := range circuitPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
