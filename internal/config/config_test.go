package config

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/san-kum/grnsim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Circuit != "counter" {
		t.Errorf("expected circuit counter, got %s", cfg.Circuit)
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
	if got := len(cfg.ClockPattern()); got != 2*DefaultCycles {
		t.Errorf("expected %d clock segments, got %d", 2*DefaultCycles, got)
	}
	if cfg.IntegrationConfig() != dynamo.DefaultConfig() {
		t.Error("unset tolerances should fall back to the solver defaults")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Circuit = "flipflop"
	cfg.RelTol = 1e-4
	cfg.MaxSteps = 5000
	cfg.Inputs = map[string][]float64{"D": {100, 0}}
	cfg.Params.Cell.Kds = []float64{2, 5}

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("round trip changed the config:\n got %+v\nwant %+v", loaded, cfg)
	}
	ic := loaded.IntegrationConfig()
	if ic.RelTol != 1e-4 || ic.MaxSteps != 5000 || ic.AbsTol != dynamo.DefaultConfig().AbsTol {
		t.Errorf("unexpected integration config %+v", ic)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestClockPattern(t *testing.T) {
	tests := []struct {
		name     string
		clock    ClockConfig
		expected []float64
	}{
		{"explicit", ClockConfig{Values: []float64{0, 50, 0}}, []float64{0, 50, 0}},
		{"square", ClockConfig{Cycles: 2, High: 10}, []float64{0, 10, 0, 10}},
		{"square with lead", ClockConfig{Cycles: 1, Lead: 2}, []float64{0, 0, 0, 100}},
		{"pulses", ClockConfig{Cycles: 2, Period: 3, Lead: 1, High: 1}, []float64{0, 1, 0, 0, 1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Clock = tt.clock
			if got := cfg.ClockPattern(); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no circuit", func(c *Config) { c.Circuit = "" }},
		{"zero duration", func(c *Config) { c.Duration = 0 }},
		{"one sample", func(c *Config) { c.Samples = 1 }},
		{"negative depth", func(c *Config) { c.Depth = -1 }},
		{"empty clock", func(c *Config) { c.Clock = ClockConfig{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("counter", "johnson2")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Depth != 2 || cfg.Circuit != "counter" {
		t.Errorf("unexpected preset %+v", cfg)
	}
	if cfg.Optimize.Population == 0 {
		t.Error("preset should inherit optimizer defaults")
	}

	latch := GetPreset("flipflop", "latch")
	latch.Inputs["D"][0] = -1
	if Presets["flipflop"]["latch"].Inputs["D"][0] != 100 {
		t.Error("GetPreset must not share input slices with the preset table")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("counter", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "toggle")
	if cfg != nil {
		t.Error("expected nil for nonexistent circuit")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("counter")
	if len(presets) == 0 {
		t.Error("expected presets for counter")
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}

	for circuit := range Presets {
		for _, name := range ListPresets(circuit) {
			if err := GetPreset(circuit, name).Validate(); err != nil {
				t.Errorf("%s/%s: %v", circuit, name, err)
			}
		}
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent circuit")
	}
}
