package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Env holds the settings read from the environment.
type Env struct {
	DataDir    string `env:"GRNSIM_DATA_DIR" envDefault:".grnsim"`
	Integrator string `env:"GRNSIM_INTEGRATOR"`
	Workers    int    `env:"GRNSIM_WORKERS"`
	HistoryDB  string `env:"GRNSIM_HISTORY_DB"`
}

// ParseEnv populates target from environment variables using env tags.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}

// HistoryPath is the trial database, by default inside the data directory.
func (e Env) HistoryPath() string {
	if e.HistoryDB != "" {
		return e.HistoryDB
	}
	return filepath.Join(e.DataDir, "history.db")
}

// Apply overrides the fields of cfg that are set in the environment.
func (e Env) Apply(cfg *Config) {
	if e.Integrator != "" {
		cfg.Integrator = e.Integrator
	}
	if e.Workers > 0 {
		cfg.Optimize.Workers = e.Workers
	}
}
