package config

import (
	"os"
	"path/filepath"
	"testing"
)

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoadEnvDefaults(t *testing.T) {
	unsetenv(t, "GRNSIM_DATA_DIR", "GRNSIM_HISTORY_DB", "GRNSIM_INTEGRATOR", "GRNSIM_WORKERS")

	e, err := LoadEnv()
	if err != nil {
		t.Fatal(err)
	}
	if e.DataDir != ".grnsim" {
		t.Errorf("expected default data dir, got %q", e.DataDir)
	}
	if e.HistoryPath() != filepath.Join(".grnsim", "history.db") {
		t.Errorf("unexpected history path %q", e.HistoryPath())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GRNSIM_DATA_DIR", "/tmp/runs")
	t.Setenv("GRNSIM_INTEGRATOR", "rk45")
	t.Setenv("GRNSIM_WORKERS", "3")
	t.Setenv("GRNSIM_HISTORY_DB", "/tmp/trials.db")

	e, err := LoadEnv()
	if err != nil {
		t.Fatal(err)
	}
	if e.DataDir != "/tmp/runs" || e.HistoryPath() != "/tmp/trials.db" {
		t.Errorf("unexpected env %+v", e)
	}

	cfg := DefaultConfig()
	e.Apply(cfg)
	if cfg.Integrator != "rk45" || cfg.Optimize.Workers != 3 {
		t.Errorf("overrides not applied: %s %d", cfg.Integrator, cfg.Optimize.Workers)
	}
}

func TestLoadEnvInvalid(t *testing.T) {
	t.Setenv("GRNSIM_WORKERS", "many")
	if _, err := LoadEnv(); err == nil {
		t.Error("expected a parse error")
	}
}
