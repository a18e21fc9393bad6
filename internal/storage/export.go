package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/grnsim/internal/sim"
)

type ExportData struct {
	Circuit    string             `json:"circuit"`
	Integrator string             `json:"integrator"`
	Duration   float64            `json:"duration"`
	Samples    int                `json:"samples"`
	Species    []string           `json:"species"`
	Boundaries []int              `json:"boundaries"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

func NewExportData(meta RunMetadata, tr *sim.Trajectory) ExportData {
	return ExportData{
		Circuit:    meta.Circuit,
		Integrator: meta.Integrator,
		Duration:   meta.Duration,
		Samples:    tr.Len(),
		Species:    tr.Species,
		Boundaries: tr.Boundaries,
		Times:      tr.Times,
		States:     tr.Rows(),
		Metrics:    meta.Metrics,
	}
}

// EncodeJSON writes the run as indented JSON.
func EncodeJSON(w io.Writer, meta RunMetadata, tr *sim.Trajectory) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, tr))
}

func ExportJSON(path string, meta RunMetadata, tr *sim.Trajectory) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return EncodeJSON(file, meta, tr)
}
