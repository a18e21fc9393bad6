package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/grnsim/internal/sim"
)

// ErrMalformedRun indicates a run directory whose files do not agree.
var ErrMalformedRun = errors.New("storage: malformed run")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Circuit    string             `json:"circuit"`
	Preset     string             `json:"preset,omitempty"`
	Depth      int                `json:"depth,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Duration   float64            `json:"duration"`
	Segments   int                `json:"segments"`
	Samples    int                `json:"samples"`
	Integrator string             `json:"integrator"`
	Species    []string           `json:"species"`
	Boundaries []int              `json:"boundaries"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// Save writes meta and tr into a new run directory and returns its ID. ID,
// Timestamp, Species, Boundaries, Segments and Samples are taken from tr when
// meta leaves them empty.
func (s *Store) Save(meta RunMetadata, tr *sim.Trajectory) (string, error) {
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%s", meta.Circuit, uuid.NewString()[:8])
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Species = tr.Species
	meta.Boundaries = tr.Boundaries
	meta.Segments = len(tr.Boundaries)
	meta.Samples = tr.Len()

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, tr); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// WriteCSV writes a time column followed by one column per species.
func WriteCSV(out io.Writer, tr *sim.Trajectory) error {
	w := csv.NewWriter(out)

	header := append([]string{"time"}, tr.Species...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i := 0; i < tr.Len(); i++ {
		row := []string{strconv.FormatFloat(tr.Times[i], 'g', -1, 64)}
		for _, val := range tr.Row(i) {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrajectory reads a saved run back into a trajectory.
func (s *Store) LoadTrajectory(runID string) (*sim.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s: empty states file", ErrMalformedRun, runID)
	}

	species := records[0][1:]
	if len(meta.Species) > 0 && len(meta.Species) != len(species) {
		return nil, fmt.Errorf("%w: %s: %d species in metadata, %d columns", ErrMalformedRun, runID, len(meta.Species), len(species))
	}

	rows := records[1:]
	times := make([]float64, len(rows))
	data := make([]float64, 0, len(rows)*len(species))
	for i, record := range rows {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: row %d: %v", ErrMalformedRun, runID, i+1, err)
		}
		times[i] = t
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: row %d: %v", ErrMalformedRun, runID, i+1, err)
			}
			data = append(data, val)
		}
	}

	tr := &sim.Trajectory{
		Species:    species,
		Times:      times,
		Boundaries: meta.Boundaries,
	}
	if len(rows) > 0 && len(species) > 0 {
		tr.States = mat.NewDense(len(rows), len(species), data)
	}
	return tr, nil
}

// Path returns the directory of a run.
func (s *Store) Path(runID string) string {
	return filepath.Join(s.baseDir, runID)
}
