package optim

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Trial is one evaluated genome of an optimization run.
type Trial struct {
	ID         string
	RunID      string
	Generation int
	Fitness    float64
	Genes      []int
	CreatedAt  time.Time
}

// RunSummary aggregates the trials of one run.
type RunSummary struct {
	RunID       string
	Trials      int
	Generations int
	Best        float64
	StartedAt   time.Time
}

// History persists trials in a SQLite database.
type History struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewHistory(path string) *History {
	return &History{path: path}
}

func (h *History) Init(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.path == "" {
		return errors.New("history path is required")
	}
	if h.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", h.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	h.db = db
	return nil
}

// Record stores t, filling in ID and CreatedAt when they are empty.
// Non-finite fitness values are stored as NULL and read back as -Inf.
func (h *History) Record(ctx context.Context, t Trial) error {
	db, err := h.getDB()
	if err != nil {
		return err
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	genes, err := json.Marshal(t.Genes)
	if err != nil {
		return err
	}
	fitness := sql.NullFloat64{Float64: t.Fitness, Valid: !math.IsInf(t.Fitness, 0) && !math.IsNaN(t.Fitness)}

	_, err = db.ExecContext(ctx, `
		INSERT INTO trials (id, run_id, generation, fitness, genes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.ID, t.RunID, t.Generation, fitness, string(genes), t.CreatedAt.UnixNano())
	return err
}

// Best returns the fittest trials of runID, best first. An empty runID
// searches every run; limit <= 0 returns all of them.
func (h *History) Best(ctx context.Context, runID string, limit int) ([]Trial, error) {
	db, err := h.getDB()
	if err != nil {
		return nil, err
	}

	query := `SELECT id, run_id, generation, fitness, genes, created_at FROM trials`
	var args []any
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY fitness IS NULL, fitness DESC, created_at ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trials []Trial
	for rows.Next() {
		var (
			t       Trial
			fitness sql.NullFloat64
			genes   string
			created int64
		)
		if err := rows.Scan(&t.ID, &t.RunID, &t.Generation, &fitness, &genes, &created); err != nil {
			return nil, err
		}
		t.Fitness = math.Inf(-1)
		if fitness.Valid {
			t.Fitness = fitness.Float64
		}
		if err := json.Unmarshal([]byte(genes), &t.Genes); err != nil {
			return nil, fmt.Errorf("decode trial %s: %w", t.ID, err)
		}
		t.CreatedAt = time.Unix(0, created).UTC()
		trials = append(trials, t)
	}
	return trials, rows.Err()
}

// Runs summarizes every recorded run, most recent first.
func (h *History) Runs(ctx context.Context) ([]RunSummary, error) {
	db, err := h.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT run_id, COUNT(*), MAX(generation), MAX(fitness), MIN(created_at)
		FROM trials
		GROUP BY run_id
		ORDER BY MIN(created_at) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			r       RunSummary
			best    sql.NullFloat64
			started int64
		)
		if err := rows.Scan(&r.RunID, &r.Trials, &r.Generations, &best, &started); err != nil {
			return nil, err
		}
		r.Best = math.Inf(-1)
		if best.Valid {
			r.Best = best.Float64
		}
		r.StartedAt = time.Unix(0, started).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	return err
}

func (h *History) getDB() (*sql.DB, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.db == nil {
		return nil, errors.New("history is not initialized")
	}
	return h.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS trials (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			fitness REAL,
			genes TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS trials_run ON trials (run_id, fitness);
	`)
	return err
}
