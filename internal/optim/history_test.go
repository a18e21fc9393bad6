package optim

import (
	"context"
	"math"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func openHistory(t *testing.T) *History {
	t.Helper()
	h := NewHistory(filepath.Join(t.TempDir(), "history.db"))
	if err := h.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	h := openHistory(t)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	trials := []Trial{
		{RunID: "a", Generation: 0, Fitness: -12.5, Genes: []int{1, 2, 3}, CreatedAt: created},
		{RunID: "a", Generation: 1, Fitness: -3, Genes: []int{0, 2, 3}, CreatedAt: created.Add(time.Second)},
		{RunID: "a", Generation: 1, Fitness: math.Inf(-1), Genes: []int{4, 4, 4}, CreatedAt: created.Add(2 * time.Second)},
		{ID: "fixed", RunID: "b", Generation: 0, Fitness: -1, Genes: []int{9}, CreatedAt: created.Add(time.Hour)},
	}
	for _, tr := range trials {
		if err := h.Record(ctx, tr); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := h.Best(ctx, "a", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 trials for run a, got %d", len(got))
	}
	if got[0].Fitness != -3 || !reflect.DeepEqual(got[0].Genes, []int{0, 2, 3}) || got[0].Generation != 1 {
		t.Errorf("unexpected best trial %+v", got[0])
	}
	if got[0].ID == "" || !got[0].CreatedAt.Equal(created.Add(time.Second)) {
		t.Errorf("id or timestamp not stored: %+v", got[0])
	}
	if !math.IsInf(got[2].Fitness, -1) {
		t.Errorf("failed trial should read back as -Inf, got %g", got[2].Fitness)
	}

	all, err := h.Best(ctx, "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].ID != "fixed" {
		t.Errorf("expected the fixed trial of run b, got %+v", all)
	}

	runs, err := h.Runs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].RunID != "b" || runs[1].RunID != "a" {
		t.Fatalf("unexpected runs %+v", runs)
	}
	if runs[1].Trials != 3 || runs[1].Generations != 1 || runs[1].Best != -3 {
		t.Errorf("unexpected summary %+v", runs[1])
	}
}

func TestHistoryRequiresInit(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "x.db"))
	if err := h.Record(context.Background(), Trial{RunID: "a"}); err == nil {
		t.Error("record on an uninitialized history should fail")
	}
	if err := NewHistory("").Init(context.Background()); err == nil {
		t.Error("empty path should fail")
	}
	if err := h.Close(); err != nil {
		t.Errorf("closing an unopened history: %v", err)
	}
}
