package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"TradeSentinel/internal/model"
)

func countRows(t *testing.T, r *SQLiteRecorder, table string) int {
	t.Helper()
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestSQLiteRecorder(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history", "sentinel.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	defer r.Close()

	now := time.Now()
	intent := model.OrderIntent{
		CycleID: "c1", Symbol: "A", Side: model.SideBuy, Quantity: 10,
		ReferencePrice: 99.9, Score: 3.5, Tags: []string{"divergence_mild"}, CreatedAt: now,
	}
	sig := &model.SignalResult{
		Symbol:         "A",
		Outcome:        model.OutcomeOK,
		BelowMA20:      true,
		Divergence:     model.Divergence{Pct: -0.14, Known: true, Category: model.DivergenceMild},
		CompositeScore: 3.5,
	}
	dec := model.EligibilityDecision{Allowed: true, Reason: "purchase permitted"}

	steps := []func() error{
		func() error {
			return r.RecordEvaluation(&model.Evaluation{CycleID: "c1", Symbol: "A", Signal: sig, GatePassed: true, Decision: &dec, Intent: &intent})
		},
		func() error {
			return r.RecordEvaluation(&model.Evaluation{CycleID: "c1", Symbol: "B", Skip: "market data: timeout"})
		},
		func() error { return r.RecordIntent(&intent) },
		func() error {
			return r.RecordFill(&model.Fill{Intent: intent, OrderID: "o1", Quantity: 10, Price: 99.9, FilledAt: now})
		},
		func() error {
			return r.RecordCycle(&CycleEvent{CycleID: "c1", StartedAt: now, Duration: time.Second, Symbols: 2, Intents: 1, Fills: 1, Errors: 1, Source: "cli"})
		},
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	for table, want := range map[string]int{"evaluations": 2, "intents": 1, "fills": 1, "cycles": 1} {
		if got := countRows(t, r, table); got != want {
			t.Errorf("%s rows = %d, want %d", table, got, want)
		}
	}

	var category string
	var pct float64
	if err := r.db.QueryRow(`SELECT divergence_category, divergence_pct FROM evaluations WHERE symbol = 'A'`).Scan(&category, &pct); err != nil {
		t.Fatal(err)
	}
	if category != "mild" || pct != -0.14 {
		t.Errorf("divergence = %s/%v", category, pct)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordEvaluation(&model.Evaluation{}); err != nil {
		t.Error(err)
	}
	if err := r.Close(); err != nil {
		t.Error(err)
	}
}
