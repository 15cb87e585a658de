package scheduler

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"TradeSentinel/internal/broker"
	"TradeSentinel/internal/engine"
	"TradeSentinel/internal/model"
	"TradeSentinel/internal/position"
	"TradeSentinel/internal/recorder"
)

type fakeDecider struct {
	gotHoldings map[string]int
	result      func(cycleID string) *engine.Result
}

func (f *fakeDecider) Evaluate(_ context.Context, cycleID string, _ []string, holdings map[string]int) *engine.Result {
	f.gotHoldings = holdings
	return f.result(cycleID)
}

type captureNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureNotifier) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, text)
	return nil
}

func (c *captureNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	return c.Send(text)
}

type countingRecorder struct {
	recorder.NoopRecorder
	evaluations, intents, fills, cycles int
}

func (r *countingRecorder) RecordEvaluation(*model.Evaluation) error { r.evaluations++; return nil }
func (r *countingRecorder) RecordIntent(*model.OrderIntent) error    { r.intents++; return nil }
func (r *countingRecorder) RecordFill(*model.Fill) error             { r.fills++; return nil }
func (r *countingRecorder) RecordCycle(*recorder.CycleEvent) error   { r.cycles++; return nil }

func newTestScheduler(t *testing.T, dec Decider) (*Scheduler, *position.Policy, *captureNotifier, *countingRecorder) {
	t.Helper()
	dir := t.TempDir()
	store, err := position.NewJSONStore(filepath.Join(dir, "positions.json"))
	if err != nil {
		t.Fatal(err)
	}
	trades, err := position.NewFileTradeLog(filepath.Join(dir, "trades.json"))
	if err != nil {
		t.Fatal(err)
	}
	pol := position.NewPolicy(position.DefaultLimits(), store, trades, log.New(io.Discard, "", 0))
	n := &captureNotifier{}
	rec := &countingRecorder{}
	ex := broker.NewPaperExecutor("test", pol)
	s := NewScheduler(context.Background(), dec, ex, pol, n, rec, []string{"A", "C"})
	return s, pol, n, rec
}

func cycleResult(cycleID string) *engine.Result {
	now := time.Now()
	buy := model.OrderIntent{CycleID: cycleID, Symbol: "A", Side: model.SideBuy, Quantity: 10, ReferencePrice: 100, Score: 3.5, Tags: []string{"golden_cross"}, CreatedAt: now}
	sell := model.OrderIntent{CycleID: cycleID, Symbol: "B", Side: model.SideSell, Quantity: 5, ReferencePrice: 50, Score: 5, Reason: "stop_loss", CreatedAt: now}
	return &engine.Result{
		CycleID: cycleID,
		Intents: []model.OrderIntent{buy, sell},
		Evaluations: []model.Evaluation{
			{CycleID: cycleID, Symbol: "A", Signal: &model.SignalResult{}, GatePassed: true, Intent: &buy},
			{CycleID: cycleID, Symbol: "B", HeldQty: 5, Signal: &model.SignalResult{}, Intent: &sell},
			{CycleID: cycleID, Symbol: "C", Skip: "market data: timeout"},
		},
	}
}

func TestRunCycleExecutesAndRecords(t *testing.T) {
	dec := &fakeDecider{result: cycleResult}
	s, pol, n, rec := newTestScheduler(t, dec)

	report, err := s.RunCycle(context.Background(), "cron")
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if len(report.Fills) != 2 {
		t.Fatalf("fills = %+v", report.Fills)
	}
	if len(report.Failures) != 1 || !strings.HasPrefix(report.Failures[0], "C: market data") {
		t.Errorf("failures = %v", report.Failures)
	}
	if len(dec.gotHoldings) != 0 {
		t.Errorf("holdings passed to engine = %v, want empty", dec.gotHoldings)
	}

	sum, err := pol.Summary("A")
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalQuantity != 10 || sum.PurchaseCount != 1 || sum.AverageEntry != 100 {
		t.Errorf("A summary = %+v", sum)
	}
	trades, _ := pol.TodayTrades()
	if len(trades) != 2 {
		t.Errorf("trade log = %+v", trades)
	}

	if rec.evaluations != 3 || rec.intents != 2 || rec.fills != 2 || rec.cycles != 1 {
		t.Errorf("recorder counts = %+v", rec)
	}
	if len(n.msgs) != 1 || !strings.Contains(n.msgs[0], "BUY A x10 @ 100.00") {
		t.Errorf("notifications = %v", n.msgs)
	}

	// The next cycle sees the paper holdings recorded by the first.
	dec.result = func(cycleID string) *engine.Result { return &engine.Result{CycleID: cycleID} }
	if _, err := s.RunCycle(context.Background(), "cron"); err != nil {
		t.Fatal(err)
	}
	if dec.gotHoldings["A"] != 10 {
		t.Errorf("holdings = %v, want A:10", dec.gotHoldings)
	}
	if len(n.msgs) != 1 {
		t.Errorf("quiet cron cycle should not notify, got %d messages", len(n.msgs))
	}
}

func TestRunCycleRefusesOverlap(t *testing.T) {
	s, _, _, _ := newTestScheduler(t, &fakeDecider{result: cycleResult})
	s.running.Lock()
	defer s.running.Unlock()
	if _, err := s.RunCycle(context.Background(), "command"); err == nil {
		t.Error("expected overlap error")
	}
}

func TestHandleCommand(t *testing.T) {
	s, pol, n, _ := newTestScheduler(t, &fakeDecider{result: func(id string) *engine.Result { return &engine.Result{CycleID: id} }})
	if err := pol.RecordPurchase("A", 10, 100, "test"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		cmd  string
		want string
	}{
		{"/positions", "A: 10 shares"},
		{"/today", "BUY A x10 @ 100.00"},
		{"/summary", "Buys: 1 | Sells: 0"},
		{"hello", "Available commands"},
	}
	for _, tt := range tests {
		if got := s.HandleCommand(context.Background(), tt.cmd); !strings.Contains(got, tt.want) {
			t.Errorf("HandleCommand(%q) = %q, want substring %q", tt.cmd, got, tt.want)
		}
	}

	if got := s.HandleCommand(context.Background(), "/run"); got != "" {
		t.Errorf("/run reply = %q, want empty", got)
	}
	if len(n.msgs) != 1 || !strings.Contains(n.msgs[0], "No orders this cycle.") {
		t.Errorf("manual run notifications = %v", n.msgs)
	}
}

func TestRegisterAll(t *testing.T) {
	s, _, _, _ := newTestScheduler(t, &fakeDecider{result: cycleResult})
	if err := s.RegisterAll("0 */30 9-15 * * 1-5", "0 40 15 * * 1-5"); err != nil {
		t.Errorf("RegisterAll: %v", err)
	}
	if len(s.Cron.Entries()) != 2 {
		t.Errorf("entries = %d, want 2", len(s.Cron.Entries()))
	}
	if err := s.RegisterAll("not a cron", "0 40 15 * * 1-5"); err == nil {
		t.Error("expected error for invalid cron spec")
	}
}
