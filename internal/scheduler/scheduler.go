package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"TradeSentinel/internal/broker"
	"TradeSentinel/internal/engine"
	"TradeSentinel/internal/model"
	"TradeSentinel/internal/notifier"
	"TradeSentinel/internal/recorder"
)

// Decider produces order intents for one cycle.
type Decider interface {
	Evaluate(ctx context.Context, cycleID string, candidates []string, holdings map[string]int) *engine.Result
}

// Ledger records executions and serves position reports.
type Ledger interface {
	RecordPurchase(symbol string, qty int, price float64, strategy string) error
	RecordSale(symbol string, qty int, price float64, reason string) error
	Summaries() ([]model.PositionSummary, error)
	TodayTrades() ([]model.TradeLogEntry, error)
}

// CycleReport is what one cycle did.
type CycleReport struct {
	CycleID  string
	Result   *engine.Result
	Fills    []model.Fill
	Failures []string
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   Decider
	Executor broker.Executor
	Ledger   Ledger
	Notifier notifier.Notifier
	Recorder recorder.Recorder
	Symbols  []string
	Ctx      context.Context

	running sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, eng Decider, ex broker.Executor, ledger Ledger, n notifier.Notifier, rec recorder.Recorder, symbols []string) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Engine:   eng,
		Executor: ex,
		Ledger:   ledger,
		Notifier: n,
		Recorder: rec,
		Symbols:  symbols,
		Ctx:      ctx,
	}
}

// RegisterAll registers the evaluation cycle and the daily summary.
func (s *Scheduler) RegisterAll(cycleCron, summaryCron string) error {
	if _, err := s.Cron.AddFunc(cycleCron, func() { s.cycleTask("cron") }); err != nil {
		return fmt.Errorf("register cycle task: %w", err)
	}
	if _, err := s.Cron.AddFunc(summaryCron, s.summaryTask); err != nil {
		return fmt.Errorf("register summary task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) cycleTask(source string) {
	if _, err := s.RunCycle(s.Ctx, source); err != nil {
		log.Printf("[ERROR] cycle: %v", err)
	}
}

// RunCycle evaluates every symbol, executes the intents and records the fills.
// Overlapping cycles are refused.
func (s *Scheduler) RunCycle(ctx context.Context, source string) (*CycleReport, error) {
	if !s.running.TryLock() {
		return nil, fmt.Errorf("previous cycle still running")
	}
	defer s.running.Unlock()

	started := time.Now()
	report := &CycleReport{CycleID: uuid.NewString()}
	log.Printf("[INFO] running cycle %s (%s)", report.CycleID, source)

	holdings, err := s.Executor.Holdings(ctx)
	if err != nil {
		s.trySend(fmt.Sprintf("❌ cycle aborted, holdings unavailable: %v", err))
		return nil, fmt.Errorf("load holdings: %w", err)
	}

	res := s.Engine.Evaluate(ctx, report.CycleID, s.Symbols, holdings)
	report.Result = res

	for i := range res.Evaluations {
		ev := &res.Evaluations[i]
		if ev.Signal == nil && ev.Skip != "" {
			report.Failures = append(report.Failures, fmt.Sprintf("%s: %s", ev.Symbol, ev.Skip))
		}
		if err := s.Recorder.RecordEvaluation(ev); err != nil {
			log.Printf("[ERROR] record evaluation %s: %v", ev.Symbol, err)
		}
	}

	for i := range res.Intents {
		intent := res.Intents[i]
		if err := s.Recorder.RecordIntent(&intent); err != nil {
			log.Printf("[ERROR] record intent %s: %v", intent.Symbol, err)
		}
		fill, err := s.execute(ctx, intent)
		if err != nil {
			log.Printf("[ERROR] %s %s: %v", intent.Side, intent.Symbol, err)
			report.Failures = append(report.Failures, fmt.Sprintf("%s %s: %v", intent.Side, intent.Symbol, err))
			continue
		}
		report.Fills = append(report.Fills, fill)
	}

	if err := s.Recorder.RecordCycle(&recorder.CycleEvent{
		CycleID:   report.CycleID,
		StartedAt: started,
		Duration:  time.Since(started),
		Symbols:   len(res.Evaluations),
		Intents:   len(res.Intents),
		Fills:     len(report.Fills),
		Errors:    len(report.Failures),
		Source:    source,
	}); err != nil {
		log.Printf("[ERROR] record cycle: %v", err)
	}

	if len(report.Fills) > 0 || len(report.Failures) > 0 || source != "cron" {
		s.trySend(notifier.FormatCycleReport(report.CycleID, started, res.Evaluations, report.Fills, report.Failures))
	}
	log.Printf("[INFO] cycle %s done: %d symbols, %d fills, %d failures",
		report.CycleID, len(res.Evaluations), len(report.Fills), len(report.Failures))
	return report, nil
}

// execute places one order and records the fill in the position history.
func (s *Scheduler) execute(ctx context.Context, intent model.OrderIntent) (model.Fill, error) {
	fill, err := s.Executor.Execute(ctx, intent)
	if err != nil {
		return model.Fill{}, fmt.Errorf("execute: %w", err)
	}
	switch intent.Side {
	case model.SideBuy:
		err = s.Ledger.RecordPurchase(intent.Symbol, fill.Quantity, fill.Price, strategyTag(intent))
	case model.SideSell:
		err = s.Ledger.RecordSale(intent.Symbol, fill.Quantity, fill.Price, intent.Reason)
	}
	if err != nil {
		// The order is filled; the history is what lags.
		log.Printf("[ERROR] record %s %s order=%s: %v", intent.Side, intent.Symbol, fill.OrderID, err)
	}
	if err := s.Recorder.RecordFill(&fill); err != nil {
		log.Printf("[ERROR] record fill %s: %v", fill.OrderID, err)
	}
	return fill, nil
}

func strategyTag(intent model.OrderIntent) string {
	if len(intent.Tags) == 0 {
		return "signal_gate"
	}
	return "signal_gate+" + strings.Join(intent.Tags, "+")
}

func (s *Scheduler) summaryTask() {
	log.Println("[INFO] running daily summary")
	s.trySend(s.dailySummary())
}

func (s *Scheduler) dailySummary() string {
	trades, err := s.Ledger.TodayTrades()
	if err != nil {
		log.Printf("[ERROR] read trade log: %v", err)
	}
	positions, err := s.Ledger.Summaries()
	if err != nil {
		log.Printf("[ERROR] read positions: %v", err)
	}
	return notifier.FormatDailySummary(time.Now(), trades, positions)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch strings.ToLower(strings.TrimSpace(command)) {
	case "/positions":
		positions, err := s.Ledger.Summaries()
		if err != nil {
			return fmt.Sprintf("❌ positions unavailable: %v", err)
		}
		return notifier.FormatPositions(positions)
	case "/today":
		trades, err := s.Ledger.TodayTrades()
		if err != nil {
			return fmt.Sprintf("❌ trade log unavailable: %v", err)
		}
		return notifier.FormatTrades(trades)
	case "/summary":
		return s.dailySummary()
	case "/run":
		if _, err := s.RunCycle(ctx, "command"); err != nil {
			return fmt.Sprintf("❌ cycle failed: %v", err)
		}
		return ""
	default:
		return "Available commands:\n• /positions\n• /today\n• /summary\n• /run"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
