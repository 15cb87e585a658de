package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"TradeSentinel/internal/model"
	"TradeSentinel/internal/strategy"
)

// SeriesSource supplies the market data for one symbol.
type SeriesSource interface {
	Series(ctx context.Context, symbol string) (*model.Series, error)
}

// Eligibility answers the position rules for one symbol.
type Eligibility interface {
	CanPurchase(symbol string, currentQty, totalOpenSymbols int) model.EligibilityDecision
	CanSell(symbol string, currentQty int) model.EligibilityDecision
	Summary(symbol string) (model.PositionSummary, error)
}

// Config holds the decision thresholds.
type Config struct {
	Gate                 Gate
	MinBuyScore          float64
	MinSellScore         float64
	BudgetPerTrade       float64
	MaxQuantityPerSymbol int
	Sell                 strategy.SellConfig
	// Workers bounds concurrent market-data fetches.
	Workers int
}

// DefaultConfig returns the default decision thresholds.
func DefaultConfig() Config {
	return Config{
		Gate:                 DefaultGate(),
		MinBuyScore:          3,
		MinSellScore:         3,
		BudgetPerTrade:       1000000,
		MaxQuantityPerSymbol: 200,
		Sell:                 strategy.SellConfig{StopLossPct: 0.08, TakeProfitPct: 0.25},
		Workers:              1,
	}
}

// Result is the output of one evaluation cycle.
type Result struct {
	CycleID     string
	Intents     []model.OrderIntent
	Evaluations []model.Evaluation
}

// Engine merges signal results and position eligibility into order intents.
type Engine struct {
	cfg       Config
	source    SeriesSource
	evaluator *strategy.Evaluator
	policy    Eligibility
	logger    *log.Logger
	now       func() time.Time
}

// New creates an Engine. A nil logger falls back to log.Default().
func New(cfg Config, source SeriesSource, evaluator *strategy.Evaluator, policy Eligibility, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Engine{
		cfg:       cfg,
		source:    source,
		evaluator: evaluator,
		policy:    policy,
		logger:    logger,
		now:       time.Now,
	}
}

type fetchResult struct {
	series *model.Series
	err    error
}

// Evaluate runs one cycle over candidates plus every held symbol. A failure on
// one symbol is logged and skipped; it never aborts the others.
func (e *Engine) Evaluate(ctx context.Context, cycleID string, candidates []string, holdings map[string]int) *Result {
	symbols, isCandidate := mergeSymbols(candidates, holdings)
	fetched := e.fetchAll(ctx, symbols)

	open := 0
	for _, q := range holdings {
		if q > 0 {
			open++
		}
	}

	res := &Result{CycleID: cycleID}
	pendingNew := 0
	for i, sym := range symbols {
		held := holdings[sym]
		ev := model.Evaluation{CycleID: cycleID, Symbol: sym, HeldQty: held}

		if err := fetched[i].err; err != nil {
			e.logger.Printf("[WARN] skip %s: %v", sym, err)
			ev.Skip = fmt.Sprintf("market data: %v", err)
			res.Evaluations = append(res.Evaluations, ev)
			continue
		}
		series := fetched[i].series
		ev.Signal = e.evaluator.Evaluate(series)

		var intent *model.OrderIntent
		if held > 0 {
			intent = e.decideSell(sym, held, series, &ev)
		}
		if intent == nil && isCandidate[sym] {
			intent = e.decideBuy(sym, held, open+pendingNew, ev.Signal, &ev)
			if intent != nil && held == 0 {
				pendingNew++
			}
		}
		if intent != nil {
			intent.CycleID = cycleID
			ev.Intent = intent
			ev.Skip = ""
			res.Intents = append(res.Intents, *intent)
			e.logger.Printf("[INFO] %s %s x%d @ %.2f score=%.2f tags=%v",
				intent.Side, sym, intent.Quantity, intent.ReferencePrice, intent.Score, intent.Tags)
		}
		res.Evaluations = append(res.Evaluations, ev)
	}
	return res
}

// fetchAll loads every series with at most cfg.Workers requests in flight.
func (e *Engine) fetchAll(ctx context.Context, symbols []string) []fetchResult {
	out := make([]fetchResult, len(symbols))
	sem := make(chan struct{}, e.cfg.Workers)
	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				out[i].err = ctx.Err()
				return
			}
			defer func() { <-sem }()
			s, err := e.source.Series(ctx, sym)
			out[i] = fetchResult{series: s, err: err}
		}(i, sym)
	}
	wg.Wait()
	return out
}

func (e *Engine) decideSell(sym string, held int, series *model.Series, ev *model.Evaluation) *model.OrderIntent {
	var entry float64
	if summary, err := e.policy.Summary(sym); err != nil {
		e.logger.Printf("[WARN] %s: position summary unavailable: %v", sym, err)
	} else {
		entry = summary.AverageEntry
	}

	timing := strategy.ScoreSellTiming(series.Bars, entry, e.cfg.Sell)
	ev.Sell = &timing
	if timing.Score < e.cfg.MinSellScore {
		ev.Skip = fmt.Sprintf("sell score %.1f below %.1f", timing.Score, e.cfg.MinSellScore)
		return nil
	}

	dec := e.policy.CanSell(sym, held)
	ev.Decision = &dec
	if !dec.Allowed {
		ev.Skip = dec.Reason
		return nil
	}
	return &model.OrderIntent{
		Symbol:         sym,
		Side:           model.SideSell,
		Quantity:       held,
		ReferencePrice: series.LatestClose(),
		Score:          timing.Score,
		Tags:           append([]string(nil), timing.Reasons...),
		Reason:         strings.Join(timing.Reasons, ","),
		CreatedAt:      e.now(),
	}
}

func (e *Engine) decideBuy(sym string, held, openSymbols int, sig *model.SignalResult, ev *model.Evaluation) *model.OrderIntent {
	passed, failed := e.cfg.Gate.Check(sig)
	ev.GatePassed = passed
	ev.GateFailed = failed
	if !passed {
		ev.Skip = "gate failed: " + strings.Join(failed, ",")
		return nil
	}
	if sig.CompositeScore < e.cfg.MinBuyScore {
		ev.Skip = fmt.Sprintf("buy score %.1f below %.1f", sig.CompositeScore, e.cfg.MinBuyScore)
		return nil
	}

	dec := e.policy.CanPurchase(sym, held, openSymbols)
	ev.Decision = &dec
	if !dec.Allowed {
		ev.Skip = dec.Reason
		return nil
	}

	qty := OrderQuantity(e.cfg.BudgetPerTrade, sig.LatestClose, e.cfg.MaxQuantityPerSymbol-held)
	if qty <= 0 {
		ev.Skip = fmt.Sprintf("order size is zero (budget %.0f, close %.2f)", e.cfg.BudgetPerTrade, sig.LatestClose)
		return nil
	}

	tags := append([]string(nil), sig.BonusSignals...)
	if sig.DivergenceBonus > 0 {
		tags = append(tags, "divergence_"+string(sig.Divergence.Category))
	}
	return &model.OrderIntent{
		Symbol:         sym,
		Side:           model.SideBuy,
		Quantity:       qty,
		ReferencePrice: sig.LatestClose,
		Score:          sig.CompositeScore,
		Tags:           tags,
		Reason:         fmt.Sprintf("gate passed, score %.2f", sig.CompositeScore),
		CreatedAt:      e.now(),
	}
}

// OrderQuantity returns floor(budget/price) capped at room.
func OrderQuantity(budget, price float64, room int) int {
	if budget <= 0 || price <= 0 || room <= 0 {
		return 0
	}
	qty := decimal.NewFromFloat(budget).Div(decimal.NewFromFloat(price)).Floor().IntPart()
	if qty > int64(room) {
		return room
	}
	return int(qty)
}

// mergeSymbols keeps candidate order and appends held symbols not already listed.
func mergeSymbols(candidates []string, holdings map[string]int) ([]string, map[string]bool) {
	isCandidate := make(map[string]bool, len(candidates))
	symbols := make([]string, 0, len(candidates)+len(holdings))
	for _, s := range candidates {
		if isCandidate[s] {
			continue
		}
		isCandidate[s] = true
		symbols = append(symbols, s)
	}
	var extra []string
	for s, q := range holdings {
		if q > 0 && !isCandidate[s] {
			extra = append(extra, s)
		}
	}
	sort.Strings(extra)
	return append(symbols, extra...), isCandidate
}
