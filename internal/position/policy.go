package position

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"TradeSentinel/internal/model"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidPrice    = errors.New("price must be positive")
)

// recentSaleWindow bounds the SELL lookup reported with a cooldown denial.
const recentSaleWindow = 7 * 24 * time.Hour

// Limits are the purchase and holding rules enforced per symbol.
type Limits struct {
	MaxPurchasesPerSymbol int
	MaxQuantityPerSymbol  int
	MaxTotalHoldings      int
	MinHoldingPeriod      time.Duration
	PurchaseCooldown      time.Duration
	// ResetCountersOnReopen zeroes purchase_count on the first BUY after a close.
	ResetCountersOnReopen bool
}

// DefaultLimits mirrors the default position_management settings.
func DefaultLimits() Limits {
	return Limits{
		MaxPurchasesPerSymbol: 2,
		MaxQuantityPerSymbol:  200,
		MaxTotalHoldings:      5,
		MinHoldingPeriod:      24 * time.Hour,
		PurchaseCooldown:      24 * time.Hour,
	}
}

// Policy decides buy/sell eligibility and records executions.
// Read-modify-write of one symbol is serialized; distinct symbols run in parallel.
type Policy struct {
	limits Limits
	repo   Repository
	trades TradeLog
	logger *log.Logger
	now    func() time.Time

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewPolicy creates a Policy. A nil logger falls back to log.Default().
func NewPolicy(limits Limits, repo Repository, trades TradeLog, logger *log.Logger) *Policy {
	if logger == nil {
		logger = log.Default()
	}
	return &Policy{
		limits: limits,
		repo:   repo,
		trades: trades,
		logger: logger,
		now:    time.Now,
		locks:  map[string]*sync.Mutex{},
	}
}

// SetClock overrides the time source.
func (p *Policy) SetClock(now func() time.Time) {
	p.now = now
}

// Limits returns the configured rules.
func (p *Policy) Limits() Limits {
	return p.limits
}

func (p *Policy) lock(symbol string) func() {
	p.locksMu.Lock()
	m, ok := p.locks[symbol]
	if !ok {
		m = &sync.Mutex{}
		p.locks[symbol] = m
	}
	p.locksMu.Unlock()
	m.Lock()
	return m.Unlock
}

// CanPurchase evaluates the buy rules in order and stops at the first denial.
func (p *Policy) CanPurchase(symbol string, currentQty, totalOpenSymbols int) model.EligibilityDecision {
	unlock := p.lock(symbol)
	defer unlock()

	now := p.now()

	if currentQty == 0 && totalOpenSymbols >= p.limits.MaxTotalHoldings {
		return deny("max concurrent holdings exceeded (%d/%d symbols)", totalOpenSymbols, p.limits.MaxTotalHoldings)
	}
	if currentQty >= p.limits.MaxQuantityPerSymbol {
		return deny("max quantity per symbol exceeded (%d/%d shares)", currentQty, p.limits.MaxQuantityPerSymbol)
	}

	rec, _, err := p.repo.Load(symbol)
	if err != nil {
		p.logger.Printf("[ERROR] load position %s: %v", symbol, err)
		return deny("position history unavailable: %v", err)
	}

	if rec.PurchaseCount >= p.limits.MaxPurchasesPerSymbol {
		return deny("max purchase count exceeded (%d/%d)", rec.PurchaseCount, p.limits.MaxPurchasesPerSymbol)
	}

	if p.soldToday(symbol, rec, now) {
		return deny("same-day re-buy after sell is forbidden")
	}

	if rec.LastPurchaseTime != nil {
		elapsed := now.Sub(*rec.LastPurchaseTime)
		if elapsed < p.limits.PurchaseCooldown {
			remaining := (p.limits.PurchaseCooldown - elapsed).Hours()
			if sale, ok := rec.LastSale(now.Add(-recentSaleWindow)); ok {
				return deny("purchase cooldown active (%.1f hours remaining) - last sale %.2f at %s",
					remaining, sale.Price, sale.Timestamp.Format("01/02 15:04"))
			}
			return deny("purchase cooldown active (%.1f hours remaining)", remaining)
		}
	}

	return model.EligibilityDecision{Allowed: true, Reason: "purchase permitted"}
}

// soldToday checks the daily trade log and falls back to the symbol's own history.
func (p *Policy) soldToday(symbol string, rec model.PositionRecord, now time.Time) bool {
	if p.trades != nil {
		entries, err := p.trades.Today(now)
		if err != nil {
			p.logger.Printf("[WARN] read trade log: %v", err)
		}
		for _, e := range entries {
			if e.Symbol == symbol && e.Action == model.SideSell && sameDay(e.Timestamp, now) {
				return true
			}
		}
	}
	for _, r := range rec.Purchases {
		if r.OrderType == model.SideSell && sameDay(r.Timestamp, now) {
			return true
		}
	}
	return false
}

// CanSell checks that a position is held and the minimum holding period has passed.
func (p *Policy) CanSell(symbol string, currentQty int) model.EligibilityDecision {
	unlock := p.lock(symbol)
	defer unlock()

	if currentQty <= 0 {
		return deny("no position held")
	}

	rec, _, err := p.repo.Load(symbol)
	if err != nil {
		p.logger.Printf("[ERROR] load position %s: %v", symbol, err)
		return deny("position history unavailable: %v", err)
	}
	if rec.FirstPurchaseTime != nil {
		held := p.now().Sub(*rec.FirstPurchaseTime)
		if held < p.limits.MinHoldingPeriod {
			return deny("minimum holding period not met (%.1f hours remaining)", (p.limits.MinHoldingPeriod - held).Hours())
		}
	}
	return model.EligibilityDecision{Allowed: true, Reason: "sale permitted"}
}

// RecordPurchase appends a BUY and persists the record before returning.
func (p *Policy) RecordPurchase(symbol string, qty int, price float64, strategy string) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if price <= 0 {
		return ErrInvalidPrice
	}

	unlock := p.lock(symbol)
	defer unlock()

	now := p.now()
	rec, _, err := p.repo.Load(symbol)
	if err != nil {
		return fmt.Errorf("load position %s: %w", symbol, err)
	}

	// First BUY after a close opens a new epoch.
	if rec.PositionClosedTime != nil && rec.TotalQuantity == 0 {
		rec.FirstPurchaseTime = nil
		rec.PositionClosedTime = nil
		if p.limits.ResetCountersOnReopen {
			rec.PurchaseCount = 0
		}
	}

	rec.Purchases = append(rec.Purchases, model.PurchaseRecord{
		Timestamp: now,
		Quantity:  qty,
		Price:     price,
		Strategy:  strategy,
		OrderType: model.SideBuy,
	})
	rec.TotalQuantity += qty
	rec.PurchaseCount++
	rec.LastPurchaseTime = &now
	if rec.FirstPurchaseTime == nil {
		first := now
		rec.FirstPurchaseTime = &first
	}

	if err := p.repo.Save(symbol, rec); err != nil {
		return fmt.Errorf("save position %s: %w", symbol, err)
	}
	p.appendTrade(symbol, model.SideBuy, qty, price, now)

	p.logger.Printf("[INFO] recorded BUY %s %d @ %.2f (total %d, purchases %d)",
		symbol, qty, price, rec.TotalQuantity, rec.PurchaseCount)
	return nil
}

// RecordSale appends a SELL and persists the record before returning.
// Quantity is clamped at zero; the close time is stamped on the transition to zero.
func (p *Policy) RecordSale(symbol string, qty int, price float64, reason string) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if price <= 0 {
		return ErrInvalidPrice
	}

	unlock := p.lock(symbol)
	defer unlock()

	now := p.now()
	rec, ok, err := p.repo.Load(symbol)
	if err != nil {
		return fmt.Errorf("load position %s: %w", symbol, err)
	}
	if !ok {
		// Holdings bought outside this system have no record to update.
		p.logger.Printf("[WARN] SELL %s without position history, logging trade only", symbol)
		p.appendTrade(symbol, model.SideSell, qty, price, now)
		return nil
	}

	rec.Purchases = append(rec.Purchases, model.PurchaseRecord{
		Timestamp: now,
		Quantity:  qty,
		Price:     price,
		Reason:    reason,
		OrderType: model.SideSell,
	})
	before := rec.TotalQuantity
	rec.TotalQuantity -= qty
	if rec.TotalQuantity <= 0 {
		rec.TotalQuantity = 0
		if before > 0 {
			closed := now
			rec.PositionClosedTime = &closed
		}
	}

	if err := p.repo.Save(symbol, rec); err != nil {
		return fmt.Errorf("save position %s: %w", symbol, err)
	}
	p.appendTrade(symbol, model.SideSell, qty, price, now)

	p.logger.Printf("[INFO] recorded SELL %s %d @ %.2f reason=%s (remaining %d)",
		symbol, qty, price, reason, rec.TotalQuantity)
	return nil
}

func (p *Policy) appendTrade(symbol string, side model.Side, qty int, price float64, at time.Time) {
	if p.trades == nil {
		return
	}
	if err := p.trades.Append(model.TradeLogEntry{
		Symbol: symbol, Action: side, Quantity: qty, Price: price, Timestamp: at,
	}); err != nil {
		p.logger.Printf("[ERROR] append trade log %s: %v", symbol, err)
	}
}

// Summary returns a read-only projection of the symbol's record.
func (p *Policy) Summary(symbol string) (model.PositionSummary, error) {
	rec, _, err := p.repo.Load(symbol)
	if err != nil {
		return model.PositionSummary{}, err
	}
	return summarize(symbol, rec), nil
}

// Summaries returns every known symbol's summary.
func (p *Policy) Summaries() ([]model.PositionSummary, error) {
	symbols, err := p.repo.Symbols()
	if err != nil {
		return nil, err
	}
	out := make([]model.PositionSummary, 0, len(symbols))
	for _, sym := range symbols {
		s, err := p.Summary(sym)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Holdings returns quantity per symbol for every open position.
func (p *Policy) Holdings() (map[string]int, error) {
	summaries, err := p.Summaries()
	if err != nil {
		return nil, err
	}
	out := map[string]int{}
	for _, s := range summaries {
		if s.TotalQuantity > 0 {
			out[s.Symbol] = s.TotalQuantity
		}
	}
	return out, nil
}

// TodayTrades returns the daily trade log.
func (p *Policy) TodayTrades() ([]model.TradeLogEntry, error) {
	if p.trades == nil {
		return nil, nil
	}
	return p.trades.Today(p.now())
}

func summarize(symbol string, rec model.PositionRecord) model.PositionSummary {
	return model.PositionSummary{
		Symbol:            symbol,
		TotalQuantity:     rec.TotalQuantity,
		PurchaseCount:     rec.PurchaseCount,
		FirstPurchaseTime: rec.FirstPurchaseTime,
		LastPurchaseTime:  rec.LastPurchaseTime,
		AverageEntry:      rec.AverageEntry(),
		IsPositionClosed:  rec.Closed(),
	}
}

func deny(format string, args ...any) model.EligibilityDecision {
	return model.EligibilityDecision{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}
