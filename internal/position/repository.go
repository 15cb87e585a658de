package position

import (
	"time"

	"TradeSentinel/internal/model"
)

// Repository persists one PositionRecord per symbol.
type Repository interface {
	// Load returns the record for symbol; ok is false when none exists.
	Load(symbol string) (rec model.PositionRecord, ok bool, err error)
	// Save durably writes rec before returning.
	Save(symbol string, rec model.PositionRecord) error
	// Symbols lists every symbol with a record.
	Symbols() ([]string, error)
}

// TradeLog is the execution log of the current calendar day.
type TradeLog interface {
	Append(entry model.TradeLogEntry) error
	Today(now time.Time) ([]model.TradeLogEntry, error)
}

func cloneRecord(rec model.PositionRecord) model.PositionRecord {
	out := rec
	if rec.Purchases != nil {
		out.Purchases = make([]model.PurchaseRecord, len(rec.Purchases))
		copy(out.Purchases, rec.Purchases)
	}
	out.FirstPurchaseTime = cloneTime(rec.FirstPurchaseTime)
	out.LastPurchaseTime = cloneTime(rec.LastPurchaseTime)
	out.PositionClosedTime = cloneTime(rec.PositionClosedTime)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
