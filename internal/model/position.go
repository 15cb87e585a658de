package model

import "time"

// Side is an order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// PurchaseRecord is one BUY or SELL entry in a symbol's history.
type PurchaseRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Strategy  string    `json:"strategy,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	OrderType Side      `json:"order_type"`
}

// PositionRecord is the persisted history of a symbol.
type PositionRecord struct {
	TotalQuantity      int              `json:"total_quantity"`
	PurchaseCount      int              `json:"purchase_count"`
	Purchases          []PurchaseRecord `json:"purchases"`
	FirstPurchaseTime  *time.Time       `json:"first_purchase_time"`
	LastPurchaseTime   *time.Time       `json:"last_purchase_time"`
	PositionClosedTime *time.Time       `json:"position_closed_time"`
}

// Closed reports whether the position has been fully sold.
func (p *PositionRecord) Closed() bool {
	return p.PositionClosedTime != nil
}

// AverageEntry returns the quantity-weighted BUY price of the current epoch.
func (p *PositionRecord) AverageEntry() float64 {
	var qty int
	var cost float64
	for _, r := range p.Purchases {
		if r.OrderType != SideBuy {
			continue
		}
		if p.FirstPurchaseTime != nil && r.Timestamp.Before(*p.FirstPurchaseTime) {
			continue
		}
		qty += r.Quantity
		cost += float64(r.Quantity) * r.Price
	}
	if qty == 0 {
		return 0
	}
	return cost / float64(qty)
}

// LastSale returns the most recent SELL record after since.
func (p *PositionRecord) LastSale(since time.Time) (PurchaseRecord, bool) {
	for i := len(p.Purchases) - 1; i >= 0; i-- {
		r := p.Purchases[i]
		if r.OrderType == SideSell && r.Timestamp.After(since) {
			return r, true
		}
	}
	return PurchaseRecord{}, false
}

// PositionSummary is a read-only projection of a PositionRecord.
type PositionSummary struct {
	Symbol            string     `json:"symbol"`
	TotalQuantity     int        `json:"total_quantity"`
	PurchaseCount     int        `json:"purchase_count"`
	FirstPurchaseTime *time.Time `json:"first_purchase_time"`
	LastPurchaseTime  *time.Time `json:"last_purchase_time"`
	AverageEntry      float64    `json:"average_entry"`
	IsPositionClosed  bool       `json:"is_position_closed"`
}

// TradeLogEntry is one execution in the daily trade log.
type TradeLogEntry struct {
	Symbol    string    `json:"symbol"`
	Action    Side      `json:"action"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// EligibilityDecision answers whether a buy or sell is permitted.
type EligibilityDecision struct {
	Allowed bool
	Reason  string
}
