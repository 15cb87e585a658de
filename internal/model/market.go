package model

import "time"

// PriceBar represents a single daily candlestick bar.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// InvestorFlow is one day of net purchase quantity per investor class.
type InvestorFlow struct {
	Date           time.Time `json:"date"`
	ForeignNet     int64     `json:"foreign_net_qty"`
	InstitutionNet int64     `json:"institution_net_qty"`
}

// Series holds the market data the evaluator consumes for one symbol.
// Bars are ascending by date, Flows are newest-first.
type Series struct {
	Symbol    string
	Bars      []PriceBar
	Flows     []InvestorFlow
	FetchedAt time.Time
}

// LatestClose returns the close of the most recent bar, or 0 when empty.
func (s *Series) LatestClose() float64 {
	if len(s.Bars) == 0 {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Close
}

// ForeignNet returns the foreign net quantities, newest-first.
func (s *Series) ForeignNet() []int64 {
	out := make([]int64, len(s.Flows))
	for i, f := range s.Flows {
		out[i] = f.ForeignNet
	}
	return out
}

// InstitutionNet returns the institution net quantities, newest-first.
func (s *Series) InstitutionNet() []int64 {
	out := make([]int64, len(s.Flows))
	for i, f := range s.Flows {
		out[i] = f.InstitutionNet
	}
	return out
}
