package collector

import (
	"context"

	"TradeSentinel/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchDailyBars returns up to days daily bars for symbol, in any order.
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceBar, error)
	// FetchInvestorFlow returns up to days of net purchase quantities for symbol, in any order.
	FetchInvestorFlow(ctx context.Context, symbol string, days int) ([]model.InvestorFlow, error)
	Name() string
}
