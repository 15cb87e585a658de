package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"TradeSentinel/internal/model"
)

// ErrInsufficientData is returned when a symbol has no usable price bars.
var ErrInsufficientData = errors.New("insufficient market data")

// Collector fetches and normalizes the series the evaluator consumes.
type Collector struct {
	Fetcher      Fetcher
	LookbackDays int
	FlowDays     int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, lookbackDays, flowDays int) *Collector {
	return &Collector{Fetcher: fetcher, LookbackDays: lookbackDays, FlowDays: flowDays}
}

// Series fetches bars and investor flow for symbol. Bars come back ascending
// and unique per date; flows newest-first and unique per date.
func (c *Collector) Series(ctx context.Context, symbol string) (*model.Series, error) {
	rawBars, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	bars := NormalizeBars(rawBars)
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrInsufficientData)
	}

	rawFlows, err := c.Fetcher.FetchInvestorFlow(ctx, symbol, c.FlowDays)
	if err != nil {
		return nil, fmt.Errorf("fetch investor flow: %w", err)
	}

	return &model.Series{
		Symbol:    symbol,
		Bars:      bars,
		Flows:     NormalizeFlows(rawFlows),
		FetchedAt: time.Now(),
	}, nil
}

// NormalizeBars sorts bars ascending, keeps the last bar seen per trading
// date and drops bars without a positive close.
func NormalizeBars(in []model.PriceBar) []model.PriceBar {
	byDate := make(map[string]model.PriceBar, len(in))
	for _, b := range in {
		if b.Close <= 0 {
			continue
		}
		byDate[b.Date.Format(time.DateOnly)] = b
	}
	out := make([]model.PriceBar, 0, len(byDate))
	for _, b := range byDate {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// NormalizeFlows sorts flows newest-first with one entry per date.
func NormalizeFlows(in []model.InvestorFlow) []model.InvestorFlow {
	byDate := make(map[string]model.InvestorFlow, len(in))
	for _, f := range in {
		byDate[f.Date.Format(time.DateOnly)] = f
	}
	out := make([]model.InvestorFlow, 0, len(byDate))
	for _, f := range byDate {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}
