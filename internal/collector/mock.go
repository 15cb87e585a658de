package collector

import (
	"context"
	"time"

	"TradeSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without explicit data get generated bars around Price.
type MockFetcher struct {
	Price  float64
	Bars   map[string][]model.PriceBar
	Flows  map[string][]model.InvestorFlow
	Errors map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, days int) ([]model.PriceBar, error) {
	if err := m.Errors[symbol]; err != nil {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return bars, nil
	}
	return generateMockBars(m.Price, days), nil
}

func (m *MockFetcher) FetchInvestorFlow(_ context.Context, symbol string, days int) ([]model.InvestorFlow, error) {
	if err := m.Errors[symbol]; err != nil {
		return nil, err
	}
	if flows, ok := m.Flows[symbol]; ok {
		return flows, nil
	}
	flows := make([]model.InvestorFlow, days)
	today := time.Now().Truncate(24 * time.Hour)
	for i := range flows {
		flows[i] = model.InvestorFlow{Date: today.AddDate(0, 0, -i), ForeignNet: 1000, InstitutionNet: 500}
	}
	return flows, nil
}

func generateMockBars(basePrice float64, count int) []model.PriceBar {
	bars := make([]model.PriceBar, count)
	today := time.Now().Truncate(24 * time.Hour)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.PriceBar{
			Date:   today.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
