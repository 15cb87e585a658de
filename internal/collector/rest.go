package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"TradeSentinel/internal/model"
)

// RESTFetcher implements Fetcher against a market-data REST API.
type RESTFetcher struct {
	client *resty.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &RESTFetcher{client: client}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape of a daily bar.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// restFlow is the expected JSON shape of one day of investor flow.
type restFlow struct {
	Timestamp      int64 `json:"timestamp"`
	ForeignNet     int64 `json:"foreign_net"`
	InstitutionNet int64 `json:"institution_net"`
}

func (f *RESTFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceBar, error) {
	var raw []restBar
	if err := f.get(ctx, "/api/v1/bars/daily", symbol, days, &raw); err != nil {
		return nil, fmt.Errorf("fetch bars %s: %w", symbol, err)
	}
	bars := make([]model.PriceBar, len(raw))
	for i, b := range raw {
		bars[i] = model.PriceBar{
			Date:   time.Unix(b.Timestamp, 0),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	return bars, nil
}

func (f *RESTFetcher) FetchInvestorFlow(ctx context.Context, symbol string, days int) ([]model.InvestorFlow, error) {
	var raw []restFlow
	if err := f.get(ctx, "/api/v1/investors/daily", symbol, days, &raw); err != nil {
		return nil, fmt.Errorf("fetch investor flow %s: %w", symbol, err)
	}
	flows := make([]model.InvestorFlow, len(raw))
	for i, r := range raw {
		flows[i] = model.InvestorFlow{
			Date:           time.Unix(r.Timestamp, 0),
			ForeignNet:     r.ForeignNet,
			InstitutionNet: r.InstitutionNet,
		}
	}
	return flows, nil
}

func (f *RESTFetcher) get(ctx context.Context, path, symbol string, limit int, out any) error {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"limit":  strconv.Itoa(limit),
		}).
		Get(path)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("status %d, body: %s", resp.StatusCode(), resp.String())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
