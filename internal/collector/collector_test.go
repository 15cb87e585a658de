package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"TradeSentinel/internal/model"
)

func day(n int) time.Time {
	return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestNormalizeBars(t *testing.T) {
	in := []model.PriceBar{
		{Date: day(3), Close: 103},
		{Date: day(1), Close: 101},
		{Date: day(2), Close: 0},
		{Date: day(1), Close: 111},
		{Date: day(2), Close: 102},
	}
	got := NormalizeBars(in)
	want := []float64{111, 102, 103}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Close != w {
			t.Errorf("bar %d close = %v, want %v", i, got[i].Close, w)
		}
	}
}

func TestNormalizeFlows(t *testing.T) {
	in := []model.InvestorFlow{
		{Date: day(1), ForeignNet: 1},
		{Date: day(3), ForeignNet: 3},
		{Date: day(2), ForeignNet: 2},
	}
	got := NormalizeFlows(in)
	for i, want := range []int64{3, 2, 1} {
		if got[i].ForeignNet != want {
			t.Errorf("flow %d = %d, want %d", i, got[i].ForeignNet, want)
		}
	}
}

func TestCollectorSeries(t *testing.T) {
	boom := errors.New("boom")
	m := &MockFetcher{
		Price:  100,
		Bars:   map[string][]model.PriceBar{"EMPTY": {}},
		Errors: map[string]error{"FAIL": boom},
	}
	c := NewCollector(m, 30, 5)
	ctx := context.Background()

	s, err := c.Series(ctx, "OK")
	if err != nil {
		t.Fatalf("Series(OK): %v", err)
	}
	if len(s.Bars) != 30 || len(s.Flows) != 5 {
		t.Errorf("bars=%d flows=%d, want 30/5", len(s.Bars), len(s.Flows))
	}
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Date.After(s.Bars[i-1].Date) {
			t.Fatalf("bars not ascending at %d", i)
		}
	}

	if _, err := c.Series(ctx, "EMPTY"); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Series(EMPTY) err = %v, want ErrInsufficientData", err)
	}
	if _, err := c.Series(ctx, "FAIL"); !errors.Is(err, boom) {
		t.Errorf("Series(FAIL) err = %v, want wrapped boom", err)
	}
}

func TestRESTFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("symbol") != "005930" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/bars/daily":
			fmt.Fprintf(w, `[{"timestamp":%d,"open":1,"high":2,"low":0.5,"close":1.5,"volume":1200}]`, day(0).Unix())
		case "/api/v1/investors/daily":
			fmt.Fprintf(w, `[{"timestamp":%d,"foreign_net":120,"institution_net":-10}]`, day(0).Unix())
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "")
	ctx := context.Background()

	bars, err := f.FetchDailyBars(ctx, "005930", 10)
	if err != nil {
		t.Fatalf("FetchDailyBars: %v", err)
	}
	if len(bars) != 1 || bars[0].Close != 1.5 || bars[0].Volume != 1200 || !bars[0].Date.Equal(day(0)) {
		t.Errorf("bars = %+v", bars)
	}

	flows, err := f.FetchInvestorFlow(ctx, "005930", 10)
	if err != nil {
		t.Fatalf("FetchInvestorFlow: %v", err)
	}
	if len(flows) != 1 || flows[0].ForeignNet != 120 || flows[0].InstitutionNet != -10 {
		t.Errorf("flows = %+v", flows)
	}

	if _, err := f.FetchDailyBars(ctx, "UNKNOWN", 10); err == nil {
		t.Error("FetchDailyBars(UNKNOWN) returned nil error")
	}
}
