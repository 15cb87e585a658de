package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"TradeSentinel/internal/model"
)

type fakeBotAPI struct {
	mu       sync.Mutex
	sent     []string
	failures int
}

func (f *fakeBotAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.failures > 0 {
				f.failures--
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode sendMessage body: %v", err)
			}
			if body["chat_id"] != "42" || body["parse_mode"] != "HTML" {
				t.Errorf("unexpected body %v", body)
			}
			f.sent = append(f.sent, body["text"])
			w.Write([]byte(`{"ok":true}`))
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ok":true,"result":[
				{"update_id":7,"message":{"text":" /positions ","chat":{"id":42}}},
				{"update_id":8,"message":{"text":"/run","chat":{"id":99}}},
				{"update_id":9}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestNotifier(t *testing.T, api *fakeBotAPI) *TelegramNotifier {
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("token", "42", "")
	n.SetBaseURL(srv.URL)
	return n
}

func TestTelegramSendWithRetry(t *testing.T) {
	api := &fakeBotAPI{failures: 1}
	n := newTestNotifier(t, api)

	if err := n.SendWithRetry(context.Background(), "hello", 2); err != nil {
		t.Fatalf("SendWithRetry: %v", err)
	}
	if len(api.sent) != 1 || api.sent[0] != "hello" {
		t.Errorf("sent = %v", api.sent)
	}

	api.failures = 5
	if err := n.SendWithRetry(context.Background(), "x", 0); err == nil {
		t.Error("expected error when retries are exhausted")
	}
}

func TestPollOnceDispatchesOwnChatOnly(t *testing.T) {
	api := &fakeBotAPI{}
	n := newTestNotifier(t, api)

	var got []string
	next, err := n.pollOnce(context.Background(), 0, 0, func(_ context.Context, cmd string) string {
		got = append(got, cmd)
		return "reply to " + cmd
	})
	if err != nil {
		t.Fatalf("pollOnce: %v", err)
	}
	if next != 10 {
		t.Errorf("next offset = %d, want 10", next)
	}
	if len(got) != 1 || got[0] != "/positions" {
		t.Errorf("dispatched = %v", got)
	}
	if len(api.sent) != 1 || api.sent[0] != "reply to /positions" {
		t.Errorf("sent = %v", api.sent)
	}
}

func TestFormatCycleReport(t *testing.T) {
	at := time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC)
	intent := model.OrderIntent{Symbol: "A", Side: model.SideBuy, Score: 3.5, Reason: "gate passed, score 3.50"}
	evals := []model.Evaluation{
		{Symbol: "A", Signal: &model.SignalResult{}, GatePassed: true, Intent: &intent},
		{Symbol: "B", Signal: &model.SignalResult{}, GatePassed: true, Skip: "purchase cooldown active (3.0 hours remaining)"},
		{Symbol: "C", Skip: "market data: timeout"},
	}
	fills := []model.Fill{{Intent: intent, Quantity: 10, Price: 99.9}}

	msg := FormatCycleReport("cycle-1", at, evals, fills, []string{"C: timeout"})
	for _, want := range []string{"2025-03-10 10:30", "cycle-1", "BUY A x10 @ 99.90", "B: purchase cooldown", "C: timeout", "Evaluated 3 symbols"} {
		if !strings.Contains(msg, want) {
			t.Errorf("report missing %q:\n%s", want, msg)
		}
	}

	empty := FormatCycleReport("c", at, nil, nil, nil)
	if !strings.Contains(empty, "No orders this cycle.") {
		t.Errorf("empty report:\n%s", empty)
	}
}

func TestFormatDailySummary(t *testing.T) {
	at := time.Date(2025, 3, 10, 15, 40, 0, 0, time.UTC)
	first := at.Add(-48 * time.Hour)
	trades := []model.TradeLogEntry{
		{Symbol: "A", Action: model.SideBuy, Quantity: 10, Price: 100, Timestamp: at.Add(-5 * time.Hour)},
		{Symbol: "B", Action: model.SideSell, Quantity: 5, Price: 50, Timestamp: at.Add(-4 * time.Hour)},
	}
	positions := []model.PositionSummary{
		{Symbol: "A", TotalQuantity: 10, PurchaseCount: 1, AverageEntry: 100, FirstPurchaseTime: &first},
		{Symbol: "B", TotalQuantity: 0, IsPositionClosed: true},
	}
	msg := FormatDailySummary(at, trades, positions)
	for _, want := range []string{"Buys: 1 | Sells: 1", "10:40 BUY A x10 @ 100.00", "A: 10 shares, avg 100.00, buys 1, since 03/08 15:40", "Closed symbols on record: 1"} {
		if !strings.Contains(msg, want) {
			t.Errorf("summary missing %q:\n%s", want, msg)
		}
	}

	if msg := FormatPositions(nil); !strings.Contains(msg, "No open positions.") {
		t.Errorf("FormatPositions(nil) = %s", msg)
	}
}
