package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"TradeSentinel/internal/model"
)

// FormatCycleReport formats the outcome of one evaluation cycle.
func FormatCycleReport(cycleID string, at time.Time, evals []model.Evaluation, fills []model.Fill, failures []string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>TradeSentinel cycle</b> | %s\n", at.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("<code>%s</code>\n\n", cycleID))

	if len(fills) == 0 {
		b.WriteString("No orders this cycle.\n")
	} else {
		b.WriteString("💰 <b>Orders:</b>\n")
		for _, f := range fills {
			icon := "🟢"
			if f.Intent.Side == model.SideSell {
				icon = "🔴"
			}
			b.WriteString(fmt.Sprintf("  %s %s %s x%d @ %.2f (score %.1f)\n",
				icon, f.Intent.Side, f.Intent.Symbol, f.Quantity, f.Price, f.Intent.Score))
			if f.Intent.Reason != "" {
				b.WriteString(fmt.Sprintf("     %s\n", html.EscapeString(f.Intent.Reason)))
			}
		}
	}

	var skipped []string
	for _, ev := range evals {
		if ev.Intent == nil && ev.Skip != "" && ev.Signal != nil && ev.GatePassed {
			skipped = append(skipped, fmt.Sprintf("  %s: %s", ev.Symbol, html.EscapeString(ev.Skip)))
		}
	}
	if len(skipped) > 0 {
		b.WriteString("\n⏸ <b>Signal but not eligible:</b>\n")
		b.WriteString(strings.Join(skipped, "\n"))
		b.WriteString("\n")
	}

	if len(failures) > 0 {
		b.WriteString("\n⚠️ <b>Errors:</b>\n")
		for _, f := range failures {
			b.WriteString(fmt.Sprintf("  %s\n", html.EscapeString(f)))
		}
	}

	b.WriteString(fmt.Sprintf("\nEvaluated %d symbols", len(evals)))
	return b.String()
}

// FormatPositions formats position summaries for display.
func FormatPositions(positions []model.PositionSummary) string {
	var b strings.Builder
	b.WriteString("📦 <b>Positions</b>\n\n")

	open := 0
	for _, p := range positions {
		if p.TotalQuantity == 0 {
			continue
		}
		open++
		b.WriteString(fmt.Sprintf("%s: %d shares, avg %.2f, buys %d", p.Symbol, p.TotalQuantity, p.AverageEntry, p.PurchaseCount))
		if p.FirstPurchaseTime != nil {
			b.WriteString(fmt.Sprintf(", since %s", p.FirstPurchaseTime.Format("01/02 15:04")))
		}
		b.WriteString("\n")
	}
	if open == 0 {
		b.WriteString("No open positions.\n")
	}

	closed := len(positions) - open
	if closed > 0 {
		b.WriteString(fmt.Sprintf("\nClosed symbols on record: %d\n", closed))
	}
	return b.String()
}

// FormatTrades formats the daily trade log.
func FormatTrades(trades []model.TradeLogEntry) string {
	var b strings.Builder
	b.WriteString("🧾 <b>Today's trades</b>\n\n")
	if len(trades) == 0 {
		b.WriteString("No trades today.\n")
		return b.String()
	}
	for _, t := range trades {
		b.WriteString(fmt.Sprintf("%s %s %s x%d @ %.2f\n",
			t.Timestamp.Format("15:04"), t.Action, t.Symbol, t.Quantity, t.Price))
	}
	return b.String()
}

// FormatDailySummary combines today's trades and open positions.
func FormatDailySummary(at time.Time, trades []model.TradeLogEntry, positions []model.PositionSummary) string {
	var buys, sells int
	for _, t := range trades {
		if t.Action == model.SideBuy {
			buys++
		} else {
			sells++
		}
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗓 <b>Daily summary</b> | %s\n", at.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Buys: %d | Sells: %d\n\n", buys, sells))
	b.WriteString(FormatTrades(trades))
	b.WriteString("\n")
	b.WriteString(FormatPositions(positions))
	return b.String()
}
