package strategy

import (
	"github.com/shopspring/decimal"

	"TradeSentinel/internal/calculator"
	"TradeSentinel/internal/model"
)

// Sell-timing reason tags.
const (
	ReasonTrendWeakening = "trend_weakening"
	ReasonRSIOverbought  = "rsi_overbought"
	ReasonSharpDrop      = "sharp_drop"
	ReasonVolumeSpike    = "volume_spike"
	ReasonStopLoss       = "stop_loss"
	ReasonTakeProfit     = "take_profit"
)

// SellConfig holds the exit thresholds.
type SellConfig struct {
	StopLossPct   float64
	TakeProfitPct float64
}

// ScoreSellTiming scores whether a held symbol should be sold.
// Technical components are skipped when the look-back is too short;
// stop-loss and take-profit only need the latest close and an entry price.
func ScoreSellTiming(bars []model.PriceBar, entryPrice float64, cfg SellConfig) model.SellTiming {
	res := model.SellTiming{RSI: 50, Outcome: model.OutcomeOK}
	if len(bars) == 0 {
		res.Outcome = model.OutcomeInsufficientData
		return res
	}

	if len(bars) >= MinBars {
		closes := calculator.ExtractCloses(bars)
		ma5, err5 := calculator.CalculateSMA(closes, 5)
		ma20, err20 := calculator.CalculateSMA(closes, 20)
		if err5 == nil && err20 == nil && ma5 < ma20 {
			addScore(&res, 2, ReasonTrendWeakening)
		}

		if rsi, err := calculator.CalculateRSI(bars, 14); err == nil {
			res.RSI = rsi
			if rsi > 65 {
				addScore(&res, 2, ReasonRSIOverbought)
			}
		}

		if change, ok := calculator.PercentChange(bars, 4); ok && change < -0.015 {
			addScore(&res, 3, ReasonSharpDrop)
		}

		if avg, err := calculator.AverageVolume(bars, 10); err == nil && avg > 0 {
			if bars[len(bars)-1].Volume/avg > 3.0 {
				addScore(&res, 2, ReasonVolumeSpike)
			}
		}
	} else {
		res.Outcome = model.OutcomeInsufficientData
	}

	if entryPrice > 0 {
		last := decimal.NewFromFloat(bars[len(bars)-1].Close)
		entry := decimal.NewFromFloat(entryPrice)
		pnl := last.Sub(entry).Div(entry)
		res.PnLPct = pnl.InexactFloat64()
		if cfg.StopLossPct > 0 && pnl.LessThanOrEqual(decimal.NewFromFloat(-cfg.StopLossPct)) {
			addScore(&res, 3, ReasonStopLoss)
		}
		if cfg.TakeProfitPct > 0 && pnl.GreaterThanOrEqual(decimal.NewFromFloat(cfg.TakeProfitPct)) {
			addScore(&res, 3, ReasonTakeProfit)
		}
	}

	return res
}

func addScore(res *model.SellTiming, points float64, reason string) {
	res.Score += points
	res.Reasons = append(res.Reasons, reason)
}
