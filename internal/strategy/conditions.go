package strategy

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"TradeSentinel/internal/calculator"
	"TradeSentinel/internal/model"
)

// MinBars is the look-back every moving-average condition needs.
const MinBars = 20

// BelowMA20 reports whether the latest close is under the 20-day SMA.
func BelowMA20(bars []model.PriceBar) bool {
	if len(bars) < MinBars {
		return false
	}
	ma20, err := calculator.CalculateMA20(bars)
	if err != nil {
		return false
	}
	return bars[len(bars)-1].Close < ma20
}

// VolumeSufficient reports whether the latest volume is at least minVolume.
func VolumeSufficient(bars []model.PriceBar, minVolume float64) bool {
	if len(bars) < MinBars {
		return false
	}
	return bars[len(bars)-1].Volume >= minVolume
}

// AboveBollingerLower reports whether the latest close is on or above mean - k·stddev.
func AboveBollingerLower(bars []model.PriceBar, window int, k float64) (bool, float64) {
	if len(bars) < MinBars || len(bars) < window {
		return false, 0
	}
	bands, err := calculator.CalculateBollinger(bars, window, k)
	if err != nil {
		return false, 0
	}
	return bars[len(bars)-1].Close >= bands.Lower, bands.Lower
}

// ConsecutiveNetBuying counts the run of strictly positive values from the
// newest entry. The first non-positive value ends the run.
func ConsecutiveNetBuying(flows []int64, days int) model.ConsecutiveBuying {
	if days < 1 {
		days = 1
	}
	if len(flows) < days {
		return model.ConsecutiveBuying{
			Required: days,
			Reason:   fmt.Sprintf("insufficient data (need at least %d days, have %d)", days, len(flows)),
			Outcome:  model.OutcomeInsufficientData,
		}
	}

	run := 0
	for _, qty := range flows {
		if qty <= 0 {
			break
		}
		run++
	}

	res := model.ConsecutiveBuying{
		Days:           run,
		Required:       days,
		MeetsCondition: run >= days,
		Outcome:        model.OutcomeOK,
	}
	if res.MeetsCondition {
		res.Reason = fmt.Sprintf("net buying for the last %d consecutive days", run)
	} else {
		res.Reason = fmt.Sprintf("net buying for %d consecutive days (need %d)", run, days)
	}
	return res
}

// MA20Divergence computes (close - MA20) / MA20 × 100 and buckets it.
func MA20Divergence(bars []model.PriceBar) model.Divergence {
	if len(bars) < MinBars {
		return model.Divergence{Category: model.DivergenceUnknown, Outcome: model.OutcomeInsufficientData}
	}
	ma20, err := calculator.CalculateMA20(bars)
	if err != nil || math.IsNaN(ma20) || ma20 == 0 {
		return model.Divergence{Category: model.DivergenceUnknown, Outcome: model.OutcomeError}
	}
	closePrice := bars[len(bars)-1].Close
	pct := (closePrice - ma20) * 100 / ma20
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return model.Divergence{MA20: ma20, Category: model.DivergenceError, Outcome: model.OutcomeError}
	}
	return model.Divergence{
		Pct:      math.Round(pct*100) / 100,
		Known:    true,
		MA20:     ma20,
		Category: ClassifyDivergence(pct),
		Outcome:  model.OutcomeOK,
	}
}

// ClassifyDivergence maps a divergence percentage to its category.
// mild is [-5, 0], moderate is [-10, -5), strong is below -10.
func ClassifyDivergence(pct float64) model.DivergenceCategory {
	switch {
	case math.IsNaN(pct):
		return model.DivergenceError
	case pct > 0:
		return model.DivergenceAboveMA20
	case pct >= -5:
		return model.DivergenceMild
	case pct >= -10:
		return model.DivergenceModerate
	default:
		return model.DivergenceStrong
	}
}

// DivergenceBonus returns the configured bonus for category, or 0 when disabled.
func DivergenceBonus(category model.DivergenceCategory, cfg DivergenceConfig) float64 {
	if !cfg.Enabled {
		return 0
	}
	return cfg.BonusScores[category]
}

// CheckTradingValue compares close × volume against minValue.
func CheckTradingValue(closePrice, volume, minValue float64) model.TradingValue {
	value := decimal.NewFromFloat(closePrice).Mul(decimal.NewFromFloat(volume)).Floor()
	minimum := decimal.NewFromFloat(minValue)
	res := model.TradingValue{
		Value:          value.InexactFloat64(),
		MeetsCondition: value.GreaterThanOrEqual(minimum),
		Outcome:        model.OutcomeOK,
	}
	if res.MeetsCondition {
		res.Reason = fmt.Sprintf("trading value %s (min %s)", value.StringFixed(0), minimum.StringFixed(0))
	} else {
		res.Reason = fmt.Sprintf("trading value too low %s < %s", value.StringFixed(0), minimum.StringFixed(0))
	}
	return res
}

// TradingValueOf runs CheckTradingValue on the latest bar.
func TradingValueOf(bars []model.PriceBar, minValue float64) model.TradingValue {
	if len(bars) == 0 {
		return model.TradingValue{Reason: "no price data", Outcome: model.OutcomeInsufficientData}
	}
	last := bars[len(bars)-1]
	return CheckTradingValue(last.Close, last.Volume, minValue)
}
