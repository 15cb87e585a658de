package strategy

import (
	"TradeSentinel/internal/calculator"
	"TradeSentinel/internal/model"
)

// Evaluator computes a SignalResult from a symbol's market data. It holds no state.
type Evaluator struct {
	cfg Config
}

// NewEvaluator creates an Evaluator with the given thresholds.
func NewEvaluator(cfg Config) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Config returns the evaluator thresholds.
func (e *Evaluator) Config() Config {
	return e.cfg
}

// Evaluate runs every sub-check and aggregates them. It never fails; short
// series leave every condition false and the divergence unknown.
func (e *Evaluator) Evaluate(series *model.Series) *model.SignalResult {
	bars := series.Bars
	res := &model.SignalResult{
		Symbol:      series.Symbol,
		LatestClose: series.LatestClose(),
		Outcome:     model.OutcomeOK,
	}

	// Investor flow is independent of the price look-back.
	res.Foreign = ConsecutiveNetBuying(series.ForeignNet(), e.cfg.ConsecutiveDays)
	res.Institution = ConsecutiveNetBuying(series.InstitutionNet(), e.cfg.ConsecutiveDays)

	if len(bars) < MinBars {
		res.Outcome = model.OutcomeInsufficientData
		res.Foreign.MeetsCondition = false
		res.Institution.MeetsCondition = false
		res.Divergence = model.Divergence{Category: model.DivergenceUnknown, Outcome: model.OutcomeInsufficientData}
		res.Trading = model.TradingValue{Reason: "insufficient price data", Outcome: model.OutcomeInsufficientData}
		return res
	}

	res.ForeignConsecutiveBuy = res.Foreign.MeetsCondition
	res.InstitutionConsecutiveBuy = res.Institution.MeetsCondition

	// Price conditions
	res.BelowMA20 = BelowMA20(bars)
	res.VolumeSufficient = VolumeSufficient(bars, e.cfg.MinVolume)
	res.AboveBollingerLower, res.BollingerLower = AboveBollingerLower(bars, e.cfg.BollingerWindow, e.cfg.BollingerK)
	res.Trading = TradingValueOf(bars, e.cfg.MinTradingValue)
	res.TradingValueSufficient = res.Trading.MeetsCondition

	res.Divergence = MA20Divergence(bars)
	res.MA20 = res.Divergence.MA20
	if res.Divergence.Outcome == model.OutcomeError {
		res.Outcome = model.OutcomeError
	}

	// Composite score
	score := e.cfg.BaseScore
	if calculator.IsGoldenCross(bars, e.cfg.GoldenCrossShort, e.cfg.GoldenCrossLong) {
		score++
		res.BonusSignals = append(res.BonusSignals, model.TagGoldenCross)
	}
	if calculator.IsVolumeBreakout(bars, e.cfg.BreakoutPeriod, e.cfg.BreakoutMultiplier) {
		score++
		res.BonusSignals = append(res.BonusSignals, model.TagVolumeBreakout)
	}
	res.DivergenceBonus = DivergenceBonus(res.Divergence.Category, e.cfg.Divergence)
	res.CompositeScore = score + res.DivergenceBonus

	return res
}
