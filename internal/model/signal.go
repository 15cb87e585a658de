package model

// Outcome tags the result of a sub-check.
type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeInsufficientData Outcome = "insufficient_data"
	OutcomeError            Outcome = "error"
)

// DivergenceCategory buckets the gap between price and MA20.
type DivergenceCategory string

const (
	DivergenceMild      DivergenceCategory = "mild"
	DivergenceModerate  DivergenceCategory = "moderate"
	DivergenceStrong    DivergenceCategory = "strong"
	DivergenceAboveMA20 DivergenceCategory = "above_ma20"
	DivergenceUnknown   DivergenceCategory = "unknown"
	DivergenceError     DivergenceCategory = "error"
)

// Bonus signal tags.
const (
	TagGoldenCross    = "golden_cross"
	TagVolumeBreakout = "volume_breakout"
)

// ConsecutiveBuying is the result of a consecutive net-buying scan.
type ConsecutiveBuying struct {
	Days           int
	Required       int
	MeetsCondition bool
	Reason         string
	Outcome        Outcome
}

// Divergence is the MA20 divergence of the latest close.
type Divergence struct {
	Pct      float64
	Known    bool
	MA20     float64
	Category DivergenceCategory
	Outcome  Outcome
}

// TradingValue is latest close × latest volume compared against a minimum.
type TradingValue struct {
	Value          float64
	MeetsCondition bool
	Reason         string
	Outcome        Outcome
}

// SignalResult aggregates every condition computed for one symbol.
type SignalResult struct {
	Symbol string

	BelowMA20                 bool
	VolumeSufficient          bool
	AboveBollingerLower       bool
	ForeignConsecutiveBuy     bool
	InstitutionConsecutiveBuy bool
	TradingValueSufficient    bool

	Foreign     ConsecutiveBuying
	Institution ConsecutiveBuying
	Divergence  Divergence
	Trading     TradingValue

	LatestClose    float64
	MA20           float64
	BollingerLower float64

	DivergenceBonus float64
	CompositeScore  float64
	BonusSignals    []string
	Outcome         Outcome
}

// HasBonus reports whether tag is among the bonus signals.
func (r *SignalResult) HasBonus(tag string) bool {
	for _, t := range r.BonusSignals {
		if t == tag {
			return true
		}
	}
	return false
}

// SellTiming is the score computed for a held symbol.
type SellTiming struct {
	Score   float64
	Reasons []string
	RSI     float64
	PnLPct  float64
	Outcome Outcome
}
