package strategy

import "TradeSentinel/internal/model"

// DivergenceConfig controls the MA20 divergence bonus.
type DivergenceConfig struct {
	Enabled     bool
	BonusScores map[model.DivergenceCategory]float64
}

// Config holds the evaluator thresholds.
type Config struct {
	MinVolume          float64
	BollingerWindow    int
	BollingerK         float64
	ConsecutiveDays    int
	MinTradingValue    float64
	BaseScore          float64
	GoldenCrossShort   int
	GoldenCrossLong    int
	BreakoutPeriod     int
	BreakoutMultiplier float64
	Divergence         DivergenceConfig
}

// DefaultConfig returns the thresholds used by the observed gating policy.
func DefaultConfig() Config {
	return Config{
		MinVolume:          1000,
		BollingerWindow:    20,
		BollingerK:         2,
		ConsecutiveDays:    2,
		MinTradingValue:    100_000_000,
		BaseScore:          3,
		GoldenCrossShort:   5,
		GoldenCrossLong:    20,
		BreakoutPeriod:     20,
		BreakoutMultiplier: 2.0,
		Divergence: DivergenceConfig{
			Enabled: true,
			BonusScores: map[model.DivergenceCategory]float64{
				model.DivergenceMild:     0.5,
				model.DivergenceModerate: 1.0,
				model.DivergenceStrong:   1.5,
			},
		},
	}
}
