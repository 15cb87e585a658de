package calculator

import (
	"TradeSentinel/internal/model"
)

// CalculateRSI returns the Wilder RSI of the closes. With fewer than
// period+1 bars it reports a neutral 50.
func CalculateRSI(bars []model.PriceBar, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod
	}
	if len(bars) < period+1 {
		return 50.0, nil
	}

	gains, losses := splitChanges(ExtractCloses(bars))
	p := float64(period)

	avgGain := sum(gains[:period]) / p
	avgLoss := sum(losses[:period]) / p
	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*(p-1) + gains[i]) / p
		avgLoss = (avgLoss*(p-1) + losses[i]) / p
	}

	switch {
	case avgGain == 0 && avgLoss == 0:
		return 50.0, nil
	case avgLoss == 0:
		return 100.0, nil
	}
	return 100.0 - 100.0/(1.0+avgGain/avgLoss), nil
}

// splitChanges turns closes into per-bar gains and losses, both non-negative.
func splitChanges(closes []float64) (gains, losses []float64) {
	gains = make([]float64, 0, len(closes)-1)
	losses = make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains = append(gains, d)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -d)
		}
	}
	return gains, losses
}

func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}
