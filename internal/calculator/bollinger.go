package calculator

import (
	"math"

	"TradeSentinel/internal/model"
)

// Bands is a Bollinger band snapshot for the latest bar.
type Bands struct {
	Middle float64
	Upper  float64
	Lower  float64
	StdDev float64
}

// CalculatePopulationStdDev returns the population standard deviation of the last period values.
func CalculatePopulationStdDev(values []float64, period int) (float64, error) {
	mean, err := CalculateSMA(values, period)
	if err != nil {
		return 0, err
	}
	var sq float64
	for i := len(values) - period; i < len(values); i++ {
		d := values[i] - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(period)), nil
}

// CalculateBollinger computes mean ± k·stddev over the last window closes.
func CalculateBollinger(bars []model.PriceBar, window int, k float64) (Bands, error) {
	closes := ExtractCloses(bars)
	mean, err := CalculateSMA(closes, window)
	if err != nil {
		return Bands{}, err
	}
	sd, err := CalculatePopulationStdDev(closes, window)
	if err != nil {
		return Bands{}, err
	}
	return Bands{
		Middle: mean,
		Upper:  mean + k*sd,
		Lower:  mean - k*sd,
		StdDev: sd,
	}, nil
}
