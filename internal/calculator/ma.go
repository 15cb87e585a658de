package calculator

import (
	"errors"

	"TradeSentinel/internal/model"
)

var (
	errPeriod       = errors.New("period must be positive")
	errInsufficient = errors.New("not enough data")
)

// CalculateSMA computes the simple moving average of the given values over the specified period.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod
	}
	if len(values) < period {
		return 0, errInsufficient
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// CalculateSMAAt computes the SMA of the window ending at index end (inclusive).
func CalculateSMAAt(values []float64, period, end int) (float64, error) {
	if end < 0 || end >= len(values) {
		return 0, errInsufficient
	}
	return CalculateSMA(values[:end+1], period)
}

// CalculateMA20 returns the 20-day simple moving average of closes.
func CalculateMA20(bars []model.PriceBar) (float64, error) {
	return CalculateSMA(ExtractCloses(bars), 20)
}

// IsGoldenCross reports whether the short SMA crossed above the long SMA on the latest bar.
func IsGoldenCross(bars []model.PriceBar, short, long int) bool {
	if short <= 0 || long <= short || len(bars) < long+1 {
		return false
	}
	closes := ExtractCloses(bars)
	last := len(closes) - 1
	shortToday, err1 := CalculateSMAAt(closes, short, last)
	longToday, err2 := CalculateSMAAt(closes, long, last)
	shortPrev, err3 := CalculateSMAAt(closes, short, last-1)
	longPrev, err4 := CalculateSMAAt(closes, long, last-1)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return false
	}
	return shortPrev < longPrev && shortToday > longToday
}

// ExtractCloses returns the close of every bar.
func ExtractCloses(bars []model.PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// ExtractVolumes returns the volume of every bar.
func ExtractVolumes(bars []model.PriceBar) []float64 {
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	return vols
}
