package calculator

import "TradeSentinel/internal/model"

// AverageVolume returns the mean volume over the last period bars.
func AverageVolume(bars []model.PriceBar, period int) (float64, error) {
	return CalculateSMA(ExtractVolumes(bars), period)
}

// IsVolumeBreakout reports whether the latest volume exceeds multiplier × its period average.
// The average includes the latest bar.
func IsVolumeBreakout(bars []model.PriceBar, period int, multiplier float64) bool {
	if len(bars) < period+1 {
		return false
	}
	avg, err := AverageVolume(bars, period)
	if err != nil || avg == 0 {
		return false
	}
	return bars[len(bars)-1].Volume > avg*multiplier
}

// PercentChange returns the change of the latest close versus the close lookback bars earlier.
func PercentChange(bars []model.PriceBar, lookback int) (float64, bool) {
	if lookback <= 0 || len(bars) < lookback+1 {
		return 0, false
	}
	base := bars[len(bars)-1-lookback].Close
	if base == 0 {
		return 0, false
	}
	return (bars[len(bars)-1].Close - base) / base, true
}
