// Package formulas holds small numeric helpers shared by the statistics engine.
package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// PopStdDev calculates the population (biased) standard deviation.
// Empty input yields 0.
func PopStdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.PopStdDev(data, nil)
}

// RoundHalfEven rounds v to the given number of decimal places, resolving
// ties to the even neighbour. NaN and infinities pass through unchanged.
func RoundHalfEven(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).RoundBank(places).InexactFloat64()
}

// RollingPopStdDev returns the population standard deviation over a trailing
// window. The result has len(data)-window+1 entries; entry i covers
// data[i : i+window]. Returns nil when there are fewer points than the window.
func RollingPopStdDev(data []float64, window int) []float64 {
	if window < 2 || len(data) < window {
		return nil
	}
	// talib leaves the lookback prefix at zero
	out := talib.StdDev(data, window, 1.0)
	return out[window-1:]
}
