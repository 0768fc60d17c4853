package analyzer

import (
	"errors"
	"math"
)

// ErrInsufficientData indicates that not enough data points were provided
// to calculate volatility (need at least 2 points for 1 return).
var ErrInsufficientData = errors.New("insufficient data points to calculate volatility")

// CalculateVolatility calculates the annualized historical volatility from a chronological series of values.
// It uses logarithmic returns and standard deviation.
// The annualizationFactor should match the frequency of the data (e.g., 8760 for hourly, 365 for daily).
func CalculateVolatility(values []float64, annualizationFactor float64) (float64, error) {
	n := len(values)

	// --- Input Validation ---
	if n < 2 {
		return 0, ErrInsufficientData // Need at least two points to calculate one return
	}

	// --- Calculate Logarithmic Returns ---
	logReturns := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		current := values[i]
		previous := values[i-1]

		// Non-positive values would break math.Log
		if previous <= 0 || current <= 0 {
			continue
		}

		logReturns = append(logReturns, math.Log(current/previous))
	}

	numReturns := len(logReturns)
	if numReturns == 0 {
		return 0, ErrInsufficientData
	}

	// --- Calculate Standard Deviation of Log Returns ---
	var sum float64
	for _, r := range logReturns {
		sum += r
	}
	mean := sum / float64(numReturns)

	var sumSqDiff float64
	for _, r := range logReturns {
		sumSqDiff += math.Pow(r-mean, 2)
	}

	// Population standard deviation (N, not N-1)
	stdDev := math.Sqrt(sumSqDiff / float64(numReturns))

	// --- Annualize the Standard Deviation ---
	return stdDev * math.Sqrt(annualizationFactor), nil
}
