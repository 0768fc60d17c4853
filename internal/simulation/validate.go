package simulation

import (
	"fmt"
	"math"

	"github.com/elys-network/hedgevault/internal/hedging"
	"github.com/elys-network/hedgevault/internal/types"
)

// validateRunParameters checks thresholds and step granularity.
func validateRunParameters(params types.RunParameters) error {
	if math.IsNaN(params.MinutesPerStep) || params.MinutesPerStep <= 0 {
		return fmt.Errorf("%w: minutes per step %g must be positive", hedging.ErrConfiguration, params.MinutesPerStep)
	}
	if !isFinite(params.MinCollateralRatio) || !isFinite(params.MaxCollateralRatio) {
		return fmt.Errorf("%w: collateral ratio bounds [%g, %g] must be finite",
			hedging.ErrConfiguration, params.MinCollateralRatio, params.MaxCollateralRatio)
	}
	if params.MinCollateralRatio > params.MaxCollateralRatio {
		return fmt.Errorf("%w: min collateral ratio %g exceeds max collateral ratio %g",
			hedging.ErrConfiguration, params.MinCollateralRatio, params.MaxCollateralRatio)
	}
	if !isFinite(params.ExposureThreshold) || params.ExposureThreshold < 0 {
		return fmt.Errorf("%w: exposure threshold %g must be finite and not negative", hedging.ErrConfiguration, params.ExposureThreshold)
	}
	return nil
}

// validateSeries checks the price path and the optional aligned sequences.
func validateSeries(series Series) error {
	n := len(series.Prices)
	if n < 2 {
		return fmt.Errorf("%w: price path needs at least 2 prices, got %d", hedging.ErrConfiguration, n)
	}
	for i, p := range series.Prices {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: price %d is not finite", hedging.ErrConfiguration, i)
		}
		if p == 0 && i < n-1 {
			return fmt.Errorf("%w: price %d is zero, the next price change is undefined", hedging.ErrConfiguration, i)
		}
	}
	if m := len(series.SecondaryPrices); m != 0 {
		if m != n {
			return fmt.Errorf("%w: secondary price path has %d prices, want %d", hedging.ErrConfiguration, m, n)
		}
		for i, p := range series.SecondaryPrices[:m-1] {
			if p == 0 || math.IsNaN(p) || math.IsInf(p, 0) {
				return fmt.Errorf("%w: secondary price %d must be finite and non-zero", hedging.ErrConfiguration, i)
			}
		}
	}
	if m := len(series.ExposureTargets); m != 0 && m != n && m != n-1 {
		return fmt.Errorf("%w: exposure target sequence has %d values, want %d or %d", hedging.ErrConfiguration, m, n, n-1)
	}
	for i, te := range series.ExposureTargets {
		if !isFinite(te) {
			return fmt.Errorf("%w: exposure target %d is not finite", hedging.ErrConfiguration, i)
		}
	}
	if math.IsNaN(series.InitialCapital) || series.InitialCapital <= 0 {
		return fmt.Errorf("%w: initial capital %g must be positive", hedging.ErrConfiguration, series.InitialCapital)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// PriceChanges returns the relative change between consecutive prices, (p[i]-p[i-1]) / |p[i-1]|.
func PriceChanges(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	changes := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		changes[i-1] = (prices[i] - prices[i-1]) / math.Abs(prices[i-1])
	}
	return changes
}
