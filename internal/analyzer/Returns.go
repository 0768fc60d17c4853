package analyzer

// RollingReturns returns the fractional change of values over a window of periods steps:
// out[i] = values[i+periods]/values[i] - 1. Windows starting at a zero value are skipped.
// The result is empty when periods < 1 or the series is not longer than the window.
func RollingReturns(values []float64, periods int) []float64 {
	if periods < 1 || len(values) <= periods {
		return nil
	}
	out := make([]float64, 0, len(values)-periods)
	for i := periods; i < len(values); i++ {
		base := values[i-periods]
		if base == 0 {
			continue
		}
		out = append(out, values[i]/base-1)
	}
	return out
}

// extremes returns the largest and smallest element, or zeros for an empty slice.
func extremes(values []float64) (max, min float64) {
	for i, v := range values {
		if i == 0 || v > max {
			max = v
		}
		if i == 0 || v < min {
			min = v
		}
	}
	return max, min
}

// maxDrawdown returns the largest peak-to-trough decline as a fraction of the peak.
func maxDrawdown(values []float64) float64 {
	var peak, worst float64
	for i, v := range values {
		if i == 0 || v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}
