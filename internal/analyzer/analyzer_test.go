package analyzer

import (
	"math"
	"testing"

	"github.com/elys-network/hedgevault/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func TestCalculateVolatility(t *testing.T) {
	// Alternating +10% / -10% log returns: mean 0, population std dev ln(1.1).
	up := math.Log(1.1)
	values := []float64{100, 100 * math.Exp(up), 100, 100 * math.Exp(up), 100}

	vol, err := CalculateVolatility(values, 365)
	require.NoError(t, err)
	assert.InDelta(t, up*math.Sqrt(365), vol, tolerance)
}

func TestCalculateVolatility_InsufficientData(t *testing.T) {
	_, err := CalculateVolatility([]float64{100}, 365)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = CalculateVolatility([]float64{-1, 0, -2}, 365)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestRollingReturns(t *testing.T) {
	values := []float64{100, 110, 121, 0, 50}

	// The window starting at the zero value is skipped.
	assert.InDeltaSlice(t, []float64{0.1, 0.1, -1}, RollingReturns(values, 1), tolerance)
	assert.InDeltaSlice(t, []float64{0.21, -1, 50.0/121 - 1}, RollingReturns(values, 2), tolerance)
	assert.Empty(t, RollingReturns(values, 5))
	assert.Empty(t, RollingReturns(values, 0))
}

func TestMaxDrawdown(t *testing.T) {
	assert.InDelta(t, 0.5, maxDrawdown([]float64{100, 120, 60, 110, 90}), tolerance)
	assert.Zero(t, maxDrawdown([]float64{1, 2, 3}))
}

func row(total, cr, exposure float64, action types.ActionType) types.StepRecord {
	return types.StepRecord{Total: total, CollateralRatio: cr, Exposure: exposure, Action: action}
}

func TestSummarize(t *testing.T) {
	// Twelve-hour steps: two steps per day, fourteen per week.
	rows := []types.StepRecord{
		row(100, 0.60, 0.00, types.ActionNoAction),
		row(102, 0.62, 0.03, types.ActionNoAction),
		row(99, 0.66, 0.06, types.ActionCollateralRebalanced),
		row(101, 0.59, -0.02, types.ActionExposureRebalanced),
		row(104, 0.61, 0.01, types.ActionNoAction),
	}

	s, err := Summarize(rows, 720)
	require.NoError(t, err)

	assert.Equal(t, 100.0, s.InitialValue)
	assert.Equal(t, 104.0, s.FinalValue)
	assert.Equal(t, 104.0, s.MaxValue)
	assert.Equal(t, 99.0, s.MinValue)
	assert.InDelta(t, 4.0, s.TotalReturn, tolerance)
	assert.InDelta(t, 4.0, s.ReturnPercent, tolerance)
	assert.InDelta(t, 2.5, s.TotalDays, tolerance)
	assert.InDelta(t, 365*(4/2.5)/100, s.AnnualizedReturn, tolerance)

	assert.InDelta(t, 0.66, s.MaxCollateralRatio, tolerance)
	assert.InDelta(t, 0.59, s.MinCollateralRatio, tolerance)
	assert.InDelta(t, 0.06, s.MaxExposure, tolerance)
	assert.InDelta(t, -0.02, s.MinExposure, tolerance)

	// Daily window of two steps: 99/100, 101/102, 104/99.
	assert.InDelta(t, 104.0/99-1, s.MaxDailyReturn, tolerance)
	assert.InDelta(t, 99.0/100-1, s.MinDailyReturn, tolerance)
	assert.Zero(t, s.MaxWeeklyReturn)
	assert.Zero(t, s.MinWeeklyReturn)

	assert.InDelta(t, 3.0/102, s.MaxDrawdown, tolerance)
	assert.Greater(t, s.Volatility, 0.0)

	assert.Equal(t, 3, s.ActionCounts[types.ActionNoAction])
	assert.Equal(t, 1, s.ActionCounts[types.ActionCollateralRebalanced])
	assert.Equal(t, 1, s.ActionCounts[types.ActionExposureRebalanced])
	assert.Equal(t, 0, s.ActionCounts[types.ActionBoth])
	assert.Len(t, s.ActionCounts, len(types.AllActionTypes))
}

func TestSummarize_SingleRow(t *testing.T) {
	s, err := Summarize([]types.StepRecord{row(100, 0.6, 0, types.ActionNoAction)}, 60)
	require.NoError(t, err)
	assert.Zero(t, s.TotalReturn)
	assert.Zero(t, s.Volatility)
	assert.InDelta(t, 1.0/24, s.TotalDays, tolerance)
}

func TestSummarize_InvalidInput(t *testing.T) {
	_, err := Summarize(nil, 60)
	assert.ErrorIs(t, err, ErrInvalidSummaryInput)

	_, err = Summarize([]types.StepRecord{row(100, 0.6, 0, types.ActionNoAction)}, 0)
	assert.ErrorIs(t, err, ErrInvalidSummaryInput)

	_, err = Summarize([]types.StepRecord{row(0, 0.6, 0, types.ActionNoAction)}, 60)
	assert.ErrorIs(t, err, ErrInvalidSummaryInput)
}
