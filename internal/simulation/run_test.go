package simulation

import (
	"context"
	"math"
	"testing"

	"github.com/elys-network/hedgevault/internal/hedging"
	"github.com/elys-network/hedgevault/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInput(name string, prices []float64) RunInput {
	return RunInput{
		Name:     name,
		Strategy: testStrategy(),
		Params:   testParams(),
		Series:   Series{InitialCapital: 100, Prices: prices},
	}
}

func TestRun_FlatPath(t *testing.T) {
	res, err := Run(testInput("flat", []float64{1, 1, 1, 1}))
	require.NoError(t, err)
	require.NoError(t, res.Err)

	require.Len(t, res.Rows, 4)
	for i, row := range res.Rows {
		assert.Equal(t, i, row.Index)
		assert.Equal(t, types.ActionNoAction, row.Action)
		assert.InDelta(t, 100, row.Total, tolerance)
		assert.InDelta(t, 0.6, row.UpdatedRatio, tolerance)
		assert.InDelta(t, 0, row.UpdatedExposure, tolerance)
	}
	assert.Equal(t, "flat", res.Name)
	assert.Equal(t, 0.0, res.SwapFees)
}

func TestRun_InitialRow(t *testing.T) {
	res, err := Run(testInput("initial", []float64{2, 2.2}))
	require.NoError(t, err)

	row := res.Rows[0]
	assert.Equal(t, 0, row.Index)
	assert.Equal(t, types.ActionNoAction, row.Action)
	assert.Equal(t, 2.0, row.Price)
	assert.Equal(t, 0.0, row.PriceChange)
	assert.Equal(t, 0.0, row.TargetExposure)
	assert.InDelta(t, 62.5, row.Position.Collateral, tolerance)
	assert.Equal(t, row.CollateralRatio, row.UpdatedRatio)
	assert.Equal(t, row.Exposure, row.UpdatedExposure)

	assert.Equal(t, 2.2, res.Rows[1].Price)
	assert.InDelta(t, 0.1, res.Rows[1].PriceChange, tolerance)
}

func TestRun_YieldsAccruePerStep(t *testing.T) {
	in := testInput("yield", []float64{1, 1})
	in.Params.CollateralAPR = 0.0876
	in.Params.MinCollateralRatio = 0
	in.Params.MaxCollateralRatio = 1

	res, err := Run(in)
	require.NoError(t, err)

	// 8760 hourly steps per year
	assert.InDelta(t, 62.5*1.00001, res.Rows[1].Position.Collateral, tolerance)
	assert.InDelta(t, 37.5, res.Rows[1].Position.Debt, tolerance)
}

func TestRun_SecondaryPricePath(t *testing.T) {
	in := testInput("secondary", []float64{1, 1})
	in.Series.SecondaryPrices = []float64{1, 1.1}
	in.Params.ExposureThreshold = 1

	res, err := Run(in)
	require.NoError(t, err)

	assert.InDelta(t, 75*1.0488088481701516, res.Rows[1].Position.Liquidity, 1e-9)
}

func TestRun_ExposureTargets(t *testing.T) {
	for _, targets := range [][]float64{
		{0.1, 0.1},      // one per step
		{0.7, 0.1, 0.1}, // aligned to prices, first value dropped
	} {
		in := testInput("targets", []float64{1, 1, 1})
		in.Series.ExposureTargets = targets

		res, err := Run(in)
		require.NoError(t, err)
		require.Len(t, res.Rows, 3)

		assert.Equal(t, 0.0, res.Rows[0].TargetExposure)
		assert.Equal(t, types.ActionUpdatedExposure, res.Rows[1].Action)
		assert.Equal(t, 0.1, res.Rows[1].TargetExposure)
		assert.InDelta(t, 0.1, res.Rows[1].UpdatedExposure, 1e-3)
		assert.Equal(t, types.ActionNoAction, res.Rows[2].Action)
		assert.InDelta(t, 0.025, res.SwapFees, tolerance)
		assert.InDelta(t, 100-res.SwapFees, res.Final.Position.Total(), tolerance)
	}
}

func TestRun_Deterministic(t *testing.T) {
	in := testInput("replay", []float64{1, 1.04, 0.97, 1.12, 0.88, 0.91, 1.3})
	in.Series.ExposureTargets = []float64{0, 0, 0.05, 0.05, -0.05, 0}
	in.Params.ExposureThreshold = 0.01

	first, err := Run(in)
	require.NoError(t, err)
	second, err := Run(in)
	require.NoError(t, err)

	assert.Equal(t, first.Rows, second.Rows)
}

func TestRun_DegenerateStateKeepsPartialSeries(t *testing.T) {
	res, err := Run(testInput("blowup", []float64{1, 1.01, 11, 12}))
	require.ErrorIs(t, err, hedging.ErrDegenerateState)
	require.ErrorIs(t, res.Err, hedging.ErrDegenerateState)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, 1, res.Rows[1].Index)
}

func TestRun_InvalidSeries(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RunInput)
	}{
		{"single price", func(in *RunInput) { in.Series.Prices = []float64{1} }},
		{"zero price", func(in *RunInput) { in.Series.Prices = []float64{1, 0, 1} }},
		{"targets too short", func(in *RunInput) { in.Series.ExposureTargets = []float64{0} }},
		{"targets too long", func(in *RunInput) { in.Series.ExposureTargets = []float64{0, 0, 0, 0} }},
		{"secondary length", func(in *RunInput) { in.Series.SecondaryPrices = []float64{1, 1} }},
		{"no capital", func(in *RunInput) { in.Series.InitialCapital = 0 }},
		{"inverted bounds", func(in *RunInput) { in.Params.MinCollateralRatio = 0.9 }},
		{"NaN exposure target", func(in *RunInput) { in.Series.ExposureTargets = []float64{0, math.NaN()} }},
		{"infinite exposure target", func(in *RunInput) { in.Series.ExposureTargets = []float64{0, 0, math.Inf(-1)} }},
		{"NaN max ratio", func(in *RunInput) { in.Params.MaxCollateralRatio = math.NaN() }},
		{"NaN min ratio", func(in *RunInput) { in.Params.MinCollateralRatio = math.NaN() }},
		{"infinite threshold", func(in *RunInput) { in.Params.ExposureThreshold = math.Inf(1) }},
		{"NaN strategy exposure", func(in *RunInput) { in.Strategy.TargetExposure = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInput(tt.name, []float64{1, 1, 1})
			tt.mutate(&in)

			res, err := Run(in)
			assert.ErrorIs(t, err, hedging.ErrConfiguration)
			require.NotNil(t, res)
			assert.Empty(t, res.Rows)
		})
	}
}

func TestRunBatch(t *testing.T) {
	bad := testInput("bad", []float64{1})
	inputs := []RunInput{
		testInput("a", []float64{1, 1.1, 1.2}),
		bad,
		testInput("c", []float64{1, 0.9, 0.8}),
	}

	results, err := RunBatch(context.Background(), inputs, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "a", results[0].Name)
	assert.NoError(t, results[0].Err)
	assert.Len(t, results[0].Rows, 3)

	assert.Equal(t, "bad", results[1].Name)
	assert.ErrorIs(t, results[1].Err, hedging.ErrConfiguration)

	assert.Equal(t, "c", results[2].Name)
	assert.NoError(t, results[2].Err)

	single, err := Run(inputs[2])
	require.NoError(t, err)
	assert.Equal(t, single.Rows, results[2].Rows)
}

func TestRunBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunBatch(ctx, []RunInput{testInput("a", []float64{1, 1})}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
