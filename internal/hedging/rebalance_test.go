package hedging

import (
	"testing"

	"github.com/elys-network/hedgevault/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebalanceCollateralRatio(t *testing.T) {
	tests := []struct {
		name     string
		p        types.Position
		transfer float64
		want     types.Position
	}{
		{
			name:     "ratio too high",
			p:        types.Position{Collateral: 100, Debt: 70, Liquidity: 40},
			transfer: 6.25,
			want:     types.Position{Collateral: 106.25, Debt: 63.75, Liquidity: 27.5},
		},
		{
			name:     "ratio too low",
			p:        types.Position{Collateral: 100, Debt: 50, Liquidity: 40},
			transfer: -6.25,
			want:     types.Position{Collateral: 93.75, Debt: 56.25, Liquidity: 52.5},
		},
		{
			name:     "already on target",
			p:        types.Position{Collateral: 62.5, Debt: 37.5, Liquidity: 75},
			transfer: 0,
			want:     types.Position{Collateral: 62.5, Debt: 37.5, Liquidity: 75},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := RebalanceCollateralRatio(tt.p, 0.6)

			assert.InDelta(t, tt.transfer, res.Transfer, tolerance)
			assert.InDelta(t, tt.want.Collateral, res.Position.Collateral, tolerance)
			assert.InDelta(t, tt.want.Debt, res.Position.Debt, tolerance)
			assert.InDelta(t, tt.want.Liquidity, res.Position.Liquidity, tolerance)
			assert.InDelta(t, tt.p.Total(), res.Position.Total(), tolerance)
			assert.Empty(t, res.Warnings)

			cr, _, err := DeriveState(res.Position, 0.5)
			require.NoError(t, err)
			assert.InDelta(t, 0.6, cr, tolerance)
		})
	}
}

func TestRebalanceCollateralRatio_Idempotent(t *testing.T) {
	positions := []types.Position{
		{Collateral: 100, Debt: 70, Liquidity: 40},
		{Collateral: 80, Debt: 20, Liquidity: 120},
		{Collateral: 12.3, Debt: 9.9, Liquidity: 4.4},
	}
	for _, p := range positions {
		first := RebalanceCollateralRatio(p, 0.6)
		second := RebalanceCollateralRatio(first.Position, 0.6)

		assert.InDelta(t, 0, second.Transfer, tolerance)
		assert.InDelta(t, first.Position.Collateral, second.Position.Collateral, tolerance)
		assert.InDelta(t, first.Position.Debt, second.Position.Debt, tolerance)
		assert.InDelta(t, first.Position.Liquidity, second.Position.Liquidity, tolerance)
	}
}

func TestRebalanceCollateralRatio_OverWithdrawal(t *testing.T) {
	// Transfer of 12.5 needs 25 from a pool holding 10.
	res := RebalanceCollateralRatio(types.Position{Collateral: 50, Debt: 50, Liquidity: 10}, 0.6)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "liquidity", res.Warnings[0].Field)
	assert.InDelta(t, 25, res.Warnings[0].Requested, tolerance)
	assert.InDelta(t, 10, res.Warnings[0].Available, tolerance)
	assert.Less(t, res.Position.Liquidity, 0.0, "balances are reported, not clamped")
}

func TestRebalanceExposure(t *testing.T) {
	tests := []struct {
		name       string
		p          types.Position
		withdrawal float64
		wantDebt   float64
		wantLiq    float64
	}{
		{"exposure too short", types.Position{Collateral: 62.5, Debt: 40, Liquidity: 75}, 5, 35.00625, 70},
		{"exposure too long", types.Position{Collateral: 62.5, Debt: 35, Liquidity: 75}, -5, 39.99375, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := RebalanceExposure(tt.p, 0, 0.5, 0.0025)

			assert.InDelta(t, 0, res.TargetExposureValue, tolerance)
			assert.InDelta(t, tt.withdrawal, res.Withdrawal, tolerance)
			assert.InDelta(t, tt.wantDebt, res.Position.Debt, tolerance)
			assert.InDelta(t, tt.wantLiq, res.Position.Liquidity, tolerance)
			assert.Equal(t, tt.p.Collateral, res.Position.Collateral)
			assert.Empty(t, res.Warnings)
		})
	}
}

func TestRebalanceExposure_Conservation(t *testing.T) {
	positions := []types.Position{
		{Collateral: 62.5, Debt: 40, Liquidity: 75},
		{Collateral: 62.5, Debt: 35, Liquidity: 75},
		{Collateral: 100, Debt: 55, Liquidity: 90},
		{Collateral: 30, Debt: 10, Liquidity: 15},
	}
	for _, te := range []float64{-0.1, 0, 0.1} {
		for _, p := range positions {
			res := RebalanceExposure(p, te, 0.5, 0.0025)
			assert.InDelta(t, p.Total()-res.Withdrawal*0.0025/2, res.Position.Total(), tolerance)
			assert.InDelta(t, res.Withdrawal*0.0025/2, res.Fee, tolerance)
		}
	}
}

func TestRebalanceExposure_RestoresTargetWithoutFee(t *testing.T) {
	p := types.Position{Collateral: 100, Debt: 55, Liquidity: 90}
	res := RebalanceExposure(p, 0.05, 0.5, 0)

	_, exposure, err := DeriveState(res.Position, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, exposure, tolerance)
}

func TestRebalanceExposure_OverWithdrawal(t *testing.T) {
	// Withdrawal of 80 repays more than the 60 of debt outstanding.
	res := RebalanceExposure(types.Position{Collateral: 100, Debt: 60, Liquidity: 40}, 0, 0.5, 0.0025)

	require.NotEmpty(t, res.Warnings)
	fields := make([]string, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		fields = append(fields, w.Field)
	}
	assert.Contains(t, fields, "debt")
	assert.Contains(t, fields, "liquidity")
}
