package hedging

import (
	"github.com/elys-network/hedgevault/internal/types"
)

// CollateralRebalance is the outcome of RebalanceCollateralRatio.
type CollateralRebalance struct {
	Transfer float64 // Withdrawn from the pool, half to collateral and half to repay debt. Negative reverses the flow.
	Position types.Position
	Warnings []NumericWarning
}

// RebalanceCollateralRatio restores debt/collateral = tcr with one transfer between the pool and the
// debt/collateral pair. It is fee-free internal accounting, so total equity is unchanged.
func RebalanceCollateralRatio(p types.Position, tcr float64) CollateralRebalance {
	transfer := (p.Debt - p.Collateral*tcr) / (1 + tcr)
	next := types.Position{
		Collateral: p.Collateral + transfer,
		Debt:       p.Debt - transfer,
		Liquidity:  p.Liquidity - 2*transfer,
	}
	return CollateralRebalance{
		Transfer: transfer,
		Position: next,
		Warnings: checkBalances("collateral_rebalance", p, next),
	}
}

// ExposureRebalance is the outcome of RebalanceExposure.
type ExposureRebalance struct {
	TargetExposureValue float64
	Withdrawal          float64 // Pool value withdrawn to repay debt. Negative borrows more and adds to the pool.
	Fee                 float64 // Withdrawal * swapFee / 2, the only value that leaves the position
	Position            types.Position
	Warnings            []NumericWarning
}

// RebalanceExposure restores exposure = te by withdrawing from the pool and repaying debt.
// Only half of the withdrawal is swapped, so the fee drag on the whole amount is swapFee/2.
func RebalanceExposure(p types.Position, te, w, swapFee float64) ExposureRebalance {
	targetExposureValue := p.Total() * te
	withdrawal := 2 * (targetExposureValue - w*p.Liquidity + p.Debt)
	next := types.Position{
		Collateral: p.Collateral,
		Debt:       p.Debt - withdrawal*(1-swapFee/2),
		Liquidity:  p.Liquidity - withdrawal,
	}
	return ExposureRebalance{
		TargetExposureValue: targetExposureValue,
		Withdrawal:          withdrawal,
		Fee:                 withdrawal * swapFee / 2,
		Position:            next,
		Warnings:            checkBalances("exposure_rebalance", p, next),
	}
}
