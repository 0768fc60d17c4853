/*

This file contains the default parameters for the hedged LP strategy and its simulation runs.

*/

package config

import (
	"github.com/elys-network/hedgevault/internal/types"
)

// DefaultInitialCapital is the starting equity of a run.
const DefaultInitialCapital = 10000.0

// DefaultStrategyParameters provides the baseline strategy targets.
// These values are used when neither the environment nor a scenario overrides them.
var DefaultStrategyParameters = types.StrategyParameters{
	TargetCollateralRatio: 0.6, // Borrow 60% of collateral value.
	// Leaves room for a 40% adverse move in the borrowed asset before the lending market's
	// liquidation threshold, with the collateral rebalancer acting well before that.

	TargetExposure: 0.0, // Delta neutral.

	WeightVariable:  0.5, // Balanced two-asset pool.
	WeightSecondary: 0.5,

	SwapFee: 0.0025, // 25 bps per swap.
}

// DefaultRunParameters provides the baseline thresholds and yields for a simulation run.
var DefaultRunParameters = types.RunParameters{
	MinutesPerStep: 60, // Hourly price path.

	CollateralAPR: 0.0,
	DebtAPR:       0.0,
	LiquidityAPR:  0.0,

	MaxCollateralRatio: 0.65, // Rebalance once the ratio drifts 5 points from target.
	MinCollateralRatio: 0.55,

	ExposureThreshold: 0.05, // Rebalance once exposure drifts 5% of equity from target.
}
