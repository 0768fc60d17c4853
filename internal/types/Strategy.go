/*

This file contains the parameter types for a hedged LP strategy and for a simulation run over a price path.

*/

package types

// StrategyParameters holds the targets and pool settings of one strategy.
// TargetExposure is the only field a run may change after construction.
type StrategyParameters struct {
	TargetCollateralRatio float64 `json:"target_collateral_ratio" yaml:"target_collateral_ratio"` // Desired debt / collateral (e.g., 0.6).
	TargetExposure        float64 `json:"target_exposure" yaml:"target_exposure"`                 // Desired net exposure to the variable asset as a fraction of equity.
	WeightVariable        float64 `json:"weight_variable" yaml:"weight_variable"`                 // Pool weight of the price-exposed asset (w1).
	WeightSecondary       float64 `json:"weight_secondary" yaml:"weight_secondary"`               // Pool weight of the secondary asset (w2).
	SwapFee               float64 `json:"swap_fee" yaml:"swap_fee"`                               // Proportional fee charged on a pool swap (e.g., 0.0025).
}

// RunParameters holds the yield, step and threshold settings of a simulation run.
type RunParameters struct {
	MinutesPerStep     float64 `json:"minutes_per_step" yaml:"minutes_per_step"`     // Granularity of the price path.
	CollateralAPR      float64 `json:"collateral_apr" yaml:"collateral_apr"`         // Annualized yield earned on collateral.
	DebtAPR            float64 `json:"debt_apr" yaml:"debt_apr"`                     // Annualized interest owed on debt.
	LiquidityAPR       float64 `json:"liquidity_apr" yaml:"liquidity_apr"`           // Annualized yield earned by the pool stake.
	MaxCollateralRatio float64 `json:"max_cr" yaml:"max_cr"`                         // Upper collateral ratio bound before a collateral rebalance.
	MinCollateralRatio float64 `json:"min_cr" yaml:"min_cr"`                         // Lower collateral ratio bound before a collateral rebalance.
	ExposureThreshold  float64 `json:"exposure_threshold" yaml:"exposure_threshold"` // Allowed |target - exposure| drift before an exposure rebalance.
}

// StepsPerYear converts the step granularity into the number of steps in a 365 day year.
func (r RunParameters) StepsPerYear() float64 {
	return 365 * 24 * 60 / r.MinutesPerStep
}
