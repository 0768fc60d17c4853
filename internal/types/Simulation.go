/*

This file contains the types recorded by a simulation run: one StepRecord per price, and the run level record and summary.

*/

package types

import "time"

// ActionType labels what the decision policy did on a step.
type ActionType string

const (
	ActionNoAction             ActionType = "NO_ACTION"
	ActionUpdatedExposure      ActionType = "UPDATED_EXPOSURE"      // Target exposure changed and the position was re-equilibrated
	ActionExposureRebalanced   ActionType = "EXPOSURE_REBALANCED"   // Exposure drifted past the threshold
	ActionCollateralRebalanced ActionType = "COLLATERAL_REBALANCED" // Collateral ratio left [min_cr, max_cr]
	ActionBoth                 ActionType = "BOTH"                  // Exposure and collateral rebalances on the same step
)

// AllActionTypes lists every label in reporting order.
var AllActionTypes = []ActionType{
	ActionNoAction,
	ActionUpdatedExposure,
	ActionExposureRebalanced,
	ActionCollateralRebalanced,
	ActionBoth,
}

// StepRecord is one row of the recorded time series.
type StepRecord struct {
	Index           int          `json:"index"`
	Position        Position     `json:"position"`
	Total           float64      `json:"total"`
	CollateralRatio float64      `json:"collateral_ratio"`         // Before any trigger fired
	Exposure        float64      `json:"exposure"`                 // Before any trigger fired
	UpdatedRatio    float64      `json:"updated_collateral_ratio"` // After the triggers
	UpdatedExposure float64      `json:"updated_exposure"`         // After the triggers
	Action          ActionType   `json:"action"`
	Executed        []ActionType `json:"executed,omitempty"` // Operations in execution order
	Price           float64      `json:"price"`
	PriceChange     float64      `json:"price_change"`
	TargetExposure  float64      `json:"target_exposure"`
	SwapFees        float64      `json:"swap_fees"` // Fees paid by this step's operations
	Warnings        []string     `json:"warnings,omitempty"`
}

// RunStatus is the outcome of a simulation run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// RunRecord describes an archived simulation run.
type RunRecord struct {
	RunID          string             `json:"run_id"`
	Name           string             `json:"name"`
	CreatedAt      time.Time          `json:"created_at"`
	Status         RunStatus          `json:"status"`
	ErrorMessage   string             `json:"error_message,omitempty"`
	Strategy       StrategyParameters `json:"strategy"`
	Params         RunParameters      `json:"params"`
	InitialCapital float64            `json:"initial_capital"`
	StepCount      int                `json:"step_count"`
	Summary        *RunSummary        `json:"summary,omitempty"`
}

// RunSummary holds the statistics a reporting collaborator derives from a recorded series.
type RunSummary struct {
	InitialValue       float64            `json:"initial_value"`
	FinalValue         float64            `json:"final_value"`
	MaxValue           float64            `json:"max_value"`
	MinValue           float64            `json:"min_value"`
	TotalReturn        float64            `json:"total_return"`
	ReturnPercent      float64            `json:"return_percent"`
	AnnualizedReturn   float64            `json:"annualized_return"`
	MaxDailyReturn     float64            `json:"max_daily_return"`
	MinDailyReturn     float64            `json:"min_daily_return"`
	MaxWeeklyReturn    float64            `json:"max_weekly_return"`
	MinWeeklyReturn    float64            `json:"min_weekly_return"`
	TotalDays          float64            `json:"total_days"`
	MaxCollateralRatio float64            `json:"max_collateral_ratio"`
	MinCollateralRatio float64            `json:"min_collateral_ratio"`
	MaxExposure        float64            `json:"max_exposure"`
	MinExposure        float64            `json:"min_exposure"`
	MaxDrawdown        float64            `json:"max_drawdown"`
	Volatility         float64            `json:"volatility"` // Annualized, from step log returns
	ActionCounts       map[ActionType]int `json:"action_counts"`
}
