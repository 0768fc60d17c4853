package simulation

import (
	"fmt"
	"math"

	"github.com/elys-network/hedgevault/internal/hedging"
	"github.com/elys-network/hedgevault/internal/logger"
	"github.com/elys-network/hedgevault/internal/types"
	"github.com/rs/zerolog"
)

// Simulator replays a hedged LP strategy over a price path. It holds only immutable
// parameters; the evolving state is threaded through Step by the caller.
type Simulator struct {
	logger   zerolog.Logger
	strategy types.StrategyParameters
	params   types.RunParameters
	yields   hedging.Yields
}

// StepState is the state carried from one step to the next.
type StepState struct {
	Position       types.Position
	TargetExposure float64
}

// StepInput is the market data and target for one step of the path.
type StepInput struct {
	Index                int
	Price                float64
	PriceChange          float64
	SecondaryPriceChange float64
	TargetExposure       float64 // Prescribed target; differs from the state's target to trigger a retarget
}

// New validates the parameters and returns a Simulator. A zero secondary weight is
// replaced by the complement of the variable weight.
func New(strategy types.StrategyParameters, params types.RunParameters) (*Simulator, error) {
	if strategy.WeightSecondary == 0 {
		strategy.WeightSecondary = 1 - strategy.WeightVariable
	}
	if err := hedging.ValidateStrategy(strategy); err != nil {
		return nil, fmt.Errorf("invalid strategy parameters: %w", err)
	}
	if err := validateRunParameters(params); err != nil {
		return nil, fmt.Errorf("invalid run parameters: %w", err)
	}

	return &Simulator{
		logger:   logger.GetForComponent("simulation"),
		strategy: strategy,
		params:   params,
		yields:   hedging.PerStepYields(params),
	}, nil
}

// Strategy returns the normalized strategy parameters.
func (s *Simulator) Strategy() types.StrategyParameters {
	return s.strategy
}

// InitialState builds the equilibrium position for total equity under the configured targets.
// Calling it again mid-run resets the strategy to a fresh equilibrium.
func (s *Simulator) InitialState(total float64) (StepState, error) {
	p, err := hedging.EquilibriumPosition(total, s.strategy.TargetCollateralRatio, s.strategy.TargetExposure, s.strategy.WeightVariable)
	if err != nil {
		return StepState{}, fmt.Errorf("failed to build initial position: %w", err)
	}
	return StepState{Position: p, TargetExposure: s.strategy.TargetExposure}, nil
}

// Step applies accrual and then the rebalance triggers in fixed priority order:
// exposure retarget, exposure drift, collateral ratio. It returns the next state and
// the recorded row. On error the returned state is the last one reached inside the step.
func (s *Simulator) Step(state StepState, in StepInput) (StepState, types.StepRecord, error) {
	w1 := s.strategy.WeightVariable
	tcr := s.strategy.TargetCollateralRatio
	fee := s.strategy.SwapFee

	pos := hedging.Accrue(state.Position, s.yields, in.PriceChange, in.SecondaryPriceChange, w1, s.strategy.WeightSecondary)
	next := StepState{Position: pos, TargetExposure: state.TargetExposure}
	record := types.StepRecord{
		Index:       in.Index,
		Price:       in.Price,
		PriceChange: in.PriceChange,
	}

	cr, exposure, err := hedging.DeriveState(pos, w1)
	if err != nil {
		return next, record, fmt.Errorf("step %d after accrual: %w", in.Index, err)
	}
	record.CollateralRatio = cr
	record.Exposure = exposure

	var updated, exposureRebalanced, collateralRebalanced bool

	if in.TargetExposure != next.TargetExposure {
		res, err := hedging.RetargetExposure(next.Position, in.TargetExposure, tcr, w1, fee)
		if err != nil {
			return next, record, fmt.Errorf("step %d retarget exposure: %w", in.Index, err)
		}
		s.logger.Debug().
			Int("step", in.Index).
			Float64("fromTarget", next.TargetExposure).
			Float64("toTarget", in.TargetExposure).
			Float64("fees", res.Fees).
			Msg("Target exposure updated")
		next.Position = res.Position
		next.TargetExposure = in.TargetExposure
		record.SwapFees += res.Fees
		record.Warnings = s.appendWarnings(record.Warnings, in.Index, res.Warnings)
		record.Executed = append(record.Executed, types.ActionUpdatedExposure)
		updated = true

		if cr, exposure, err = hedging.DeriveState(next.Position, w1); err != nil {
			return next, record, fmt.Errorf("step %d after retarget: %w", in.Index, err)
		}
	}

	if math.Abs(next.TargetExposure-exposure) > s.params.ExposureThreshold {
		res := hedging.RebalanceExposure(next.Position, next.TargetExposure, w1, fee)
		s.logger.Debug().
			Int("step", in.Index).
			Float64("exposure", exposure).
			Float64("withdrawal", res.Withdrawal).
			Msg("Exposure rebalanced")
		next.Position = res.Position
		record.SwapFees += res.Fee
		record.Warnings = s.appendWarnings(record.Warnings, in.Index, res.Warnings)
		record.Executed = append(record.Executed, types.ActionExposureRebalanced)
		exposureRebalanced = true

		if cr, exposure, err = hedging.DeriveState(next.Position, w1); err != nil {
			return next, record, fmt.Errorf("step %d after exposure rebalance: %w", in.Index, err)
		}
	}

	if cr > s.params.MaxCollateralRatio || cr < s.params.MinCollateralRatio {
		res := hedging.RebalanceCollateralRatio(next.Position, tcr)
		s.logger.Debug().
			Int("step", in.Index).
			Float64("collateralRatio", cr).
			Float64("transfer", res.Transfer).
			Msg("Collateral ratio rebalanced")
		next.Position = res.Position
		record.Warnings = s.appendWarnings(record.Warnings, in.Index, res.Warnings)
		record.Executed = append(record.Executed, types.ActionCollateralRebalanced)
		collateralRebalanced = true
	}

	if cr, exposure, err = hedging.DeriveState(next.Position, w1); err != nil {
		return next, record, fmt.Errorf("step %d after rebalancing: %w", in.Index, err)
	}

	record.Position = next.Position
	record.Total = next.Position.Total()
	record.UpdatedRatio = cr
	record.UpdatedExposure = exposure
	record.TargetExposure = next.TargetExposure
	record.Action = resolveAction(updated, exposureRebalanced, collateralRebalanced)
	return next, record, nil
}

// resolveAction collapses the fired triggers into one label. Both takes precedence over
// UpdatedExposure, which in turn hides any drift or ratio rebalance on the same step.
func resolveAction(updated, exposureRebalanced, collateralRebalanced bool) types.ActionType {
	switch {
	case exposureRebalanced && collateralRebalanced:
		return types.ActionBoth
	case updated:
		return types.ActionUpdatedExposure
	case exposureRebalanced:
		return types.ActionExposureRebalanced
	case collateralRebalanced:
		return types.ActionCollateralRebalanced
	default:
		return types.ActionNoAction
	}
}

func (s *Simulator) appendWarnings(dst []string, step int, warnings []hedging.NumericWarning) []string {
	for _, w := range warnings {
		s.logger.Warn().
			Int("step", step).
			Str("operation", w.Operation).
			Str("field", w.Field).
			Float64("requested", w.Requested).
			Float64("available", w.Available).
			Msg("Rebalance over-withdraws a balance")
		dst = append(dst, w.String())
	}
	return dst
}
