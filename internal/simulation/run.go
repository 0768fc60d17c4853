package simulation

import (
	"fmt"
	"time"

	"github.com/elys-network/hedgevault/internal/hedging"
	"github.com/elys-network/hedgevault/internal/types"
)

// Series is the market data of one run.
type Series struct {
	InitialCapital  float64
	Prices          []float64 // Variable asset prices, N >= 2
	SecondaryPrices []float64 // Optional, length N. A missing path means a flat secondary price.
	ExposureTargets []float64 // Optional, length N or N-1. With length N the first value is dropped.
}

// RunInput bundles everything one independent run needs.
type RunInput struct {
	Name     string
	Strategy types.StrategyParameters
	Params   types.RunParameters
	Series   Series
}

// Result is the recorded time series of a run. On failure Rows holds the steps completed
// before the failing one and Err is set.
type Result struct {
	Name     string                   `json:"name"`
	Strategy types.StrategyParameters `json:"strategy"`
	Params   types.RunParameters      `json:"params"`
	Rows     []types.StepRecord       `json:"rows"`
	Final    StepState                `json:"-"`
	SwapFees float64                  `json:"swap_fees"`
	Duration time.Duration            `json:"-"`
	Err      error                    `json:"-"`
}

// Run builds a Simulator for the input and replays its series.
func Run(in RunInput) (*Result, error) {
	start := time.Now()
	sim, err := New(in.Strategy, in.Params)
	if err != nil {
		return &Result{Name: in.Name, Strategy: in.Strategy, Params: in.Params, Err: err}, err
	}
	res, err := sim.Run(in.Series)
	res.Name = in.Name
	res.Duration = time.Since(start)
	return res, err
}

// Run replays the series as a fold over Step. Row 0 is the initial equilibrium with no
// price change and no action.
func (s *Simulator) Run(series Series) (*Result, error) {
	res := &Result{Strategy: s.strategy, Params: s.params}
	if err := validateSeries(series); err != nil {
		res.Err = err
		return res, err
	}

	changes := PriceChanges(series.Prices)
	var secondaryChanges []float64
	if len(series.SecondaryPrices) > 0 {
		secondaryChanges = PriceChanges(series.SecondaryPrices)
	}
	targets := alignTargets(series.ExposureTargets, s.strategy.TargetExposure, len(changes))

	state, err := s.InitialState(series.InitialCapital)
	if err != nil {
		res.Err = err
		return res, err
	}
	initial, err := s.initialRecord(state, series.Prices[0])
	if err != nil {
		res.Err = err
		return res, err
	}
	res.Rows = make([]types.StepRecord, 0, len(series.Prices))
	res.Rows = append(res.Rows, initial)

	s.logger.Info().
		Int("steps", len(changes)).
		Float64("initialCapital", series.InitialCapital).
		Float64("targetCollateralRatio", s.strategy.TargetCollateralRatio).
		Float64("targetExposure", s.strategy.TargetExposure).
		Msg("Starting simulation run")

	for i, chg := range changes {
		in := StepInput{
			Index:          i + 1,
			Price:          series.Prices[i+1],
			PriceChange:    chg,
			TargetExposure: targets[i],
		}
		if secondaryChanges != nil {
			in.SecondaryPriceChange = secondaryChanges[i]
		}

		next, record, err := s.Step(state, in)
		if err != nil {
			s.logger.Error().Err(err).Int("step", in.Index).Msg("Simulation run aborted")
			res.Final = next
			res.Err = err
			return res, err
		}
		state = next
		res.SwapFees += record.SwapFees
		res.Rows = append(res.Rows, record)
	}

	res.Final = state
	s.logger.Info().
		Int("rows", len(res.Rows)).
		Float64("finalTotal", state.Position.Total()).
		Float64("swapFees", res.SwapFees).
		Msg("Simulation run completed")
	return res, nil
}

func (s *Simulator) initialRecord(state StepState, price float64) (types.StepRecord, error) {
	cr, exposure, err := hedging.DeriveState(state.Position, s.strategy.WeightVariable)
	if err != nil {
		return types.StepRecord{}, fmt.Errorf("initial position: %w", err)
	}
	return types.StepRecord{
		Index:           0,
		Position:        state.Position,
		Total:           state.Position.Total(),
		CollateralRatio: cr,
		Exposure:        exposure,
		UpdatedRatio:    cr,
		UpdatedExposure: exposure,
		Action:          types.ActionNoAction,
		Price:           price,
		PriceChange:     0,
		TargetExposure:  state.TargetExposure,
	}, nil
}

// alignTargets returns one prescribed target per price change. An empty sequence holds the
// current target; a sequence aligned to the prices loses its first element.
func alignTargets(targets []float64, current float64, steps int) []float64 {
	switch len(targets) {
	case 0:
		out := make([]float64, steps)
		for i := range out {
			out[i] = current
		}
		return out
	case steps + 1:
		return targets[1:]
	default:
		return targets
	}
}
