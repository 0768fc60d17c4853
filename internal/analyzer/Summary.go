/*

This file contains the run summary: the statistics derived from a recorded step series.

*/

package analyzer

import (
	"errors"
	"fmt"

	"github.com/elys-network/hedgevault/internal/logger"
	"github.com/elys-network/hedgevault/internal/types"
)

var ErrInvalidSummaryInput = errors.New("invalid summary input")

const minutesPerDay = 24 * 60

// Summarize derives a RunSummary from the recorded rows of a run.
// Collateral ratio and exposure extremes use the values observed before any trigger fired.
// Day and week windows are rounded down to whole steps.
func Summarize(rows []types.StepRecord, minutesPerStep float64) (types.RunSummary, error) {
	if len(rows) == 0 {
		return types.RunSummary{}, fmt.Errorf("%w: no rows", ErrInvalidSummaryInput)
	}
	if minutesPerStep <= 0 {
		return types.RunSummary{}, fmt.Errorf("%w: minutes per step must be positive, got %f", ErrInvalidSummaryInput, minutesPerStep)
	}
	if rows[0].Total <= 0 {
		return types.RunSummary{}, fmt.Errorf("%w: initial value must be positive, got %f", ErrInvalidSummaryInput, rows[0].Total)
	}

	n := len(rows)
	totals := make([]float64, n)
	ratios := make([]float64, n)
	exposures := make([]float64, n)
	counts := make(map[types.ActionType]int, len(types.AllActionTypes))
	for _, a := range types.AllActionTypes {
		counts[a] = 0
	}
	for i, row := range rows {
		totals[i] = row.Total
		ratios[i] = row.CollateralRatio
		exposures[i] = row.Exposure
		counts[row.Action]++
	}

	s := types.RunSummary{
		InitialValue: totals[0],
		FinalValue:   totals[n-1],
		ActionCounts: counts,
	}
	s.MaxValue, s.MinValue = extremes(totals)
	s.MaxCollateralRatio, s.MinCollateralRatio = extremes(ratios)
	s.MaxExposure, s.MinExposure = extremes(exposures)

	s.TotalDays = minutesPerStep * float64(n) / minutesPerDay
	s.TotalReturn = s.FinalValue - s.InitialValue
	s.ReturnPercent = 100 * s.TotalReturn / s.InitialValue
	s.AnnualizedReturn = 365 * (s.TotalReturn / s.TotalDays) / s.InitialValue

	s.MaxDailyReturn, s.MinDailyReturn = extremes(RollingReturns(totals, int(minutesPerDay/minutesPerStep)))
	s.MaxWeeklyReturn, s.MinWeeklyReturn = extremes(RollingReturns(totals, int(7*minutesPerDay/minutesPerStep)))

	s.MaxDrawdown = maxDrawdown(totals)

	vol, err := CalculateVolatility(totals, 365*minutesPerDay/minutesPerStep)
	switch {
	case errors.Is(err, ErrInsufficientData):
		l := logger.GetForComponent("analyzer")
		l.Debug().Int("rows", n).Msg("Too few positive totals for volatility, reporting zero")
	case err != nil:
		return types.RunSummary{}, err
	default:
		s.Volatility = vol
	}

	return s, nil
}
