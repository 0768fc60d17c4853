package runner

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/elys-network/hedgevault/internal/types"
)

// WriteSummary prints the strategy statistics of each report as an aligned table.
func WriteSummary(w io.Writer, reports []Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, rep := range reports {
		fmt.Fprintf(tw, "\n--- %s (%s) ---\n", rep.Record.Name, rep.Record.Status)
		fmt.Fprintf(tw, "Run ID:\t%s\n", rep.RunID)
		if rep.Record.ErrorMessage != "" {
			fmt.Fprintf(tw, "Error:\t%s\n", rep.Record.ErrorMessage)
		}
		if rep.Archive != nil {
			fmt.Fprintf(tw, "Archive:\tfailed: %v\n", rep.Archive)
		}

		s := rep.Record.Summary
		if s == nil {
			continue
		}
		fmt.Fprintf(tw, "Initial:\t$%.2f\n", s.InitialValue)
		fmt.Fprintf(tw, "Final:\t$%.2f\n", s.FinalValue)
		fmt.Fprintf(tw, "Max / Min:\t$%.2f / $%.2f\n", s.MaxValue, s.MinValue)
		fmt.Fprintf(tw, "Days:\t%.2f\n", s.TotalDays)
		fmt.Fprintf(tw, "Return:\t%.3f%% ($%.5f)\n", s.ReturnPercent, s.TotalReturn)
		fmt.Fprintf(tw, "Annualized Return:\t%.3f%%\n", 100*s.AnnualizedReturn)
		fmt.Fprintf(tw, "Daily Return Max / Min:\t%.3f%% / %.3f%%\n", 100*s.MaxDailyReturn, 100*s.MinDailyReturn)
		fmt.Fprintf(tw, "Weekly Return Max / Min:\t%.3f%% / %.3f%%\n", 100*s.MaxWeeklyReturn, 100*s.MinWeeklyReturn)
		fmt.Fprintf(tw, "Max Drawdown:\t%.3f%%\n", 100*s.MaxDrawdown)
		fmt.Fprintf(tw, "Volatility:\t%.3f%%\n", 100*s.Volatility)
		fmt.Fprintf(tw, "Collateral Ratio Max / Min:\t%.2f / %.2f\n", s.MaxCollateralRatio, s.MinCollateralRatio)
		fmt.Fprintf(tw, "Exposure Max / Min:\t%.2f / %.2f\n", s.MaxExposure, s.MinExposure)
		for _, a := range types.AllActionTypes {
			if a == types.ActionNoAction {
				continue
			}
			fmt.Fprintf(tw, "Count %s:\t%d\n", a, s.ActionCounts[a])
		}
	}
	return tw.Flush()
}

var csvHeader = []string{
	"index", "price", "price_change", "collateral", "debt", "liquidity", "total",
	"collateral_ratio", "exposure", "updated_collateral_ratio", "updated_exposure",
	"target_exposure", "action", "executed", "swap_fees", "warnings",
}

// WriteRowsCSV writes the recorded rows of a run as CSV with a header line.
func WriteRowsCSV(w io.Writer, rows []types.StepRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, row := range rows {
		executed := make([]string, len(row.Executed))
		for i, a := range row.Executed {
			executed[i] = string(a)
		}
		record := []string{
			strconv.Itoa(row.Index), f(row.Price), f(row.PriceChange),
			f(row.Position.Collateral), f(row.Position.Debt), f(row.Position.Liquidity), f(row.Total),
			f(row.CollateralRatio), f(row.Exposure), f(row.UpdatedRatio), f(row.UpdatedExposure),
			f(row.TargetExposure), string(row.Action), strings.Join(executed, "|"), f(row.SwapFees),
			strings.Join(row.Warnings, "|"),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
