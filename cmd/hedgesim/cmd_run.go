package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/elys-network/hedgevault/internal/config"
	"github.com/elys-network/hedgevault/internal/metrics"
	"github.com/elys-network/hedgevault/internal/runner"
	"github.com/elys-network/hedgevault/internal/state"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	runScenarioPath    string
	runPersist         bool
	runParallelism     int
	runCSVDir          string
	runFormat          string
	runUseStoredParams bool
)

// runCmd replays every scenario of a scenario file
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay the scenarios of a scenario file",
	Long: `Replay every scenario of a YAML scenario file as an independent run and print
the strategy statistics of each.

Examples:
  hedgesim run --scenario scenarios.yaml
  hedgesim run --scenario scenarios.yaml --persist --parallelism 4
  hedgesim run --scenario scenarios.yaml --csv-dir ./out --format json`,
	RunE: runScenarios,
}

func init() {
	runCmd.Flags().StringVar(&runScenarioPath, "scenario", "", "Path to the YAML scenario file")
	runCmd.Flags().BoolVar(&runPersist, "persist", false, "Archive runs in the database")
	runCmd.Flags().IntVar(&runParallelism, "parallelism", 0, "Maximum concurrent runs (0 means unbounded)")
	runCmd.Flags().StringVar(&runCSVDir, "csv-dir", "", "Write the recorded rows of each run to <dir>/<name>.csv")
	runCmd.Flags().StringVar(&runFormat, "format", "table", "Output format: table, json")
	runCmd.Flags().BoolVar(&runUseStoredParams, "use-stored-params", false, "Start from the active strategy parameters in the database")
	runCmd.MarkFlagRequired("scenario")
}

func runScenarios(cmd *cobra.Command, args []string) error {
	if runFormat != "table" && runFormat != "json" {
		return fmt.Errorf("unsupported format %q", runFormat)
	}

	file, err := config.LoadScenarioFile(runScenarioPath)
	if err != nil {
		return err
	}

	strategy := config.StrategyParams
	var archive runner.ArchiveFunc
	if runPersist || runUseStoredParams {
		if err := openArchive(); err != nil {
			return err
		}
		defer state.CloseDB()
	}
	if runPersist {
		archive = state.SaveRun
	}
	if runUseStoredParams {
		stored, err := state.LoadActiveStrategyParameters(state.DefaultConfigName)
		if err != nil {
			return fmt.Errorf("failed to load stored strategy parameters: %w", err)
		}
		strategy = *stored
	}

	r, err := runner.NewRunner(runner.Config{
		Archive:     archive,
		Metrics:     metrics.NewMetrics(""),
		Parallelism: runParallelism,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inputs := runner.BuildInputs(file, strategy, config.RunParams, config.InitialCapital)
	reports, err := r.Execute(ctx, inputs)
	if err != nil {
		return err
	}

	if runCSVDir != "" {
		if err := os.MkdirAll(runCSVDir, 0o755); err != nil {
			return fmt.Errorf("failed to create csv directory: %w", err)
		}
		for _, rep := range reports {
			if err := writeCSV(filepath.Join(runCSVDir, rep.Record.Name+".csv"), rep); err != nil {
				return err
			}
		}
	}

	if runFormat == "json" {
		records := make([]interface{}, 0, len(reports))
		for _, rep := range reports {
			records = append(records, rep.Record)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	return runner.WriteSummary(cmd.OutOrStdout(), reports)
}

func writeCSV(path string, rep runner.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := runner.WriteRowsCSV(f, rep.Result.Rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("rows", len(rep.Result.Rows)).Msg("Wrote run rows")
	return nil
}
