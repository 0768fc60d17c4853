/*

This file contains the run orchestrator: it turns scenarios into simulation inputs, replays them
as a batch and then summarizes, archives and records every result.

*/

package runner

import (
	"context"
	"fmt"

	"github.com/elys-network/hedgevault/internal/analyzer"
	"github.com/elys-network/hedgevault/internal/config"
	"github.com/elys-network/hedgevault/internal/logger"
	"github.com/elys-network/hedgevault/internal/metrics"
	"github.com/elys-network/hedgevault/internal/simulation"
	"github.com/elys-network/hedgevault/internal/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ArchiveFunc stores a run and its rows and returns the stored run ID.
type ArchiveFunc func(run types.RunRecord, rows []types.StepRecord) (string, error)

// Report is the outcome of one run after summarizing and archiving.
type Report struct {
	RunID   string
	Result  *simulation.Result
	Record  types.RunRecord
	Archive error // Set when archiving was requested and failed
}

// Runner replays scenario batches with its dependencies injected
type Runner struct {
	logger      zerolog.Logger
	archive     ArchiveFunc
	metrics     *metrics.Metrics
	parallelism int
}

// Config holds the configuration for creating a new Runner
type Config struct {
	Archive     ArchiveFunc // Optional; runs are not archived when nil
	Metrics     *metrics.Metrics
	Parallelism int // At most this many runs at once; unbounded when <= 0
}

// NewRunner creates a new Runner
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Metrics == nil {
		return nil, fmt.Errorf("metrics cannot be nil")
	}

	r := &Runner{
		logger:      logger.GetForComponent("runner"),
		archive:     cfg.Archive,
		metrics:     cfg.Metrics,
		parallelism: cfg.Parallelism,
	}

	r.logger.Info().
		Bool("archive", r.archive != nil).
		Int("parallelism", r.parallelism).
		Msg("Runner created")

	return r, nil
}

// BuildInputs turns every scenario of file into a simulation input, applying its overrides on
// top of the given base parameters and capital.
func BuildInputs(file *config.ScenarioFile, strategy types.StrategyParameters, params types.RunParameters, capital float64) []simulation.RunInput {
	inputs := make([]simulation.RunInput, 0, len(file.Scenarios))
	for _, sc := range file.Scenarios {
		inputs = append(inputs, simulation.RunInput{
			Name:     sc.Name,
			Strategy: sc.Strategy.Apply(strategy),
			Params:   sc.Run.Apply(params),
			Series: simulation.Series{
				InitialCapital:  sc.Capital(capital),
				Prices:          sc.Prices,
				SecondaryPrices: sc.SecondaryPrices,
				ExposureTargets: sc.ExposureTargets,
			},
		})
	}
	return inputs
}

// Execute replays inputs as one batch and reports every run in input order.
// Failed runs are reported and archived with their partial rows; only context cancellation
// returns an error.
func (r *Runner) Execute(ctx context.Context, inputs []simulation.RunInput) ([]Report, error) {
	batchID := uuid.New().String()
	batchLogger := r.logger.With().Str("batch_id", batchID).Logger()
	batchLogger.Info().Int("runs", len(inputs)).Msg("--- Starting simulation batch ---")

	results, err := simulation.RunBatch(ctx, inputs, r.parallelism)
	if err != nil {
		batchLogger.Error().Err(err).Msg("Batch aborted")
		return nil, err
	}

	reports := make([]Report, 0, len(results))
	for _, res := range results {
		reports = append(reports, r.report(batchLogger, res))
	}

	batchLogger.Info().Int("runs", len(reports)).Msg("--- Simulation batch completed ---")
	return reports, nil
}

func (r *Runner) report(batchLogger zerolog.Logger, res *simulation.Result) Report {
	runID := uuid.New().String()
	runLogger := batchLogger.With().Str("run_id", runID).Str("name", res.Name).Logger()

	record := types.RunRecord{
		RunID:     runID,
		Name:      res.Name,
		Status:    types.RunStatusCompleted,
		Strategy:  res.Strategy,
		Params:    res.Params,
		StepCount: len(res.Rows),
	}
	if len(res.Rows) > 0 {
		record.InitialCapital = res.Rows[0].Total
	}
	if res.Err != nil {
		record.Status = types.RunStatusFailed
		record.ErrorMessage = res.Err.Error()
		runLogger.Warn().Err(res.Err).Int("rows", len(res.Rows)).Msg("Run failed")
	}

	if len(res.Rows) > 0 {
		summary, err := analyzer.Summarize(res.Rows, res.Params.MinutesPerStep)
		if err != nil {
			runLogger.Error().Err(err).Msg("Failed to summarize run")
		} else {
			record.Summary = &summary
		}
	}

	r.metrics.RecordRun(record.Status, res.Rows, record.Summary, res.Duration.Seconds())

	rep := Report{RunID: runID, Result: res, Record: record}
	if r.archive != nil {
		storedID, err := r.archive(record, res.Rows)
		r.metrics.RecordArchiveWrite(err)
		if err != nil {
			runLogger.Error().Err(err).Msg("Failed to archive run")
			rep.Archive = err
		} else {
			rep.RunID = storedID
			rep.Record.RunID = storedID
		}
	}

	if record.Summary != nil {
		runLogger.Info().
			Str("status", string(record.Status)).
			Float64("finalValue", record.Summary.FinalValue).
			Float64("returnPercent", record.Summary.ReturnPercent).
			Float64("swapFees", res.SwapFees).
			Msg("Run reported")
	}
	return rep
}
