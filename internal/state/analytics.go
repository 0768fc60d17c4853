package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elys-network/hedgevault/internal/types"
	"github.com/elys-network/hedgevault/internal/utils"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// ErrRunNotFound is returned when no archived run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// DefaultRecentRunsLimit applies when a requested limit is missing or outside (0, 100].
const DefaultRecentRunsLimit = 10

// ArchiveSummary represents high-level statistics over all archived runs
type ArchiveSummary struct {
	TotalRuns          int     `json:"total_runs"`
	CompletedRuns      int     `json:"completed_runs"`
	FailedRuns         int     `json:"failed_runs"`
	TotalSteps         int     `json:"total_steps"`
	AvgReturnPercent   float64 `json:"avg_return_percent"`
	BestReturnPercent  float64 `json:"best_return_percent"`
	WorstReturnPercent float64 `json:"worst_return_percent"`
	LastRunAt          string  `json:"last_run_at"`
}

const selectRunColumns = `
	run_id, name, created_at, status, error_message,
	initial_capital, step_count, strategy, run_params, summary
`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s rowScanner) (types.RunRecord, error) {
	var run types.RunRecord
	var status, capital string
	var errorMessage sql.NullString
	var strategyJSON, paramsJSON, summaryJSON []byte

	err := s.Scan(
		&run.RunID, &run.Name, &run.CreatedAt, &status, &errorMessage,
		&capital, &run.StepCount, &strategyJSON, &paramsJSON, &summaryJSON,
	)
	if err != nil {
		return run, err
	}

	run.Status = types.RunStatus(status)
	run.ErrorMessage = errorMessage.String
	if run.InitialCapital, err = utils.ParseAmount(capital); err != nil {
		return run, fmt.Errorf("failed to parse initial_capital: %w", err)
	}

	// Unmarshal JSON fields
	if err := json.Unmarshal(strategyJSON, &run.Strategy); err != nil {
		return run, fmt.Errorf("failed to unmarshal strategy: %w", err)
	}
	if err := json.Unmarshal(paramsJSON, &run.Params); err != nil {
		return run, fmt.Errorf("failed to unmarshal run_params: %w", err)
	}
	if len(summaryJSON) > 0 {
		run.Summary = &types.RunSummary{}
		if err := json.Unmarshal(summaryJSON, run.Summary); err != nil {
			return run, fmt.Errorf("failed to unmarshal summary: %w", err)
		}
	}
	return run, nil
}

// GetRecentRuns retrieves the most recently archived runs, newest first
func GetRecentRuns(limit int) ([]types.RunRecord, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}

	if limit <= 0 || limit > 100 {
		limit = DefaultRecentRunsLimit
	}

	query := `SELECT ` + selectRunColumns + ` FROM simulation_runs ORDER BY created_at DESC LIMIT $1`

	rows, err := DB.Query(query, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query recent runs")
		return nil, fmt.Errorf("failed to query recent runs: %w", err)
	}
	defer rows.Close()

	runs := []types.RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			log.Error().Err(err).Str("run_id", run.RunID).Msg("Failed to scan run row")
			continue // Skip this row and continue with others
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error occurred during row iteration")
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}

	return runs, nil
}

// GetRunByID retrieves a single archived run
func GetRunByID(runID string) (*types.RunRecord, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}

	query := `SELECT ` + selectRunColumns + ` FROM simulation_runs WHERE run_id = $1`

	run, err := scanRun(DB.QueryRow(query, runID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	return &run, nil
}

// GetRunSteps retrieves the recorded rows of a run in step order
func GetRunSteps(runID string) ([]types.StepRecord, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}

	query := `
		SELECT
			step_index, collateral, debt, liquidity, total,
			collateral_ratio, exposure, updated_collateral_ratio, updated_exposure,
			action, executed, price, price_change, target_exposure, swap_fees, warnings
		FROM simulation_steps
		WHERE run_id = $1
		ORDER BY step_index ASC
	`

	rows, err := DB.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps of run %s: %w", runID, err)
	}
	defer rows.Close()

	steps := []types.StepRecord{}
	for rows.Next() {
		var step types.StepRecord
		var action string
		var executed []string
		amounts := make([]string, 5)

		err := rows.Scan(
			&step.Index, &amounts[0], &amounts[1], &amounts[2], &amounts[3],
			&step.CollateralRatio, &step.Exposure, &step.UpdatedRatio, &step.UpdatedExposure,
			&action, pq.Array(&executed), &step.Price, &step.PriceChange, &step.TargetExposure,
			&amounts[4], pq.Array(&step.Warnings),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step of run %s: %w", runID, err)
		}

		values := make([]float64, len(amounts))
		for i, a := range amounts {
			if values[i], err = utils.ParseAmount(a); err != nil {
				return nil, fmt.Errorf("failed to parse amount of step %d: %w", step.Index, err)
			}
		}
		step.Position = types.Position{Collateral: values[0], Debt: values[1], Liquidity: values[2]}
		step.Total = values[3]
		step.SwapFees = values[4]

		step.Action = types.ActionType(action)
		for _, e := range executed {
			step.Executed = append(step.Executed, types.ActionType(e))
		}
		steps = append(steps, step)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating step rows: %w", err)
	}
	return steps, nil
}

// GetArchiveSummary aggregates statistics over every archived run
func GetArchiveSummary() (*ArchiveSummary, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'COMPLETED'),
			COUNT(*) FILTER (WHERE status = 'FAILED'),
			COALESCE(SUM(step_count), 0),
			COALESCE(AVG((summary->>'return_percent')::DOUBLE PRECISION), 0),
			COALESCE(MAX((summary->>'return_percent')::DOUBLE PRECISION), 0),
			COALESCE(MIN((summary->>'return_percent')::DOUBLE PRECISION), 0),
			COALESCE(TO_CHAR(MAX(created_at) AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"'), '')
		FROM simulation_runs
	`

	s := &ArchiveSummary{}
	err := DB.QueryRow(query).Scan(
		&s.TotalRuns, &s.CompletedRuns, &s.FailedRuns, &s.TotalSteps,
		&s.AvgReturnPercent, &s.BestReturnPercent, &s.WorstReturnPercent, &s.LastRunAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get archive summary: %w", err)
	}
	return s, nil
}
