// ./internal/state/run_store.go
package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/elys-network/hedgevault/internal/types"
	"github.com/elys-network/hedgevault/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq" // PostgreSQL driver for array support
	"github.com/rs/zerolog/log"
)

// amountPrecision is the number of fractional digits kept for archived amounts.
const amountPrecision = 12

const insertRunSQL = `
	INSERT INTO simulation_runs (
		run_id, name, created_at, status, error_message,
		initial_capital, step_count, strategy, run_params, summary
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`

const insertStepSQL = `
	INSERT INTO simulation_steps (
		run_id, step_index,
		collateral, debt, liquidity, total,
		collateral_ratio, exposure, updated_collateral_ratio, updated_exposure,
		action, executed, price, price_change, target_exposure, swap_fees, warnings
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
`

// SaveRun archives a run and its recorded rows in one transaction and returns the run ID.
// A run without an ID gets a fresh UUID.
func SaveRun(run types.RunRecord, rows []types.StepRecord) (runID string, err error) {
	if DB == nil {
		return "", ErrDBNotInitialized
	}

	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.StepCount = len(rows)

	// Marshal all JSONB fields
	strategyJSON, err := json.Marshal(run.Strategy)
	if err != nil {
		return "", fmt.Errorf("failed to marshal strategy: %w", err)
	}
	paramsJSON, err := json.Marshal(run.Params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run_params: %w", err)
	}
	var summaryJSON interface{}
	if run.Summary != nil {
		b, err := json.Marshal(run.Summary)
		if err != nil {
			return "", fmt.Errorf("failed to marshal summary: %w", err)
		}
		summaryJSON = b
	}
	var errorMessage interface{}
	if run.ErrorMessage != "" {
		errorMessage = run.ErrorMessage
	}
	capital, err := utils.FormatAmount(run.InitialCapital, amountPrecision)
	if err != nil {
		return "", fmt.Errorf("failed to format initial_capital: %w", err)
	}

	tx, err := DB.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	_, err = tx.Exec(insertRunSQL,
		run.RunID, run.Name, run.CreatedAt, string(run.Status), errorMessage,
		capital, run.StepCount, strategyJSON, paramsJSON, summaryJSON,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run %s: %w", run.RunID, err)
	}

	stmt, err := tx.Prepare(insertStepSQL)
	if err != nil {
		return "", fmt.Errorf("failed to prepare step insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		args, err := stepArgs(run.RunID, row)
		if err != nil {
			return "", err
		}
		if _, err = stmt.Exec(args...); err != nil {
			return "", fmt.Errorf("failed to insert step %d of run %s: %w", row.Index, run.RunID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Str("run_id", run.RunID).
		Str("name", run.Name).
		Str("status", string(run.Status)).
		Int("steps", run.StepCount).
		Msg("Simulation run saved to database")

	return run.RunID, nil
}

func stepArgs(runID string, row types.StepRecord) ([]interface{}, error) {
	amounts := []float64{row.Position.Collateral, row.Position.Debt, row.Position.Liquidity, row.Total, row.SwapFees}
	formatted := make([]string, len(amounts))
	for i, v := range amounts {
		s, err := utils.FormatAmount(v, amountPrecision)
		if err != nil {
			return nil, fmt.Errorf("failed to format amount of step %d: %w", row.Index, err)
		}
		formatted[i] = s
	}

	return []interface{}{
		runID, row.Index,
		formatted[0], formatted[1], formatted[2], formatted[3],
		row.CollateralRatio, row.Exposure, row.UpdatedRatio, row.UpdatedExposure,
		string(row.Action), pq.Array(actionStrings(row.Executed)), row.Price, row.PriceChange, row.TargetExposure,
		formatted[4], pq.Array(row.Warnings),
	}, nil
}

func actionStrings(actions []types.ActionType) []string {
	if actions == nil {
		return nil
	}
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}

// DeleteRun removes a run and, through the cascade, its steps.
func DeleteRun(runID string) error {
	if DB == nil {
		return ErrDBNotInitialized
	}

	res, err := DB.Exec(`DELETE FROM simulation_runs WHERE run_id = $1;`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for run %s: %w", runID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	log.Info().Str("run_id", runID).Msg("Simulation run deleted")
	return nil
}
