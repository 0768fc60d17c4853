// ./internal/state/parameters_store.go
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/elys-network/hedgevault/internal/types"
	"github.com/rs/zerolog/log"
)

// DefaultConfigName is the strategy parameter config used when none is named.
const DefaultConfigName = "default"

// ErrNoStrategyParameters is returned when a config has no stored parameters.
var ErrNoStrategyParameters = errors.New("no strategy parameters found")

// SaveStrategyParameters saves a new version of strategy parameters.
func SaveStrategyParameters(params types.StrategyParameters, configName string, version int, makeActive bool) (paramsID int64, err error) {
	if DB == nil {
		return 0, ErrDBNotInitialized
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE strategy_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		_, err = tx.Exec(stmtDeactivate, configName)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}
	}

	stmt := `
        INSERT INTO strategy_parameters (
            version, config_name, is_active, activated_at, created_at,
            target_collateral_ratio, target_exposure, weight_variable, weight_secondary, swap_fee
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING params_id;`

	currentTime := time.Now()
	err = tx.QueryRow(
		stmt,
		version, configName, makeActive, currentTime, currentTime,
		params.TargetCollateralRatio, params.TargetExposure, params.WeightVariable, params.WeightSecondary, params.SwapFee,
	).Scan(&paramsID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert strategy parameters: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Int("version", version).
		Str("config", configName).
		Int64("params_id", paramsID).
		Bool("active", makeActive).
		Msg("Saved strategy parameters")
	return paramsID, nil
}

// LoadActiveStrategyParameters loads the currently active strategy parameters.
func LoadActiveStrategyParameters(configName string) (*types.StrategyParameters, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}

	query := `
        SELECT target_collateral_ratio, target_exposure, weight_variable, weight_secondary, swap_fee
        FROM strategy_parameters
        WHERE config_name = $1 AND is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	p := &types.StrategyParameters{}
	err := DB.QueryRow(query, configName).Scan(
		&p.TargetCollateralRatio, &p.TargetExposure, &p.WeightVariable, &p.WeightSecondary, &p.SwapFee,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no active parameters for config '%s'", ErrNoStrategyParameters, configName)
		}
		return nil, fmt.Errorf("failed to scan active strategy parameters for config '%s': %w", configName, err)
	}
	log.Info().Str("config", configName).Msg("Loaded active strategy parameters")
	return p, nil
}

// NextStrategyParametersVersion returns one more than the highest stored version of a config.
func NextStrategyParametersVersion(configName string) (int, error) {
	if DB == nil {
		return 0, ErrDBNotInitialized
	}

	var version int
	err := DB.QueryRow(`SELECT COALESCE(MAX(version), 0) + 1 FROM strategy_parameters WHERE config_name = $1;`, configName).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get next version for config '%s': %w", configName, err)
	}
	return version, nil
}
