// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// ErrDBNotInitialized is returned by every store function when InitDB has not been called.
var ErrDBNotInitialized = errors.New("database not initialized")

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		DB = nil
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS strategy_parameters (
		params_id SERIAL PRIMARY KEY,
		version INTEGER NOT NULL DEFAULT 1,
		config_name VARCHAR(255) NOT NULL DEFAULT 'default',
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		activated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		target_collateral_ratio DECIMAL(20, 10) NOT NULL,
		target_exposure DECIMAL(20, 10) NOT NULL,
		weight_variable DECIMAL(20, 10) NOT NULL,
		weight_secondary DECIMAL(20, 10) NOT NULL,
		swap_fee DECIMAL(20, 10) NOT NULL,
		CONSTRAINT uq_strategy_parameters_config_version UNIQUE (config_name, version)
	);
	CREATE INDEX IF NOT EXISTS idx_strategy_parameters_config_active_timestamp ON strategy_parameters(config_name, is_active, activated_at DESC);

	CREATE TABLE IF NOT EXISTS simulation_runs (
		run_id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		status VARCHAR(20) NOT NULL,
		error_message TEXT,
		initial_capital DECIMAL(30, 12) NOT NULL,
		step_count INTEGER NOT NULL,
		strategy JSONB NOT NULL,
		run_params JSONB NOT NULL,
		summary JSONB
	);
	CREATE INDEX IF NOT EXISTS idx_simulation_runs_created ON simulation_runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_simulation_runs_name ON simulation_runs(name);

	CREATE TABLE IF NOT EXISTS simulation_steps (
		run_id UUID NOT NULL REFERENCES simulation_runs(run_id) ON DELETE CASCADE,
		step_index INTEGER NOT NULL,

		-- Position after the step's operations
		collateral DECIMAL(30, 12) NOT NULL,
		debt DECIMAL(30, 12) NOT NULL,
		liquidity DECIMAL(30, 12) NOT NULL,
		total DECIMAL(30, 12) NOT NULL,

		collateral_ratio DOUBLE PRECISION NOT NULL,
		exposure DOUBLE PRECISION NOT NULL,
		updated_collateral_ratio DOUBLE PRECISION NOT NULL,
		updated_exposure DOUBLE PRECISION NOT NULL,

		action VARCHAR(32) NOT NULL,
		executed TEXT[],
		price DOUBLE PRECISION NOT NULL,
		price_change DOUBLE PRECISION NOT NULL,
		target_exposure DOUBLE PRECISION NOT NULL,
		swap_fees DECIMAL(30, 12) NOT NULL,
		warnings TEXT[],
		PRIMARY KEY (run_id, step_index)
	);
	CREATE INDEX IF NOT EXISTS idx_simulation_steps_action ON simulation_steps(action);
`

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return ErrDBNotInitialized
	}

	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// DropSchema removes every table created by EnsureSchema.
func DropSchema() error {
	if DB == nil {
		return ErrDBNotInitialized
	}

	_, err := DB.Exec(`
		DROP TABLE IF EXISTS simulation_steps CASCADE;
		DROP TABLE IF EXISTS simulation_runs CASCADE;
		DROP TABLE IF EXISTS strategy_parameters CASCADE;
	`)
	if err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	log.Warn().Msg("Database schema dropped.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
