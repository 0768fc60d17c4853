package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/elys-network/hedgevault/internal/types"
	"github.com/rs/zerolog/log"
)

// Application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// StrategyParams are the strategy targets used when a scenario does not override them.
	StrategyParams types.StrategyParameters
	// RunParams are the thresholds, yields and step size used when a scenario does not override them.
	RunParams types.RunParameters
	// InitialCapital is the starting equity of a run when a scenario does not set one.
	InitialCapital float64
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// Every SIM_* variable is optional; unset variables keep the defaults from Parameters.go.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	StrategyParams, err = LoadStrategyParameters()
	if err != nil {
		return err
	}

	RunParams, err = LoadRunParameters()
	if err != nil {
		return err
	}

	InitialCapital, err = getEnvAsFloat64Or("SIM_INITIAL_CAPITAL", DefaultInitialCapital)
	if err != nil {
		return err
	}

	if err := loadEndpointConfig(); err != nil {
		return err
	}

	log.Debug().
		Float64("TargetCollateralRatio", StrategyParams.TargetCollateralRatio).
		Float64("TargetExposure", StrategyParams.TargetExposure).
		Float64("SwapFee", StrategyParams.SwapFee).
		Float64("InitialCapital", InitialCapital).
		Msg("Configuration loaded successfully.")

	return nil
}

// LoadStrategyParameters returns DefaultStrategyParameters overridden by SIM_* environment variables.
func LoadStrategyParameters() (types.StrategyParameters, error) {
	params := DefaultStrategyParameters
	fields := []struct {
		key string
		dst *float64
	}{
		{"SIM_TARGET_COLLATERAL_RATIO", &params.TargetCollateralRatio},
		{"SIM_TARGET_EXPOSURE", &params.TargetExposure},
		{"SIM_WEIGHT_VARIABLE", &params.WeightVariable},
		{"SIM_WEIGHT_SECONDARY", &params.WeightSecondary},
		{"SIM_SWAP_FEE", &params.SwapFee},
	}
	for _, f := range fields {
		value, err := getEnvAsFloat64Or(f.key, *f.dst)
		if err != nil {
			return types.StrategyParameters{}, err
		}
		*f.dst = value
	}
	return params, nil
}

// LoadRunParameters returns DefaultRunParameters overridden by SIM_* environment variables.
func LoadRunParameters() (types.RunParameters, error) {
	params := DefaultRunParameters
	fields := []struct {
		key string
		dst *float64
	}{
		{"SIM_MINUTES_PER_STEP", &params.MinutesPerStep},
		{"SIM_COLLATERAL_APR", &params.CollateralAPR},
		{"SIM_DEBT_APR", &params.DebtAPR},
		{"SIM_LP_APR", &params.LiquidityAPR},
		{"SIM_MAX_CR", &params.MaxCollateralRatio},
		{"SIM_MIN_CR", &params.MinCollateralRatio},
		{"SIM_EXPOSURE_THRESHOLD", &params.ExposureThreshold},
	}
	for _, f := range fields {
		value, err := getEnvAsFloat64Or(f.key, *f.dst)
		if err != nil {
			return types.RunParameters{}, err
		}
		*f.dst = value
	}
	return params, nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvOr retrieves a string environment variable, falling back to defaultValue when unset or empty.
func getEnvOr(key, defaultValue string) string {
	if value, err := getEnv(key); err == nil && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsFloat64Or retrieves an environment variable as a float64, falling back to defaultValue when unset.
// A set but invalid value is an error.
func getEnvAsFloat64Or(key string, defaultValue float64) (float64, error) {
	valueStr, err := getEnv(key)
	if err != nil || valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid float64, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsIntOr retrieves an environment variable as an int, falling back to defaultValue when unset.
// A set but invalid value is an error.
func getEnvAsIntOr(key string, defaultValue int) (int, error) {
	valueStr, err := getEnv(key)
	if err != nil || valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int, got: " + valueStr)
	}
	return value, nil
}
