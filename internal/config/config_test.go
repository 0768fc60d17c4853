package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStrategyParameters_Defaults(t *testing.T) {
	params, err := LoadStrategyParameters()
	require.NoError(t, err)
	assert.Equal(t, DefaultStrategyParameters, params)
}

func TestLoadStrategyParameters_EnvOverrides(t *testing.T) {
	t.Setenv("SIM_TARGET_EXPOSURE", "-0.1")
	t.Setenv("SIM_SWAP_FEE", "0.003")

	params, err := LoadStrategyParameters()
	require.NoError(t, err)
	assert.Equal(t, -0.1, params.TargetExposure)
	assert.Equal(t, 0.003, params.SwapFee)
	assert.Equal(t, DefaultStrategyParameters.TargetCollateralRatio, params.TargetCollateralRatio)
}

func TestLoadRunParameters_InvalidValue(t *testing.T) {
	t.Setenv("SIM_MAX_CR", "high")

	_, err := LoadRunParameters()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SIM_MAX_CR")
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SIM_INITIAL_CAPITAL", "2500")
	t.Setenv("SIM_MIN_CR", "0.5")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "sim")
	t.Setenv("DB_NAME", "runs")

	require.NoError(t, LoadConfig())
	assert.Equal(t, 2500.0, InitialCapital)
	assert.Equal(t, 0.5, RunParams.MinCollateralRatio)
	assert.Equal(t, DefaultRunParameters.MaxCollateralRatio, RunParams.MaxCollateralRatio)
	assert.Equal(t, 6543, DBPort)
	assert.True(t, DatabaseConfigured())
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	t.Setenv("DB_PORT", "abc")
	assert.Error(t, LoadConfig())
}
