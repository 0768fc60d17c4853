package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestInitialize_WritesToFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	path := filepath.Join(t.TempDir(), "sim.log")

	require.NoError(t, Initialize("info", path))
	l := GetForComponent("simulation")
	l.Info().Msg("run finished")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"simulation"`)
	assert.Contains(t, string(data), "run finished")
}

func TestInitialize_BadPath(t *testing.T) {
	err := Initialize("info", filepath.Join(t.TempDir(), "missing", "sim.log"))
	assert.Error(t, err)
}
