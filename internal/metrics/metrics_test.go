package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/elys-network/hedgevault/internal/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRun(t *testing.T) {
	m := NewMetrics("test")
	rows := []types.StepRecord{
		{Action: types.ActionNoAction},
		{Action: types.ActionExposureRebalanced, Warnings: []string{"a", "b"}},
		{Action: types.ActionNoAction},
	}

	m.RecordRun(types.RunStatusCompleted, rows, &types.RunSummary{ReturnPercent: 2.5}, 0.01)
	m.RecordRun(types.RunStatusFailed, rows[:1], nil, 0.02)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("COMPLETED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("FAILED")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.StepsTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ActionsTotal.WithLabelValues("NO_ACTION")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActionsTotal.WithLabelValues("EXPOSURE_REBALANCED")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.WarningsTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RunReturnPercent))
}

func TestRecordArchiveWrite(t *testing.T) {
	m := NewMetrics("")
	m.RecordArchiveWrite(nil)
	m.RecordArchiveWrite(errors.New("connection refused"))
	m.RecordArchiveWrite(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ArchiveWritesTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ArchiveWritesTotal.WithLabelValues("error")))
}

func TestHandler(t *testing.T) {
	m := NewMetrics("test")
	m.RecordRun(types.RunStatusCompleted, []types.StepRecord{{Action: types.ActionBoth}}, nil, 0.5)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_simulation_runs_total{status="COMPLETED"} 1`)
	assert.Contains(t, string(body), `test_simulation_actions_total{action="BOTH"} 1`)
}
