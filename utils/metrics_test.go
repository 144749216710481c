package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMetricsValues(t *testing.T) {
	m := NewRunMetrics()
	m.RowsIn.Set(4)
	m.RowsOut.Set(1)
	m.RowsDropped.WithLabelValues("out_of_bounds").Set(3)
	m.MarkSuccess(time.Now().Add(-time.Second))

	assert.Equal(t, 4.0, testutil.ToFloat64(m.RowsIn))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RowsOut))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RowsDropped.WithLabelValues("out_of_bounds")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.Duration), 1.0)
	assert.Greater(t, testutil.ToFloat64(m.LastSuccess), 0.0)
}

func TestRunMetricsPush(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewRunMetrics()
	m.RowsIn.Set(10)
	require.NoError(t, m.Push(context.Background(), srv.URL, "basic_cleaning", "run-1"))

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.True(t, strings.HasPrefix(gotPath, "/metrics/job/basic_cleaning"), gotPath)
	assert.Contains(t, gotPath, "run_id/run-1")
}

func TestRunMetricsPushFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewRunMetrics().Push(context.Background(), srv.URL, "basic_cleaning", "run-1")
	assert.Error(t, err)
}
