package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// RunMetrics collects the counters of a single cleaning run and pushes them
// to a Prometheus Pushgateway.
type RunMetrics struct {
	registry *prometheus.Registry

	RowsIn      prometheus.Gauge
	RowsOut     prometheus.Gauge
	RowsDropped *prometheus.GaugeVec
	InvalidDate prometheus.Gauge
	Duration    prometheus.Gauge
	LastSuccess prometheus.Gauge
}

// NewRunMetrics registers the run gauges on a private registry.
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		RowsIn: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "basic_cleaning_rows_in",
			Help: "Rows read from the input artifact.",
		}),
		RowsOut: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "basic_cleaning_rows_out",
			Help: "Rows written to the output artifact.",
		}),
		RowsDropped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "basic_cleaning_rows_dropped",
			Help: "Rows dropped, by reason.",
		}, []string{"reason"}),
		InvalidDate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "basic_cleaning_invalid_last_review",
			Help: "last_review values that could not be parsed and were nulled.",
		}),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "basic_cleaning_duration_seconds",
			Help: "Wall time of the cleaning run.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "basic_cleaning_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}),
	}
	m.registry.MustRegister(m.RowsIn, m.RowsOut, m.RowsDropped, m.InvalidDate, m.Duration, m.LastSuccess)
	return m
}

// Registry exposes the underlying registry.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// MarkSuccess stamps the run duration and success time.
func (m *RunMetrics) MarkSuccess(started time.Time) {
	m.Duration.Set(time.Since(started).Seconds())
	m.LastSuccess.SetToCurrentTime()
}

// Push sends all gauges to the gateway grouped by run id.
func (m *RunMetrics) Push(ctx context.Context, gatewayURL, job, runID string) error {
	err := push.New(gatewayURL, job).
		Gatherer(m.registry).
		Grouping("run_id", runID).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("metrics: push to %s: %w", gatewayURL, err)
	}
	return nil
}
