package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives one observation per repository call
type Recorder interface {
	ObserveOperation(source, op string, began time.Time, err error)
}

// StoreMetrics counts repository operations by source, operation and outcome
type StoreMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// NewStoreMetrics registers the store collectors with reg
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	factory := promauto.With(reg)
	return &StoreMetrics{
		operationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carscan_store_operations_total",
			Help: "Total number of repository operations",
		}, []string{"source", "op", "outcome"}),

		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carscan_store_operation_duration_seconds",
			Help:    "Repository operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"source", "op"}),
	}
}

func (m *StoreMetrics) ObserveOperation(source, op string, began time.Time, err error) {
	m.operationsTotal.WithLabelValues(source, op, outcome(err)).Inc()
	m.operationDuration.WithLabelValues(source, op).Observe(time.Since(began).Seconds())
}

// outcomeClassifier lets callers tag expected failures (e.g. a protected collection)
// without counting them as errors.
type outcomeClassifier interface {
	Outcome() string
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var c outcomeClassifier
	if errors.As(err, &c) {
		return c.Outcome()
	}
	return "error"
}

// Noop discards observations.
type Noop struct{}

func (Noop) ObserveOperation(_, _ string, _ time.Time, _ error) {}
