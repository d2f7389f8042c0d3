package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelCollection = "collection"
	labelOp         = "op"
	labelOutcome    = "outcome"
)

// Metrics counts facade operations per collection, op and outcome.
type Metrics struct {
	Ops     *prometheus.CounterVec
	Latency *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_operations_total",
				Help: "Catalog facade operations by outcome",
			},
			[]string{labelCollection, labelOp, labelOutcome},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_operation_duration_seconds",
				Help:    "Catalog facade latency including simulated delay",
				Buckets: []float64{.005, .01, .025, .05, .1, .2, .3, .5, 1, 2.5},
			},
			[]string{labelCollection, labelOp},
		),
	}

	reg.MustRegister(m.Ops, m.Latency)
	return m
}

func (m *Metrics) observe(collection, op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.Latency.WithLabelValues(collection, op).Observe(time.Since(start).Seconds())
	m.Ops.WithLabelValues(collection, op, Outcome(err)).Inc()
}
