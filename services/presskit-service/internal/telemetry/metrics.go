package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission results used as label values.
const (
	ResultAccepted = "accepted"
	ResultInvalid  = "invalid"
	ResultFailed   = "failed"
)

var (
	// Submissions counts press-kit requests by outcome.
	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presskit_submissions_total",
		Help: "Press-kit submissions by result",
	}, []string{"result"}) // result: accepted, invalid, failed

	StoreFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presskit_store_failures_total",
		Help: "Failed appends to the durable store",
	})

	NotifyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presskit_notify_failures_total",
		Help: "Failed operator notifications",
	})

	// SideEffectDuration tracks store and notify latency.
	SideEffectDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "presskit_side_effect_duration_seconds",
		Help:    "Duration of post-validation side effects",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"effect"}) // effect: store, notify
)
