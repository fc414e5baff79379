package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics aggregates the service counters. One instance is created in main
// and injected, nothing registers against the default registry implicitly.
type Metrics struct {
	PipelineRuns      *prometheus.CounterVec
	PipelineDuration  prometheus.Histogram
	MessagesCreated   prometheus.Counter
	DeliveryAttempts  *prometheus.CounterVec
	Acknowledgments   *prometheus.CounterVec
	ActiveConnections prometheus.Gauge
	ReplayedMessages  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PipelineRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "logbook_pipeline_runs_total",
			Help: "Pipeline runs by terminal outcome.",
		}, []string{"outcome"}),
		PipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "logbook_pipeline_run_duration_seconds",
			Help:    "Wall time of one pipeline run.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		MessagesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "logbook_change_messages_created_total",
			Help: "Durable change messages created by fan-out.",
		}),
		DeliveryAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "logbook_delivery_attempts_total",
			Help: "Real-time delivery attempts by result.",
		}, []string{"result"}),
		Acknowledgments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "logbook_acknowledgments_total",
			Help: "Acknowledgment frames by result.",
		}, []string{"result"}),
		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "logbook_active_connections",
			Help: "Live websocket connections in the registry.",
		}),
		ReplayedMessages: factory.NewCounter(prometheus.CounterOpts{
			Name: "logbook_replayed_messages_total",
			Help: "Pending messages replayed on connect.",
		}),
	}
}
