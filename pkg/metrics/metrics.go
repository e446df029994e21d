package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	RequestTotal    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Audit pipeline metrics
	AuditRecords    *prometheus.CounterVec
	AuditQueueDepth prometheus.Gauge
	AuditOverflow   prometheus.Counter

	// Text generation metrics
	LLMRequests *prometheus.CounterVec
	LLMLatency  prometheus.Histogram
}

// New creates all application metrics and registers them with reg. Passing a
// fresh prometheus.NewRegistry() keeps tests independent of the global registry.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),

		AuditRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "records_total",
			Help:      "Audit entries processed by outcome",
		}, []string{"entity_type", "action", "status"}),
		AuditQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "queue_depth",
			Help:      "Audit entries waiting to be written",
		}),
		AuditOverflow: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "queue_overflow_total",
			Help:      "Audit entries held in a shard backlog because its queue was full",
		}),

		LLMRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "Text generation requests by outcome",
		}, []string{"status"}),
		LLMLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Text generation request duration",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30},
		}),
	}
}
