package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SearchMetrics covers calls to Elasticsearch
type SearchMetrics struct {
	Requests         *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	Errors           *prometheus.CounterVec
	ConnectionErrors prometheus.Counter
}

var (
	searchInstance *SearchMetrics
	searchOnce     sync.Once
)

// Search returns the Elasticsearch collectors
func Search() *SearchMetrics {
	searchOnce.Do(func() {
		const subsystem = "elasticsearch"
		searchInstance = &SearchMetrics{
			Requests: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Elasticsearch requests by index, operation and outcome",
			}, []string{"index", "operation", "status"}),
			RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "Elasticsearch request latency",
				Buckets:   latencyBuckets,
			}, []string{"index", "operation"}),
			Errors: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "errors_total",
				Help:      "Failed Elasticsearch requests",
			}, []string{"index", "operation"}),
			ConnectionErrors: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "connection_errors_total",
				Help:      "Failed connects and pings",
			}),
		}
	})
	return searchInstance
}

// Observe records one request that started at start and ended with err
func (m *SearchMetrics) Observe(index, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
		m.Errors.WithLabelValues(index, operation).Inc()
	}
	m.Requests.WithLabelValues(index, operation, status).Inc()
	m.RequestDuration.WithLabelValues(index, operation).Observe(time.Since(start).Seconds())
}
