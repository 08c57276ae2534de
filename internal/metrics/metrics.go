// Package metrics defines the Prometheus collectors exported on /metrics.
// Everything is registered on the default registry the first time it is used.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "murmur"

var (
	latencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	fastBuckets    = []float64{.0005, .001, .005, .01, .025, .05, .1}
	sizeBuckets    = prometheus.ExponentialBuckets(100, 10, 7)
)

// Metrics holds the infrastructure collectors: HTTP, cache, feed and websocket
type Metrics struct {
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestSize       *prometheus.HistogramVec
	HTTPResponseSize      *prometheus.HistogramVec
	HTTPActiveConnections *prometheus.GaugeVec

	CacheHitsTotal         *prometheus.CounterVec
	CacheMissesTotal       *prometheus.CounterVec
	RedisOperationDuration *prometheus.HistogramVec
	RedisOperationsTotal   *prometheus.CounterVec
	CacheOperationDuration *prometheus.HistogramVec

	FeedGenerationTime *prometheus.HistogramVec

	WebsocketConnections  prometheus.Gauge
	WebsocketMessagesSent prometheus.Counter

	ErrorsTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

func counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
}

func histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: name, Help: help, Buckets: buckets}, labels)
}

// Get returns the shared collectors, registering them on first call
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal:   counterVec("http_requests_total", "HTTP requests by route and status", "method", "path", "status"),
			HTTPRequestDuration: histogramVec("http_request_duration_seconds", "HTTP request latency", latencyBuckets, "method", "path", "status"),
			HTTPRequestSize:     histogramVec("http_request_size_bytes", "HTTP request body size", sizeBuckets, "method", "path"),
			HTTPResponseSize:    histogramVec("http_response_size_bytes", "HTTP response body size", sizeBuckets, "method", "path", "status"),
			HTTPActiveConnections: promauto.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_in_flight_requests",
				Help:      "HTTP requests currently being served",
			}, []string{"method", "path"}),

			CacheHitsTotal:         counterVec("cache_hits_total", "Cache hits by cache", "cache_name"),
			CacheMissesTotal:       counterVec("cache_misses_total", "Cache misses by cache", "cache_name"),
			RedisOperationDuration: histogramVec("redis_operation_duration_seconds", "Redis command latency", fastBuckets, "operation"),
			RedisOperationsTotal:   counterVec("redis_operations_total", "Redis commands by outcome", "operation", "status"),
			CacheOperationDuration: histogramVec("cache_operation_duration_seconds", "Cache latency by cache", fastBuckets, "operation", "cache_name"),

			FeedGenerationTime: histogramVec("feed_build_duration_seconds", "Time to assemble a feed page or listing",
				[]float64{.01, .05, .1, .25, .5, 1, 2.5, 5}, "feed_type"),

			WebsocketConnections: promauto.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "websocket_connections",
				Help:      "Open websocket connections on this instance",
			}),
			WebsocketMessagesSent: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "websocket_messages_sent_total",
				Help:      "Websocket frames queued for delivery",
			}),

			ErrorsTotal: counterVec("errors_total", "Errors by type and route", "error_type", "endpoint"),
		}
	})
	return instance
}
