package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the conversion pipeline.
type Metrics struct {
	registry             *prometheus.Registry
	requestsTotal        prometheus.Counter
	errorsTotal          prometheus.Counter
	conversionsStarted   prometheus.Counter
	conversionsCompleted prometheus.Counter
	conversionsFailed    prometheus.Counter
	renditionsTranscoded prometheus.Counter
	renditionsFailed     prometheus.Counter
	activeConversions    prometheus.Gauge
}

// New creates and registers Prometheus metrics for the converter.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hls_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hls_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	conversionsStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hls_conversions_started_total",
		Help: "Total number of conversions accepted for processing",
	})
	conversionsCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hls_conversions_completed_total",
		Help: "Total number of conversions that produced a master playlist",
	})
	conversionsFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hls_conversions_failed_total",
		Help: "Total number of conversions that ended in the failed state",
	})
	renditionsTranscoded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hls_renditions_transcoded_total",
		Help: "Total number of renditions encoded successfully",
	})
	renditionsFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hls_renditions_failed_total",
		Help: "Total number of rendition encodes that failed",
	})
	activeConversions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hls_active_conversions",
		Help: "Number of conversions currently in flight",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		conversionsStarted,
		conversionsCompleted,
		conversionsFailed,
		renditionsTranscoded,
		renditionsFailed,
		activeConversions,
	)

	return &Metrics{
		registry:             registry,
		requestsTotal:        requestsTotal,
		errorsTotal:          errorsTotal,
		conversionsStarted:   conversionsStarted,
		conversionsCompleted: conversionsCompleted,
		conversionsFailed:    conversionsFailed,
		renditionsTranscoded: renditionsTranscoded,
		renditionsFailed:     renditionsFailed,
		activeConversions:    activeConversions,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// IncConversionsStarted increments the started conversions counter.
func (m *Metrics) IncConversionsStarted() {
	m.conversionsStarted.Inc()
}

// IncConversionsCompleted increments the completed conversions counter.
func (m *Metrics) IncConversionsCompleted() {
	m.conversionsCompleted.Inc()
}

// IncConversionsFailed increments the failed conversions counter.
func (m *Metrics) IncConversionsFailed() {
	m.conversionsFailed.Inc()
}

// IncRenditionsTranscoded increments the successful renditions counter.
func (m *Metrics) IncRenditionsTranscoded() {
	m.renditionsTranscoded.Inc()
}

// IncRenditionsFailed increments the failed renditions counter.
func (m *Metrics) IncRenditionsFailed() {
	m.renditionsFailed.Inc()
}

// AddActiveConversions moves the in-flight conversions gauge by delta.
func (m *Metrics) AddActiveConversions(delta int) {
	m.activeConversions.Add(float64(delta))
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
