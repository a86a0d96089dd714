package reqflow

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the request lifecycle.
// A nil collector records nothing. It is safe for concurrent use.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	lifecycleEvents *prometheus.CounterVec
	pluginStops     *prometheus.CounterVec
	hookPanics      *prometheus.CounterVec

	mappingsTotal *prometheus.CounterVec

	errorsTotal *prometheus.CounterVec

	registry prometheus.Registerer
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	factory := promauto.With(registry)
	return &MetricsCollector{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqflow_requests_total",
				Help: "Total number of HTTP requests made",
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reqflow_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "reqflow_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
			[]string{"method", "endpoint"},
		),
		lifecycleEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqflow_lifecycle_events_total",
				Help: "Total number of lifecycle events published",
			},
			[]string{"event"},
		),
		pluginStops: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqflow_plugin_dispatch_stopped_total",
				Help: "Total number of lifecycle dispatches stopped before all plugins ran",
			},
			[]string{"event"},
		),
		hookPanics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqflow_hook_panics_total",
				Help: "Total number of panics recovered from lifecycle hooks",
			},
			[]string{"event"},
		),
		mappingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqflow_mappings_total",
				Help: "Total number of response mappings by outcome",
			},
			[]string{"outcome"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqflow_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type", "method", "endpoint"},
		),
		registry: registry,
	}
}

// RecordRequest records request count and duration.
func (mc *MetricsCollector) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	statusCodeStr := strconv.Itoa(statusCode)
	mc.requestsTotal.WithLabelValues(method, statusCodeStr, endpoint).Inc()
	mc.requestDuration.WithLabelValues(method, statusCodeStr, endpoint).Observe(duration.Seconds())
}

// RecordRequestStart increments in-flight gauge.
func (mc *MetricsCollector) RecordRequestStart(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, endpoint).Inc()
}

// RecordRequestEnd decrements in-flight gauge.
func (mc *MetricsCollector) RecordRequestEnd(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, endpoint).Dec()
}

// RecordEvent counts a published lifecycle event and whether its plugin
// dispatch was stopped.
func (mc *MetricsCollector) RecordEvent(ev Event, stopped bool) {
	if mc == nil {
		return
	}

	mc.lifecycleEvents.WithLabelValues(string(ev)).Inc()
	if stopped {
		mc.pluginStops.WithLabelValues(string(ev)).Inc()
	}
}

// RecordHookPanic counts a recovered hook panic.
func (mc *MetricsCollector) RecordHookPanic(ev Event) {
	if mc == nil {
		return
	}

	mc.hookPanics.WithLabelValues(string(ev)).Inc()
}

// RecordMapping counts a response mapping by outcome ("ok", "empty",
// "error").
func (mc *MetricsCollector) RecordMapping(outcome string) {
	if mc == nil {
		return
	}

	mc.mappingsTotal.WithLabelValues(outcome).Inc()
}

// RecordError increments error counter by type.
func (mc *MetricsCollector) RecordError(errorType, method, endpoint string) {
	if mc == nil {
		return
	}

	mc.errorsTotal.WithLabelValues(errorType, method, endpoint).Inc()
}

// GetRegistry returns the registerer the collector was created on.
func (mc *MetricsCollector) GetRegistry() prometheus.Registerer {
	return mc.registry
}
