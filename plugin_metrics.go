package reqflow

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsPlugin counts responses by outcome and observes body sizes. Unlike
// the client's MetricsCollector it rides on the lifecycle, so one instance
// on a shared lifecycle sees every client publishing there.
type MetricsPlugin struct {
	responses    *prometheus.CounterVec
	responseSize prometheus.Histogram
}

// NewMetricsPlugin registers the plugin's metrics on registry.
func NewMetricsPlugin(registry prometheus.Registerer) *MetricsPlugin {
	factory := promauto.With(registry)
	return &MetricsPlugin{
		responses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqflow_plugin_responses_total",
				Help: "Responses seen by the metrics plugin by outcome and status code",
			},
			[]string{"outcome", "status_code"},
		),
		responseSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reqflow_plugin_response_size_bytes",
				Help:    "Size of successful response bodies in bytes",
				Buckets: prometheus.ExponentialBuckets(64, 4, 8),
			},
		),
	}
}

func (p *MetricsPlugin) PostRequestSuccess(resp *Response) Action {
	p.responses.WithLabelValues("success", strconv.Itoa(resp.StatusCode)).Inc()
	p.responseSize.Observe(float64(len(resp.Body)))
	return Continue
}

func (p *MetricsPlugin) PostRequestError(resp *Response) Action {
	outcome := "error"
	if resp.Err != nil {
		outcome = "failure"
	}
	p.responses.WithLabelValues(outcome, strconv.Itoa(resp.StatusCode)).Inc()
	return Continue
}
