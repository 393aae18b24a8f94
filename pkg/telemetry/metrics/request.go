package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks metrics for chat completion requests handled by the
// gateway.
//
// Metrics:
//   - gateway_jupiter_requests_total: total request count by model and status
//   - gateway_jupiter_request_duration_seconds: request duration histogram by model
//   - gateway_jupiter_request_tokens_total: input/output token counts by model
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tokensTotal     *prometheus.CounterVec
}

var requestDurationBuckets = []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0}

func newRequestMetrics(registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Total number of chat completion requests processed",
			},
			[]string{"model", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of chat completion requests in seconds",
				Buckets:   requestDurationBuckets,
			},
			[]string{"model"},
		),
		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_tokens_total",
				Help:      "Total number of tokens processed",
			},
			[]string{"model", "type"},
		),
	}

	registry.MustRegister(rm.requestsTotal, rm.requestDuration, rm.tokensTotal)
	return rm
}

// RecordRequest records the outcome of a completed request.
func (rm *RequestMetrics) RecordRequest(model, status string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(model, status).Inc()
	rm.requestDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordTokens records input and output token counts for a completed request.
func (rm *RequestMetrics) RecordTokens(model string, inputTokens, outputTokens int) {
	if inputTokens > 0 {
		rm.tokensTotal.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		rm.tokensTotal.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}
