package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PoolMetrics tracks the health and utilization of the token pool and the
// vendor stream pipeline.
//
// Metrics:
//   - gateway_jupiter_pool_tokens: current token count by status (enabled, failing)
//   - gateway_jupiter_pool_lease_wait_seconds: time spent waiting for a free token
//   - gateway_jupiter_stream_delay_ms: per-frame artificial delay injected by the translator
type PoolMetrics struct {
	poolTokens    *prometheus.GaugeVec
	leaseWait     prometheus.Histogram
	streamDelayMs *prometheus.HistogramVec
	tokenErrors   *prometheus.CounterVec
}

func newPoolMetrics(registry *prometheus.Registry) *PoolMetrics {
	pm := &PoolMetrics{
		poolTokens: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pool_tokens",
				Help:      "Current number of tokens in the pool by status",
			},
			[]string{"status"},
		),
		leaseWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pool_lease_wait_seconds",
				Help:      "Time spent waiting to acquire a token lease",
				Buckets:   prometheus.DefBuckets,
			},
		),
		streamDelayMs: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stream_delay_ms",
				Help:      "Artificial per-frame delay injected by the stream translator, in milliseconds",
				Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
			[]string{"label"},
		),
		tokenErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "token_errors_total",
				Help:      "Total number of vendor errors attributed to a token, by reason",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(pm.poolTokens, pm.leaseWait, pm.streamDelayMs, pm.tokenErrors)
	return pm
}

// SetPoolSize updates the gauge tracking enabled/failing token counts.
func (pm *PoolMetrics) SetPoolSize(enabled, failing int) {
	pm.poolTokens.WithLabelValues("enabled").Set(float64(enabled))
	pm.poolTokens.WithLabelValues("failing").Set(float64(failing))
}

// RecordLeaseWait records how long a request waited to acquire a token.
func (pm *PoolMetrics) RecordLeaseWait(seconds float64) {
	pm.leaseWait.Observe(seconds)
}

// RecordStreamDelay records an artificial delay the translator injected for
// a given label (e.g. "typing", "ghost").
func (pm *PoolMetrics) RecordStreamDelay(label string, ms uint32) {
	pm.streamDelayMs.WithLabelValues(label).Observe(float64(ms))
}

// RecordTokenError records a vendor error attributed to a token (e.g.
// "unauthenticated", "rate_limited").
func (pm *PoolMetrics) RecordTokenError(reason string) {
	pm.tokenErrors.WithLabelValues(reason).Inc()
}
