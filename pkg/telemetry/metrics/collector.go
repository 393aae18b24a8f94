package metrics

import (
	"sync"
	"time"

	"github.com/relaygw/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "gateway"
	subsystem = "jupiter"
)

// Collector is the orchestrator for all Prometheus metrics the gateway
// exposes. It owns the registry and the individual metric groups, and
// provides a narrow recording interface so callers never touch
// prometheus types directly.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics *RequestMetrics
	poolMetrics    *PoolMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector. If registry is nil, a fresh
// Prometheus registry is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		requestMetrics:     newRequestMetrics(registry),
		poolMetrics:        newPoolMetrics(registry),
		cardinalityLimiter: NewCardinalityLimiter(10000),
	}
}

// RecordRequest records metrics for a completed chat completion request.
func (c *Collector) RecordRequest(model, status string, duration time.Duration, inputTokens, outputTokens int) {
	if !c.config.Enabled {
		return
	}

	if !c.cardinalityLimiter.Allow("model:" + model) {
		model = "other"
	}

	c.requestMetrics.RecordRequest(model, status, duration)
	c.requestMetrics.RecordTokens(model, inputTokens, outputTokens)
}

// SetPoolSize updates the token pool gauges.
func (c *Collector) SetPoolSize(enabled, failing int) {
	if !c.config.Enabled {
		return
	}
	c.poolMetrics.SetPoolSize(enabled, failing)
}

// RecordLeaseWait records the time spent waiting to acquire a token lease.
func (c *Collector) RecordLeaseWait(d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.poolMetrics.RecordLeaseWait(d.Seconds())
}

// RecordStreamDelay records an artificial per-frame delay injected during
// streaming, keyed by its label (e.g. "typing", "ghost").
func (c *Collector) RecordStreamDelay(label string, ms uint32) {
	if !c.config.Enabled {
		return
	}
	c.poolMetrics.RecordStreamDelay(label, ms)
}

// RecordTokenError records a vendor error attributed to a token.
func (c *Collector) RecordTokenError(reason string) {
	if !c.config.Enabled {
		return
	}
	c.poolMetrics.RecordTokenError(reason)
}

// Registry returns the underlying Prometheus registry, e.g. for mounting the
// /metrics scrape handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting the
// number of unique label values seen per dimension.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the given cap.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet may be recorded: true if it's already been
// seen, or if the cardinality cap hasn't been reached yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
