// Package metrics provides Prometheus metrics collection for the gateway.
//
// # Overview
//
// The collector exposes request counters and latency histograms, token pool
// gauges, and stream-delay histograms. It is mounted on the /metrics
// endpoint via Collector.Handler alongside the rest of the admin API.
//
// # Usage
//
//	collector := metrics.NewCollector(cfg, nil)
//	collector.RecordRequest("gpt-4", "success", time.Second, 120, 480)
//	collector.SetPoolSize(enabled, failing)
//	http.Handle("/metrics", collector.Handler())
//
// # Cardinality
//
// Model labels are capped at 10,000 unique values; beyond that, requests are
// recorded under the "other" bucket to avoid memory blowup from unbounded
// user-supplied model names.
package metrics
