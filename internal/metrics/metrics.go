// Package metrics exposes Prometheus counters for upstream calls and cache
// behaviour. The process is a pure client with no exposition endpoint;
// callers embedding this library can gather from the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts Riot API calls by endpoint and outcome
	// ("ok", "upstream_error", "transport_error").
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lolanalysis",
		Name:      "upstream_requests_total",
		Help:      "Riot API requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	// CacheHits counts read-through cache hits by collection.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lolanalysis",
		Name:      "cache_hits_total",
		Help:      "Document store hits by collection.",
	}, []string{"collection"})

	// CacheMisses counts read-through cache misses by collection.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lolanalysis",
		Name:      "cache_misses_total",
		Help:      "Document store misses by collection.",
	}, []string{"collection"})

	// CacheWriteFailures counts failed cache persists. The fetched value is
	// still returned to the caller when this fires.
	CacheWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lolanalysis",
		Name:      "cache_write_failures_total",
		Help:      "Failed document store writes by collection.",
	}, []string{"collection"})
)
