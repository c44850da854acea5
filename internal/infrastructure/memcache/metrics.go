package memcache

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the cache's prometheus counters. A nil *Metrics is valid
// and counts nothing, so tests can ignore instrumentation.
type Metrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
}

// NewMetrics registers the cache counters on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "The total number of cache hits",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "The total number of cache misses",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "The total number of LRU evictions",
		}),
	}
	reg.MustRegister(m.hits, m.misses, m.evictions)
	return m
}

func (m *Metrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *Metrics) eviction() {
	if m != nil {
		m.evictions.Inc()
	}
}
