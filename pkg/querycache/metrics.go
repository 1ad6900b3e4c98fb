package querycache

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts cache outcomes per query name. A nil *Metrics is a no-op.
type Metrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	shared        *prometheus.CounterVec
	fetchErrors   *prometheus.CounterVec
	invalidations prometheus.Counter
	tableErrors   prometheus.Counter
}

// NewMetrics creates and registers the cache metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketing",
			Subsystem: "query_cache",
			Name:      "hits_total",
			Help:      "Reads served from the cache",
		}, []string{"query"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketing",
			Subsystem: "query_cache",
			Name:      "misses_total",
			Help:      "Reads that required a fetch",
		}, []string{"query"}),
		shared: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketing",
			Subsystem: "query_cache",
			Name:      "shared_fetches_total",
			Help:      "Reads that joined an in-flight fetch",
		}, []string{"query"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketing",
			Subsystem: "query_cache",
			Name:      "fetch_errors_total",
			Help:      "Fetches that returned an error",
		}, []string{"query"}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marketing",
			Subsystem: "query_cache",
			Name:      "invalidations_total",
			Help:      "Invalidated key prefixes",
		}),
		tableErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marketing",
			Subsystem: "query_cache",
			Name:      "table_errors_total",
			Help:      "Failed accesses to the cache table",
		}),
	}
	reg.MustRegister(m.hits, m.misses, m.shared, m.fetchErrors, m.invalidations, m.tableErrors)
	return m
}

func (m *Metrics) hit(query string) {
	if m != nil {
		m.hits.WithLabelValues(query).Inc()
	}
}

func (m *Metrics) miss(query string) {
	if m != nil {
		m.misses.WithLabelValues(query).Inc()
	}
}

func (m *Metrics) sharedFetch(query string) {
	if m != nil {
		m.shared.WithLabelValues(query).Inc()
	}
}

func (m *Metrics) fetchError(query string) {
	if m != nil {
		m.fetchErrors.WithLabelValues(query).Inc()
	}
}

func (m *Metrics) invalidated(n int) {
	if m != nil {
		m.invalidations.Add(float64(n))
	}
}

func (m *Metrics) tableError() {
	if m != nil {
		m.tableErrors.Inc()
	}
}
