package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline counters on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	cacheLookups      *prometheus.CounterVec
	handlerSelections *prometheus.CounterVec
	adapterFailures   *prometheus.CounterVec
}

// NewMetrics registers the pipeline counters on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "digest_cache_lookups_total",
			Help: "Asset cache lookups by asset kind and result (hit or miss).",
		}, []string{"kind", "result"}),
		handlerSelections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "digest_handler_selections_total",
			Help: "References routed to each handler.",
		}, []string{"handler"}),
		adapterFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "digest_adapter_failures_total",
			Help: "Degraded results caused by a failing extraction adapter.",
		}, []string{"adapter"}),
	}
	m.Registry.MustRegister(m.cacheLookups, m.handlerSelections, m.adapterFailures)
	return m
}

// CacheLookup records one get-or-fetch lookup.
func (m *Metrics) CacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(kind, result).Inc()
}

// HandlerSelected records that a handler was chosen for a reference.
func (m *Metrics) HandlerSelected(handler string) {
	if m == nil {
		return
	}
	m.handlerSelections.WithLabelValues(handler).Inc()
}

// AdapterFailed records a degraded adapter call.
func (m *Metrics) AdapterFailed(adapter string) {
	if m == nil {
		return
	}
	m.adapterFailures.WithLabelValues(adapter).Inc()
}

// WriteTextfile dumps the registry in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
