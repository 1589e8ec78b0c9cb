// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "matchmaker"

// Metrics groups every collector on a private registry so tests can build
// as many instances as they like.
//
// All methods are safe on a nil *Metrics.
type Metrics struct {
	Registry *prometheus.Registry

	browses       *prometheus.CounterVec
	interactions  *prometheus.CounterVec
	matches       prometheus.Counter
	notifications *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	rpcDuration   *prometheus.HistogramVec
}

// New registers all collectors plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		browses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "browse_total",
			Help:      "Browse requests by outcome (shown, empty, cooldown, quota, banned, not_registered).",
		}, []string{"outcome"}),
		interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interactions_total",
			Help:      "Ledger writes by kind (like, skip, block, unblock).",
		}, []string{"kind"}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_created_total",
			Help:      "Match rows created.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries by event kind and result (sent, failed, dropped).",
		}, []string{"kind", "result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Pending-likers count cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "gRPC handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.browses,
		m.interactions,
		m.matches,
		m.notifications,
		m.cacheLookups,
		m.rpcDuration,
	)
	return m
}

func (m *Metrics) Browse(outcome string) {
	if m == nil {
		return
	}
	m.browses.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Interaction(kind string) {
	if m == nil {
		return
	}
	m.interactions.WithLabelValues(kind).Inc()
}

func (m *Metrics) MatchCreated() {
	if m == nil {
		return
	}
	m.matches.Inc()
}

func (m *Metrics) Notification(kind, result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRPC(method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcDuration.WithLabelValues(method, code).Observe(d.Seconds())
}
