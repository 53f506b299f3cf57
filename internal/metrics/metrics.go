// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every collector the service records.
type Metrics struct {
	RosterFetches       *prometheus.CounterVec
	RosterFetchDuration prometheus.Histogram
	RosterStale         prometheus.Counter
	RosterRowsDropped   prometheus.Counter
	RosterSessions      prometheus.Gauge
	FeedEvents          *prometheus.CounterVec
	EmailsSent          *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RosterFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "league",
			Subsystem: "roster",
			Name:      "fetches_total",
			Help:      "Roster listing calls by outcome.",
		}, []string{"outcome"}),
		RosterFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "league",
			Subsystem: "roster",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of roster listing calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		RosterStale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "league",
			Subsystem: "roster",
			Name:      "stale_responses_total",
			Help:      "Responses discarded because a newer request was issued.",
		}),
		RosterRowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "league",
			Subsystem: "roster",
			Name:      "rows_dropped_total",
			Help:      "Malformed rows skipped by the roster decoder.",
		}),
		RosterSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "league",
			Subsystem: "roster",
			Name:      "sessions",
			Help:      "Admin roster sessions currently held in memory.",
		}),
		FeedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "league",
			Subsystem: "registration",
			Name:      "feed_events_total",
			Help:      "Payment insert notifications by result.",
		}, []string{"result"}),
		EmailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "league",
			Subsystem: "mail",
			Name:      "emails_total",
			Help:      "Bulk email deliveries by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.RosterFetches,
		m.RosterFetchDuration,
		m.RosterStale,
		m.RosterRowsDropped,
		m.RosterSessions,
		m.FeedEvents,
		m.EmailsSent,
	)
	return m
}

// NewUnregistered returns collectors that are not exported anywhere, for tests and CLI use.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}
