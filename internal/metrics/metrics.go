// Package metrics holds the client-side Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "famtrack"

var (
	// APIRequests counts backend calls by operation and outcome.
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Backend API requests by operation and outcome.",
	}, []string{"op", "outcome"})

	// Reloads counts dashboard full reloads by outcome.
	Reloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_reloads_total",
		Help:      "Dashboard full reloads by outcome.",
	}, []string{"outcome"})

	// SkippedPolls counts poll ticks dropped because a reload was in flight.
	SkippedPolls = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_skipped_polls_total",
		Help:      "Poll ticks skipped while a reload was in flight.",
	})

	// Notifications counts completion notifications emitted.
	Notifications = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Completion notifications emitted.",
	})

	// Reconnects counts realtime channel reconnect attempts.
	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_reconnects_total",
		Help:      "Realtime channel reconnect attempts.",
	})

	// RealtimeMessages counts delivered change notices by topic kind.
	RealtimeMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_messages_total",
		Help:      "Change notices delivered to subscribers.",
	}, []string{"kind"})
)

// Outcome labels a request result.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
