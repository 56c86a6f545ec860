// Package metrics exposes Prometheus counters for store and advice activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pottytracker"

// Advice outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
	OutcomeDisabled = "disabled"
)

var (
	// EventsLogged counts saved events.
	// Labels: type (potty, wakeup, ...)
	EventsLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "logged_total",
			Help:      "Total number of events saved, by event type",
		},
		[]string{"type"},
	)

	// EventsChanged counts time corrections and deletions.
	// Labels: op (update, delete)
	EventsChanged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "changed_total",
			Help:      "Total number of event edits and deletions",
		},
		[]string{"op"},
	)

	// AdviceRequests counts advice refreshes.
	// Labels: trigger (auto, manual), outcome (success, fallback, disabled)
	AdviceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "advice",
			Name:      "requests_total",
			Help:      "Total number of advice refreshes by trigger and outcome",
		},
		[]string{"trigger", "outcome"},
	)

	// AdviceDuration tracks gateway round-trip time.
	AdviceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "advice",
			Name:      "gateway_duration_seconds",
			Help:      "Duration of advice gateway calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// AdviceInFlight is the number of background refreshes currently running.
	AdviceInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "advice",
			Name:      "in_flight",
			Help:      "Number of advice refreshes currently running",
		},
	)

	// Signups counts created accounts.
	// Labels: family (new, joined)
	Signups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "signups_total",
			Help:      "Total number of accounts created, by whether a family was joined",
		},
		[]string{"family"},
	)

	// LoginFailures counts rejected logins.
	// Labels: reason (not_found, bad_password)
	LoginFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_failures_total",
			Help:      "Total number of rejected logins by reason",
		},
		[]string{"reason"},
	)
)
