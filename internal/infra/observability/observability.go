// Package observability defines the Prometheus metrics of the loyalty core.
// Metrics are registered on the default registry via promauto and exposed
// by the API server on /metrics.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "beautyboost"

// ─── Points Metrics ─────────────────────────────────────────────────────────

// PointsEarned tracks total points credited to customers.
var PointsEarned = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "points",
	Name:      "earned_total",
	Help:      "Total loyalty points earned.",
})

// PointsRedeemed tracks total points debited from customers.
var PointsRedeemed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "points",
	Name:      "redeemed_total",
	Help:      "Total loyalty points redeemed.",
})

// RedemptionsRejected tracks redemptions refused by the ledger.
var RedemptionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "points",
	Name:      "redemptions_rejected_total",
	Help:      "Total redemptions rejected, by reason.",
}, []string{"reason"})

// TierChanges tracks membership tier transitions.
var TierChanges = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "tier",
	Name:      "changes_total",
	Help:      "Total membership tier changes.",
}, []string{"from", "to"})

// ─── Booking Metrics ────────────────────────────────────────────────────────

// BookingEvents tracks booking lifecycle events (created, completed, cancelled).
var BookingEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "bookings",
	Name:      "events_total",
	Help:      "Total booking lifecycle events.",
}, []string{"event"})

// RewardEvents tracks reward lifecycle events (redeemed, used, expired).
var RewardEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "rewards",
	Name:      "events_total",
	Help:      "Total redeemed-reward lifecycle events.",
}, []string{"event"})

// ─── Directory Metrics ──────────────────────────────────────────────────────

// Logins tracks login attempts by result.
var Logins = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "accounts",
	Name:      "logins_total",
	Help:      "Total login attempts by result.",
}, []string{"result"})

// Registrations tracks successful registrations.
var Registrations = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "accounts",
	Name:      "registrations_total",
	Help:      "Total customer accounts registered.",
})

// ─── HTTP Metrics ───────────────────────────────────────────────────────────

// HTTPRequests tracks API requests by route pattern and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total API requests.",
}, []string{"method", "route", "status"})

// HTTPDuration tracks API latency by route pattern.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "API request latency in seconds.",
	Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
}, []string{"route"})

// ObserveRequest records one finished HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ─── Recorder ───────────────────────────────────────────────────────────────

// Recorder is the narrow metrics surface the application services use.
// The zero value is usable; Nop discards everything for tests that don't
// want to touch the global registry.
type Recorder struct {
	nop bool
}

// Nop returns a recorder that records nothing.
func Nop() *Recorder { return &Recorder{nop: true} }

// Default returns a recorder backed by the package metrics.
func Default() *Recorder { return &Recorder{} }

func (r *Recorder) Earned(amount int64) {
	if r == nil || r.nop {
		return
	}
	PointsEarned.Add(float64(amount))
}

func (r *Recorder) Redeemed(amount int64) {
	if r == nil || r.nop {
		return
	}
	PointsRedeemed.Add(float64(amount))
}

func (r *Recorder) RedemptionRejected(reason string) {
	if r == nil || r.nop {
		return
	}
	RedemptionsRejected.WithLabelValues(reason).Inc()
}

func (r *Recorder) TierChanged(from, to string) {
	if r == nil || r.nop || from == to {
		return
	}
	TierChanges.WithLabelValues(from, to).Inc()
}

func (r *Recorder) Booking(event string) {
	if r == nil || r.nop {
		return
	}
	BookingEvents.WithLabelValues(event).Inc()
}

func (r *Recorder) Reward(event string) {
	if r == nil || r.nop {
		return
	}
	RewardEvents.WithLabelValues(event).Inc()
}

func (r *Recorder) Login(result string) {
	if r == nil || r.nop {
		return
	}
	Logins.WithLabelValues(result).Inc()
}

func (r *Recorder) Registered() {
	if r == nil || r.nop {
		return
	}
	Registrations.Inc()
}
