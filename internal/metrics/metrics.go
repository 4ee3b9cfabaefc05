// Package metrics exposes the prometheus counters the API increments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsMinted counts successfully minted attendance sessions.
	SessionsMinted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollcall_sessions_minted_total",
		Help: "Attendance sessions minted.",
	})

	// Redemptions counts scan attempts by outcome: ok, expired,
	// not_enrolled, already_marked, error.
	Redemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_redemptions_total",
		Help: "Session scan attempts by outcome.",
	}, []string{"outcome"})

	// SlotConflicts counts rejected slot proposals by conflict kind.
	SlotConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_slot_conflicts_total",
		Help: "Slot proposals rejected for conflicts, by kind.",
	}, []string{"kind"})
)
