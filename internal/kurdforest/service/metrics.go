package service

import "github.com/prometheus/client_golang/prometheus"

var (
	registrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kurdforest_registrations_total",
			Help: "Registration attempts by outcome",
		},
		[]string{"outcome"},
	)

	verificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kurdforest_verifications_total",
			Help: "Verification attempts by outcome",
		},
		[]string{"outcome"},
	)

	loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kurdforest_logins_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"},
	)

	watchlistOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kurdforest_watchlist_operations_total",
			Help: "Watchlist mutations by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	movieResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kurdforest_movie_resolutions_total",
			Help: "Movie lookups by result (hit, created, raced)",
		},
		[]string{"result"},
	)

	sessionsPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kurdforest_sessions_purged_total",
			Help: "Expired sessions deleted by housekeeping",
		},
	)
)

// RegisterMetrics registers the service counters with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		registrationsTotal,
		verificationsTotal,
		loginsTotal,
		watchlistOpsTotal,
		movieResolutionsTotal,
		sessionsPurgedTotal,
	)
}
