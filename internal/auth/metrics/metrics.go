// Package metrics holds the Prometheus collectors for the auth service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels shared by the registration and login counters.
const (
	ResultSuccess      = "success"
	ResultInvalid      = "invalid_request"
	ResultExists       = "email_exists"
	ResultBadLogin     = "invalid_credentials"
	ResultInconsistent = "store_inconsistent"
	ResultError        = "error"
)

// Session event labels.
const (
	EventIssued    = "issued"
	EventRefreshed = "refreshed"
	EventRevoked   = "revoked"
	EventRejected  = "rejected"
)

var Registrations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "treasuremind_auth_registrations_total",
		Help: "Total number of registration attempts by result",
	},
	[]string{"result"},
)

var Logins = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "treasuremind_auth_logins_total",
		Help: "Total number of login attempts by result",
	},
	[]string{"result"},
)

var Sessions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "treasuremind_auth_sessions_total",
		Help: "Session token lifecycle events",
	},
	[]string{"event"},
)

var PasswordHashDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "treasuremind_auth_password_hash_seconds",
		Help:    "Time spent deriving password hashes, including queueing for a slot",
		Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	},
)

var OrphansRemoved = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "treasuremind_auth_orphans_removed_total",
		Help: "Credentials without a profile removed by housekeeping",
	},
)

// RegisterMetrics registers every auth collector with reg. Panics if
// registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Registrations)
	reg.MustRegister(Logins)
	reg.MustRegister(Sessions)
	reg.MustRegister(PasswordHashDuration)
	reg.MustRegister(OrphansRemoved)
}

func RecordRegistration(result string) { Registrations.WithLabelValues(result).Inc() }
func RecordLogin(result string)        { Logins.WithLabelValues(result).Inc() }
func RecordSession(event string)       { Sessions.WithLabelValues(event).Inc() }

func RecordPasswordHash(d time.Duration) { PasswordHashDuration.Observe(d.Seconds()) }

func RecordOrphansRemoved(n int) { OrphansRemoved.Add(float64(n)) }
