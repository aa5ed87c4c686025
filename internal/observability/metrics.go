// Package observability holds the Prometheus collectors for roster activity.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	rosterOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signup_service",
		Subsystem: "roster",
		Name:      "operations_total",
		Help:      "Signup and unregister attempts grouped by action and outcome.",
	}, []string{"action", "outcome"})

	rosterSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "signup_service",
		Subsystem: "roster",
		Name:      "participants",
		Help:      "Current number of participants per activity.",
	}, []string{"activity"})
)

func init() {
	prometheus.MustRegister(rosterOperations, rosterSize)
}

// RecordRosterOperation counts one signup or unregister attempt.
func RecordRosterOperation(action, outcome string) {
	rosterOperations.WithLabelValues(action, outcome).Inc()
}

// SetRosterSize updates the participant gauge for an activity.
func SetRosterSize(activity string, participants int) {
	rosterSize.WithLabelValues(activity).Set(float64(participants))
}
