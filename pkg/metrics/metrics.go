package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistrationAttempts records registration attempts by result
	// (created|conflict|invalid|error).
	RegistrationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signupd_registration_attempts_total",
			Help: "Total number of registration attempts",
		},
		[]string{"result"},
	)

	// ActivationAttempts records activation attempts by result
	// (activated|invalid|already_active|error).
	ActivationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signupd_activation_attempts_total",
			Help: "Total number of activation attempts",
		},
		[]string{"result"},
	)

	// ActivationEmails counts dispatched activation notifications by outcome
	// (sent|failed).
	ActivationEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signupd_activation_emails_total",
			Help: "Total number of activation email dispatch attempts",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signupd_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
