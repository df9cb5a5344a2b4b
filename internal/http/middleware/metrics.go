package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_requests_total",
			Help: "Total requests seen by the rate limiter",
		},
		[]string{"endpoint"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total requests blocked by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// TaskTransitions counts lifecycle transitions by operation and outcome.
	TaskTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_transitions_total",
			Help: "Task lifecycle transitions submitted to the ledger",
		},
		[]string{"op", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(RLRequests)
	prometheus.MustRegister(RLBlocked)
	prometheus.MustRegister(TaskTransitions)
}
