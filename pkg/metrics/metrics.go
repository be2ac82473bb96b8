package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AuthzDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docgate", Name: "authz_decisions_total", Help: "Number of authorization decisions by outcome."},
		[]string{"decision"},
	)
	Grants = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docgate", Name: "grants_total", Help: "Number of grant attempts by result."},
		[]string{"result"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docgate", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docgate", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(AuthzDecisions)
	reg.MustRegister(Grants)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
