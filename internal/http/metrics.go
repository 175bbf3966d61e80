package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voting_login_attempts_total",
		Help: "Login attempts by result.",
	}, []string{"result"})

	lockoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voting_account_lockouts_total",
		Help: "Accounts locked after repeated login failures.",
	})

	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voting_rate_limited_requests_total",
		Help: "Requests rejected by the per IP rate limiter.",
	})

	csrfRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voting_csrf_rejections_total",
		Help: "Mutating requests rejected by the CSRF guard.",
	})
)
