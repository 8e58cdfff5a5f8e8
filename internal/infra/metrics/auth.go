package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(AuthFailuresTotal, RateLimitedTotal)
}

var (
	// code: MISSING_API_KEY|INVALID_API_KEY|SERVER_CONFIG_ERROR
	AuthFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Rejected API requests by failure code.",
		},
		[]string{"code"},
	)

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter.",
		},
	)
)

func IncAuthFailure(code string) {
	AuthFailuresTotal.WithLabelValues(code).Inc()
}

func IncRateLimited() {
	RateLimitedTotal.Inc()
}
