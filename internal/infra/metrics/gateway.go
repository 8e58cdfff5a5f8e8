package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		GatewayCallsTotal,
		GatewayCallDuration,
	)
}

var (
	// op: create_order|fetch_payment|fetch_order
	// result: ok|rejected|unavailable
	GatewayCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_calls_total",
			Help: "Upstream payment gateway calls by operation and result.",
		},
		[]string{"provider", "op", "result"},
	)

	GatewayCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_call_duration_seconds",
			Help:    "Upstream payment gateway call latency in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider", "op"},
	)
)

func ObserveGatewayCall(provider, op, result string, d time.Duration) {
	GatewayCallsTotal.WithLabelValues(norm(provider), op, result).Inc()
	GatewayCallDuration.WithLabelValues(norm(provider), op).Observe(d.Seconds())
}
