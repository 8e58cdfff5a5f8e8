package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		OrdersCreatedTotal,
		orderAmountMinorTotal,
		PaymentVerifyRequests,
	)
}

var (
	OrdersCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders successfully created upstream, labeled by currency.",
		},
		[]string{"currency"},
	)

	orderAmountMinorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_amount_minor_total",
			Help: "Sum of created order amounts in minor units, labeled by currency.",
		},
		[]string{"currency"},
	)

	// Count of verify calls grouped by result and bounded reason.
	// result: ok|fail
	// reason (fail only): invalid_signature|gateway_rejected|gateway_unavailable|decode_error
	PaymentVerifyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verify_requests_total",
			Help: "Count of payment verification attempts by result and reason.",
		},
		[]string{"result", "reason"},
	)
)

func IncOrderCreated(currency string, amountMinor int64) {
	OrdersCreatedTotal.WithLabelValues(norm(currency)).Inc()
	orderAmountMinorTotal.WithLabelValues(norm(currency)).Add(float64(amountMinor))
}

func IncPaymentVerify(result, reason string) {
	PaymentVerifyRequests.WithLabelValues(result, reason).Inc()
}
