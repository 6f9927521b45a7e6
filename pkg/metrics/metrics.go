package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "travel"

// Initiation outcomes.
const (
	OutcomeInitiated   = "initiated"
	OutcomeRejected    = "rejected"
	OutcomeFailed      = "gateway_failed"
	OutcomeUnreachable = "gateway_unreachable"
	OutcomeStoreError  = "store_error"
)

var (
	PaymentInitiationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_initiations_total",
			Help:      "Payment initiation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Latency of outbound payment gateway calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"outcome"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route pattern and status code.",
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(PaymentInitiationsTotal, GatewayRequestDuration, HTTPRequestsTotal)
}

func IncInitiation(outcome string) {
	PaymentInitiationsTotal.WithLabelValues(outcome).Inc()
}

func ObserveGateway(outcome string, seconds float64) {
	GatewayRequestDuration.WithLabelValues(outcome).Observe(seconds)
}

func IncHTTPRequest(method, route, status string) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
}
