package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bitinglip_gateway_request_duration_seconds",
			Help:    "Duration of gateway calls, including retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"resource", "verb"},
	)

	attemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bitinglip_gateway_attempts_total",
			Help: "Total HTTP attempts against the gateway",
		},
		[]string{"resource", "outcome"}, // outcome: ok or error kind
	)

	retriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bitinglip_gateway_retries_total",
			Help: "Total retried attempts after a retryable failure",
		},
	)
)
