package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PricingRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zebra_pricing_requests_total",
		Help: "Pricing calls by engine and outcome",
	}, []string{"engine", "outcome"})

	PricingLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "zebra_pricing_latency_seconds",
		Help:    "Time spent in an engine calculation",
		Buckets: prometheus.DefBuckets,
	}, []string{"engine"})

	MCSamples = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "zebra_mc_samples",
		Help:    "Samples drawn per Monte Carlo run",
		Buckets: prometheus.ExponentialBuckets(1024, 2, 10),
	})

	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zebra_rate_limited_total",
		Help: "Requests rejected by the per-key rate limiter",
	})
)

func init() {
	prometheus.MustRegister(
		PricingRequests,
		PricingLatency,
		MCSamples,
		RateLimited,
	)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
