package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus holds the collectors scraped from /metrics
type Prometheus struct {
	VariantAttempts    *prometheus.CounterVec
	VariantsDelivered  *prometheus.CounterVec
	Generations        *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	ProviderLatency    *prometheus.HistogramVec
	HTTPRequests       *prometheus.CounterVec
}

// NewPrometheus registers the collectors on reg. Tests pass a fresh registry.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)

	return &Prometheus{
		VariantAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uivariants_variant_attempts_total",
				Help: "Provider attempts per theme, by outcome",
			},
			[]string{"style", "outcome"},
		),
		VariantsDelivered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uivariants_variants_delivered_total",
				Help: "Variants that made it into a result",
			},
			[]string{"style"},
		),
		Generations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uivariants_generations_total",
				Help: "Completed fan-outs, by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		GenerationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "uivariants_generation_duration_seconds",
				Help:    "Wall time of a full fan-out",
				Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
			},
			[]string{"provider"},
		),
		ProviderLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "uivariants_provider_request_duration_seconds",
				Help:    "Latency of single provider calls, including failed ones",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"provider"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uivariants_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"endpoint", "status"},
		),
	}
}
