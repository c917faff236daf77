package metrics

import "github.com/prometheus/client_golang/prometheus"

// Poster lookup Prometheus metrics.
var (
	PosterRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "movierec",
			Name:      "poster_provider_requests_total",
			Help:      "Total number of poster provider requests",
		},
		[]string{"provider", "status"},
	)

	PosterRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "movierec",
			Name:      "poster_provider_request_duration_seconds",
			Help:      "Poster provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	PosterLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "movierec",
			Name:      "poster_lookups_total",
			Help:      "Poster lookups by outcome as seen by the fetcher",
		},
		[]string{"outcome"}, // "found" / "missing" / "error" / "panic"
	)

	PosterCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "movierec",
			Name:      "poster_cache_total",
			Help:      "Poster cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	PosterBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "movierec",
			Name:      "poster_breaker_state",
			Help:      "Poster provider circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

var posterMetricsRegistered bool

// RegisterPosterMetrics registers Prometheus poster metrics. Must be called once from main.
func RegisterPosterMetrics() {
	if posterMetricsRegistered {
		return
	}
	prometheus.MustRegister(PosterRequestsTotal)
	prometheus.MustRegister(PosterRequestDuration)
	prometheus.MustRegister(PosterLookupsTotal)
	prometheus.MustRegister(PosterCacheTotal)
	prometheus.MustRegister(PosterBreakerState)
	posterMetricsRegistered = true
}
