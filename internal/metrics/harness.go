package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vector index harness Prometheus metrics.
var (
	HarnessBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "embedlab",
			Name:      "harness_index_build_duration_seconds",
			Help:      "Vector index build duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"driver"},
	)

	HarnessSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "embedlab",
			Name:      "harness_search_duration_seconds",
			Help:      "Per-query nearest neighbor search duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"driver"},
	)
)

// RegisterHarnessMetrics registers harness metrics with the default registry.
func RegisterHarnessMetrics() {
	prometheus.MustRegister(HarnessBuildDuration, HarnessSearchDuration)
}
