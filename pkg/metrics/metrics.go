package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "idextract", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "idextract", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// Extractions counts finished upload requests by outcome:
	// saved, exists, invalid, incomplete, fetch_failed, error.
	Extractions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "idextract", Name: "extractions_total", Help: "Extraction requests by outcome."},
		[]string{"outcome"},
	)
	OCRDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "idextract",
			Name:      "ocr_duration_seconds",
			Help:      "Time spent selecting the best orientation for one image.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"side"},
	)
	CacheWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "idextract", Name: "cache_write_failures_total", Help: "Record cache writes that failed."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(Extractions)
	reg.MustRegister(OCRDuration)
	reg.MustRegister(CacheWriteFailures)
}
