package validator

import (
	"sync"

	"github.com/bsv-blockchain/epochsettle/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusInvalidTransactions    *prometheus.CounterVec
	prometheusTransactionValidate    prometheus.Histogram
	prometheusSignatureVerifications prometheus.Counter
	prometheusSignatureCacheHits     prometheus.Counter
)

var prometheusMetricsInitOnce sync.Once

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusInvalidTransactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "epochsettle",
			Subsystem: "validator",
			Name:      "invalid_transactions",
			Help:      "Number of transactions found invalid by the validator, by reason",
		},
		[]string{"reason"},
	)

	prometheusTransactionValidate = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "epochsettle",
			Subsystem: "validator",
			Name:      "transactions_validate",
			Help:      "Histogram of transaction validation",
			Buckets:   util.MetricsBucketsMicroSeconds,
		},
	)

	prometheusSignatureVerifications = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "epochsettle",
			Subsystem: "validator",
			Name:      "signature_verifications",
			Help:      "Number of input signatures verified",
		},
	)

	prometheusSignatureCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "epochsettle",
			Subsystem: "validator",
			Name:      "signature_cache_hits",
			Help:      "Number of input signatures taken from a precheck verdict instead of being verified",
		},
	)
}
