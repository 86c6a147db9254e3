package epoch

import (
	"sync"

	"github.com/bsv-blockchain/epochsettle/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusEpochSettle              prometheus.Histogram
	prometheusEpochSettleSize          prometheus.Histogram
	prometheusEpochPrecheck            prometheus.Histogram
	prometheusEpochCandidates          prometheus.Counter
	prometheusEpochAccepted            prometheus.Counter
	prometheusEpochRejected            *prometheus.CounterVec
	prometheusEpochInvariantViolations prometheus.Counter
	prometheusUtxoPoolSize             prometheus.Gauge
)

var prometheusMetricsInitOnce sync.Once

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusEpochSettle = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "epochsettle",
			Subsystem: "epoch",
			Name:      "settle",
			Help:      "Histogram of epoch settlement",
			Buckets:   util.MetricsBucketsMilliSeconds,
		},
	)

	prometheusEpochSettleSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "epochsettle",
			Subsystem: "epoch",
			Name:      "settle_size",
			Help:      "Number of candidate transactions per settled epoch",
			Buckets:   util.MetricsBucketsCount,
		},
	)

	prometheusEpochPrecheck = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "epochsettle",
			Subsystem: "epoch",
			Name:      "precheck",
			Help:      "Histogram of the parallel signature precheck",
			Buckets:   util.MetricsBucketsMilliSeconds,
		},
	)

	prometheusEpochCandidates = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "epochsettle",
			Subsystem: "epoch",
			Name:      "candidates",
			Help:      "Number of candidate transactions received",
		},
	)

	prometheusEpochAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "epochsettle",
			Subsystem: "epoch",
			Name:      "accepted",
			Help:      "Number of candidate transactions accepted and applied to the pool",
		},
	)

	prometheusEpochRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "epochsettle",
			Subsystem: "epoch",
			Name:      "rejected",
			Help:      "Number of candidate transactions rejected, by reason",
		},
		[]string{"reason"},
	)

	prometheusEpochInvariantViolations = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "epochsettle",
			Subsystem: "epoch",
			Name:      "invariant_violations",
			Help:      "Number of pool mutations that failed while committing an accepted transaction",
		},
	)

	prometheusUtxoPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "epochsettle",
			Subsystem: "epoch",
			Name:      "utxo_pool_size",
			Help:      "Number of unspent outputs in the pool after the last settled epoch",
		},
	)
}
