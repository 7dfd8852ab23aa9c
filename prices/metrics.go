package prices

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agilewatch_price_fetches_total",
			Help: "Total number of price fetches per provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)
	fetchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agilewatch_price_fetch_duration_seconds",
			Help:    "Price fetch latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
	seriesSlots = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agilewatch_price_series_slots",
			Help: "Number of slots in the current price series.",
		},
	)
)
