package refresh

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agilewatch_refresh_ticks_total",
			Help: "Total number of refresh ticks by result.",
		},
		[]string{"result"},
	)
	titleChangesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agilewatch_refresh_title_changes_total",
			Help: "Total number of times a new title was applied.",
		},
	)
)
