package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "greendex_syncs_total",
		Help: "Completed project syncs by outcome.",
	}, []string{"outcome"})

	syncStagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "greendex_sync_stages_total",
		Help: "Executed sync stages by stage name and status.",
	}, []string{"stage", "status"})

	syncQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "greendex_sync_queue_depth",
		Help: "Jobs currently waiting in the sync queue.",
	})
)
