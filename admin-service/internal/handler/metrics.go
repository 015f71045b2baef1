package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	questWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_quest_writes_total",
			Help: "Total number of authoring write operations on quests.",
		},
		[]string{"operation", "status"},
	)

	assetUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_asset_uploads_total",
			Help: "Total number of quest asset uploads by status.",
		},
		[]string{"status"},
	)
)
