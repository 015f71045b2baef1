package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	completionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quest_completions_total",
		Help: "Total number of quests recorded into user history.",
	})

	leaderboardWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quest_leaderboard_write_failures_total",
		Help: "Total number of best-effort leaderboard writes that failed.",
	})
)
