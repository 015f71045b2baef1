package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	collectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quest_collections_total",
			Help: "Total number of artefact submission attempts by outcome.",
		},
		[]string{"outcome"}, // accepted | duplicate | out_of_sequence | error
	)

	sessionSubmitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quest_session_submits_total",
			Help: "Total number of artefact submissions through the session API by outcome.",
		},
		[]string{"outcome"},
	)
)
