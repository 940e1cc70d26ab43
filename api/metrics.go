// metrics.go - Prometheus collectors for the vote and cache paths.
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	votesAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vote_engine_votes_accepted_total",
		Help: "Accepted vote submissions.",
	})

	votesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vote_engine_votes_rejected_total",
		Help: "Rejected vote submissions by reason.",
	}, []string{"reason"})

	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vote_engine_view_cache_hits_total",
		Help: "Rendered-view cache hits by view key.",
	}, []string{"view"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vote_engine_view_cache_misses_total",
		Help: "Rendered-view cache misses by view key.",
	}, []string{"view"})
)
