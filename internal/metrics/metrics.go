// Package metrics exposes Prometheus instruments for the recommendation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for RecommendRequests.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Tier label values for RecommendCandidates.
const (
	TierStrict  = "strict"
	TierRelaxed = "relaxed"
)

var (
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RelaxedSearches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_relaxed_searches_total",
			Help: "Number of requests that ran the relaxed search tier",
		},
	)

	RecommendCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_candidates",
			Help:    "Candidates returned by the store per search tier",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"tier"},
	)

	PrivateGroupsLookupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_private_groups_lookup_failures_total",
			Help: "Failed lookups of the Private Groups trip type",
		},
	)
)
