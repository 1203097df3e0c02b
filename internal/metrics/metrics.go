// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons recorded by the detail resolver.
const (
	DropUnparseableRepo = "unparseable_repo"
	DropDetailFailed    = "detail_failed"
	DropClosedUnmerged  = "closed_unmerged"
)

var (
	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oss_stats_cache_lookups_total",
		Help: "Response cache lookups by route and result (hit, miss)",
	}, []string{"route", "result"})

	ResolverDropsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oss_stats_resolver_drops_total",
		Help: "Search items dropped by the detail resolver, by reason",
	}, []string{"reason"})

	UpstreamCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oss_stats_github_calls_total",
		Help: "Calls made to the GitHub API by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	SecondaryLimitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oss_stats_github_secondary_limits_total",
		Help: "Responses rejected by GitHub's secondary rate limit",
	})
)
