package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/naka-gawa/oss-stats/internal/domain"
)

const seriesMonths = 12

// Aggregator is the use case for aggregating GitHub stats.
// It orchestrates the fetching, resolving and combining of data.
type Aggregator struct {
	paginator *Paginator
	resolver  *Resolver
	now       func() time.Time
	logger    *zap.SugaredLogger
}

// NewAggregator creates a new Aggregator instance. A nil clock means time.Now.
func NewAggregator(paginator *Paginator, resolver *Resolver, now func() time.Time, logger *zap.SugaredLogger) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{
		paginator: paginator,
		resolver:  resolver,
		now:       now,
		logger:    logger,
	}
}

// Aggregate collects the user's merged pull requests of the last 18 months,
// resolves them and reduces them into AggregatedStats. Any search failure
// aborts; there is no partially filled result.
func (a *Aggregator) Aggregate(ctx context.Context, user string) (*domain.AggregatedStats, error) {
	a.logger.Debugw("starting aggregation", "user", user)
	now := a.now()

	query := SearchQuery{User: user, MergedOnly: true, Since: SinceFloor(now)}
	items, err := a.paginator.Collect(ctx, query, CeilingStats)
	if err != nil {
		return nil, fmt.Errorf("collect merged pull requests for %s: %w", user, err)
	}

	prs, err := a.resolver.Resolve(ctx, items)
	if err != nil {
		return nil, err
	}

	result := BuildStats(user, prs, now)
	a.logger.Debugw("aggregation complete", "user", user, "total_prs", result.TotalPRs)
	return result, nil
}

// BuildStats reduces pull requests into per-type, per-org and per-month counts.
// The monthly series always has 12 points ending at now's month, oldest first.
func BuildStats(user string, prs []domain.PullRequestSummary, now time.Time) *domain.AggregatedStats {
	countsByType := domain.NewCountsByType()
	countsByOrg := make(map[string]int)
	countsByMonth := make(map[string]int)
	repos := make(map[string]struct{})

	for _, pr := range prs {
		countsByType[Classify(pr.Title, pr.LabelNames())]++

		if owner, repo, ok := ParseRepositoryURL(pr.RepositoryURL); ok {
			repos[owner+"/"+repo] = struct{}{}
			countsByOrg[owner]++
		}

		countsByMonth[monthKey(pr.CreatedAt)]++
	}

	series := make([]domain.MonthPoint, 0, seriesMonths)
	values := make(stats.Float64Data, 0, seriesMonths)
	utcNow := now.UTC()
	for i := seriesMonths - 1; i >= 0; i-- {
		month := time.Date(utcNow.Year(), utcNow.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		key := monthKey(month)
		series = append(series, domain.MonthPoint{Month: key, PRs: countsByMonth[key]})
		values = append(values, float64(countsByMonth[key]))
	}

	// Both only fail on empty input, which the fixed-size series rules out.
	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)

	return &domain.AggregatedStats{
		User:          user,
		TotalPRs:      len(prs),
		ReposCount:    len(repos),
		OrgsCount:     len(countsByOrg),
		CountsByType:  countsByType,
		CountsByOrg:   countsByOrg,
		MonthlySeries: series,
		MonthlyMean:   mean,
		MonthlyMedian: median,
		FetchedAt:     now.UTC(),
	}
}

// monthKey formats t as YYYY-MM in UTC.
func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
