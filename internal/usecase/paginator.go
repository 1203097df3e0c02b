// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/naka-gawa/oss-stats/internal/gateway"
)

const (
	// SearchPageSize is the number of items requested per search page.
	SearchPageSize = 100

	// Page ceilings per caller. Results stop at ceiling*SearchPageSize, so totals
	// of very active users are under-counted on purpose.
	CeilingOrgLookup = 2
	CeilingStats     = 3
	CeilingOrgFeed   = 10

	searchWindowMonths = 18
	githubDateLayout   = "2006-01-02"
)

// SearchQuery describes a pull request search for one author.
type SearchQuery struct {
	User       string
	Org        string
	MergedOnly bool
	Since      time.Time
}

// String renders the query in GitHub search syntax.
func (q SearchQuery) String() string {
	parts := []string{"is:pr", "author:" + q.User}
	if q.Org != "" {
		parts = append(parts, "org:"+q.Org)
	}
	since := q.Since.Format(githubDateLayout)
	if q.MergedOnly {
		parts = append(parts, "is:merged", "merged:>="+since)
	} else {
		parts = append(parts, "created:>="+since)
	}
	return strings.Join(parts, " ")
}

// SinceFloor returns the search window start: 18 months before now, truncated to a UTC day.
func SinceFloor(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()-searchWindowMonths, now.Day(), 0, 0, 0, 0, time.UTC)
}

// Paginator walks the search endpoint page by page.
type Paginator struct {
	fetcher gateway.Fetcher
	logger  *zap.SugaredLogger
}

// NewPaginator creates a new Paginator instance.
func NewPaginator(fetcher gateway.Fetcher, logger *zap.SugaredLogger) *Paginator {
	return &Paginator{fetcher: fetcher, logger: logger}
}

// Collect concatenates search items until a short page or the page ceiling.
// Any page error aborts the whole collection.
func (p *Paginator) Collect(ctx context.Context, query SearchQuery, ceiling int) ([]gateway.SearchItem, error) {
	q := query.String()
	var items []gateway.SearchItem
	for page := 1; page <= ceiling; page++ {
		batch, err := p.fetcher.SearchPullRequests(ctx, q, page, SearchPageSize)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", q, err)
		}
		items = append(items, batch...)
		if len(batch) < SearchPageSize {
			break
		}
		if page == ceiling {
			p.logger.Infow("search page ceiling reached, totals may be under-counted",
				"query", q, "ceiling", ceiling, "items", len(items))
		}
	}
	p.logger.Debugw("search complete", "query", q, "items", len(items))
	return items, nil
}
