package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/naka-gawa/oss-stats/internal/domain"
)

// OrgPageSize is the number of pull requests on one org feed page.
const OrgPageSize = 10

// OrgFeed lists a user's pull requests inside one organization.
type OrgFeed struct {
	paginator *Paginator
	resolver  *Resolver
	now       func() time.Time
	logger    *zap.SugaredLogger
}

// NewOrgFeed creates a new OrgFeed instance. A nil clock means time.Now.
func NewOrgFeed(paginator *Paginator, resolver *Resolver, now func() time.Time, logger *zap.SugaredLogger) *OrgFeed {
	if now == nil {
		now = time.Now
	}
	return &OrgFeed{
		paginator: paginator,
		resolver:  resolver,
		now:       now,
		logger:    logger,
	}
}

// Page returns one page of valid pull requests, newest first.
//
// Every collected item is resolved before slicing: TotalPRs and TotalPages
// are only correct once closed-unmerged items have been filtered out.
// Pages below 1 are treated as page 1; pages past the end are empty.
func (f *OrgFeed) Page(ctx context.Context, org, user string, page int) (*domain.OrgContributionPage, error) {
	if page < 1 {
		page = 1
	}
	now := f.now()

	prs, err := f.resolveAll(ctx, org, user, CeilingOrgFeed, now)
	if err != nil {
		return nil, err
	}

	// Compare page counts before multiplying so huge pages cannot overflow.
	pagination := domain.NewPagination(page, OrgPageSize, len(prs))
	start, end := len(prs), len(prs)
	if page <= pagination.TotalPages {
		start = (page - 1) * OrgPageSize
		end = min(start+OrgPageSize, len(prs))
	}
	pageItems := make([]domain.PullRequestSummary, end-start)
	copy(pageItems, prs[start:end])

	return &domain.OrgContributionPage{
		Org:          org,
		Username:     user,
		TotalPRs:     len(prs),
		PullRequests: pageItems,
		FetchedAt:    now.UTC(),
		Pagination:   pagination,
	}, nil
}

// All returns every valid pull request found within the smaller lookup ceiling.
func (f *OrgFeed) All(ctx context.Context, org, user string) (*domain.OrgContributions, error) {
	now := f.now()
	prs, err := f.resolveAll(ctx, org, user, CeilingOrgLookup, now)
	if err != nil {
		return nil, err
	}
	return &domain.OrgContributions{
		Org:          org,
		Username:     user,
		TotalPRs:     len(prs),
		PullRequests: prs,
		FetchedAt:    now.UTC(),
	}, nil
}

func (f *OrgFeed) resolveAll(ctx context.Context, org, user string, ceiling int, now time.Time) ([]domain.PullRequestSummary, error) {
	query := SearchQuery{User: user, Org: org, Since: SinceFloor(now)}
	items, err := f.paginator.Collect(ctx, query, ceiling)
	if err != nil {
		return nil, fmt.Errorf("collect pull requests for %s in %s: %w", user, org, err)
	}
	prs, err := f.resolver.Resolve(ctx, items)
	if err != nil {
		return nil, err
	}
	f.logger.Debugw("org feed resolved", "org", org, "user", user, "candidates", len(items), "valid", len(prs))
	return prs, nil
}
