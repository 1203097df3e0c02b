package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/oss-stats/internal/domain"
	"github.com/naka-gawa/oss-stats/internal/gateway"
	"github.com/naka-gawa/oss-stats/internal/metrics"
)

// repositoryURLPattern matches the trailing /repos/{owner}/{repo} of a repository API URL.
var repositoryURLPattern = regexp.MustCompile(`repos/([^/]+)/([^/]+)$`)

// ParseRepositoryURL extracts owner and repo from a repository API URL.
func ParseRepositoryURL(repositoryURL string) (owner, repo string, ok bool) {
	m := repositoryURLPattern.FindStringSubmatch(repositoryURL)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// Resolver turns search items into summaries by fetching each pull request's
// authoritative state. One item's failure never fails the batch.
type Resolver struct {
	fetcher     gateway.Fetcher
	concurrency int
	logger      *zap.SugaredLogger
}

// NewResolver creates a Resolver issuing at most concurrency detail fetches at once.
func NewResolver(fetcher gateway.Fetcher, concurrency int, logger *zap.SugaredLogger) *Resolver {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Resolver{fetcher: fetcher, concurrency: concurrency, logger: logger}
}

// Resolve returns the valid summaries in input order. Items with an unparseable
// repository, a failed detail fetch, or closed without merging are dropped.
// It only fails when ctx itself is done.
func (r *Resolver) Resolve(ctx context.Context, items []gateway.SearchItem) ([]domain.PullRequestSummary, error) {
	resolved := make([]*domain.PullRequestSummary, len(items))

	var eg errgroup.Group
	eg.SetLimit(r.concurrency)
	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		i, item := i, item
		eg.Go(func() error {
			resolved[i] = r.resolveOne(ctx, item)
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, contextError("resolving pull request details", err)
	}

	summaries := make([]domain.PullRequestSummary, 0, len(items))
	for _, s := range resolved {
		if s != nil {
			summaries = append(summaries, *s)
		}
	}
	r.logger.Debugw("resolved pull requests", "candidates", len(items), "valid", len(summaries))
	return summaries, nil
}

func (r *Resolver) resolveOne(ctx context.Context, item gateway.SearchItem) *domain.PullRequestSummary {
	owner, repo, ok := ParseRepositoryURL(item.RepositoryURL)
	if !ok {
		metrics.ResolverDropsTotal.WithLabelValues(metrics.DropUnparseableRepo).Inc()
		r.logger.Debugw("skipping search item with unparseable repository",
			"repository_url", item.RepositoryURL, "number", item.Number)
		return nil
	}

	detail, err := r.fetcher.GetPullRequest(ctx, owner, repo, item.Number)
	if err != nil {
		metrics.ResolverDropsTotal.WithLabelValues(metrics.DropDetailFailed).Inc()
		r.logger.Warnw("dropping pull request: detail fetch failed",
			"org", owner, "repo", repo, "number", item.Number, "error", err)
		return nil
	}

	if detail.State == domain.StateClosed && detail.MergedAt == nil {
		metrics.ResolverDropsTotal.WithLabelValues(metrics.DropClosedUnmerged).Inc()
		return nil
	}

	labels := item.Labels
	if labels == nil {
		labels = []domain.Label{}
	}
	return &domain.PullRequestSummary{
		Title:         item.Title,
		URL:           item.HTMLURL,
		CreatedAt:     item.CreatedAt,
		MergedAt:      detail.MergedAt,
		State:         detail.State,
		IsDraft:       detail.Draft,
		Labels:        labels,
		RepositoryURL: item.RepositoryURL,
		Number:        item.Number,
	}
}

// contextError reports an expired request budget as domain.ErrTimeout.
func contextError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, domain.ErrTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}
