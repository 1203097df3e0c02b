// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/oss-stats/internal/domain"
	"github.com/naka-gawa/oss-stats/internal/metrics"
)

const apiVersion = "2022-11-28"

// SearchItem is one pull request hit from the issue search endpoint.
type SearchItem struct {
	Title         string
	HTMLURL       string
	CreatedAt     time.Time
	Labels        []domain.Label
	RepositoryURL string
	Number        int
}

// PullRequestDetail is the authoritative state of a single pull request.
type PullRequestDetail struct {
	State    string
	MergedAt *time.Time
	Draft    bool
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	SearchPullRequests(ctx context.Context, query string, page, perPage int) ([]SearchItem, error)
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequestDetail, error)
	RateLimit(ctx context.Context) (*domain.RateLimitStatus, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	token         string
	callTimeout   time.Duration
	logger        *zap.SugaredLogger
}

// headerTransport pins the headers every upstream call must carry.
type headerTransport struct {
	base http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("Cache-Control", "no-store")
	return t.base.RoundTrip(req)
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// An empty token is accepted here; every call then fails with domain.ErrMissingToken.
func NewGitHubGateway(token string, callTimeout time.Duration, logger *zap.SugaredLogger) (*GitHubGateway, error) {
	// A zero sleep limit turns the waiter into a detector: the limited
	// response is handed back to the caller instead of being re-sent.
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil,
		github_ratelimit.WithSingleSleepLimit(0, secondaryLimitHit(logger)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   &headerTransport{base: rateLimitWaiter},
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		token:         token,
		callTimeout:   callTimeout,
		logger:        logger,
	}, nil
}

func secondaryLimitHit(logger *zap.SugaredLogger) github_ratelimit.OnSingleLimitExceeded {
	return func(cbCtx *github_ratelimit.CallbackContext) {
		metrics.SecondaryLimitsTotal.Inc()
		fields := []any{"path", cbCtx.Request.URL.Path}
		if cbCtx.SleepUntil != nil {
			fields = append(fields, "retryAfter", cbCtx.SleepUntil.UTC().Format(time.RFC3339))
		}
		logger.Warnw("github secondary rate limit hit", fields...)
	}
}

// SearchPullRequests fetches one page of the issue search for query.
func (g *GitHubGateway) SearchPullRequests(ctx context.Context, query string, page, perPage int) ([]SearchItem, error) {
	if g.token == "" {
		return nil, domain.ErrMissingToken
	}
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	g.logger.Debugw("searching pull requests", "query", query, "page", page)
	opts := &github.SearchOptions{
		Sort:        "created",
		Order:       "desc",
		ListOptions: github.ListOptions{Page: page, PerPage: perPage},
	}
	result, _, err := g.restClient.Search.Issues(ctx, query, opts)
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("search", "error").Inc()
		return nil, fmt.Errorf("failed to search pull requests (page %d): %w", page, translateError(err))
	}
	metrics.UpstreamCallsTotal.WithLabelValues("search", "ok").Inc()

	items := make([]SearchItem, 0, len(result.Issues))
	for _, issue := range result.Issues {
		labels := make([]domain.Label, 0, len(issue.Labels))
		for _, l := range issue.Labels {
			labels = append(labels, domain.Label{Name: l.GetName(), Color: l.GetColor()})
		}
		items = append(items, SearchItem{
			Title:         issue.GetTitle(),
			HTMLURL:       issue.GetHTMLURL(),
			CreatedAt:     issue.GetCreatedAt().Time,
			Labels:        labels,
			RepositoryURL: issue.GetRepositoryURL(),
			Number:        issue.GetNumber(),
		})
	}
	return items, nil
}

// GetPullRequest fetches /repos/{owner}/{repo}/pulls/{number}.
func (g *GitHubGateway) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequestDetail, error) {
	if g.token == "" {
		return nil, domain.ErrMissingToken
	}
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	pr, _, err := g.restClient.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("pull_request", "error").Inc()
		return nil, fmt.Errorf("failed to get pull request %s/%s#%d: %w", owner, repo, number, translateError(err))
	}
	metrics.UpstreamCallsTotal.WithLabelValues("pull_request", "ok").Inc()

	detail := &PullRequestDetail{
		State: pr.GetState(),
		Draft: pr.GetDraft(),
	}
	if pr.MergedAt != nil {
		mergedAt := pr.MergedAt.Time
		detail.MergedAt = &mergedAt
	}
	return detail, nil
}

// rateLimitQuery asks GraphQL who the token belongs to and how much budget is left.
type rateLimitQuery struct {
	Viewer struct {
		Login githubv4.String
	}
	RateLimit struct {
		Limit     githubv4.Int
		Remaining githubv4.Int
		ResetAt   githubv4.DateTime
	}
}

// RateLimit reports the GraphQL rate-limit budget of the configured token.
func (g *GitHubGateway) RateLimit(ctx context.Context) (*domain.RateLimitStatus, error) {
	if g.token == "" {
		return nil, domain.ErrMissingToken
	}
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	var q rateLimitQuery
	if err := g.graphqlClient.Query(ctx, &q, nil); err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("graphql_rate_limit", "error").Inc()
		return nil, fmt.Errorf("failed to execute GraphQL query for rate limit: %w", translateError(err))
	}
	metrics.UpstreamCallsTotal.WithLabelValues("graphql_rate_limit", "ok").Inc()

	return &domain.RateLimitStatus{
		Login:     string(q.Viewer.Login),
		Limit:     int(q.RateLimit.Limit),
		Remaining: int(q.RateLimit.Remaining),
		ResetAt:   q.RateLimit.ResetAt.Time,
	}, nil
}

// translateError maps go-github errors onto the domain error taxonomy.
func translateError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return upstreamError(rateErr.Response, rateErr.Message)
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return upstreamError(abuseErr.Response, abuseErr.Message)
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		return upstreamError(respErr.Response, respErr.Message)
	}
	return err
}

// upstreamError reads the raw body as text. go-github re-populates the body
// after decoding an error, so it is still readable here.
func upstreamError(resp *http.Response, fallback string) error {
	if resp == nil {
		return &domain.UpstreamError{Body: fallback}
	}
	body := fallback
	if resp.Body != nil {
		if data, err := io.ReadAll(resp.Body); err == nil && len(data) > 0 {
			body = strings.TrimSpace(string(data))
		}
	}
	return &domain.UpstreamError{StatusCode: resp.StatusCode, Body: body}
}
