package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/naka-gawa/oss-stats/internal/domain"
	"github.com/naka-gawa/oss-stats/internal/gateway"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

var _ gateway.Fetcher = (*mockFetcher)(nil)

func (m *mockFetcher) SearchPullRequests(ctx context.Context, query string, page, perPage int) ([]gateway.SearchItem, error) {
	args := m.Called(ctx, query, page, perPage)
	// We need to handle the case where the returned slice is nil (e.g., when an error occurs).
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gateway.SearchItem), args.Error(1)
}

func (m *mockFetcher) GetPullRequest(ctx context.Context, owner, repo string, number int) (*gateway.PullRequestDetail, error) {
	args := m.Called(ctx, owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PullRequestDetail), args.Error(1)
}

func (m *mockFetcher) RateLimit(ctx context.Context) (*domain.RateLimitStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateLimitStatus), args.Error(1)
}

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func nopLogger() *zap.SugaredLogger { return zap.NewNop().Sugar() }

// searchItem builds a search hit in acme/<repo> numbered n.
func searchItem(repo string, n int, title string, created time.Time) gateway.SearchItem {
	return gateway.SearchItem{
		Title:         title,
		HTMLURL:       fmt.Sprintf("https://github.com/acme/%s/pull/%d", repo, n),
		CreatedAt:     created,
		Labels:        []domain.Label{},
		RepositoryURL: "https://api.github.com/repos/acme/" + repo,
		Number:        n,
	}
}

func searchItems(repo string, count, firstNumber int) []gateway.SearchItem {
	items := make([]gateway.SearchItem, 0, count)
	for i := 0; i < count; i++ {
		n := firstNumber + i
		items = append(items, searchItem(repo, n, fmt.Sprintf("change %d", n), fixedNow.Add(-time.Duration(i)*time.Hour)))
	}
	return items
}

func merged() *gateway.PullRequestDetail {
	t := fixedNow.Add(-time.Minute)
	return &gateway.PullRequestDetail{State: domain.StateClosed, MergedAt: &t}
}

func closedUnmerged() *gateway.PullRequestDetail {
	return &gateway.PullRequestDetail{State: domain.StateClosed}
}

func open(draft bool) *gateway.PullRequestDetail {
	return &gateway.PullRequestDetail{State: domain.StateOpen, Draft: draft}
}
