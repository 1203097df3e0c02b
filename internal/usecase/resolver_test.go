package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/oss-stats/internal/domain"
	"github.com/naka-gawa/oss-stats/internal/gateway"
)

func TestParseRepositoryURL(t *testing.T) {
	testCases := []struct {
		url   string
		owner string
		repo  string
		ok    bool
	}{
		{url: "https://api.github.com/repos/acme/widgets", owner: "acme", repo: "widgets", ok: true},
		{url: "https://github.example.com/api/v3/repos/team/tool.go", owner: "team", repo: "tool.go", ok: true},
		{url: "https://api.github.com/repos/acme/widgets/", ok: false},
		{url: "https://api.github.com/users/acme", ok: false},
		{url: "", ok: false},
	}
	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			owner, repo, ok := ParseRepositoryURL(tc.url)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.owner, owner)
			assert.Equal(t, tc.repo, repo)
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	fetcher := new(mockFetcher)

	items := searchItems("widgets", 5, 1)
	items = append(items, gateway.SearchItem{Title: "orphan", RepositoryURL: "not-a-repo-url", Number: 99})

	fetcher.On("GetPullRequest", mock.Anything, "acme", "widgets", 1).Return(merged(), nil)
	fetcher.On("GetPullRequest", mock.Anything, "acme", "widgets", 2).Return(closedUnmerged(), nil)
	fetcher.On("GetPullRequest", mock.Anything, "acme", "widgets", 3).Return(nil, errors.New("boom"))
	fetcher.On("GetPullRequest", mock.Anything, "acme", "widgets", 4).Return(open(true), nil)
	fetcher.On("GetPullRequest", mock.Anything, "acme", "widgets", 5).Return(open(false), nil)

	prs, err := NewResolver(fetcher, 1, nopLogger()).Resolve(ctx, items)

	require.NoError(t, err, "a single item failure must not escape the resolver")
	require.Len(t, prs, 3)
	assert.Equal(t, []int{1, 4, 5}, numbers(prs))

	assert.Equal(t, domain.StateClosed, prs[0].State)
	require.NotNil(t, prs[0].MergedAt)
	assert.True(t, prs[1].IsDraft)
	assert.False(t, prs[2].IsDraft)
	assert.Equal(t, items[0].HTMLURL, prs[0].URL)
	assert.Equal(t, items[0].Title, prs[0].Title)
	assert.Equal(t, items[0].CreatedAt, prs[0].CreatedAt)

	for _, pr := range prs {
		if pr.State == domain.StateClosed {
			assert.NotNil(t, pr.MergedAt, "closed pull requests must be merged")
		}
	}
	fetcher.AssertNotCalled(t, "GetPullRequest", mock.Anything, mock.Anything, mock.Anything, 99)
}

func TestResolver_ConcurrentKeepsOrder(t *testing.T) {
	fetcher := new(mockFetcher)
	items := searchItems("widgets", 30, 1)
	for _, it := range items {
		detail := open(false)
		if it.Number%3 == 0 {
			detail = closedUnmerged()
		}
		fetcher.On("GetPullRequest", mock.Anything, "acme", "widgets", it.Number).Return(detail, nil)
	}

	prs, err := NewResolver(fetcher, 8, nopLogger()).Resolve(context.Background(), items)

	require.NoError(t, err)
	require.Len(t, prs, 20)
	for i := 1; i < len(prs); i++ {
		assert.Less(t, prs[i-1].Number, prs[i].Number)
	}
}

// slowFetcher counts in-flight detail calls.
type slowFetcher struct {
	mockFetcher
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (s *slowFetcher) GetPullRequest(ctx context.Context, owner, repo string, number int) (*gateway.PullRequestDetail, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	select {
	case <-time.After(s.delay):
		return open(false), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestResolver_RespectsConcurrencyLimit(t *testing.T) {
	testCases := []struct {
		name        string
		concurrency int
	}{
		{name: "sequential", concurrency: 1},
		{name: "bounded", concurrency: 3},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := &slowFetcher{delay: 5 * time.Millisecond}
			prs, err := NewResolver(fetcher, tc.concurrency, nopLogger()).Resolve(context.Background(), searchItems("widgets", 9, 1))
			require.NoError(t, err)
			assert.Len(t, prs, 9)
			assert.LessOrEqual(t, int(fetcher.peak.Load()), tc.concurrency)
		})
	}
}

func TestResolver_RequestDeadline(t *testing.T) {
	fetcher := &slowFetcher{delay: 50 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	prs, err := NewResolver(fetcher, 1, nopLogger()).Resolve(ctx, searchItems("widgets", 5, 1))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Nil(t, prs)
}

func numbers(prs []domain.PullRequestSummary) []int {
	out := make([]int, 0, len(prs))
	for _, pr := range prs {
		out = append(out, pr.Number)
	}
	return out
}
