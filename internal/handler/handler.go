// Package handler provides the HTTP API served by the `serve` command.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/naka-gawa/oss-stats/internal/cache"
	"github.com/naka-gawa/oss-stats/internal/domain"
	"github.com/naka-gawa/oss-stats/internal/metrics"
)

// OrgFeedService lists a user's pull requests in one organization.
type OrgFeedService interface {
	Page(ctx context.Context, org, user string, page int) (*domain.OrgContributionPage, error)
	All(ctx context.Context, org, user string) (*domain.OrgContributions, error)
}

// StatsService aggregates a user's pull requests across organizations.
type StatsService interface {
	Aggregate(ctx context.Context, user string) (*domain.AggregatedStats, error)
}

// RateLimitService reports the remaining GitHub API budget.
type RateLimitService interface {
	RateLimit(ctx context.Context) (*domain.RateLimitStatus, error)
}

// loginPattern matches GitHub user and organization logins. Anything else
// would either fail upstream or smuggle extra search qualifiers and cache key
// separators into the request.
var loginPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,99}$`)

// Config holds the handler tunables.
type Config struct {
	DefaultUser    string
	OrgTTL         time.Duration
	StatsTTL       time.Duration
	RequestTimeout time.Duration
}

// Handler handles HTTP requests for the contribution endpoints.
type Handler struct {
	feed      OrgFeedService
	stats     StatsService
	rateLimit RateLimitService
	responses *cache.Cache[[]byte]
	cfg       Config
	logger    *zap.SugaredLogger
}

// New creates a new handler instance. responses is shared by every route.
func New(feed OrgFeedService, stats StatsService, rateLimit RateLimitService, responses *cache.Cache[[]byte], cfg Config, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		feed:      feed,
		stats:     stats,
		rateLimit: rateLimit,
		responses: responses,
		cfg:       cfg,
		logger:    logger,
	}
}

// GetOrgPullRequests handles GET /api/org-prs?org=&page=&user=.
func (h *Handler) GetOrgPullRequests(c *gin.Context) {
	org, ok := h.requireOrg(c)
	if !ok {
		return
	}
	user, ok := h.user(c)
	if !ok {
		return
	}
	page, err := parsePage(c.Query("page"))
	if err != nil {
		errorResponse(c, statusFor(err), err.Error())
		return
	}

	key := fmt.Sprintf("org-prs:%s:%s:%d", org, user, page)
	h.serveCached(c, "org-prs", key, h.cfg.OrgTTL, func(ctx context.Context) (any, error) {
		return h.feed.Page(ctx, org, user, page)
	})
}

// GetAllOrgPullRequests handles GET /api/org-prs/all?org=&user=.
func (h *Handler) GetAllOrgPullRequests(c *gin.Context) {
	org, ok := h.requireOrg(c)
	if !ok {
		return
	}
	user, ok := h.user(c)
	if !ok {
		return
	}

	key := fmt.Sprintf("org-prs-all:%s:%s", org, user)
	h.serveCached(c, "org-prs-all", key, h.cfg.OrgTTL, func(ctx context.Context) (any, error) {
		return h.feed.All(ctx, org, user)
	})
}

// GetStats handles GET /api/oss-stats?user=.
func (h *Handler) GetStats(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}
	h.serveCached(c, "oss-stats", "oss-stats:"+user, h.cfg.StatsTTL, func(ctx context.Context) (any, error) {
		return h.stats.Aggregate(ctx, user)
	})
}

// GetRateLimit handles GET /api/github/rate-limit. It is never cached.
func (h *Handler) GetRateLimit(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	status, err := h.rateLimit.RateLimit(ctx)
	if err != nil {
		h.logger.Errorw("error getting rate limit", "error", err)
		errorResponse(c, statusFor(err), err.Error())
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, status)
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// serveCached answers from the response cache or runs load under the request
// budget, caching the encoded body on success. Errors are never cached.
func (h *Handler) serveCached(c *gin.Context, route, key string, ttl time.Duration, load func(ctx context.Context) (any, error)) {
	if body, ok := h.responses.Get(key); ok {
		metrics.CacheLookupsTotal.WithLabelValues(route, "hit").Inc()
		writeCached(c, body, ttl)
		return
	}
	metrics.CacheLookupsTotal.WithLabelValues(route, "miss").Inc()

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	payload, err := load(ctx)
	if err != nil {
		h.logger.Errorw("error building response", "route", route, "key", key, "error", err)
		errorResponse(c, statusFor(err), err.Error())
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Errorw("error encoding response", "route", route, "error", err)
		errorResponse(c, http.StatusInternalServerError, "failed to encode response")
		return
	}
	h.responses.Set(key, body, ttl)
	writeCached(c, body, ttl)
}

func (h *Handler) requireOrg(c *gin.Context) (string, bool) {
	org := strings.TrimSpace(c.Query("org"))
	if org == "" {
		errorResponse(c, http.StatusBadRequest, "Organization parameter is required")
		return "", false
	}
	if err := checkLogin("org", org); err != nil {
		errorResponse(c, statusFor(err), err.Error())
		return "", false
	}
	return org, true
}

// user returns the requested login, falling back to the configured default.
func (h *Handler) user(c *gin.Context) (string, bool) {
	user := strings.TrimSpace(c.Query("user"))
	if user == "" {
		return h.cfg.DefaultUser, true
	}
	if err := checkLogin("user", user); err != nil {
		errorResponse(c, statusFor(err), err.Error())
		return "", false
	}
	return user, true
}

func checkLogin(param, value string) error {
	if !loginPattern.MatchString(value) {
		return fmt.Errorf("%w: %s must be a GitHub login, got %q", domain.ErrInvalidArgument, param, value)
	}
	return nil
}

func parsePage(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, fmt.Errorf("%w: page must be a positive integer, got %q", domain.ErrInvalidArgument, raw)
	}
	return page, nil
}
