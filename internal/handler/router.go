package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter wires the middleware and every route onto a fresh gin engine.
func NewRouter(h *Handler, logger *zap.SugaredLogger) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(logger), Logger(logger))

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/org-prs", h.GetOrgPullRequests)
	api.GET("/org-prs/all", h.GetAllOrgPullRequests)
	api.GET("/oss-stats", h.GetStats)
	api.GET("/github/rate-limit", h.GetRateLimit)

	return r
}
