package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/naka-gawa/oss-stats/internal/domain"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// errorResponse sends an error response. Errors are never cacheable.
func errorResponse(c *gin.Context, status int, message string) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, ErrorResponse{Error: message})
}

// writeCached sends an already encoded JSON body with cache headers matching ttl.
func writeCached(c *gin.Context, body []byte, ttl time.Duration) {
	seconds := int(ttl.Seconds())
	c.Header("Cache-Control", fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d", seconds, 2*seconds))
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
