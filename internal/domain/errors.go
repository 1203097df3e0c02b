package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingToken is a configuration error: no GitHub credential is available.
	ErrMissingToken = errors.New("missing GITHUB_TOKEN: set it in the server environment or in a .env file")
	// ErrTimeout means an upstream call or the whole request ran out of time.
	ErrTimeout = errors.New("timed out waiting for GitHub")
	// ErrInvalidArgument marks caller input that never reaches GitHub.
	ErrInvalidArgument = errors.New("invalid argument")
)

// UpstreamError is a non-2xx answer from the GitHub API. Body is the raw
// response text and may not be JSON.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("GitHub API error %d: %s", e.StatusCode, e.Body)
}
