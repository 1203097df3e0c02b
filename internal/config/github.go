package config

import (
	"errors"
	"time"
)

// GitHubConfig holds upstream GitHub API configuration.
type GitHubConfig struct {
	// Token is the bearer credential. An empty token is reported per request, not at startup.
	Token       string
	DefaultUser string
	// CallTimeout is the deadline for a single upstream HTTP call.
	CallTimeout time.Duration
	// ResolverConcurrency caps parallel pull request detail fetches. 1 means sequential.
	ResolverConcurrency int
}

func (c GitHubConfig) validate() error {
	var errs []error
	if c.DefaultUser == "" {
		errs = append(errs, errors.New("DEFAULT_GITHUB_USER must not be empty"))
	}
	if c.CallTimeout <= 0 {
		errs = append(errs, errors.New("GITHUB_CALL_TIMEOUT must be positive"))
	}
	if c.ResolverConcurrency < 1 {
		errs = append(errs, errors.New("RESOLVER_CONCURRENCY must be at least 1"))
	}
	return errors.Join(errs...)
}
