package config

import (
	"errors"
	"time"
)

// CacheConfig holds response cache TTLs. They also drive the s-maxage sent to clients.
type CacheConfig struct {
	OrgTTL   time.Duration
	StatsTTL time.Duration
}

func (c CacheConfig) validate() error {
	var errs []error
	if c.OrgTTL <= 0 {
		errs = append(errs, errors.New("ORG_CACHE_TTL must be positive"))
	}
	if c.StatsTTL <= 0 {
		errs = append(errs, errors.New("STATS_CACHE_TTL must be positive"))
	}
	return errors.Join(errs...)
}
