// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Config holds application configuration.
type Config struct {
	HTTP   HTTPConfig
	GitHub GitHubConfig
	Cache  CacheConfig
	Log    LogConfig
	// GinMode is one of gin.DebugMode, gin.ReleaseMode or gin.TestMode.
	GinMode string
}

// HTTPConfig holds the listener address and the time budgets of the API server.
type HTTPConfig struct {
	Addr        string
	ReadTimeout time.Duration
	// WriteTimeout must outlast RequestTimeout or slow aggregations are cut off mid-response.
	WriteTimeout time.Duration
	// RequestTimeout bounds one API request, upstream calls included. The stats
	// command uses it as its overall deadline too.
	RequestTimeout time.Duration
}

// LogConfig selects the zap level and encoding.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env: %w", err)
	}
	return LoadFromEnv()
}

// LoadFromEnv loads configuration from environment variables. Unset variables
// take their defaults; malformed ones are reported together.
func LoadFromEnv() (Config, error) {
	var env envReader
	cfg := Config{
		HTTP: HTTPConfig{
			Addr:           env.str("SERVER_ADDR", ":8080"),
			ReadTimeout:    env.duration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   env.duration("SERVER_WRITE_TIMEOUT", 150*time.Second),
			RequestTimeout: env.duration("REQUEST_TIMEOUT", 2*time.Minute),
		},
		GitHub: GitHubConfig{
			Token:               env.str("GITHUB_TOKEN", ""),
			DefaultUser:         env.str("DEFAULT_GITHUB_USER", "krrish-sehgal"),
			CallTimeout:         env.duration("GITHUB_CALL_TIMEOUT", 15*time.Second),
			ResolverConcurrency: env.integer("RESOLVER_CONCURRENCY", 1),
		},
		Cache: CacheConfig{
			OrgTTL:   env.duration("ORG_CACHE_TTL", 5*time.Minute),
			StatsTTL: env.duration("STATS_CACHE_TTL", 10*time.Minute),
		},
		Log: LogConfig{
			Level:  env.str("LOG_LEVEL", "info"),
			Format: env.str("LOG_FORMAT", "json"),
		},
		GinMode: env.str("GIN_MODE", gin.ReleaseMode),
	}
	return cfg, env.err()
}

// Validate reports every invalid setting, not only the first.
func (c Config) Validate() error {
	var errs []error
	if c.HTTP.ReadTimeout <= 0 {
		errs = append(errs, errors.New("SERVER_READ_TIMEOUT must be positive"))
	}
	if c.HTTP.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.HTTP.WriteTimeout <= c.HTTP.RequestTimeout {
		errs = append(errs, fmt.Errorf("SERVER_WRITE_TIMEOUT (%s) must exceed REQUEST_TIMEOUT (%s)", c.HTTP.WriteTimeout, c.HTTP.RequestTimeout))
	}
	errs = append(errs, c.GitHub.validate(), c.Cache.validate())

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Log.Format))
	}
	switch c.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		errs = append(errs, fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.GinMode))
	}
	return errors.Join(errs...)
}
