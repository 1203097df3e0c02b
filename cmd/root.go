// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/oss-stats/internal/config"
	"github.com/naka-gawa/oss-stats/internal/gateway"
	"github.com/naka-gawa/oss-stats/internal/logger"
	"github.com/naka-gawa/oss-stats/internal/usecase"
)

var rootCmd = &cobra.Command{
	Use:   "oss-stats",
	Short: "Serve and compute a GitHub user's open source pull request activity.",
	Long: `oss-stats queries the GitHub search API for a user's pull requests,
resolves their merge and draft state, and either serves the results over HTTP
(with an in-memory TTL cache) or prints them once as JSON.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}

// app bundles the services shared by every command.
type app struct {
	cfg        config.Config
	logger     *zap.SugaredLogger
	gateway    *gateway.GitHubGateway
	aggregator *usecase.Aggregator
	feed       *usecase.OrgFeed
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	log, err := logger.New(cfg.Log, verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if cfg.GitHub.Token == "" {
		log.Warnw("GITHUB_TOKEN is not set; every GitHub-backed request will fail")
	}

	githubGateway, err := gateway.NewGitHubGateway(cfg.GitHub.Token, cfg.GitHub.CallTimeout, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}

	paginator := usecase.NewPaginator(githubGateway, log)
	resolver := usecase.NewResolver(githubGateway, cfg.GitHub.ResolverConcurrency, log)
	return &app{
		cfg:        cfg,
		logger:     log,
		gateway:    githubGateway,
		aggregator: usecase.NewAggregator(paginator, resolver, time.Now, log),
		feed:       usecase.NewOrgFeed(paginator, resolver, time.Now, log),
	}, nil
}
