package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregates GitHub pull request activity and outputs it as JSON",
	Long: `Aggregates a user's merged pull requests of the last 18 months across all
organizations and prints the stats as JSON. With --org, prints one page of the
user's pull requests in that organization instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = a.logger.Sync() }()

		if a.cfg.GitHub.Token == "" {
			return fmt.Errorf("GITHUB_TOKEN environment variable is not set")
		}

		user, _ := cmd.Flags().GetString("user")
		if user == "" {
			user = a.cfg.GitHub.DefaultUser
		}
		org, _ := cmd.Flags().GetString("org")
		page, _ := cmd.Flags().GetInt("page")
		if page < 1 {
			return fmt.Errorf("--page must be at least 1, got %d", page)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.HTTP.RequestTimeout)
		defer cancel()

		var result any
		if org != "" {
			result, err = a.feed.Page(ctx, org, user, page)
		} else {
			result, err = a.aggregator.Aggregate(ctx, user)
		}
		if err != nil {
			return fmt.Errorf("failed to aggregate stats: %w", err)
		}

		// Marshal the results into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results to JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringP("user", "u", "", "Target GitHub user name (defaults to DEFAULT_GITHUB_USER)")
	statsCmd.Flags().StringP("org", "o", "", "Limit to one organization and print a page of pull requests")
	statsCmd.Flags().IntP("page", "p", 1, "Page to print when --org is set")
}
