package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/nfrund/quay/internal/config"
	"github.com/nfrund/quay/internal/database"
	"github.com/nfrund/quay/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quay",
	Short: "Quay user profiles and deployment tool",
	Long: `Quay serves the user profile site and carries the management commands
used around a deployment.

Available commands:
  serve            Run the HTTP server
  migrate          Apply pending database migrations
  collectstatic    Copy static assets into STATIC_ROOT
  createuser       Create a user account
  list-services    List the services published in the registry

Use "quay [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openBackend loads the configuration, sets up logging and opens the
// configured database. The caller closes the backend.
func openBackend(ctx context.Context) (*config.Config, database.Backend, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logging.New()

	backend, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return cfg, backend, nil
}
