package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/nfrund/quay/internal/config"
	"github.com/nfrund/quay/internal/logging"
	"github.com/nfrund/quay/internal/staticfiles"
	"github.com/nfrund/quay/internal/storage"
	"github.com/spf13/cobra"
)

var collectStaticCmd = &cobra.Command{
	Use:   "collectstatic",
	Short: "Copy static assets into STATIC_ROOT",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logging.New()
		return runCollectStatic(cmd.Context(), cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(collectStaticCmd)
}

func runCollectStatic(ctx context.Context, w io.Writer, cfg config.Provider) error {
	sources, err := staticfiles.DirSources(cfg.GetStaticDirs())
	if err != nil {
		return err
	}
	stats, err := staticfiles.NewCollector(storage.NewDirStore(cfg.GetStaticRoot()), sources...).Collect(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d static files copied to '%s', %d unmodified.\n", stats.Copied, cfg.GetStaticRoot(), stats.Unmodified)
	return nil
}
