package cmd

import (
	"github.com/nfrund/quay/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := server.SignalContext(cmd.Context())
		defer stop()

		cfg, backend, err := openBackend(ctx)
		if err != nil {
			return err
		}
		defer backend.Close()

		s, err := server.New(cfg, backend)
		if err != nil {
			return err
		}
		if err := s.RegisterRoutes(ctx); err != nil {
			return err
		}
		return s.Start(ctx, cfg.GetAppAddr())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
