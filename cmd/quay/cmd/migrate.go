package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/nfrund/quay/internal/domain"
	"github.com/spf13/cobra"
)

var listMigrations bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Applies every pending migration of every app, in the same way as the
deployment hook. With --list the migration history is printed instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, backend, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer backend.Close()

		if listMigrations {
			return printHistory(cmd.Context(), cmd.OutOrStdout(), backend.Migrator())
		}
		return runMigrate(cmd.Context(), cmd.OutOrStdout(), backend.Migrator())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVarP(&listMigrations, "list", "l", false, "Print the applied migrations instead of migrating")
}

func runMigrate(ctx context.Context, w io.Writer, runner domain.MigrationRunner) error {
	applied, err := runner.Migrate(ctx)
	for _, rec := range applied {
		fmt.Fprintf(w, "Applied %s.%s\n", rec.App, rec.Name)
	}
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(w, "No migrations to apply.")
	}
	return nil
}

func printHistory(ctx context.Context, w io.Writer, runner domain.MigrationRunner) error {
	history, err := runner.Applied(ctx)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Fprintln(w, "No migrations applied.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "APP\tNAME\tAPPLIED")
	for _, rec := range history {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.App, rec.Name, rec.AppliedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}
