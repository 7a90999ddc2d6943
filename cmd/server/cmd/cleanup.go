package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/warebase/server/internal/config"
)

// cleanupCmd is the one-shot counterpart of the hourly session cleanup job,
// for deployments that run jobs disabled.
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Purge expired sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		logger := config.NewLogger(cfg.Logging)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		purged, err := a.sessions.PurgeExpired(ctx)
		if err != nil {
			return fmt.Errorf("purge expired sessions: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired session(s)\n", purged)
		return nil
	},
}
