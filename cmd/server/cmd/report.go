package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/warebase/server/internal/config"
)

var (
	reportOrgID int64
	reportOut   string
)

// reportCmd writes the inventory export without going through the HTTP API,
// for cron-driven exports and ad-hoc inspection.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the inventory report for one organization as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportOrgID <= 0 {
			return fmt.Errorf("--org is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		logger := config.NewLogger(cfg.Logging)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		payload, err := a.reports.InventoryCSV(ctx, reportOrgID)
		if err != nil {
			return fmt.Errorf("build report: %w", err)
		}

		if reportOut == "" || reportOut == "-" {
			_, err = cmd.OutOrStdout().Write(payload)
			return err
		}
		if err := os.WriteFile(reportOut, payload, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", reportOut)
		return nil
	},
}

func init() {
	reportCmd.Flags().Int64Var(&reportOrgID, "org", 0, "organization id to export")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "output file (default: stdout)")
}
