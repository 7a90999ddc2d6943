package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/warebase/server/internal/config"
)

var gentokenUsername string

// gentokenCmd mints a bearer token for an existing user, for scripting and
// smoke tests against a running deployment.
var gentokenCmd = &cobra.Command{
	Use:   "gentoken",
	Short: "Generate a bearer token for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if gentokenUsername == "" {
			return fmt.Errorf("--username is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		logger := config.NewLogger(cfg.Logging)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.repo.Users().GetByUsername(ctx, gentokenUsername)
		if err != nil {
			return fmt.Errorf("look up user: %w", err)
		}

		token, err := a.tokens.Generate(user.ID, user.Username)
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	gentokenCmd.Flags().StringVar(&gentokenUsername, "username", "", "username to mint a token for")
}
