package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	healthcheckCmd = &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the server is healthy",
		Long: `Performs a health check by calling the /health endpoint.

This command is used by Docker HEALTHCHECK to monitor container health.
It exits with code 0 if the server is healthy, non-zero otherwise.

Exit codes:
  0 - Server is healthy
  1 - Server is unhealthy or unreachable
  2 - Invalid response from server`,
		RunE: runHealthcheck,
	}

	healthcheckTimeout int
	healthcheckURL     string
)

func init() {
	healthcheckCmd.Flags().IntVar(&healthcheckTimeout, "timeout", 5, "timeout in seconds")
	healthcheckCmd.Flags().StringVar(&healthcheckURL, "url", "", "health check URL (default: http://localhost:{SERVER_PORT}/health)")
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type healthcheckResult struct {
	Status   string
	ExitCode int
	Err      error
}

func determineHealthcheckURL() string {
	if healthcheckURL != "" {
		return healthcheckURL
	}
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	return fmt.Sprintf("http://localhost:%s/health", port)
}

func performHealthcheck(url string) healthcheckResult {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(healthcheckTimeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return healthcheckResult{ExitCode: 1, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return healthcheckResult{ExitCode: 1, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return healthcheckResult{ExitCode: 2, Err: fmt.Errorf("parse response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return healthcheckResult{Status: health.Status, ExitCode: 1, Err: fmt.Errorf("health endpoint returned status %d", resp.StatusCode)}
	}
	if health.Status != "healthy" {
		return healthcheckResult{Status: health.Status, ExitCode: 1, Err: fmt.Errorf("server status: %s", health.Status)}
	}
	return healthcheckResult{Status: health.Status}
}

func runHealthcheck(cmd *cobra.Command, args []string) error {
	result := performHealthcheck(determineHealthcheckURL())
	if result.ExitCode != 0 {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", result.Err)
		os.Exit(result.ExitCode)
	}
	return nil
}
