package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/riverqueue/river/rivertype"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/warebase/server/internal/api"
	"github.com/warebase/server/internal/config"
	"github.com/warebase/server/internal/jobs"
	"github.com/warebase/server/internal/metrics"
	"github.com/warebase/server/internal/telemetry"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Warebase HTTP server",
	Long: `Start the Warebase HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables
- Open the configured storage engine (postgres or memory)
- Bootstrap the admin account if ADMIN_* env vars are set
- Start background job workers when JOBS_ENABLED is set
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("store", cfg.Store.Driver).Msg("starting warebase server")

	metrics.Init(Version, GitCommit, BuildDate)

	shutdownTracing, err := telemetry.InitTracing(context.Background(), cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing init failed: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	appCtx, appCancel := context.WithTimeout(context.Background(), 10*time.Second)
	a, err := newApp(appCtx, cfg, logger)
	appCancel()
	if err != nil {
		return err
	}
	defer a.Close()

	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := a.bootstrapAdmin(bootstrapCtx); err != nil {
		logger.Error().Err(err).Msg("admin bootstrap failed")
	}
	bootstrapCancel()

	// Pool gauges only exist on the postgres engine.
	if a.pool != nil {
		dbCollector := metrics.NewDBCollector(a.pool)
		collectorCtx, collectorCancel := context.WithCancel(context.Background())
		go dbCollector.Start(collectorCtx, 15*time.Second)
		defer collectorCancel()
		defer dbCollector.Stop()
	}

	riverClient, err := buildRiverClient(a, cfg)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Dependencies{
		Config:        cfg,
		Logger:        logger,
		Repo:          a.repo,
		Sessions:      a.sessions,
		Tokens:        a.tokens,
		Organizations: a.organizations,
		Roles:         a.roles,
		Users:         a.users,
		Warehouses:    a.warehouses,
		Catalog:       a.catalog,
		Inventory:     a.inventory,
		Orders:        a.orders,
		Shipments:     a.shipments,
		Activity:      a.activity,
		Reports:       a.reports,
		RiverClient:   riverClient,
		Version:       Version,
		GitCommit:     GitCommit,
		BuildDate:     BuildDate,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	if riverClient != nil {
		if err := riverClient.Start(groupCtx); err != nil {
			return fmt.Errorf("river workers failed to start: %w", err)
		}
		logger.Info().Msg("background job workers started")
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			if err := riverClient.Stop(stopCtx); err != nil {
				logger.Error().Err(err).Msg("river workers shutdown error")
			}
		}()
	}

	group.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

// buildRiverClient wires the job client when jobs are enabled. Jobs require
// the postgres engine; config validation enforces that pairing.
func buildRiverClient(a *app, cfg config.Config) (*river.Client[pgx.Tx], error) {
	if !cfg.Jobs.Enabled || a.pool == nil {
		return nil, nil
	}

	// River keeps its queue in its own tables; migrate them before starting.
	migrator, err := rivermigrate.New(riverpgxv5.New(a.pool), nil)
	if err != nil {
		return nil, fmt.Errorf("river migrator: %w", err)
	}
	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := migrator.Migrate(migrateCtx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return nil, fmt.Errorf("river migrate: %w", err)
	}

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	workers := jobs.NewWorkers(a.sessions, a.repo.Items(), a.repo.Inventory(), a.email, slogger)
	hooks := []rivertype.Hook{metrics.NewRiverMetricsHook()}

	client, err := jobs.NewClient(a.pool, workers, slogger, hooks, cfg.Jobs.MaxWorkers)
	if err != nil {
		return nil, fmt.Errorf("river client: %w", err)
	}
	return client, nil
}
