package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/warebase/server/internal/api/middleware"
	"github.com/warebase/server/internal/auth"
	"github.com/warebase/server/internal/config"
	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/inventory"
	"github.com/warebase/server/internal/domain/orders"
	"github.com/warebase/server/internal/mcp"
	"github.com/warebase/server/internal/reports"
	"github.com/warebase/server/internal/storage"
	"github.com/warebase/server/internal/storage/memory"
	"github.com/warebase/server/internal/storage/postgres"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is separated from main so deferred cleanup runs before os.Exit.
func run() error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// For stdio transport nothing may log to stdout: it would corrupt the
	// MCP protocol stream. All logs go to stderr for every transport.
	logger := setupLogging(cfg.Base.Logging)
	log.Logger = logger

	log.Info().
		Str("transport", string(cfg.Transport.Type)).
		Str("mcp_name", cfg.MCP.Name).
		Str("mcp_version", cfg.MCP.Version).
		Str("store", cfg.Base.Store.Driver).
		Msg("Starting MCP server")

	ctx := context.Background()
	repo, cleanup, err := openRepository(ctx, cfg.Base)
	if err != nil {
		return err
	}
	defer cleanup()

	catalogService := catalog.NewService(repo.Categories(), repo.Suppliers(), repo.Items(), repo.Organizations(), nil, logger)
	inventoryService := inventory.NewService(repo.Inventory(), repo.InventoryTransactions(), repo.Items(), repo.Bins(), nil, nil, logger)
	ordersService := orders.NewService(repo.Orders(), repo.OrderItems(), repo.Items(), repo.Organizations(), nil, logger)
	reportsService := reports.NewService(repo)

	log.Info().Msg("Domain services initialized")

	mcpServer := mcp.NewServer(
		mcp.Config{
			Name:    cfg.MCP.Name,
			Version: cfg.MCP.Version,
		},
		catalogService,
		inventoryService,
		ordersService,
		reportsService,
	)

	// HTTP-based transports authenticate callers the same way the API does:
	// bearer tokens or session cookies. Stdio trusts its parent process.
	var authn *middleware.Authenticator
	if cfg.Transport.Type != mcp.TransportStdio {
		authn = &middleware.Authenticator{
			Sessions:   auth.NewSessionManager(repo.Sessions(), cfg.Base.Session.TTL),
			Tokens:     auth.NewJWTManager(cfg.Base.Auth.JWTSecret, cfg.Base.Auth.JWTExpiry, "warebase"),
			Users:      repo.Users(),
			Roles:      repo.Roles(),
			CookieName: cfg.Base.Session.CookieName,
			Env:        cfg.Base.Environment,
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := mcp.Serve(ctx, mcpServer.MCPServer(), cfg.Transport, authn, cfg.Base.RateLimit); err != nil {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	log.Info().Msg("Initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := mcpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("MCP server shutdown error")
	}

	select {
	case <-shutdownCtx.Done():
		return fmt.Errorf("shutdown timeout exceeded")
	case err := <-serverErr:
		if err != nil && err != context.Canceled {
			log.Warn().Err(err).Msg("Server error during shutdown")
		}
	}

	log.Info().Msg("Shutdown complete")
	return nil
}

// openRepository opens the configured storage engine and returns it with its
// cleanup function.
func openRepository(ctx context.Context, cfg config.Config) (storage.Repository, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse database URL: %w", err)
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConnections)
		poolConfig.MinConns = int32(cfg.Database.MaxIdle)

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		repo, err := postgres.NewRepository(pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info().Msg("Database connection established")
		return repo, repo.Close, nil
	case config.StoreDriverMemory:
		repo := memory.NewRepository()
		return repo, repo.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// setupLogging initializes the logger. All output goes to stderr to keep
// stdout clean for the MCP stdio protocol.
func setupLogging(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn", "warning":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return logger
}
