// Package mcp exposes warehouse data to MCP clients over stdio, SSE, or
// streamable HTTP transports.
package mcp

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/warebase/server/internal/api/middleware"
	"github.com/warebase/server/internal/config"
)

// TransportType represents the available MCP transport protocols.
type TransportType string

const (
	// TransportStdio uses standard input/output for MCP communication.
	// Best for: desktop clients, CLI tools, local development.
	TransportStdio TransportType = "stdio"

	// TransportSSE uses Server-Sent Events for MCP communication.
	TransportSSE TransportType = "sse"

	// TransportHTTP uses Streamable HTTP for MCP communication.
	// Best for: production deployments behind a load balancer.
	TransportHTTP TransportType = "http"
)

const (
	// DefaultTransport is used when MCP_TRANSPORT is not set.
	DefaultTransport = TransportStdio

	// DefaultPort is used when PORT is not set for HTTP/SSE transports.
	DefaultPort = 8090

	// GracefulShutdownTimeout bounds how long in-flight requests get to
	// finish on shutdown.
	GracefulShutdownTimeout = 30 * time.Second
)

// TransportConfig holds configuration for MCP transport selection.
type TransportConfig struct {
	// Type specifies which transport to use (stdio, sse, http).
	Type TransportType

	// Port is the HTTP port for SSE and HTTP transports (ignored for stdio).
	Port int

	// Host is the bind address for SSE and HTTP transports.
	Host string
}

// LoadTransportConfig reads transport configuration from environment variables.
// Environment variables:
//   - MCP_TRANSPORT: "stdio", "sse", or "http" (default: "stdio")
//   - PORT: HTTP port for SSE/HTTP transports (default: 8090)
//   - HOST: Bind address for SSE/HTTP transports (default: "0.0.0.0")
func LoadTransportConfig() (*TransportConfig, error) {
	cfg := &TransportConfig{
		Type: DefaultTransport,
		Port: DefaultPort,
		Host: "0.0.0.0",
	}

	if transportEnv := os.Getenv("MCP_TRANSPORT"); transportEnv != "" {
		transport := TransportType(transportEnv)
		switch transport {
		case TransportStdio, TransportSSE, TransportHTTP:
			cfg.Type = transport
		default:
			return nil, fmt.Errorf("invalid MCP_TRANSPORT value: %s (must be stdio, sse, or http)", transportEnv)
		}
	}

	if portEnv := os.Getenv("PORT"); portEnv != "" {
		port, err := strconv.Atoi(portEnv)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT value: %s (must be a number)", portEnv)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid PORT value: %d (must be between 1 and 65535)", port)
		}
		cfg.Port = port
	}

	if hostEnv := os.Getenv("HOST"); hostEnv != "" {
		cfg.Host = hostEnv
	}

	return cfg, nil
}

// Serve starts the MCP server with the configured transport. The
// authenticator and rate limit config only apply to the HTTP-based
// transports; stdio trusts its parent process.
func Serve(ctx context.Context, mcpServer *server.MCPServer, cfg *TransportConfig, authn *middleware.Authenticator, rateLimitCfg config.RateLimitConfig) error {
	switch cfg.Type {
	case TransportStdio:
		return ServeStdio(ctx, mcpServer)
	case TransportSSE:
		return serveNetworked(ctx, "sse", server.NewSSEServer(mcpServer), cfg, authn, rateLimitCfg)
	case TransportHTTP:
		return serveNetworked(ctx, "http", server.NewStreamableHTTPServer(mcpServer), cfg, authn, rateLimitCfg)
	default:
		return fmt.Errorf("unsupported transport type: %s", cfg.Type)
	}
}

// ServeStdio starts the MCP server using stdio transport. The server reads
// requests from stdin and writes responses to stdout, so nothing else may
// write to stdout while it runs.
func ServeStdio(ctx context.Context, mcpServer *server.MCPServer) error {
	log.Info().Msg("Starting MCP server with stdio transport")

	errCh := make(chan error, 1)
	go func() {
		if err := server.ServeStdio(mcpServer); err != nil {
			errCh <- fmt.Errorf("stdio server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Context cancelled, stdio server stopping")
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func serveNetworked(ctx context.Context, transport string, handler http.Handler, cfg *TransportConfig, authn *middleware.Authenticator, rateLimitCfg config.RateLimitConfig) error {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	log.Info().
		Str("transport", transport).
		Str("addr", addr).
		Msg("Starting MCP server")

	wrapped, err := wrapMCPHandler(handler, authn, rateLimitCfg)
	if err != nil {
		return fmt.Errorf("failed to wrap %s handler: %w", transport, err)
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           wrapped,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("%s server error: %w", transport, err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Str("transport", transport).Msg("Shutting down MCP server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s server shutdown error: %w", transport, err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// wrapMCPHandler layers bearer-token auth and API-tier rate limiting over an
// HTTP-based MCP transport. A nil authenticator leaves the endpoint open, for
// trusted-network deployments.
func wrapMCPHandler(handler http.Handler, authn *middleware.Authenticator, rateLimitCfg config.RateLimitConfig) (http.Handler, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}

	wrapped := handler
	if authn != nil {
		wrapped = authn.Principal(authn.RequireAuth(wrapped))
	}
	wrapped = middleware.WithRateLimitTierHandler(middleware.TierAPI)(wrapped)
	wrapped = middleware.RateLimit(rateLimitCfg)(wrapped)
	return wrapped, nil
}
