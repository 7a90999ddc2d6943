package main

import (
	"fmt"
	"os"

	"github.com/warebase/server/internal/config"
	"github.com/warebase/server/internal/mcp"
)

// MCPConfig extends the base application config with MCP server settings.
type MCPConfig struct {
	// Base application configuration (store, auth, rate limits).
	Base config.Config

	// MCP server metadata.
	MCP MCPServerConfig

	// Transport configuration.
	Transport *mcp.TransportConfig
}

// MCPServerConfig holds MCP server metadata.
type MCPServerConfig struct {
	Name    string
	Version string
}

// LoadConfig loads configuration from environment variables.
// MCP-specific environment variables:
//   - MCP_SERVER_NAME: Server name for MCP identification (default: "Warebase MCP Server")
//   - MCP_SERVER_VERSION: Server version (default: "1.0.0")
//   - MCP_TRANSPORT: Transport type - "stdio", "sse", or "http" (default: "stdio")
//   - PORT: HTTP port for SSE/HTTP transports (default: 8090)
//   - HOST: Bind address for SSE/HTTP transports (default: "0.0.0.0")
//
// All standard application environment variables from config.Load() are also
// supported.
func LoadConfig() (*MCPConfig, error) {
	baseConfig, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load base config: %w", err)
	}

	transportConfig, err := mcp.LoadTransportConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load transport config: %w", err)
	}

	mcpConfig := MCPServerConfig{
		Name:    getEnv("MCP_SERVER_NAME", "Warebase MCP Server"),
		Version: getEnv("MCP_SERVER_VERSION", "1.0.0"),
	}

	return &MCPConfig{
		Base:      baseConfig,
		MCP:       mcpConfig,
		Transport: transportConfig,
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
