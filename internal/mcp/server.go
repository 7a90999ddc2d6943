package mcp

import (
	"context"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/inventory"
	"github.com/warebase/server/internal/domain/orders"
	"github.com/warebase/server/internal/mcp/tools"
	"github.com/warebase/server/internal/reports"
)

// Server exposes the warehouse catalog, stock levels, orders, and reports to
// MCP clients as read-only tools.
type Server struct {
	mcp *mcpserver.MCPServer
}

// Config holds MCP server metadata.
type Config struct {
	Name    string
	Version string
}

// NewServer builds the MCP server and registers the tool set over the given
// domain services.
func NewServer(
	cfg Config,
	catalogService *catalog.Service,
	inventoryService *inventory.Service,
	ordersService *orders.Service,
	reportsService *reports.Service,
) *Server {
	mcpServer := mcpserver.NewMCPServer(
		cfg.Name,
		cfg.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
		mcpserver.WithInstructions("MCP server for Warebase warehouse management - search the item catalog, look up stock levels, check order status, and pull low stock and operational reports"),
	)

	srv := &Server{mcp: mcpServer}
	srv.registerTools(catalogService, inventoryService, ordersService, reportsService)
	return srv
}

func (s *Server) registerTools(
	catalogService *catalog.Service,
	inventoryService *inventory.Service,
	ordersService *orders.Service,
	reportsService *reports.Service,
) {
	catalogTools := tools.NewCatalogTools(catalogService)
	s.mcp.AddTool(catalogTools.SearchItemsTool(), catalogTools.SearchItemsHandler)
	s.mcp.AddTool(catalogTools.GetItemTool(), catalogTools.GetItemHandler)

	inventoryTools := tools.NewInventoryTools(inventoryService, catalogService)
	s.mcp.AddTool(inventoryTools.StockLevelsTool(), inventoryTools.StockLevelsHandler)
	s.mcp.AddTool(inventoryTools.LowStockTool(), inventoryTools.LowStockHandler)

	orderTools := tools.NewOrderTools(ordersService, catalogService)
	s.mcp.AddTool(orderTools.OrderStatusTool(), orderTools.OrderStatusHandler)

	reportTools := tools.NewReportTools(reportsService)
	s.mcp.AddTool(reportTools.OrganizationStatsTool(), reportTools.OrganizationStatsHandler)
}

// MCPServer returns the underlying MCP server for use with transports.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// Shutdown is a hook for future cleanup; the tool set holds no resources of
// its own today.
func (s *Server) Shutdown(ctx context.Context) error {
	return nil
}
