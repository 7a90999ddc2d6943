package tools

import (
	"context"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/inventory"
)

// InventoryTools provides MCP tools for reading stock levels. Item lookups go
// through the catalog so callers can address stock by SKU.
type InventoryTools struct {
	inventory *inventory.Service
	catalog   *catalog.Service
}

func NewInventoryTools(inventoryService *inventory.Service, catalogService *catalog.Service) *InventoryTools {
	return &InventoryTools{inventory: inventoryService, catalog: catalogService}
}

// StockLevelsTool returns the MCP tool definition for per-bin stock lookup.
func (t *InventoryTools) StockLevelsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "stock_levels",
		Description: "Look up per-bin stock levels for one item by SKU. Returns quantity, allocated, and available per bin plus totals.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"organization_id": map[string]interface{}{
					"type":        "integer",
					"description": "Organization the item belongs to",
				},
				"sku": map[string]interface{}{
					"type":        "string",
					"description": "Item SKU to look up",
				},
			},
			Required: []string{"organization_id", "sku"},
		},
	}
}

// StockLevelsHandler handles the stock_levels tool call.
func (t *InventoryTools) StockLevelsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.inventory == nil || t.catalog == nil {
		return mcp.NewToolResultError("inventory service not configured"), nil
	}

	args := struct {
		OrganizationID int64  `json:"organization_id"`
		SKU            string `json:"sku"`
	}{}
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if args.OrganizationID <= 0 {
		return mcp.NewToolResultError("organization_id parameter is required"), nil
	}
	sku := strings.TrimSpace(args.SKU)
	if sku == "" {
		return mcp.NewToolResultError("sku parameter is required"), nil
	}

	item, result := t.findItemBySKU(ctx, args.OrganizationID, sku)
	if result != nil {
		return result, nil
	}

	levels, err := t.inventory.List(ctx, inventory.LevelFilters{ItemID: &item.ID})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to list stock levels", err), nil
	}

	var onHand, allocated int64
	rows := make([]map[string]any, 0, len(levels))
	for _, level := range levels {
		onHand += level.Quantity
		allocated += level.Allocated
		rows = append(rows, map[string]any{
			"bin_id":    level.BinID,
			"quantity":  level.Quantity,
			"allocated": level.Allocated,
			"available": level.Available(),
		})
	}

	return toolResultJSON(map[string]any{
		"item_id":         item.ID,
		"sku":             item.SKU,
		"name":            item.Name,
		"on_hand":         onHand,
		"allocated":       allocated,
		"available":       onHand - allocated,
		"levels":          rows,
		"reorder_point":   item.ReorderPoint,
		"below_reorder":   item.ReorderPoint > 0 && onHand <= item.ReorderPoint,
		"organization_id": item.OrganizationID,
	})
}

// LowStockTool returns the MCP tool definition for the low stock report.
func (t *InventoryTools) LowStockTool() mcp.Tool {
	return mcp.Tool{
		Name:        "low_stock",
		Description: "List items at or below their reorder point for one organization, with on-hand totals and suggested reorder quantities.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"organization_id": map[string]interface{}{
					"type":        "integer",
					"description": "Organization to report on",
				},
			},
			Required: []string{"organization_id"},
		},
	}
}

// LowStockHandler handles the low_stock tool call.
func (t *InventoryTools) LowStockHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.inventory == nil || t.catalog == nil {
		return mcp.NewToolResultError("inventory service not configured"), nil
	}

	args := struct {
		OrganizationID int64 `json:"organization_id"`
	}{}
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if args.OrganizationID <= 0 {
		return mcp.NewToolResultError("organization_id parameter is required"), nil
	}

	items, err := t.catalog.ListItems(ctx, catalog.ItemFilters{OrganizationID: &args.OrganizationID})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to list items", err), nil
	}

	tracked := make([]catalog.Item, 0, len(items))
	itemIDs := make([]int64, 0, len(items))
	for _, item := range items {
		if item.ReorderPoint > 0 {
			tracked = append(tracked, item)
			itemIDs = append(itemIDs, item.ID)
		}
	}

	levels, err := t.inventory.ListByItemIDs(ctx, itemIDs)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to list stock levels", err), nil
	}
	onHandByItem := make(map[int64]int64, len(tracked))
	for _, level := range levels {
		onHandByItem[level.ItemID] += level.Quantity
	}

	rows := make([]map[string]any, 0)
	for _, item := range tracked {
		onHand := onHandByItem[item.ID]
		if onHand > item.ReorderPoint {
			continue
		}
		rows = append(rows, map[string]any{
			"item_id":          item.ID,
			"sku":              item.SKU,
			"name":             item.Name,
			"on_hand":          onHand,
			"reorder_point":    item.ReorderPoint,
			"reorder_quantity": item.ReorderQuantity,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i]["sku"].(string) < rows[j]["sku"].(string)
	})

	return toolResultJSON(map[string]any{
		"organization_id": args.OrganizationID,
		"items":           rows,
	})
}

// findItemBySKU resolves one item by exact SKU match within an organization.
// The second return value is a non-nil tool error result when resolution
// fails.
func (t *InventoryTools) findItemBySKU(ctx context.Context, organizationID int64, sku string) (*catalog.Item, *mcp.CallToolResult) {
	items, err := t.catalog.ListItems(ctx, catalog.ItemFilters{
		OrganizationID: &organizationID,
		Query:          sku,
	})
	if err != nil {
		return nil, mcp.NewToolResultErrorFromErr("failed to look up item", err)
	}
	for i := range items {
		if strings.EqualFold(items[i].SKU, sku) {
			return &items[i], nil
		}
	}
	return nil, mcp.NewToolResultErrorf("item not found: %s", sku)
}
