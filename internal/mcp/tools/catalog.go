package tools

import (
	"context"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/warebase/server/internal/domain/catalog"
)

// CatalogTools provides MCP tools for searching and reading the item catalog.
type CatalogTools struct {
	catalog *catalog.Service
}

func NewCatalogTools(catalogService *catalog.Service) *CatalogTools {
	return &CatalogTools{catalog: catalogService}
}

// SearchItemsTool returns the MCP tool definition for searching catalog items.
func (t *CatalogTools) SearchItemsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_items",
		Description: "Search catalog items by SKU or name within one organization. Returns a JSON array of matching items.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"organization_id": map[string]interface{}{
					"type":        "integer",
					"description": "Organization to search in",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search text matched against SKU and name",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of items to return (default: 50, max: 200)",
					"default":     50,
				},
			},
			Required: []string{"organization_id"},
		},
	}
}

// SearchItemsHandler handles the search_items tool call.
func (t *CatalogTools) SearchItemsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.catalog == nil {
		return mcp.NewToolResultError("catalog service not configured"), nil
	}

	args := struct {
		OrganizationID int64  `json:"organization_id"`
		Query          string `json:"query"`
		Limit          int    `json:"limit"`
	}{
		Limit: 50,
	}
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if args.OrganizationID <= 0 {
		return mcp.NewToolResultError("organization_id parameter is required"), nil
	}
	if args.Limit <= 0 || args.Limit > 200 {
		args.Limit = 50
	}

	items, err := t.catalog.ListItems(ctx, catalog.ItemFilters{
		OrganizationID: &args.OrganizationID,
		Query:          strings.TrimSpace(args.Query),
	})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to search items", err), nil
	}
	if len(items) > args.Limit {
		items = items[:args.Limit]
	}

	payload := make([]map[string]any, 0, len(items))
	for i := range items {
		payload = append(payload, buildItemPayload(&items[i]))
	}
	return toolResultJSON(map[string]any{"items": payload})
}

// GetItemTool returns the MCP tool definition for fetching one item.
func (t *CatalogTools) GetItemTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_item",
		Description: "Get one catalog item by its numeric ID, including reorder settings and dimensions.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Item ID",
				},
			},
			Required: []string{"id"},
		},
	}
}

// GetItemHandler handles the get_item tool call.
func (t *CatalogTools) GetItemHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.catalog == nil {
		return mcp.NewToolResultError("catalog service not configured"), nil
	}

	args := struct {
		ID int64 `json:"id"`
	}{}
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if args.ID <= 0 {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	item, err := t.catalog.GetItem(ctx, args.ID)
	if err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			return mcp.NewToolResultErrorf("item not found: %d", args.ID), nil
		}
		return mcp.NewToolResultErrorFromErr("failed to get item", err), nil
	}
	return toolResultJSON(buildItemPayload(item))
}

func buildItemPayload(item *catalog.Item) map[string]any {
	if item == nil {
		return map[string]any{}
	}
	payload := map[string]any{
		"id":              item.ID,
		"sku":             item.SKU,
		"name":            item.Name,
		"organization_id": item.OrganizationID,
	}
	if item.Description != "" {
		payload["description"] = item.Description
	}
	if item.Barcode != "" {
		payload["barcode"] = item.Barcode
	}
	if item.CategoryID != nil {
		payload["category_id"] = *item.CategoryID
	}
	if item.SupplierID != nil {
		payload["supplier_id"] = *item.SupplierID
	}
	if item.ReorderPoint > 0 {
		payload["reorder_point"] = item.ReorderPoint
		payload["reorder_quantity"] = item.ReorderQuantity
	}
	if item.Weight > 0 {
		payload["weight"] = item.Weight
	}
	return payload
}
