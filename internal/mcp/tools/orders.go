package tools

import (
	"context"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/orders"
)

// OrderTools provides MCP tools for reading order state.
type OrderTools struct {
	orders  *orders.Service
	catalog *catalog.Service
}

func NewOrderTools(ordersService *orders.Service, catalogService *catalog.Service) *OrderTools {
	return &OrderTools{orders: ordersService, catalog: catalogService}
}

// OrderStatusTool returns the MCP tool definition for order status lookup.
func (t *OrderTools) OrderStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "order_status",
		Description: "Get the status of an order and its lines, by numeric order ID or by organization_id plus order_number.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Order ID (when known)",
				},
				"organization_id": map[string]interface{}{
					"type":        "integer",
					"description": "Organization the order belongs to (required with order_number)",
				},
				"order_number": map[string]interface{}{
					"type":        "string",
					"description": "Customer-facing order number, unique within the organization",
				},
			},
		},
	}
}

// OrderStatusHandler handles the order_status tool call.
func (t *OrderTools) OrderStatusHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.orders == nil {
		return mcp.NewToolResultError("orders service not configured"), nil
	}

	args := struct {
		ID             int64  `json:"id"`
		OrganizationID int64  `json:"organization_id"`
		OrderNumber    string `json:"order_number"`
	}{}
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	orderID := args.ID
	if orderID <= 0 {
		number := strings.TrimSpace(args.OrderNumber)
		if args.OrganizationID <= 0 || number == "" {
			return mcp.NewToolResultError("either id or organization_id plus order_number is required"), nil
		}
		found, result := t.findOrderByNumber(ctx, args.OrganizationID, number)
		if result != nil {
			return result, nil
		}
		orderID = found.ID
	}

	order, lines, err := t.orders.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			return mcp.NewToolResultErrorf("order not found: %d", orderID), nil
		}
		return mcp.NewToolResultErrorFromErr("failed to get order", err), nil
	}

	return toolResultJSON(t.buildOrderPayload(ctx, order, lines))
}

func (t *OrderTools) findOrderByNumber(ctx context.Context, organizationID int64, number string) (*orders.Order, *mcp.CallToolResult) {
	matches, err := t.orders.List(ctx, orders.Filters{
		OrganizationID: &organizationID,
		Query:          number,
	})
	if err != nil {
		return nil, mcp.NewToolResultErrorFromErr("failed to look up order", err)
	}
	for i := range matches {
		if strings.EqualFold(matches[i].OrderNumber, number) {
			return &matches[i], nil
		}
	}
	return nil, mcp.NewToolResultErrorf("order not found: %s", number)
}

func (t *OrderTools) buildOrderPayload(ctx context.Context, order *orders.Order, lines []orders.OrderItem) map[string]any {
	payload := map[string]any{
		"id":              order.ID,
		"order_number":    order.OrderNumber,
		"status":          order.Status,
		"customer_name":   order.CustomerName,
		"organization_id": order.OrganizationID,
		"created_at":      order.CreatedAt,
		"updated_at":      order.UpdatedAt,
	}

	// Resolve SKUs so clients get readable lines. A failed lookup degrades to
	// bare item IDs instead of failing the call.
	var itemsByID map[int64]catalog.Item
	if t.catalog != nil {
		ids := make([]int64, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.ItemID)
		}
		if resolved, err := t.catalog.GetItemsByIDs(ctx, ids); err == nil {
			itemsByID = resolved
		}
	}

	lineRows := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		row := map[string]any{
			"item_id":   line.ItemID,
			"quantity":  line.Quantity,
			"allocated": line.Allocated,
			"picked":    line.Picked,
			"status":    line.Status,
		}
		if item, ok := itemsByID[line.ItemID]; ok {
			row["sku"] = item.SKU
			row["name"] = item.Name
		}
		lineRows = append(lineRows, row)
	}
	payload["items"] = lineRows
	return payload
}
