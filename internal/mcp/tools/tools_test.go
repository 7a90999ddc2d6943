package tools

import (
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/inventory"
	"github.com/warebase/server/internal/domain/orders"
	"github.com/warebase/server/internal/domain/organizations"
	"github.com/warebase/server/internal/domain/warehouses"
	"github.com/warebase/server/internal/reports"
	"github.com/warebase/server/internal/storage/memory"
)

type fixture struct {
	catalog   *catalog.Service
	inventory *inventory.Service
	orders    *orders.Service
	reports   *reports.Service

	orgID  int64
	binID  int64
	itemID int64
}

// newFixture seeds one organization with a single bin and one tracked item
// (SKU-1, reorder point 10) holding 12 units, plus an untracked item SKU-2
// with no stock.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	repo := memory.NewRepository()

	orgService := organizations.NewService(repo.Organizations(), nil, logger)
	warehouseService := warehouses.NewService(repo.Warehouses(), repo.Zones(), repo.BinTypes(), repo.Bins(), repo.Organizations(), nil, logger)

	f := &fixture{
		catalog:   catalog.NewService(repo.Categories(), repo.Suppliers(), repo.Items(), repo.Organizations(), nil, logger),
		inventory: inventory.NewService(repo.Inventory(), repo.InventoryTransactions(), repo.Items(), repo.Bins(), nil, nil, logger),
		orders:    orders.NewService(repo.Orders(), repo.OrderItems(), repo.Items(), repo.Organizations(), nil, logger),
		reports:   reports.NewService(repo),
	}

	ctx := t.Context()

	org, err := orgService.Create(ctx, organizations.CreateParams{Name: "Acme Logistics"})
	require.NoError(t, err)
	f.orgID = org.ID

	warehouse, err := warehouseService.CreateWarehouse(ctx, warehouses.CreateWarehouseParams{
		Name: "Main", Code: "WH-1", OrganizationID: org.ID,
	})
	require.NoError(t, err)
	zone, err := warehouseService.CreateZone(ctx, warehouses.CreateZoneParams{
		Name: "Zone A", Code: "A", WarehouseID: warehouse.ID,
	})
	require.NoError(t, err)
	bin, err := warehouseService.CreateBin(ctx, warehouses.CreateBinParams{
		Name: "A-01", Code: "A-01", ZoneID: zone.ID,
	})
	require.NoError(t, err)
	f.binID = bin.ID

	item, err := f.catalog.CreateItem(ctx, catalog.CreateItemParams{
		SKU: "SKU-1", Name: "Widget", ReorderPoint: 10, ReorderQuantity: 25, OrganizationID: org.ID,
	})
	require.NoError(t, err)
	f.itemID = item.ID

	_, err = f.catalog.CreateItem(ctx, catalog.CreateItemParams{
		SKU: "SKU-2", Name: "Gadget", OrganizationID: org.ID,
	})
	require.NoError(t, err)

	_, err = f.inventory.Create(ctx, inventory.CreateParams{
		ItemID: item.ID, BinID: bin.ID, Quantity: 12,
	})
	require.NoError(t, err)

	return f
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// decodeResult unmarshals the JSON text content of a successful tool result.
func decodeResult(t *testing.T, result *mcp.CallToolResult, out any) {
	t.Helper()
	require.False(t, result.IsError)
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	require.NoError(t, json.Unmarshal([]byte(text.Text), out))
}

func TestSearchItems(t *testing.T) {
	f := newFixture(t)
	tools := NewCatalogTools(f.catalog)

	result, err := tools.SearchItemsHandler(t.Context(), callRequest("search_items", map[string]any{
		"organization_id": f.orgID,
		"query":           "widget",
	}))
	require.NoError(t, err)

	var payload struct {
		Items []map[string]any `json:"items"`
	}
	decodeResult(t, result, &payload)
	require.Len(t, payload.Items, 1)
	require.Equal(t, "SKU-1", payload.Items[0]["sku"])
}

func TestSearchItemsRequiresOrganization(t *testing.T) {
	f := newFixture(t)
	tools := NewCatalogTools(f.catalog)

	result, err := tools.SearchItemsHandler(t.Context(), callRequest("search_items", map[string]any{
		"query": "widget",
	}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestGetItemNotFound(t *testing.T) {
	f := newFixture(t)
	tools := NewCatalogTools(f.catalog)

	result, err := tools.GetItemHandler(t.Context(), callRequest("get_item", map[string]any{
		"id": 9999,
	}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestStockLevelsBySKU(t *testing.T) {
	f := newFixture(t)
	tools := NewInventoryTools(f.inventory, f.catalog)

	result, err := tools.StockLevelsHandler(t.Context(), callRequest("stock_levels", map[string]any{
		"organization_id": f.orgID,
		"sku":             "sku-1",
	}))
	require.NoError(t, err)

	var payload struct {
		SKU          string           `json:"sku"`
		OnHand       int64            `json:"on_hand"`
		Available    int64            `json:"available"`
		BelowReorder bool             `json:"below_reorder"`
		Levels       []map[string]any `json:"levels"`
	}
	decodeResult(t, result, &payload)
	require.Equal(t, "SKU-1", payload.SKU)
	require.Equal(t, int64(12), payload.OnHand)
	require.Equal(t, int64(12), payload.Available)
	require.False(t, payload.BelowReorder)
	require.Len(t, payload.Levels, 1)
}

func TestStockLevelsUnknownSKU(t *testing.T) {
	f := newFixture(t)
	tools := NewInventoryTools(f.inventory, f.catalog)

	result, err := tools.StockLevelsHandler(t.Context(), callRequest("stock_levels", map[string]any{
		"organization_id": f.orgID,
		"sku":             "SKU-404",
	}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestLowStockReport(t *testing.T) {
	f := newFixture(t)
	tools := NewInventoryTools(f.inventory, f.catalog)

	// SKU-3 is tracked but has no stock, so it sits below its reorder point.
	ctx := t.Context()
	item, err := f.catalog.CreateItem(ctx, catalog.CreateItemParams{
		SKU: "SKU-3", Name: "Sprocket", ReorderPoint: 5, OrganizationID: f.orgID,
	})
	require.NoError(t, err)

	result, err := tools.LowStockHandler(ctx, callRequest("low_stock", map[string]any{
		"organization_id": f.orgID,
	}))
	require.NoError(t, err)

	var payload struct {
		Items []map[string]any `json:"items"`
	}
	decodeResult(t, result, &payload)
	// SKU-1 has 12 on hand against a reorder point of 10, so only the
	// stockless SKU-3 is low.
	require.Len(t, payload.Items, 1)
	require.Equal(t, "SKU-3", payload.Items[0]["sku"])
	require.EqualValues(t, item.ID, payload.Items[0]["item_id"])
}

func TestOrderStatusByNumber(t *testing.T) {
	f := newFixture(t)
	tools := NewOrderTools(f.orders, f.catalog)

	ctx := t.Context()
	_, _, err := f.orders.Create(ctx, orders.CreateParams{
		OrderNumber:    "ORD-100",
		CustomerName:   "Jordan",
		OrganizationID: f.orgID,
		Items: []orders.CreateItemParams{
			{ItemID: f.itemID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	result, err := tools.OrderStatusHandler(ctx, callRequest("order_status", map[string]any{
		"organization_id": f.orgID,
		"order_number":    "ord-100",
	}))
	require.NoError(t, err)

	var payload struct {
		OrderNumber string           `json:"order_number"`
		Status      string           `json:"status"`
		Items       []map[string]any `json:"items"`
	}
	decodeResult(t, result, &payload)
	require.Equal(t, "ORD-100", payload.OrderNumber)
	require.Equal(t, "pending", payload.Status)
	require.Len(t, payload.Items, 1)
	require.Equal(t, "SKU-1", payload.Items[0]["sku"])
}

func TestOrderStatusRequiresIdentifier(t *testing.T) {
	f := newFixture(t)
	tools := NewOrderTools(f.orders, f.catalog)

	result, err := tools.OrderStatusHandler(t.Context(), callRequest("order_status", map[string]any{}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestOrganizationStats(t *testing.T) {
	f := newFixture(t)
	tools := NewReportTools(f.reports)

	result, err := tools.OrganizationStatsHandler(t.Context(), callRequest("organization_stats", map[string]any{
		"organization_id": f.orgID,
	}))
	require.NoError(t, err)

	var payload reports.Stats
	decodeResult(t, result, &payload)
	require.Equal(t, int64(2), payload.Items)
	require.Equal(t, int64(1), payload.Warehouses)
	require.Equal(t, int64(12), payload.StockOnHand)
}
