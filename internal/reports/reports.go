// Package reports builds the inventory CSV export and per-organization
// operational stats. The same code backs the reports API endpoints and the
// report CLI command.
package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/orders"
	"github.com/warebase/server/internal/domain/shipments"
	"github.com/warebase/server/internal/domain/warehouses"
	"github.com/warebase/server/internal/storage"
)

// csvHeader is the fixed column set of the inventory export. Existing
// consumers parse by position, so the order is part of the contract.
var csvHeader = []string{"SKU", "Name", "Category", "Warehouse", "Zone", "Bin", "Quantity", "Allocated", "Available"}

type Service struct {
	repo storage.Repository
}

func NewService(repo storage.Repository) *Service {
	return &Service{repo: repo}
}

// InventoryCSV renders one row per stock level for the organization's items,
// ordered by SKU then bin code. An organization with no stock yields just the
// header row.
func (s *Service) InventoryCSV(ctx context.Context, organizationID int64) ([]byte, error) {
	items, err := s.repo.Items().List(ctx, catalog.ItemFilters{OrganizationID: &organizationID})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	itemIDs := make([]int64, 0, len(items))
	itemsByID := make(map[int64]catalog.Item, len(items))
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
		itemsByID[item.ID] = item
	}

	levels, err := s.repo.Inventory().ListByItemIDs(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}

	binIDs := make([]int64, 0, len(levels))
	for _, level := range levels {
		binIDs = append(binIDs, level.BinID)
	}
	bins, err := s.repo.Bins().GetByIDs(ctx, binIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve bins: %w", err)
	}

	zoneIDs := make([]int64, 0, len(bins))
	for _, bin := range bins {
		zoneIDs = append(zoneIDs, bin.ZoneID)
	}
	zones, err := s.repo.Zones().GetByIDs(ctx, zoneIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve zones: %w", err)
	}

	warehouseIDs := make([]int64, 0, len(zones))
	for _, zone := range zones {
		warehouseIDs = append(warehouseIDs, zone.WarehouseID)
	}
	whs, err := s.repo.Warehouses().GetByIDs(ctx, warehouseIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve warehouses: %w", err)
	}

	categoryIDs := make([]int64, 0, len(items))
	for _, item := range items {
		if item.CategoryID != nil {
			categoryIDs = append(categoryIDs, *item.CategoryID)
		}
	}
	categories, err := s.repo.Categories().GetByIDs(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve categories: %w", err)
	}

	sort.Slice(levels, func(i, j int) bool {
		left, right := itemsByID[levels[i].ItemID], itemsByID[levels[j].ItemID]
		if left.SKU != right.SKU {
			return left.SKU < right.SKU
		}
		return bins[levels[i].BinID].Code < bins[levels[j].BinID].Code
	})

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, level := range levels {
		item := itemsByID[level.ItemID]

		category := ""
		if item.CategoryID != nil {
			category = categories[*item.CategoryID].Name
		}

		var warehouseName, zoneName, binCode string
		if bin, ok := bins[level.BinID]; ok {
			binCode = bin.Code
			if zone, ok := zones[bin.ZoneID]; ok {
				zoneName = zone.Name
				warehouseName = whs[zone.WarehouseID].Name
			}
		}

		record := []string{
			item.SKU,
			item.Name,
			category,
			warehouseName,
			zoneName,
			binCode,
			strconv.FormatInt(level.Quantity, 10),
			strconv.FormatInt(level.Allocated, 10),
			strconv.FormatInt(level.Available(), 10),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Stats summarizes one organization's operational state.
type Stats struct {
	OrganizationID int64            `json:"organization_id"`
	Items          int64            `json:"items"`
	Warehouses     int64            `json:"warehouses"`
	StockOnHand    int64            `json:"stock_on_hand"`
	StockAllocated int64            `json:"stock_allocated"`
	LowStockItems  int64            `json:"low_stock_items"`
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
	OpenShipments  int64            `json:"open_shipments"`
}

func (s *Service) Stats(ctx context.Context, organizationID int64) (*Stats, error) {
	stats := &Stats{
		OrganizationID: organizationID,
		OrdersByStatus: make(map[string]int64),
	}

	items, err := s.repo.Items().List(ctx, catalog.ItemFilters{OrganizationID: &organizationID})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	stats.Items = int64(len(items))

	whs, err := s.repo.Warehouses().List(ctx, warehouses.WarehouseFilters{OrganizationID: &organizationID})
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	stats.Warehouses = int64(len(whs))

	itemIDs := make([]int64, 0, len(items))
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
	}
	levels, err := s.repo.Inventory().ListByItemIDs(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}

	onHandByItem := make(map[int64]int64, len(items))
	for _, level := range levels {
		stats.StockOnHand += level.Quantity
		stats.StockAllocated += level.Allocated
		onHandByItem[level.ItemID] += level.Quantity
	}
	for _, item := range items {
		if item.ReorderPoint > 0 && onHandByItem[item.ID] <= item.ReorderPoint {
			stats.LowStockItems++
		}
	}

	orderList, err := s.repo.Orders().List(ctx, orders.Filters{OrganizationID: &organizationID})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orderIDs := make(map[int64]struct{}, len(orderList))
	for _, order := range orderList {
		stats.OrdersByStatus[order.Status]++
		orderIDs[order.ID] = struct{}{}
	}

	shipmentList, err := s.repo.Shipments().List(ctx, shipments.Filters{})
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	for _, shipment := range shipmentList {
		if _, ok := orderIDs[shipment.OrderID]; !ok {
			continue
		}
		if shipment.Status != shipments.StatusDelivered && shipment.Status != shipments.StatusCanceled {
			stats.OpenShipments++
		}
	}

	return stats, nil
}
