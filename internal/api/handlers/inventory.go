package handlers

import (
	"net/http"
	"time"

	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/inventory"
	"github.com/warebase/server/internal/domain/warehouses"
)

// InventoryHandler serves stock levels and the transaction ledger. Responses
// are denormalized with item and bin identifiers, batch-fetched per request.
type InventoryHandler struct {
	Inventory *inventory.Service
	Catalog   *catalog.Service
	Bins      warehouses.BinRepository
	Env       string
}

func NewInventoryHandler(inv *inventory.Service, cat *catalog.Service, bins warehouses.BinRepository, env string) *InventoryHandler {
	return &InventoryHandler{Inventory: inv, Catalog: cat, Bins: bins, Env: env}
}

type levelResponse struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	ItemSKU   string    `json:"item_sku,omitempty"`
	ItemName  string    `json:"item_name,omitempty"`
	BinID     int64     `json:"bin_id"`
	BinCode   string    `json:"bin_code,omitempty"`
	Quantity  int64     `json:"quantity"`
	Allocated int64     `json:"allocated"`
	Available int64     `json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type transactionResponse struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	ItemSKU   string    `json:"item_sku,omitempty"`
	BinID     int64     `json:"bin_id"`
	BinCode   string    `json:"bin_code,omitempty"`
	Delta     int64     `json:"delta"`
	Type      string    `json:"type"`
	Reference string    `json:"reference"`
	Note      string    `json:"note"`
	UserID    *int64    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// lookups resolves the item and bin references for a page of results with
// one batch query per entity type.
func (h *InventoryHandler) lookups(r *http.Request, itemIDs, binIDs []int64) (map[int64]catalog.Item, map[int64]warehouses.Bin) {
	items, err := h.Catalog.GetItemsByIDs(r.Context(), itemIDs)
	if err != nil {
		items = nil
	}
	bins, err := h.Bins.GetByIDs(r.Context(), binIDs)
	if err != nil {
		bins = nil
	}
	return items, bins
}

func (h *InventoryHandler) toLevelResponse(level inventory.Level, items map[int64]catalog.Item, bins map[int64]warehouses.Bin) levelResponse {
	resp := levelResponse{
		ID:        level.ID,
		ItemID:    level.ItemID,
		BinID:     level.BinID,
		Quantity:  level.Quantity,
		Allocated: level.Allocated,
		Available: level.Available(),
		CreatedAt: level.CreatedAt,
		UpdatedAt: level.UpdatedAt,
	}
	if item, ok := items[level.ItemID]; ok {
		resp.ItemSKU = item.SKU
		resp.ItemName = item.Name
	}
	if bin, ok := bins[level.BinID]; ok {
		resp.BinCode = bin.Code
	}
	return resp
}

func (h *InventoryHandler) toTransactionResponse(tx inventory.Transaction, items map[int64]catalog.Item, bins map[int64]warehouses.Bin) transactionResponse {
	resp := transactionResponse{
		ID:        tx.ID,
		ItemID:    tx.ItemID,
		BinID:     tx.BinID,
		Delta:     tx.Delta,
		Type:      tx.Type,
		Reference: tx.Reference,
		Note:      tx.Note,
		UserID:    tx.UserID,
		CreatedAt: tx.CreatedAt,
	}
	if item, ok := items[tx.ItemID]; ok {
		resp.ItemSKU = item.SKU
	}
	if bin, ok := bins[tx.BinID]; ok {
		resp.BinCode = bin.Code
	}
	return resp
}

func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	itemID, err := queryInt64(r, "item_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	binID, err := queryInt64(r, "bin_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	levels, err := h.Inventory.List(r.Context(), inventory.LevelFilters{ItemID: itemID, BinID: binID})
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	itemIDs := make([]int64, 0, len(levels))
	binIDs := make([]int64, 0, len(levels))
	for _, level := range levels {
		itemIDs = append(itemIDs, level.ItemID)
		binIDs = append(binIDs, level.BinID)
	}
	items, bins := h.lookups(r, itemIDs, binIDs)

	out := make([]levelResponse, 0, len(levels))
	for _, level := range levels {
		out = append(out, h.toLevelResponse(level, items, bins))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	level, err := h.Inventory.Get(r.Context(), id)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items, bins := h.lookups(r, []int64{level.ItemID}, []int64{level.BinID})
	writeJSON(w, http.StatusOK, h.toLevelResponse(*level, items, bins))
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params inventory.CreateParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	level, err := h.Inventory.Create(r.Context(), params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items, bins := h.lookups(r, []int64{level.ItemID}, []int64{level.BinID})
	writeJSON(w, http.StatusCreated, h.toLevelResponse(*level, items, bins))
}

func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	var params inventory.UpdateParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	level, err := h.Inventory.Update(r.Context(), id, params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items, bins := h.lookups(r, []int64{level.ItemID}, []int64{level.BinID})
	writeJSON(w, http.StatusOK, h.toLevelResponse(*level, items, bins))
}

func (h *InventoryHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	itemID, err := queryInt64(r, "item_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	binID, err := queryInt64(r, "bin_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	txs, err := h.Inventory.ListTransactions(r.Context(), inventory.TransactionFilters{
		ItemID:    itemID,
		BinID:     binID,
		Type:      queryString(r, "type"),
		Reference: queryString(r, "reference"),
	})
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	itemIDs := make([]int64, 0, len(txs))
	binIDs := make([]int64, 0, len(txs))
	for _, tx := range txs {
		itemIDs = append(itemIDs, tx.ItemID)
		binIDs = append(binIDs, tx.BinID)
	}
	items, bins := h.lookups(r, itemIDs, binIDs)

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, h.toTransactionResponse(tx, items, bins))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *InventoryHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	tx, err := h.Inventory.GetTransaction(r.Context(), id)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items, bins := h.lookups(r, []int64{tx.ItemID}, []int64{tx.BinID})
	writeJSON(w, http.StatusOK, h.toTransactionResponse(*tx, items, bins))
}
