package handlers

import (
	"net/http"
	"time"

	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/orders"
)

type OrdersHandler struct {
	Service *orders.Service
	Catalog *catalog.Service
	Env     string
}

func NewOrdersHandler(service *orders.Service, cat *catalog.Service, env string) *OrdersHandler {
	return &OrdersHandler{Service: service, Catalog: cat, Env: env}
}

type orderItemResponse struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	ItemID    int64     `json:"item_id"`
	ItemSKU   string    `json:"item_sku,omitempty"`
	ItemName  string    `json:"item_name,omitempty"`
	Quantity  int64     `json:"quantity"`
	Allocated int64     `json:"allocated"`
	Picked    int64     `json:"picked"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type orderResponse struct {
	ID              int64               `json:"id"`
	OrderNumber     string              `json:"order_number"`
	CustomerName    string              `json:"customer_name"`
	CustomerEmail   string              `json:"customer_email"`
	ShippingAddress string              `json:"shipping_address"`
	Status          string              `json:"status"`
	Notes           string              `json:"notes"`
	OrganizationID  int64               `json:"organization_id"`
	CreatedBy       *int64              `json:"created_by"`
	Items           []orderItemResponse `json:"items,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func toOrderResponse(order orders.Order, lines []orderItemResponse) orderResponse {
	return orderResponse{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		ShippingAddress: order.ShippingAddress,
		Status:          order.Status,
		Notes:           order.Notes,
		OrganizationID:  order.OrganizationID,
		CreatedBy:       order.CreatedBy,
		Items:           lines,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

// itemLookup batch-resolves catalog items referenced by the given order lines.
func (h *OrdersHandler) itemLookup(r *http.Request, lines []orders.OrderItem) map[int64]catalog.Item {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ItemID)
	}
	items, err := h.Catalog.GetItemsByIDs(r.Context(), ids)
	if err != nil {
		return nil
	}
	return items
}

func toOrderItemResponses(lines []orders.OrderItem, items map[int64]catalog.Item) []orderItemResponse {
	out := make([]orderItemResponse, 0, len(lines))
	for _, line := range lines {
		resp := orderItemResponse{
			ID:        line.ID,
			OrderID:   line.OrderID,
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			Allocated: line.Allocated,
			Picked:    line.Picked,
			Status:    line.Status,
			CreatedAt: line.CreatedAt,
			UpdatedAt: line.UpdatedAt,
		}
		if item, ok := items[line.ItemID]; ok {
			resp.ItemSKU = item.SKU
			resp.ItemName = item.Name
		}
		out = append(out, resp)
	}
	return out
}

func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, err := queryInt64(r, "organization_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	filters := orders.Filters{
		OrganizationID: orgID,
		Status:         queryString(r, "status"),
		Query:          queryString(r, "q"),
	}

	list, linesByOrder, err := h.Service.ListWithItems(r.Context(), filters)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	var allLines []orders.OrderItem
	for _, lines := range linesByOrder {
		allLines = append(allLines, lines...)
	}
	items := h.itemLookup(r, allLines)

	out := make([]orderResponse, 0, len(list))
	for _, order := range list {
		out = append(out, toOrderResponse(order, toOrderItemResponses(linesByOrder[order.ID], items)))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	order, lines, err := h.Service.Get(r.Context(), id)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items := h.itemLookup(r, lines)
	writeJSON(w, http.StatusOK, toOrderResponse(*order, toOrderItemResponses(lines, items)))
}

func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params orders.CreateParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	order, lines, err := h.Service.Create(r.Context(), params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items := h.itemLookup(r, lines)
	writeJSON(w, http.StatusCreated, toOrderResponse(*order, toOrderItemResponses(lines, items)))
}

func (h *OrdersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	var params orders.UpdateParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	order, err := h.Service.Update(r.Context(), id, params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*order, nil))
}

func (h *OrdersHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	_, lines, err := h.Service.Get(r.Context(), id)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items := h.itemLookup(r, lines)
	writeJSON(w, http.StatusOK, map[string]any{"items": toOrderItemResponses(lines, items)})
}

func (h *OrdersHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	line, err := h.Service.GetItem(r.Context(), id)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items := h.itemLookup(r, []orders.OrderItem{*line})
	out := toOrderItemResponses([]orders.OrderItem{*line}, items)
	writeJSON(w, http.StatusOK, out[0])
}

func (h *OrdersHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	var params orders.UpdateItemParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	line, err := h.Service.UpdateItem(r.Context(), id, params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items := h.itemLookup(r, []orders.OrderItem{*line})
	out := toOrderItemResponses([]orders.OrderItem{*line}, items)
	writeJSON(w, http.StatusOK, out[0])
}
