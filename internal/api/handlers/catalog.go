package handlers

import (
	"net/http"
	"time"

	"github.com/warebase/server/internal/domain/catalog"
)

// CatalogHandler covers categories, suppliers, and items.
type CatalogHandler struct {
	Service *catalog.Service
	Env     string
}

func NewCatalogHandler(service *catalog.Service, env string) *CatalogHandler {
	return &CatalogHandler{Service: service, Env: env}
}

type categoryResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Code           string    `json:"code"`
	Description    string    `json:"description"`
	OrganizationID int64     `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type supplierResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Code           string    `json:"code"`
	Description    string    `json:"description"`
	ContactName    string    `json:"contact_name"`
	ContactEmail   string    `json:"contact_email"`
	ContactPhone   string    `json:"contact_phone"`
	OrganizationID int64     `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type itemResponse struct {
	ID              int64     `json:"id"`
	SKU             string    `json:"sku"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Barcode         string    `json:"barcode"`
	CategoryID      *int64    `json:"category_id"`
	SupplierID      *int64    `json:"supplier_id"`
	Length          float64   `json:"length"`
	Width           float64   `json:"width"`
	Height          float64   `json:"height"`
	Weight          float64   `json:"weight"`
	ReorderPoint    int64     `json:"reorder_point"`
	ReorderQuantity int64     `json:"reorder_quantity"`
	OrganizationID  int64     `json:"organization_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toCategoryResponse(c catalog.Category) categoryResponse {
	return categoryResponse{
		ID:             c.ID,
		Name:           c.Name,
		Code:           c.Code,
		Description:    c.Description,
		OrganizationID: c.OrganizationID,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toSupplierResponse(s catalog.Supplier) supplierResponse {
	return supplierResponse{
		ID:             s.ID,
		Name:           s.Name,
		Code:           s.Code,
		Description:    s.Description,
		ContactName:    s.ContactName,
		ContactEmail:   s.ContactEmail,
		ContactPhone:   s.ContactPhone,
		OrganizationID: s.OrganizationID,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func toItemResponse(item catalog.Item) itemResponse {
	return itemResponse{
		ID:              item.ID,
		SKU:             item.SKU,
		Name:            item.Name,
		Description:     item.Description,
		Barcode:         item.Barcode,
		CategoryID:      item.CategoryID,
		SupplierID:      item.SupplierID,
		Length:          item.Length,
		Width:           item.Width,
		Height:          item.Height,
		Weight:          item.Weight,
		ReorderPoint:    item.ReorderPoint,
		ReorderQuantity: item.ReorderQuantity,
		OrganizationID:  item.OrganizationID,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	orgID, err := queryInt64(r, "organization_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	list, err := h.Service.ListCategories(r.Context(), catalog.CategoryFilters{
		OrganizationID: orgID,
		Query:          queryString(r, "q"),
	})
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items := make([]categoryResponse, 0, len(list))
	for _, c := range list {
		items = append(items, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	c, err := h.Service.GetCategory(r.Context(), id)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(*c))
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var params catalog.CreateCategoryParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	c, err := h.Service.CreateCategory(r.Context(), params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(*c))
}

func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	var params catalog.UpdateCategoryParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	c, err := h.Service.UpdateCategory(r.Context(), id, params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(*c))
}

func (h *CatalogHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	orgID, err := queryInt64(r, "organization_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	list, err := h.Service.ListSuppliers(r.Context(), catalog.SupplierFilters{
		OrganizationID: orgID,
		Query:          queryString(r, "q"),
	})
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items := make([]supplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, toSupplierResponse(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *CatalogHandler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	s, err := h.Service.GetSupplier(r.Context(), id)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toSupplierResponse(*s))
}

func (h *CatalogHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var params catalog.CreateSupplierParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	s, err := h.Service.CreateSupplier(r.Context(), params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toSupplierResponse(*s))
}

func (h *CatalogHandler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	var params catalog.UpdateSupplierParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	s, err := h.Service.UpdateSupplier(r.Context(), id, params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toSupplierResponse(*s))
}

func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	orgID, err := queryInt64(r, "organization_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	categoryID, err := queryInt64(r, "category_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	supplierID, err := queryInt64(r, "supplier_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	list, err := h.Service.ListItems(r.Context(), catalog.ItemFilters{
		OrganizationID: orgID,
		CategoryID:     categoryID,
		SupplierID:     supplierID,
		Query:          queryString(r, "q"),
	})
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items := make([]itemResponse, 0, len(list))
	for _, item := range list {
		items = append(items, toItemResponse(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	item, err := h.Service.GetItem(r.Context(), id)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(*item))
}

func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var params catalog.CreateItemParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	item, err := h.Service.CreateItem(r.Context(), params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(*item))
}

func (h *CatalogHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	var params catalog.UpdateItemParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	item, err := h.Service.UpdateItem(r.Context(), id, params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(*item))
}
