package handlers

import (
	"net/http"
	"time"

	"github.com/warebase/server/internal/domain/warehouses"
)

// WarehousesHandler covers the physical-layout resources: warehouses, zones,
// bin types, and bins.
type WarehousesHandler struct {
	Service *warehouses.Service
	Env     string
}

func NewWarehousesHandler(service *warehouses.Service, env string) *WarehousesHandler {
	return &WarehousesHandler{Service: service, Env: env}
}

type warehouseResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Code           string    `json:"code"`
	Address        string    `json:"address"`
	OrganizationID int64     `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type zoneResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	WarehouseID int64     `json:"warehouse_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type binTypeResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	MaxWeight      float64   `json:"max_weight"`
	MaxVolume      float64   `json:"max_volume"`
	Length         float64   `json:"length"`
	Width          float64   `json:"width"`
	Height         float64   `json:"height"`
	OrganizationID int64     `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type binResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	ZoneID    int64     `json:"zone_id"`
	BinTypeID *int64    `json:"bin_type_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toWarehouseResponse(wh warehouses.Warehouse) warehouseResponse {
	return warehouseResponse{
		ID:             wh.ID,
		Name:           wh.Name,
		Code:           wh.Code,
		Address:        wh.Address,
		OrganizationID: wh.OrganizationID,
		CreatedAt:      wh.CreatedAt,
		UpdatedAt:      wh.UpdatedAt,
	}
}

func toZoneResponse(zone warehouses.Zone) zoneResponse {
	return zoneResponse{
		ID:          zone.ID,
		Name:        zone.Name,
		Code:        zone.Code,
		WarehouseID: zone.WarehouseID,
		CreatedAt:   zone.CreatedAt,
		UpdatedAt:   zone.UpdatedAt,
	}
}

func toBinTypeResponse(bt warehouses.BinType) binTypeResponse {
	return binTypeResponse{
		ID:             bt.ID,
		Name:           bt.Name,
		MaxWeight:      bt.MaxWeight,
		MaxVolume:      bt.MaxVolume,
		Length:         bt.Length,
		Width:          bt.Width,
		Height:         bt.Height,
		OrganizationID: bt.OrganizationID,
		CreatedAt:      bt.CreatedAt,
		UpdatedAt:      bt.UpdatedAt,
	}
}

func toBinResponse(bin warehouses.Bin) binResponse {
	return binResponse{
		ID:        bin.ID,
		Name:      bin.Name,
		Code:      bin.Code,
		ZoneID:    bin.ZoneID,
		BinTypeID: bin.BinTypeID,
		Active:    bin.Active,
		CreatedAt: bin.CreatedAt,
		UpdatedAt: bin.UpdatedAt,
	}
}

func (h *WarehousesHandler) ListWarehouses(w http.ResponseWriter, r *http.Request) {
	orgID, err := queryInt64(r, "organization_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	list, err := h.Service.ListWarehouses(r.Context(), warehouses.WarehouseFilters{
		OrganizationID: orgID,
		Query:          queryString(r, "q"),
	})
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items := make([]warehouseResponse, 0, len(list))
	for _, wh := range list {
		items = append(items, toWarehouseResponse(wh))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *WarehousesHandler) GetWarehouse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	wh, err := h.Service.GetWarehouse(r.Context(), id)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toWarehouseResponse(*wh))
}

func (h *WarehousesHandler) CreateWarehouse(w http.ResponseWriter, r *http.Request) {
	var params warehouses.CreateWarehouseParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	wh, err := h.Service.CreateWarehouse(r.Context(), params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toWarehouseResponse(*wh))
}

func (h *WarehousesHandler) UpdateWarehouse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	var params warehouses.UpdateWarehouseParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	wh, err := h.Service.UpdateWarehouse(r.Context(), id, params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toWarehouseResponse(*wh))
}

func (h *WarehousesHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	warehouseID, err := queryInt64(r, "warehouse_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	list, err := h.Service.ListZones(r.Context(), warehouses.ZoneFilters{
		WarehouseID: warehouseID,
		Query:       queryString(r, "q"),
	})
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items := make([]zoneResponse, 0, len(list))
	for _, zone := range list {
		items = append(items, toZoneResponse(zone))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *WarehousesHandler) GetZone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	zone, err := h.Service.GetZone(r.Context(), id)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toZoneResponse(*zone))
}

func (h *WarehousesHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	var params warehouses.CreateZoneParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	zone, err := h.Service.CreateZone(r.Context(), params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toZoneResponse(*zone))
}

func (h *WarehousesHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	var params warehouses.UpdateZoneParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	zone, err := h.Service.UpdateZone(r.Context(), id, params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toZoneResponse(*zone))
}

func (h *WarehousesHandler) ListBinTypes(w http.ResponseWriter, r *http.Request) {
	orgID, err := queryInt64(r, "organization_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	list, err := h.Service.ListBinTypes(r.Context(), warehouses.BinTypeFilters{
		OrganizationID: orgID,
		Query:          queryString(r, "q"),
	})
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items := make([]binTypeResponse, 0, len(list))
	for _, bt := range list {
		items = append(items, toBinTypeResponse(bt))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *WarehousesHandler) GetBinType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	bt, err := h.Service.GetBinType(r.Context(), id)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toBinTypeResponse(*bt))
}

func (h *WarehousesHandler) CreateBinType(w http.ResponseWriter, r *http.Request) {
	var params warehouses.CreateBinTypeParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	bt, err := h.Service.CreateBinType(r.Context(), params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toBinTypeResponse(*bt))
}

func (h *WarehousesHandler) UpdateBinType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	var params warehouses.UpdateBinTypeParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	bt, err := h.Service.UpdateBinType(r.Context(), id, params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toBinTypeResponse(*bt))
}

func (h *WarehousesHandler) ListBins(w http.ResponseWriter, r *http.Request) {
	zoneID, err := queryInt64(r, "zone_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	binTypeID, err := queryInt64(r, "bin_type_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	active, err := queryBool(r, "active")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	list, err := h.Service.ListBins(r.Context(), warehouses.BinFilters{
		ZoneID:    zoneID,
		BinTypeID: binTypeID,
		Active:    active,
		Query:     queryString(r, "q"),
	})
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items := make([]binResponse, 0, len(list))
	for _, bin := range list {
		items = append(items, toBinResponse(bin))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *WarehousesHandler) GetBin(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	bin, err := h.Service.GetBin(r.Context(), id)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toBinResponse(*bin))
}

func (h *WarehousesHandler) CreateBin(w http.ResponseWriter, r *http.Request) {
	var params warehouses.CreateBinParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	bin, err := h.Service.CreateBin(r.Context(), params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toBinResponse(*bin))
}

func (h *WarehousesHandler) UpdateBin(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	var params warehouses.UpdateBinParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	bin, err := h.Service.UpdateBin(r.Context(), id, params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toBinResponse(*bin))
}
