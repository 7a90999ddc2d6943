package handlers

import (
	"net/http"
	"time"

	"github.com/warebase/server/internal/domain/shipments"
)

type ShipmentsHandler struct {
	Service *shipments.Service
	Env     string
}

func NewShipmentsHandler(service *shipments.Service, env string) *ShipmentsHandler {
	return &ShipmentsHandler{Service: service, Env: env}
}

type shipmentResponse struct {
	ID             int64     `json:"id"`
	OrderID        int64     `json:"order_id"`
	Carrier        string    `json:"carrier"`
	TrackingNumber string    `json:"tracking_number"`
	Cost           float64   `json:"cost"`
	Weight         float64   `json:"weight"`
	Length         float64   `json:"length"`
	Width          float64   `json:"width"`
	Height         float64   `json:"height"`
	LabelURL       string    `json:"label_url"`
	Status         string    `json:"status"`
	CreatedBy      *int64    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toShipmentResponse(s shipments.Shipment) shipmentResponse {
	return shipmentResponse{
		ID:             s.ID,
		OrderID:        s.OrderID,
		Carrier:        s.Carrier,
		TrackingNumber: s.TrackingNumber,
		Cost:           s.Cost,
		Weight:         s.Weight,
		Length:         s.Length,
		Width:          s.Width,
		Height:         s.Height,
		LabelURL:       s.LabelURL,
		Status:         s.Status,
		CreatedBy:      s.CreatedBy,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func (h *ShipmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	orderID, err := queryInt64(r, "order_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	list, err := h.Service.List(r.Context(), shipments.Filters{
		OrderID: orderID,
		Status:  queryString(r, "status"),
		Carrier: queryString(r, "carrier"),
	})
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items := make([]shipmentResponse, 0, len(list))
	for _, s := range list {
		items = append(items, toShipmentResponse(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *ShipmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	s, err := h.Service.Get(r.Context(), id)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toShipmentResponse(*s))
}

func (h *ShipmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params shipments.CreateParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	s, err := h.Service.Create(r.Context(), params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toShipmentResponse(*s))
}

func (h *ShipmentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	var params shipments.UpdateParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	s, err := h.Service.Update(r.Context(), id, params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toShipmentResponse(*s))
}
