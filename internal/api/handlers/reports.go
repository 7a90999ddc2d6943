package handlers

import (
	"fmt"
	"net/http"

	"github.com/warebase/server/internal/reports"
)

type ReportsHandler struct {
	Service *reports.Service
	Env     string
}

func NewReportsHandler(service *reports.Service, env string) *ReportsHandler {
	return &ReportsHandler{Service: service, Env: env}
}

// InventoryCSV streams the inventory export for one organization as a CSV
// attachment.
func (h *ReportsHandler) InventoryCSV(w http.ResponseWriter, r *http.Request) {
	orgID, err := queryInt64(r, "organization_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	if orgID == nil {
		mapError(w, r, missingParam("organization_id"), h.Env)
		return
	}

	payload, err := h.Service.InventoryCSV(r.Context(), *orgID)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "inventory.csv"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (h *ReportsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	orgID, err := queryInt64(r, "organization_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	if orgID == nil {
		mapError(w, r, missingParam("organization_id"), h.Env)
		return
	}

	stats, err := h.Service.Stats(r.Context(), *orgID)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
