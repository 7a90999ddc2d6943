package handlers

import (
	"net/http"
	"time"

	"github.com/warebase/server/internal/domain/organizations"
)

type OrganizationsHandler struct {
	Service *organizations.Service
	Env     string
}

func NewOrganizationsHandler(service *organizations.Service, env string) *OrganizationsHandler {
	return &OrganizationsHandler{Service: service, Env: env}
}

type organizationResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	ParentID    *int64    `json:"parent_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toOrganizationResponse(org organizations.Organization) organizationResponse {
	return organizationResponse{
		ID:          org.ID,
		Name:        org.Name,
		Description: org.Description,
		Active:      org.Active,
		ParentID:    org.ParentID,
		CreatedAt:   org.CreatedAt,
		UpdatedAt:   org.UpdatedAt,
	}
}

func (h *OrganizationsHandler) List(w http.ResponseWriter, r *http.Request) {
	parentID, err := queryInt64(r, "parent_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	active, err := queryBool(r, "active")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	filters := organizations.Filters{
		ParentID: parentID,
		Active:   active,
		Query:    queryString(r, "q"),
	}

	list, err := h.Service.List(r.Context(), filters)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items := make([]organizationResponse, 0, len(list))
	for _, org := range list {
		items = append(items, toOrganizationResponse(org))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *OrganizationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	org, err := h.Service.Get(r.Context(), id)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toOrganizationResponse(*org))
}

func (h *OrganizationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params organizations.CreateParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	org, err := h.Service.Create(r.Context(), params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toOrganizationResponse(*org))
}

func (h *OrganizationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	var params organizations.UpdateParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	org, err := h.Service.Update(r.Context(), id, params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toOrganizationResponse(*org))
}
