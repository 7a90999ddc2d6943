package handlers

import (
	"net/http"
	"time"

	"github.com/warebase/server/internal/domain/roles"
)

type RolesHandler struct {
	Service *roles.Service
	Env     string
}

func NewRolesHandler(service *roles.Service, env string) *RolesHandler {
	return &RolesHandler{Service: service, Env: env}
}

type roleResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	Scope       string    `json:"scope"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toRoleResponse(role roles.Role) roleResponse {
	permissions := role.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	return roleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Permissions: permissions,
		Scope:       role.Scope,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}

func (h *RolesHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := roles.Filters{
		Scope: queryString(r, "scope"),
		Query: queryString(r, "q"),
	}

	list, err := h.Service.List(r.Context(), filters)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items := make([]roleResponse, 0, len(list))
	for _, role := range list {
		items = append(items, toRoleResponse(role))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *RolesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	role, err := h.Service.Get(r.Context(), id)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toRoleResponse(*role))
}

func (h *RolesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params roles.CreateParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	role, err := h.Service.Create(r.Context(), params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toRoleResponse(*role))
}

func (h *RolesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	var params roles.UpdateParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	role, err := h.Service.Update(r.Context(), id, params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toRoleResponse(*role))
}
