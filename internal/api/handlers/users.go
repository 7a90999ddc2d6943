package handlers

import (
	"net/http"
	"time"

	"github.com/warebase/server/internal/domain/users"
)

type UsersHandler struct {
	Service *users.Service
	Env     string
}

func NewUsersHandler(service *users.Service, env string) *UsersHandler {
	return &UsersHandler{Service: service, Env: env}
}

// userResponse never carries the password hash.
type userResponse struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	Active         bool      `json:"active"`
	OrganizationID *int64    `json:"organization_id"`
	RoleID         *int64    `json:"role_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toUserResponse(user users.User) userResponse {
	return userResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		FullName:       user.FullName,
		Active:         user.Active,
		OrganizationID: user.OrganizationID,
		RoleID:         user.RoleID,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, err := queryInt64(r, "organization_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	roleID, err := queryInt64(r, "role_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	active, err := queryBool(r, "active")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	filters := users.Filters{
		OrganizationID: orgID,
		RoleID:         roleID,
		Active:         active,
		Query:          queryString(r, "q"),
	}

	list, err := h.Service.List(r.Context(), filters)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items := make([]userResponse, 0, len(list))
	for _, user := range list {
		items = append(items, toUserResponse(user))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	user, err := h.Service.Get(r.Context(), id)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params users.CreateParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	user, err := h.Service.Create(r.Context(), params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(*user))
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	var params users.UpdateParams
	if err := decodeJSON(r, &params); err != nil {
		badRequest(w, r, err, h.Env)
		return
	}

	user, err := h.Service.Update(r.Context(), id, params)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*user))
}
