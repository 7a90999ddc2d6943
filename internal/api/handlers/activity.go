package handlers

import (
	"net/http"
	"time"

	"github.com/warebase/server/internal/domain/activity"
)

type ActivityHandler struct {
	Service *activity.Service
	Env     string
}

func NewActivityHandler(service *activity.Service, env string) *ActivityHandler {
	return &ActivityHandler{Service: service, Env: env}
}

type activityResponse struct {
	ID             int64          `json:"id"`
	UserID         *int64         `json:"user_id"`
	Action         string         `json:"action"`
	EntityType     string         `json:"entity_type"`
	EntityID       string         `json:"entity_id"`
	OrganizationID *int64         `json:"organization_id"`
	Details        map[string]any `json:"details,omitempty"`
	OccurredAt     time.Time      `json:"occurred_at"`
}

func toActivityResponse(entry activity.Log) activityResponse {
	return activityResponse{
		ID:             entry.ID,
		UserID:         entry.UserID,
		Action:         entry.Action,
		EntityType:     entry.EntityType,
		EntityID:       entry.EntityID,
		OrganizationID: entry.OrganizationID,
		Details:        entry.Details,
		OccurredAt:     entry.OccurredAt,
	}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, err := queryInt64(r, "organization_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	userID, err := queryInt64(r, "user_id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	filters := activity.Filters{
		OrganizationID: orgID,
		UserID:         userID,
		EntityType:     queryString(r, "entity_type"),
		EntityID:       queryString(r, "entity_id"),
		Action:         queryString(r, "action"),
	}

	list, err := h.Service.List(r.Context(), filters)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	items := make([]activityResponse, 0, len(list))
	for _, entry := range list {
		items = append(items, toActivityResponse(entry))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *ActivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}

	entry, err := h.Service.Get(r.Context(), id)
	if err != nil {
		mapError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toActivityResponse(*entry))
}
