package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/warebase/server/internal/api/problem"
	"github.com/warebase/server/internal/domain/activity"
	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/inventory"
	"github.com/warebase/server/internal/domain/orders"
	"github.com/warebase/server/internal/domain/organizations"
	"github.com/warebase/server/internal/domain/roles"
	"github.com/warebase/server/internal/domain/shipments"
	"github.com/warebase/server/internal/domain/users"
	"github.com/warebase/server/internal/domain/warehouses"
	"github.com/warebase/server/internal/validation"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads the request body into dst. Unknown fields are rejected so
// typos in client payloads fail loudly instead of being silently dropped.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func pathID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(key))
	if raw == "" {
		return 0, validation.FieldError{Field: key, Message: "missing"}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, validation.FieldError{Field: key, Message: "must be a positive integer"}
	}
	return id, nil
}

func queryInt64(r *http.Request, key string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, validation.FieldError{Field: key, Message: "must be an integer"}
	}
	return &value, nil
}

func queryBool(r *http.Request, key string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, validation.FieldError{Field: key, Message: "must be true or false"}
	}
	return &value, nil
}

func queryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func missingParam(key string) error {
	return validation.FieldError{Field: key, Message: "required"}
}

// notFoundSentinels are service errors rendered as 404.
var notFoundSentinels = []error{
	organizations.ErrNotFound,
	roles.ErrNotFound,
	users.ErrNotFound,
	warehouses.ErrWarehouseNotFound,
	warehouses.ErrZoneNotFound,
	warehouses.ErrBinTypeNotFound,
	warehouses.ErrBinNotFound,
	catalog.ErrCategoryNotFound,
	catalog.ErrSupplierNotFound,
	catalog.ErrItemNotFound,
	inventory.ErrNotFound,
	inventory.ErrTransactionNotFound,
	orders.ErrNotFound,
	orders.ErrItemNotFound,
	shipments.ErrNotFound,
	activity.ErrNotFound,
}

// conflictSentinels are uniqueness violations rendered as 400 validation
// problems so clients can correct the offending field and retry.
var conflictSentinels = []error{
	users.ErrUsernameTaken,
	catalog.ErrSKUTaken,
	orders.ErrOrderNumberTaken,
}

// mapError translates service errors into problem responses. Lookup paths
// map reference failures (a create naming a missing parent) to 404 and
// everything unrecognized to 500.
func mapError(w http.ResponseWriter, r *http.Request, err error, env string) {
	if ve, ok := validation.AsError(err); ok {
		errs := make(map[string]interface{}, len(ve.Fields))
		for field, message := range ve.Fields {
			errs[field] = message
		}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Validation failed", err, env,
			problem.WithErrors(errs))
		return
	}

	var fe validation.FieldError
	if errors.As(err, &fe) {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env,
			problem.WithErrors(map[string]interface{}{fe.Field: fe.Message}))
		return
	}

	var ue validation.URLValidationError
	if errors.As(err, &ue) {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Validation failed", err, env,
			problem.WithErrors(map[string]interface{}{ue.Field: ue.Message}))
		return
	}

	for _, sentinel := range conflictSentinels {
		if errors.Is(err, sentinel) {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Validation failed", err, env,
				problem.WithDetail(sentinel.Error()))
			return
		}
	}

	for _, sentinel := range notFoundSentinels {
		if errors.Is(err, sentinel) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, env)
			return
		}
	}

	if errors.Is(err, orders.ErrInvalidTransition) || errors.Is(err, shipments.ErrInvalidTransition) {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid status transition", err, env)
		return
	}

	problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, env)
}

func badRequest(w http.ResponseWriter, r *http.Request, err error, env string) {
	problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, env)
}
