// Package integration exercises the full HTTP surface against the in-memory
// storage engine: router, middleware, handlers, and domain services wired the
// same way the server binary wires them.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/warebase/server/internal/api"
	"github.com/warebase/server/internal/auth"
	"github.com/warebase/server/internal/config"
	"github.com/warebase/server/internal/domain/activity"
	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/inventory"
	"github.com/warebase/server/internal/domain/orders"
	"github.com/warebase/server/internal/domain/organizations"
	"github.com/warebase/server/internal/domain/roles"
	"github.com/warebase/server/internal/domain/shipments"
	"github.com/warebase/server/internal/domain/users"
	"github.com/warebase/server/internal/domain/warehouses"
	"github.com/warebase/server/internal/reports"
	"github.com/warebase/server/internal/storage/memory"
)

const (
	adminUsername  = "admin"
	adminPassword  = "admin-password-1"
	viewerUsername = "viewer"
	viewerPassword = "viewer-password-1"
)

type testEnv struct {
	Server *httptest.Server
	OrgID  int64
}

// setupTestEnv wires the router over a fresh memory store and seeds one
// organization, an admin with the wildcard permission, and a read-only
// viewer.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := memory.NewRepository()
	logger := zerolog.Nop()

	orgService := organizations.NewService(repo.Organizations(), nil, logger)
	roleService := roles.NewService(repo.Roles(), nil, logger)
	userService := users.NewService(repo.Users(), repo.Organizations(), repo.Roles(), nil, logger)
	warehouseService := warehouses.NewService(repo.Warehouses(), repo.Zones(), repo.BinTypes(), repo.Bins(), repo.Organizations(), nil, logger)
	catalogService := catalog.NewService(repo.Categories(), repo.Suppliers(), repo.Items(), repo.Organizations(), nil, logger)
	inventoryService := inventory.NewService(repo.Inventory(), repo.InventoryTransactions(), repo.Items(), repo.Bins(), nil, nil, logger)
	orderService := orders.NewService(repo.Orders(), repo.OrderItems(), repo.Items(), repo.Organizations(), nil, logger)
	shipmentService := shipments.NewService(repo.Shipments(), orderService, nil, nil, logger)
	activityService := activity.NewService(repo.Activity())
	reportService := reports.NewService(repo)

	sessions := auth.NewSessionManager(repo.Sessions(), time.Hour)
	tokens := auth.NewJWTManager("integration-test-secret", time.Hour, "warebase")

	cfg := config.Config{
		Environment: "test",
		Session:     config.SessionConfig{CookieName: "warebase_session", TTL: time.Hour},
		RateLimit:   config.RateLimitConfig{PublicPerMinute: 1000, APIPerMinute: 1000, LoginPer15Min: 1000},
	}

	ctx := context.Background()

	org, err := orgService.Create(ctx, organizations.CreateParams{Name: "Acme Logistics"})
	require.NoError(t, err)

	adminRole, err := roleService.Create(ctx, roles.CreateParams{
		Name: "Administrator", Scope: "global", Permissions: []string{"all"},
	})
	require.NoError(t, err)
	viewerRole, err := roleService.Create(ctx, roles.CreateParams{
		Name:  "Viewer",
		Scope: "organization",
		Permissions: []string{
			"organizations:read", "warehouses:read", "items:read",
			"inventory:read", "orders:read", "shipments:read", "reports:read",
		},
	})
	require.NoError(t, err)

	_, err = userService.Create(ctx, users.CreateParams{
		Username: adminUsername, Password: adminPassword,
		Email: "admin@example.com", FullName: "Admin", RoleID: &adminRole.ID,
	})
	require.NoError(t, err)
	_, err = userService.Create(ctx, users.CreateParams{
		Username: viewerUsername, Password: viewerPassword,
		Email: "viewer@example.com", FullName: "Viewer",
		RoleID: &viewerRole.ID, OrganizationID: &org.ID,
	})
	require.NoError(t, err)

	router := api.NewRouter(api.Dependencies{
		Config:        cfg,
		Logger:        logger,
		Repo:          repo,
		Sessions:      sessions,
		Tokens:        tokens,
		Organizations: orgService,
		Roles:         roleService,
		Users:         userService,
		Warehouses:    warehouseService,
		Catalog:       catalogService,
		Inventory:     inventoryService,
		Orders:        orderService,
		Shipments:     shipmentService,
		Activity:      activityService,
		Reports:       reportService,
		Version:       "integration-test",
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{Server: server, OrgID: org.ID}
}

// login authenticates and returns the bearer token.
func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username, "password": password,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.NotEmpty(t, payload.Token)
	return payload.Token
}

// do issues one request. A nil body sends no payload; a non-nil body is JSON
// encoded. The caller owns the response body.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, e.Server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.Server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

// doJSON issues a request, requires the expected status, and decodes the
// response body into out (which may be nil).
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any, wantStatus int, out any) {
	t.Helper()

	resp := e.do(t, method, path, token, body)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, "body: %s", raw)

	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out))
	}
}

type idResponse struct {
	ID int64 `json:"id"`
}

// seedStockLocation creates a warehouse, zone, and bin through the API and
// returns the bin ID.
func (e *testEnv) seedStockLocation(t *testing.T, token, code string) int64 {
	t.Helper()

	var warehouse idResponse
	e.doJSON(t, http.MethodPost, "/api/v1/warehouses", token, map[string]any{
		"name": "Warehouse " + code, "code": "WH-" + code, "organization_id": e.OrgID,
	}, http.StatusCreated, &warehouse)

	var zone idResponse
	e.doJSON(t, http.MethodPost, "/api/v1/zones", token, map[string]any{
		"name": "Zone " + code, "code": "Z-" + code, "warehouse_id": warehouse.ID,
	}, http.StatusCreated, &zone)

	var bin idResponse
	e.doJSON(t, http.MethodPost, "/api/v1/bins", token, map[string]any{
		"name": "Bin " + code, "code": code, "zone_id": zone.ID,
	}, http.StatusCreated, &bin)

	return bin.ID
}

// seedItem creates a catalog item through the API and returns its ID.
func (e *testEnv) seedItem(t *testing.T, token, sku string) int64 {
	t.Helper()

	var item idResponse
	e.doJSON(t, http.MethodPost, "/api/v1/items", token, map[string]any{
		"sku": sku, "name": "Item " + sku, "organization_id": e.OrgID,
	}, http.StatusCreated, &item)
	return item.ID
}
