package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

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

func newTestRouter(t *testing.T) http.Handler {
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
	tokens := auth.NewJWTManager("router-test-secret", time.Hour, "warebase")

	cfg := config.Config{
		Environment: "test",
		Session:     config.SessionConfig{CookieName: "warebase_session", TTL: time.Hour},
		RateLimit:   config.RateLimitConfig{PublicPerMinute: 1000, APIPerMinute: 1000, LoginPer15Min: 1000},
	}

	ctx := context.Background()
	adminRole, err := roleService.Create(ctx, roles.CreateParams{Name: "Administrator", Scope: "global", Permissions: []string{"all"}})
	require.NoError(t, err)
	_, err = userService.Create(ctx, users.CreateParams{
		Username: "admin",
		Password: "admin-password-1",
		Email:    "admin@example.com",
		FullName: "Admin",
		RoleID:   &adminRole.ID,
	})
	require.NoError(t, err)

	return NewRouter(Dependencies{
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
		Version:       "test",
	})
}

func loginAs(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()

	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.NotEmpty(t, payload.Token)
	return payload.Token
}

func TestRouterUnauthenticatedRejected(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/items")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "application/problem+json")
}

func TestRouterHealthOpen(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t))
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouterMethodNotAllowed(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t))
	defer server.Close()

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/v1/items", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Allow"), http.MethodGet)
}

func TestRouterAdminCanCreateAndFetch(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t))
	defer server.Close()

	token := loginAs(t, server, "admin", "admin-password-1")

	createBody := []byte(`{"name":"Acme Logistics"}`)
	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/organizations", bytes.NewReader(createBody))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.Equal(t, "Acme Logistics", created.Name)

	getReq, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/v1/organizations/%d", server.URL, created.ID), nil)
	require.NoError(t, err)
	getReq.Header.Set("Authorization", "Bearer "+token)
	getResp, err := http.DefaultClient.Do(getReq)
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)
}

func TestRouterUnknownIDIs404(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t))
	defer server.Close()

	token := loginAs(t, server, "admin", "admin-password-1")

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/v1/warehouses/9999", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouterVersionAndOpenAPI(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t))
	defer server.Close()

	resp, err := http.Get(server.URL + "/version")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	openapiResp, err := http.Get(server.URL + "/openapi.json")
	require.NoError(t, err)
	defer openapiResp.Body.Close()
	require.Equal(t, http.StatusOK, openapiResp.StatusCode)
	require.Contains(t, openapiResp.Header.Get("Content-Type"), "application/json")
}
