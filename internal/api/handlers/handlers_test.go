package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/warebase/server/internal/auth"
	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/inventory"
	"github.com/warebase/server/internal/domain/orders"
	"github.com/warebase/server/internal/domain/organizations"
	"github.com/warebase/server/internal/domain/users"
	"github.com/warebase/server/internal/domain/warehouses"
	"github.com/warebase/server/internal/reports"
	"github.com/warebase/server/internal/storage/memory"
)

// fixture wires the domain services over the in-memory engine. Handlers under
// test sit on real services, not mocks; tests seed whatever rows they need.
type fixture struct {
	repo       *memory.Repository
	orgs       *organizations.Service
	users      *users.Service
	warehouses *warehouses.Service
	catalog    *catalog.Service
	inventory  *inventory.Service
	orders     *orders.Service
	reports    *reports.Service
	sessions   *auth.SessionManager
	tokens     *auth.JWTManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := memory.NewRepository()
	logger := zerolog.Nop()

	return &fixture{
		repo:       repo,
		orgs:       organizations.NewService(repo.Organizations(), nil, logger),
		users:      users.NewService(repo.Users(), repo.Organizations(), repo.Roles(), nil, logger),
		warehouses: warehouses.NewService(repo.Warehouses(), repo.Zones(), repo.BinTypes(), repo.Bins(), repo.Organizations(), nil, logger),
		catalog:    catalog.NewService(repo.Categories(), repo.Suppliers(), repo.Items(), repo.Organizations(), nil, logger),
		inventory:  inventory.NewService(repo.Inventory(), repo.InventoryTransactions(), repo.Items(), repo.Bins(), nil, nil, logger),
		orders:     orders.NewService(repo.Orders(), repo.OrderItems(), repo.Items(), repo.Organizations(), nil, logger),
		reports:    reports.NewService(repo),
		sessions:   auth.NewSessionManager(repo.Sessions(), time.Hour),
		tokens:     auth.NewJWTManager("handlers-test-secret", time.Hour, "warebase"),
	}
}

func (f *fixture) seedOrg(t *testing.T, name string) organizations.Organization {
	t.Helper()
	org, err := f.orgs.Create(context.Background(), organizations.CreateParams{Name: name})
	require.NoError(t, err)
	return *org
}

func (f *fixture) seedBin(t *testing.T, orgID int64, code string) warehouses.Bin {
	t.Helper()
	ctx := context.Background()

	warehouse, err := f.warehouses.CreateWarehouse(ctx, warehouses.CreateWarehouseParams{
		Name:           "Main " + code,
		Code:           "WH-" + code,
		OrganizationID: orgID,
	})
	require.NoError(t, err)

	zone, err := f.warehouses.CreateZone(ctx, warehouses.CreateZoneParams{
		Name:        "Zone " + code,
		Code:        "Z-" + code,
		WarehouseID: warehouse.ID,
	})
	require.NoError(t, err)

	bin, err := f.warehouses.CreateBin(ctx, warehouses.CreateBinParams{
		Name:   "Bin " + code,
		Code:   code,
		ZoneID: zone.ID,
	})
	require.NoError(t, err)
	return *bin
}

func (f *fixture) seedItem(t *testing.T, orgID int64, sku string) catalog.Item {
	t.Helper()
	item, err := f.catalog.CreateItem(context.Background(), catalog.CreateItemParams{
		SKU:            sku,
		Name:           "Item " + sku,
		OrganizationID: orgID,
	})
	require.NoError(t, err)
	return *item
}

func (f *fixture) seedUser(t *testing.T, username, password string) users.User {
	t.Helper()
	user, err := f.users.Create(context.Background(), users.CreateParams{
		Username: username,
		Password: password,
		Email:    username + "@example.com",
		FullName: "Test " + username,
	})
	require.NoError(t, err)
	return *user
}
