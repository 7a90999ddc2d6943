//go:build integration

package postgres

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/warebase/server/internal/auth"
	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/inventory"
	"github.com/warebase/server/internal/domain/orders"
	"github.com/warebase/server/internal/domain/organizations"
	"github.com/warebase/server/internal/domain/users"
	"github.com/warebase/server/internal/domain/warehouses"
)

var (
	sharedOnce      sync.Once
	sharedInitErr   error
	sharedContainer *tcpostgres.PostgresContainer
	sharedPool      *pgxpool.Pool
)

const sharedContainerName = "warebase-storage-db"

func TestMain(m *testing.M) {
	code := m.Run()
	if sharedPool != nil {
		sharedPool.Close()
	}
	os.Exit(code)
}

func setupRepository(t *testing.T) *Repository {
	t.Helper()

	sharedOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		_ = os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

		container, err := tcpostgres.Run(
			ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("warebase"),
			tcpostgres.WithUsername("warebase"),
			tcpostgres.WithPassword("warebase_dev"),
			testcontainers.WithReuseByName(sharedContainerName),
		)
		if err != nil {
			sharedInitErr = err
			return
		}
		sharedContainer = container

		dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedInitErr = err
			return
		}

		if err := migrateWithRetry(dbURL, migrationsDir(), 10*time.Second); err != nil {
			sharedInitErr = err
			return
		}

		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			sharedInitErr = err
			return
		}
		sharedPool = pool
	})
	require.NoError(t, sharedInitErr)

	resetDatabase(t, sharedPool)

	repo, err := NewRepository(sharedPool)
	require.NoError(t, err)
	return repo
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "migrations")
}

func migrateWithRetry(dbURL, migrationsPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		err := MigrateUp(dbURL, migrationsPath)
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func resetDatabase(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, `
TRUNCATE TABLE sessions, activity_logs, shipments, order_items, orders,
               inventory_transactions, inventory_levels, items, suppliers,
               categories, bins, bin_types, zones, warehouses, users, roles,
               organizations
RESTART IDENTITY CASCADE
`)
	require.NoError(t, err)
}

// seedStockLocation creates the reference chain an inventory row needs:
// organization, warehouse, zone, bin, and one item.
func seedStockLocation(t *testing.T, repo *Repository) (catalog.Item, warehouses.Bin) {
	t.Helper()
	ctx := context.Background()

	org, err := repo.Organizations().Create(ctx, organizations.Organization{Name: "Acme Logistics", Active: true})
	require.NoError(t, err)

	wh, err := repo.Warehouses().Create(ctx, warehouses.Warehouse{
		Name: "Central", Code: "WH-1", Address: "1 Dock Rd", OrganizationID: org.ID,
	})
	require.NoError(t, err)

	zone, err := repo.Zones().Create(ctx, warehouses.Zone{Name: "Receiving", Code: "RCV", WarehouseID: wh.ID})
	require.NoError(t, err)

	bin, err := repo.Bins().Create(ctx, warehouses.Bin{Name: "A-01-01", Code: "A0101", ZoneID: zone.ID, Active: true})
	require.NoError(t, err)

	item, err := repo.Items().Create(ctx, catalog.Item{SKU: "WID-001", Name: "Widget", OrganizationID: org.ID})
	require.NoError(t, err)

	return *item, *bin
}

func TestInventoryApply(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	item, bin := seedStockLocation(t, repo)

	first, firstTx, err := repo.Inventory().Apply(ctx, inventory.Change{
		ItemID: item.ID, BinID: bin.ID, QuantityDelta: 50, Delta: 50,
		Type: inventory.TypeReceiving, Reference: "RCV-1",
	})
	require.NoError(t, err)
	require.Equal(t, int64(50), first.Quantity)
	require.Equal(t, int64(50), firstTx.Delta)

	second, _, err := repo.Inventory().Apply(ctx, inventory.Change{
		ItemID: item.ID, BinID: bin.ID, QuantityDelta: 30, Delta: 30,
		Type: inventory.TypeReceiving, Reference: "RCV-2",
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "second apply should merge into the same level row")
	require.Equal(t, int64(80), second.Quantity)

	levels, err := repo.Inventory().List(ctx, inventory.LevelFilters{})
	require.NoError(t, err)
	require.Len(t, levels, 1)

	ledger, err := repo.InventoryTransactions().List(ctx, inventory.TransactionFilters{})
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	require.Equal(t, int64(30), ledger[0].Delta, "ledger lists newest entries first")

	total, err := repo.Inventory().TotalOnHandByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, int64(80), total)
}

func TestOrderCreateWithItems(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	item, _ := seedStockLocation(t, repo)

	order, lines, err := repo.Orders().CreateWithItems(ctx,
		orders.Order{
			OrderNumber: "ORD-100", CustomerName: "Dana", Status: orders.StatusPending,
			OrganizationID: item.OrganizationID,
		},
		[]orders.OrderItem{
			{ItemID: item.ID, Quantity: 2, Status: orders.ItemStatusPending},
			{ItemID: item.ID, Quantity: 3, Status: orders.ItemStatusPending},
		},
	)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	for _, line := range lines {
		require.Equal(t, order.ID, line.OrderID)
	}

	_, _, err = repo.Orders().CreateWithItems(ctx,
		orders.Order{
			OrderNumber: "ORD-100", CustomerName: "Eve", Status: orders.StatusPending,
			OrganizationID: item.OrganizationID,
		},
		[]orders.OrderItem{{ItemID: item.ID, Quantity: 1, Status: orders.ItemStatusPending}},
	)
	require.ErrorIs(t, err, orders.ErrOrderNumberTaken)

	var itemCount int
	require.NoError(t, sharedPool.QueryRow(ctx, `SELECT COUNT(*) FROM order_items`).Scan(&itemCount))
	require.Equal(t, 2, itemCount, "failed create must not leave orphan lines")
}

func TestUserUniqueUsername(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	_, err := repo.Users().Create(ctx, users.User{
		Username: "jdoe", PasswordHash: "x", Email: "j@example.com", FullName: "Jane Doe", Active: true,
	})
	require.NoError(t, err)

	_, err = repo.Users().Create(ctx, users.User{
		Username: "jdoe", PasswordHash: "y", Email: "other@example.com", FullName: "Other", Active: true,
	})
	require.ErrorIs(t, err, users.ErrUsernameTaken)
}

func TestItemSKUUniquePerOrganization(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	org1, err := repo.Organizations().Create(ctx, organizations.Organization{Name: "Org One", Active: true})
	require.NoError(t, err)
	org2, err := repo.Organizations().Create(ctx, organizations.Organization{Name: "Org Two", Active: true})
	require.NoError(t, err)

	_, err = repo.Items().Create(ctx, catalog.Item{SKU: "WID-001", Name: "Widget", OrganizationID: org1.ID})
	require.NoError(t, err)

	_, err = repo.Items().Create(ctx, catalog.Item{SKU: "WID-001", Name: "Widget", OrganizationID: org1.ID})
	require.ErrorIs(t, err, catalog.ErrSKUTaken)

	_, err = repo.Items().Create(ctx, catalog.Item{SKU: "WID-001", Name: "Widget", OrganizationID: org2.ID})
	require.NoError(t, err, "same SKU in another organization is allowed")
}

func TestSessionLifecycle(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	user, err := repo.Users().Create(ctx, users.User{
		Username: "jdoe", PasswordHash: "x", Email: "j@example.com", FullName: "Jane Doe", Active: true,
	})
	require.NoError(t, err)

	created, err := repo.Sessions().CreateSession(ctx, auth.Session{
		UserID: user.ID, TokenHash: "hash-1", ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	_, err = repo.Sessions().CreateSession(ctx, auth.Session{
		UserID: user.ID, TokenHash: "hash-2", ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	removed, err := repo.Sessions().DeleteExpiredSessions(ctx, time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	_, err = repo.Sessions().GetSessionByTokenHash(ctx, "hash-1")
	require.True(t, errors.Is(err, auth.ErrSessionNotFound))

	fresh, err := repo.Sessions().GetSessionByTokenHash(ctx, "hash-2")
	require.NoError(t, err)
	require.Equal(t, user.ID, fresh.UserID)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := repo.WithTx(ctx, func(ctx context.Context, txRepo interface {
		Organizations() organizations.Repository
	}) error {
		_, err := txRepo.Organizations().Create(ctx, organizations.Organization{Name: "Ghost", Active: true})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	orgs, err := repo.Organizations().List(ctx, organizations.Filters{})
	require.NoError(t, err)
	require.Empty(t, orgs, "rolled-back write must not be visible")
}
