package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/warebase/server/internal/audit"
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
	"github.com/warebase/server/internal/email"
	"github.com/warebase/server/internal/reports"
	"github.com/warebase/server/internal/storage"
	"github.com/warebase/server/internal/storage/memory"
	"github.com/warebase/server/internal/storage/postgres"
)

// app holds the wired application: storage engine, domain services, and the
// auth managers. Every subcommand that touches data builds one.
type app struct {
	cfg    config.Config
	logger zerolog.Logger

	repo storage.Repository
	pool *pgxpool.Pool // nil on the memory engine

	organizations *organizations.Service
	roles         *roles.Service
	users         *users.Service
	warehouses    *warehouses.Service
	catalog       *catalog.Service
	inventory     *inventory.Service
	orders        *orders.Service
	shipments     *shipments.Service
	activity      *activity.Service
	reports       *reports.Service

	sessions *auth.SessionManager
	tokens   *auth.JWTManager
	email    *email.Service
}

// newApp opens the configured storage engine and wires the services over it.
func newApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("parse database url: %w", err)
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConnections)
		poolConfig.MinConns = int32(cfg.Database.MaxIdle)

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		repo, err := postgres.NewRepository(pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		a.pool = pool
		a.repo = repo
	case config.StoreDriverMemory:
		a.repo = memory.NewRepository()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	emailService, err := email.NewService(cfg.Email, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("email service: %w", err)
	}
	a.email = emailService

	recorder := audit.NewRecorder(a.repo.Activity(), logger)

	a.organizations = organizations.NewService(a.repo.Organizations(), recorder, logger)
	a.roles = roles.NewService(a.repo.Roles(), recorder, logger)
	a.users = users.NewService(a.repo.Users(), a.repo.Organizations(), a.repo.Roles(), recorder, logger)
	a.warehouses = warehouses.NewService(a.repo.Warehouses(), a.repo.Zones(), a.repo.BinTypes(), a.repo.Bins(), a.repo.Organizations(), recorder, logger)
	a.catalog = catalog.NewService(a.repo.Categories(), a.repo.Suppliers(), a.repo.Items(), a.repo.Organizations(), recorder, logger)
	a.inventory = inventory.NewService(a.repo.Inventory(), a.repo.InventoryTransactions(), a.repo.Items(), a.repo.Bins(), emailService, recorder, logger)
	a.orders = orders.NewService(a.repo.Orders(), a.repo.OrderItems(), a.repo.Items(), a.repo.Organizations(), recorder, logger)
	a.shipments = shipments.NewService(a.repo.Shipments(), a.orders, emailService, recorder, logger)
	a.activity = activity.NewService(a.repo.Activity())
	a.reports = reports.NewService(a.repo)

	a.sessions = auth.NewSessionManager(a.repo.Sessions(), cfg.Session.TTL)
	a.tokens = auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, "warebase")

	return a, nil
}

func (a *app) Close() {
	if a.repo != nil {
		a.repo.Close()
	}
}

// bootstrapAdmin ensures the configured admin account exists: a global
// Administrator role carrying the wildcard permission and a user attached to
// it. Idempotent; an existing username short-circuits.
func (a *app) bootstrapAdmin(ctx context.Context) error {
	bootstrap := a.cfg.AdminBootstrap
	if bootstrap.Username == "" || bootstrap.Password == "" || bootstrap.Email == "" {
		a.logger.Warn().Msg("admin bootstrap env vars not fully set; skipping")
		return nil
	}

	if _, err := a.repo.Users().GetByUsername(ctx, bootstrap.Username); err == nil {
		return nil
	} else if !errors.Is(err, users.ErrNotFound) {
		return fmt.Errorf("check admin user: %w", err)
	}

	adminRole, err := a.findOrCreateAdminRole(ctx)
	if err != nil {
		return err
	}

	if _, err := a.users.Create(ctx, users.CreateParams{
		Username: bootstrap.Username,
		Password: bootstrap.Password,
		Email:    bootstrap.Email,
		FullName: "Administrator",
		RoleID:   &adminRole.ID,
	}); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	// Redact the email in production to keep PII out of logs.
	if a.cfg.Environment == "production" {
		a.logger.Info().Str("username", bootstrap.Username).Msg("bootstrapped admin user")
	} else {
		a.logger.Info().Str("username", bootstrap.Username).Str("email", bootstrap.Email).Msg("bootstrapped admin user")
	}
	return nil
}

func (a *app) findOrCreateAdminRole(ctx context.Context) (*roles.Role, error) {
	existing, err := a.roles.List(ctx, roles.Filters{Scope: roles.ScopeGlobal})
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	for i := range existing {
		if existing[i].Name == "Administrator" {
			return &existing[i], nil
		}
	}

	role, err := a.roles.Create(ctx, roles.CreateParams{
		Name:        "Administrator",
		Description: "Full access to every resource",
		Permissions: []string{"all"},
		Scope:       roles.ScopeGlobal,
	})
	if err != nil {
		return nil, fmt.Errorf("create admin role: %w", err)
	}
	return role, nil
}
