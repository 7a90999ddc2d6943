package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riverqueue/river"
	"github.com/rs/zerolog"

	"github.com/warebase/server/internal/api/handlers"
	"github.com/warebase/server/internal/api/middleware"
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
	"github.com/warebase/server/internal/metrics"
	"github.com/warebase/server/internal/reports"
	"github.com/warebase/server/internal/storage"
	"github.com/warebase/server/web"
)

// Dependencies carries everything the router needs. The caller owns the
// lifecycle of all of it; the router only wires.
type Dependencies struct {
	Config config.Config
	Logger zerolog.Logger

	Repo     storage.Repository
	Sessions *auth.SessionManager
	Tokens   *auth.JWTManager

	Organizations *organizations.Service
	Roles         *roles.Service
	Users         *users.Service
	Warehouses    *warehouses.Service
	Catalog       *catalog.Service
	Inventory     *inventory.Service
	Orders        *orders.Service
	Shipments     *shipments.Service
	Activity      *activity.Service
	Reports       *reports.Service

	RiverClient *river.Client[pgx.Tx]

	Version   string
	GitCommit string
	BuildDate string
}

// route binds one method+pattern to a handler behind a permission.
type route struct {
	method     string
	pattern    string
	permission string
	handler    http.HandlerFunc
}

// NewRouter assembles the HTTP surface: the versioned API under /api/v1
// behind the permission gate, plus the unauthenticated operational endpoints.
func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	env := cfg.Environment

	authenticator := &middleware.Authenticator{
		Sessions:   deps.Sessions,
		Tokens:     deps.Tokens,
		Users:      deps.Repo.Users(),
		Roles:      deps.Repo.Roles(),
		CookieName: cfg.Session.CookieName,
		Env:        env,
	}

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Sessions, deps.Tokens, cfg.Session.CookieName, !cfg.IsDevelopment(), env)
	orgHandler := handlers.NewOrganizationsHandler(deps.Organizations, env)
	rolesHandler := handlers.NewRolesHandler(deps.Roles, env)
	usersHandler := handlers.NewUsersHandler(deps.Users, env)
	warehousesHandler := handlers.NewWarehousesHandler(deps.Warehouses, env)
	catalogHandler := handlers.NewCatalogHandler(deps.Catalog, env)
	inventoryHandler := handlers.NewInventoryHandler(deps.Inventory, deps.Catalog, deps.Repo.Bins(), env)
	ordersHandler := handlers.NewOrdersHandler(deps.Orders, deps.Catalog, env)
	shipmentsHandler := handlers.NewShipmentsHandler(deps.Shipments, env)
	activityHandler := handlers.NewActivityHandler(deps.Activity, env)
	reportsHandler := handlers.NewReportsHandler(deps.Reports, env)
	healthChecker := handlers.NewHealthChecker(deps.Repo, deps.RiverClient, deps.Version, deps.GitCommit)

	routes := []route{
		{http.MethodGet, "/api/v1/organizations", "organizations:read", orgHandler.List},
		{http.MethodPost, "/api/v1/organizations", "organizations:write", orgHandler.Create},
		{http.MethodGet, "/api/v1/organizations/{id}", "organizations:read", orgHandler.Get},
		{http.MethodPut, "/api/v1/organizations/{id}", "organizations:write", orgHandler.Update},

		{http.MethodGet, "/api/v1/roles", "roles:read", rolesHandler.List},
		{http.MethodPost, "/api/v1/roles", "roles:write", rolesHandler.Create},
		{http.MethodGet, "/api/v1/roles/{id}", "roles:read", rolesHandler.Get},
		{http.MethodPut, "/api/v1/roles/{id}", "roles:write", rolesHandler.Update},

		{http.MethodGet, "/api/v1/users", "users:read", usersHandler.List},
		{http.MethodPost, "/api/v1/users", "users:write", usersHandler.Create},
		{http.MethodGet, "/api/v1/users/{id}", "users:read", usersHandler.Get},
		{http.MethodPut, "/api/v1/users/{id}", "users:write", usersHandler.Update},

		{http.MethodGet, "/api/v1/warehouses", "warehouses:read", warehousesHandler.ListWarehouses},
		{http.MethodPost, "/api/v1/warehouses", "warehouses:write", warehousesHandler.CreateWarehouse},
		{http.MethodGet, "/api/v1/warehouses/{id}", "warehouses:read", warehousesHandler.GetWarehouse},
		{http.MethodPut, "/api/v1/warehouses/{id}", "warehouses:write", warehousesHandler.UpdateWarehouse},

		{http.MethodGet, "/api/v1/zones", "warehouses:read", warehousesHandler.ListZones},
		{http.MethodPost, "/api/v1/zones", "warehouses:write", warehousesHandler.CreateZone},
		{http.MethodGet, "/api/v1/zones/{id}", "warehouses:read", warehousesHandler.GetZone},
		{http.MethodPut, "/api/v1/zones/{id}", "warehouses:write", warehousesHandler.UpdateZone},

		{http.MethodGet, "/api/v1/bin-types", "warehouses:read", warehousesHandler.ListBinTypes},
		{http.MethodPost, "/api/v1/bin-types", "warehouses:write", warehousesHandler.CreateBinType},
		{http.MethodGet, "/api/v1/bin-types/{id}", "warehouses:read", warehousesHandler.GetBinType},
		{http.MethodPut, "/api/v1/bin-types/{id}", "warehouses:write", warehousesHandler.UpdateBinType},

		{http.MethodGet, "/api/v1/bins", "warehouses:read", warehousesHandler.ListBins},
		{http.MethodPost, "/api/v1/bins", "warehouses:write", warehousesHandler.CreateBin},
		{http.MethodGet, "/api/v1/bins/{id}", "warehouses:read", warehousesHandler.GetBin},
		{http.MethodPut, "/api/v1/bins/{id}", "warehouses:write", warehousesHandler.UpdateBin},

		{http.MethodGet, "/api/v1/categories", "items:read", catalogHandler.ListCategories},
		{http.MethodPost, "/api/v1/categories", "items:write", catalogHandler.CreateCategory},
		{http.MethodGet, "/api/v1/categories/{id}", "items:read", catalogHandler.GetCategory},
		{http.MethodPut, "/api/v1/categories/{id}", "items:write", catalogHandler.UpdateCategory},

		{http.MethodGet, "/api/v1/suppliers", "items:read", catalogHandler.ListSuppliers},
		{http.MethodPost, "/api/v1/suppliers", "items:write", catalogHandler.CreateSupplier},
		{http.MethodGet, "/api/v1/suppliers/{id}", "items:read", catalogHandler.GetSupplier},
		{http.MethodPut, "/api/v1/suppliers/{id}", "items:write", catalogHandler.UpdateSupplier},

		{http.MethodGet, "/api/v1/items", "items:read", catalogHandler.ListItems},
		{http.MethodPost, "/api/v1/items", "items:write", catalogHandler.CreateItem},
		{http.MethodGet, "/api/v1/items/{id}", "items:read", catalogHandler.GetItem},
		{http.MethodPut, "/api/v1/items/{id}", "items:write", catalogHandler.UpdateItem},

		{http.MethodGet, "/api/v1/inventory", "inventory:read", inventoryHandler.List},
		{http.MethodPost, "/api/v1/inventory", "inventory:write", inventoryHandler.Create},
		{http.MethodGet, "/api/v1/inventory/{id}", "inventory:read", inventoryHandler.Get},
		{http.MethodPut, "/api/v1/inventory/{id}", "inventory:write", inventoryHandler.Update},

		{http.MethodGet, "/api/v1/inventory-transactions", "inventory:read", inventoryHandler.ListTransactions},
		{http.MethodGet, "/api/v1/inventory-transactions/{id}", "inventory:read", inventoryHandler.GetTransaction},

		{http.MethodGet, "/api/v1/orders", "orders:read", ordersHandler.List},
		{http.MethodPost, "/api/v1/orders", "orders:write", ordersHandler.Create},
		{http.MethodGet, "/api/v1/orders/{id}", "orders:read", ordersHandler.Get},
		{http.MethodPut, "/api/v1/orders/{id}", "orders:write", ordersHandler.Update},
		{http.MethodGet, "/api/v1/orders/{id}/items", "orders:read", ordersHandler.ListItems},

		{http.MethodGet, "/api/v1/order-items/{id}", "orders:read", ordersHandler.GetItem},
		{http.MethodPut, "/api/v1/order-items/{id}", "orders:write", ordersHandler.UpdateItem},

		{http.MethodGet, "/api/v1/shipments", "shipments:read", shipmentsHandler.List},
		{http.MethodPost, "/api/v1/shipments", "shipments:write", shipmentsHandler.Create},
		{http.MethodGet, "/api/v1/shipments/{id}", "shipments:read", shipmentsHandler.Get},
		{http.MethodPut, "/api/v1/shipments/{id}", "shipments:write", shipmentsHandler.Update},

		{http.MethodGet, "/api/v1/activity", "activity:read", activityHandler.List},
		{http.MethodGet, "/api/v1/activity/{id}", "activity:read", activityHandler.Get},

		{http.MethodGet, "/api/v1/reports/inventory.csv", "reports:read", reportsHandler.InventoryCSV},
		{http.MethodGet, "/api/v1/stats", "reports:read", reportsHandler.Stats},
	}

	limit := middleware.RateLimit(cfg.RateLimit)
	tierAPI := middleware.WithRateLimitTierHandler(middleware.TierAPI)
	tierLogin := middleware.WithRateLimitTierHandler(middleware.TierLogin)

	mux := http.NewServeMux()

	// Login is unauthenticated and sits in the aggressive rate-limit tier;
	// logout and me only need a valid principal.
	mux.Handle("/api/v1/auth/login", methodMux(map[string]http.Handler{
		http.MethodPost: tierLogin(limit(http.HandlerFunc(authHandler.Login))),
	}))
	mux.Handle("/api/v1/auth/logout", methodMux(map[string]http.Handler{
		http.MethodPost: tierAPI(limit(authenticator.RequireAuth(http.HandlerFunc(authHandler.Logout)))),
	}))
	mux.Handle("/api/v1/auth/me", methodMux(map[string]http.Handler{
		http.MethodGet: tierAPI(limit(authenticator.RequireAuth(http.HandlerFunc(authHandler.Me)))),
	}))

	// Resource routes grouped by pattern so each pattern registers a single
	// method mux.
	byPattern := make(map[string]map[string]http.Handler)
	for _, rt := range routes {
		handler := authenticator.RequirePermission(rt.permission)(rt.handler)
		handler = tierAPI(limit(handler))

		if byPattern[rt.pattern] == nil {
			byPattern[rt.pattern] = make(map[string]http.Handler)
		}
		byPattern[rt.pattern][rt.method] = handler
	}
	for pattern, methodHandlers := range byPattern {
		mux.Handle(pattern, methodMux(methodHandlers))
	}

	// Operational endpoints, outside auth and rate limiting.
	mux.Handle("/health", healthChecker.Health())
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/version", VersionHandler(deps.Version, deps.GitCommit, deps.BuildDate))
	mux.Handle("/openapi.json", OpenAPIHandler())
	mux.Handle("/robots.txt", web.RobotsTxtHandler())
	mux.Handle("/{$}", web.IndexHandler())

	// Global chain, innermost first.
	var handler http.Handler = mux
	// Opt-in double-submit CSRF for deployments that serve browsers on
	// cookie sessions. API-token deployments leave the key empty.
	if cfg.Auth.CSRFKey != "" {
		handler = middleware.CSRFProtection([]byte(cfg.Auth.CSRFKey), !cfg.IsDevelopment())(handler)
	}
	handler = authenticator.Principal(handler)
	handler = middleware.RequestSize(middleware.BulkMaxBodySize)(handler)
	handler = middleware.CORS(cfg.CORS, deps.Logger)(handler)
	handler = middleware.SecurityHeaders(!cfg.IsDevelopment())(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(deps.Logger)(handler)
	if cfg.Tracing.Enabled {
		handler = middleware.Tracing(handler)
	}
	handler = middleware.CorrelationID(deps.Logger)(handler)
	handler = middleware.Recovery(deps.Logger, env)(handler)

	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
