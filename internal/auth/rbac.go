package auth

// PermissionAll short-circuits every permission check. Roles carrying it can
// reach any route.
const PermissionAll = "all"

// Permission vocabulary. Matching is exact-string only; the route manifest in
// the API router references these constants so coverage is visible in one
// place.
const (
	PermOrganizationsRead  = "organizations:read"
	PermOrganizationsWrite = "organizations:write"
	PermRolesRead          = "roles:read"
	PermRolesWrite         = "roles:write"
	PermUsersRead          = "users:read"
	PermUsersWrite         = "users:write"
	PermWarehousesRead     = "warehouses:read"
	PermWarehousesWrite    = "warehouses:write"
	PermItemsRead          = "items:read"
	PermItemsWrite         = "items:write"
	PermInventoryRead      = "inventory:read"
	PermInventoryWrite     = "inventory:write"
	PermOrdersRead         = "orders:read"
	PermOrdersWrite        = "orders:write"
	PermShipmentsRead      = "shipments:read"
	PermShipmentsWrite     = "shipments:write"
	PermActivityRead       = "activity:read"
	PermReportsRead        = "reports:read"
)

var knownPermissions = map[string]struct{}{
	PermissionAll:          {},
	PermOrganizationsRead:  {},
	PermOrganizationsWrite: {},
	PermRolesRead:          {},
	PermRolesWrite:         {},
	PermUsersRead:          {},
	PermUsersWrite:         {},
	PermWarehousesRead:     {},
	PermWarehousesWrite:    {},
	PermItemsRead:          {},
	PermItemsWrite:         {},
	PermInventoryRead:      {},
	PermInventoryWrite:     {},
	PermOrdersRead:         {},
	PermOrdersWrite:        {},
	PermShipmentsRead:      {},
	PermShipmentsWrite:     {},
	PermActivityRead:       {},
	PermReportsRead:        {},
}

// HasPermission reports whether a granted-permission list satisfies the
// required permission: an exact match, or the "all" wildcard.
func HasPermission(granted []string, required string) bool {
	if required == "" {
		return false
	}
	for _, p := range granted {
		if p == PermissionAll || p == required {
			return true
		}
	}
	return false
}

// KnownPermission reports whether the string is part of the permission
// vocabulary, including the wildcard.
func KnownPermission(p string) bool {
	_, ok := knownPermissions[p]
	return ok
}

// KnownPermissions returns the vocabulary for role validation and docs.
func KnownPermissions() []string {
	out := make([]string, 0, len(knownPermissions))
	for p := range knownPermissions {
		out = append(out, p)
	}
	return out
}
