package roles

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("role not found")

// Role scopes. A role's permissions apply within one of these tiers.
const (
	ScopeGlobal       = "global"
	ScopeOrganization = "organization"
	ScopeCustomer     = "customer"
)

// Role is a named bundle of permission strings. The permission "all" grants
// every action; otherwise the gate matches required permissions exactly.
type Role struct {
	ID          int64
	Name        string
	Description string
	Permissions []string
	Scope       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Filters struct {
	Scope string
	Query string
}

type Repository interface {
	List(ctx context.Context, filters Filters) ([]Role, error)
	GetByID(ctx context.Context, id int64) (*Role, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]Role, error)
	Create(ctx context.Context, role Role) (*Role, error)
	Update(ctx context.Context, role Role) (*Role, error)
	Exists(ctx context.Context, id int64) (bool, error)
}
