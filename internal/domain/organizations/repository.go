package organizations

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("organization not found")

// Organization is a tenant boundary. Organizations form a tree through the
// optional parent reference.
type Organization struct {
	ID          int64
	Name        string
	Description string
	Active      bool
	ParentID    *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Filters struct {
	ParentID *int64
	Active   *bool
	Query    string
}

type Repository interface {
	List(ctx context.Context, filters Filters) ([]Organization, error)
	GetByID(ctx context.Context, id int64) (*Organization, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]Organization, error)
	Create(ctx context.Context, org Organization) (*Organization, error)
	Update(ctx context.Context, org Organization) (*Organization, error)
	Exists(ctx context.Context, id int64) (bool, error)
}
