package activity

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("activity log entry not found")

// Log is one immutable audit-trail record. Entries are only ever appended;
// there is no update or delete surface.
type Log struct {
	ID             int64
	UserID         *int64
	Action         string
	EntityType     string
	EntityID       string
	OrganizationID *int64
	Details        map[string]interface{}
	OccurredAt     time.Time
}

type Filters struct {
	OrganizationID *int64
	UserID         *int64
	EntityType     string
	EntityID       string
	Action         string
}

type Repository interface {
	List(ctx context.Context, filters Filters) ([]Log, error)
	GetByID(ctx context.Context, id int64) (*Log, error)
	Create(ctx context.Context, entry Log) (*Log, error)
}
