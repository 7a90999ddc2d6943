package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is inactive")
)

// User is an authenticated operator. The password hash never leaves the
// service layer; handlers shape responses without it.
type User struct {
	ID             int64
	Username       string
	PasswordHash   string
	Email          string
	FullName       string
	Active         bool
	OrganizationID *int64
	RoleID         *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Filters struct {
	OrganizationID *int64
	RoleID         *int64
	Active         *bool
	Query          string
}

type Repository interface {
	List(ctx context.Context, filters Filters) ([]User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user User) (*User, error)
	Update(ctx context.Context, user User) (*User, error)
	Exists(ctx context.Context, id int64) (bool, error)
}
