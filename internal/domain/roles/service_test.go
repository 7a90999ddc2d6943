package roles

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/warebase/server/internal/validation"
)

type mockRepository struct {
	listFn     func(ctx context.Context, filters Filters) ([]Role, error)
	getByIDFn  func(ctx context.Context, id int64) (*Role, error)
	getByIDsFn func(ctx context.Context, ids []int64) (map[int64]Role, error)
	createFn   func(ctx context.Context, role Role) (*Role, error)
	updateFn   func(ctx context.Context, role Role) (*Role, error)
	existsFn   func(ctx context.Context, id int64) (bool, error)
}

func (m *mockRepository) List(ctx context.Context, filters Filters) ([]Role, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filters)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*Role, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]Role, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) Create(ctx context.Context, role Role) (*Role, error) {
	if m.createFn != nil {
		return m.createFn(ctx, role)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) Update(ctx context.Context, role Role) (*Role, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, role)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, errors.New("not implemented")
}

func TestCreateRole(t *testing.T) {
	tests := []struct {
		name      string
		params    CreateParams
		wantErr   bool
		wantField string
	}{
		{
			name: "success",
			params: CreateParams{
				Name:        "Warehouse Manager",
				Permissions: []string{"warehouses:read", "warehouses:write", "inventory:read"},
				Scope:       ScopeOrganization,
			},
		},
		{
			name: "wildcard role",
			params: CreateParams{
				Name:        "Administrator",
				Permissions: []string{"all"},
				Scope:       ScopeGlobal,
			},
		},
		{
			name: "empty permission list allowed",
			params: CreateParams{
				Name:  "Pending Access",
				Scope: ScopeCustomer,
			},
		},
		{
			name:      "missing scope",
			params:    CreateParams{Name: "Picker", Permissions: []string{"orders:read"}},
			wantErr:   true,
			wantField: "scope",
		},
		{
			name: "invalid scope",
			params: CreateParams{
				Name:        "Picker",
				Permissions: []string{"orders:read"},
				Scope:       "galactic",
			},
			wantErr:   true,
			wantField: "scope",
		},
		{
			name: "unknown permission",
			params: CreateParams{
				Name:        "Picker",
				Permissions: []string{"orders:read", "teleport:write"},
				Scope:       ScopeOrganization,
			},
			wantErr:   true,
			wantField: "permissions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockRepository{
				createFn: func(ctx context.Context, role Role) (*Role, error) {
					role.ID = 1
					return &role, nil
				},
			}
			svc := NewService(mock, nil, zerolog.Nop())

			role, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				ve, ok := validation.AsError(err)
				if !ok {
					t.Fatalf("expected validation error, got %v", err)
				}
				if _, ok := ve.Fields[tt.wantField]; !ok {
					t.Errorf("expected field %q in %v", tt.wantField, ve.Fields)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if role.Scope != tt.params.Scope {
				t.Errorf("expected scope %q, got %q", tt.params.Scope, role.Scope)
			}
		})
	}
}

func TestUpdateRole_ReplacesPermissions(t *testing.T) {
	mock := &mockRepository{
		getByIDFn: func(ctx context.Context, id int64) (*Role, error) {
			return &Role{
				ID:          id,
				Name:        "Picker",
				Permissions: []string{"orders:read"},
				Scope:       ScopeOrganization,
			}, nil
		},
		updateFn: func(ctx context.Context, role Role) (*Role, error) {
			return &role, nil
		},
	}
	svc := NewService(mock, nil, zerolog.Nop())

	perms := []string{"orders:read", "orders:write"}
	updated, err := svc.Update(context.Background(), 5, UpdateParams{Permissions: &perms})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated.Permissions) != 2 {
		t.Fatalf("expected 2 permissions, got %v", updated.Permissions)
	}
	if updated.Name != "Picker" || updated.Scope != ScopeOrganization {
		t.Errorf("expected untouched fields preserved, got %+v", updated)
	}
}

func TestUpdateRole_RejectsUnknownPermission(t *testing.T) {
	mock := &mockRepository{
		getByIDFn: func(ctx context.Context, id int64) (*Role, error) {
			return &Role{ID: id, Name: "Picker", Scope: ScopeOrganization}, nil
		},
	}
	svc := NewService(mock, nil, zerolog.Nop())

	perms := []string{"orders:destroy"}
	_, err := svc.Update(context.Background(), 5, UpdateParams{Permissions: &perms})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if _, ok := validation.AsError(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetRole_NotFound(t *testing.T) {
	mock := &mockRepository{
		getByIDFn: func(ctx context.Context, id int64) (*Role, error) {
			return nil, ErrNotFound
		},
	}
	svc := NewService(mock, nil, zerolog.Nop())

	_, err := svc.Get(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
