package organizations

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/warebase/server/internal/validation"
)

// mockRepository implements the Repository interface for testing
type mockRepository struct {
	listFn     func(ctx context.Context, filters Filters) ([]Organization, error)
	getByIDFn  func(ctx context.Context, id int64) (*Organization, error)
	getByIDsFn func(ctx context.Context, ids []int64) (map[int64]Organization, error)
	createFn   func(ctx context.Context, org Organization) (*Organization, error)
	updateFn   func(ctx context.Context, org Organization) (*Organization, error)
	existsFn   func(ctx context.Context, id int64) (bool, error)
}

func (m *mockRepository) List(ctx context.Context, filters Filters) ([]Organization, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filters)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*Organization, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]Organization, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) Create(ctx context.Context, org Organization) (*Organization, error) {
	if m.createFn != nil {
		return m.createFn(ctx, org)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) Update(ctx context.Context, org Organization) (*Organization, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, org)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, errors.New("not implemented")
}

func echoCreate(ctx context.Context, org Organization) (*Organization, error) {
	org.ID = 1
	org.CreatedAt = time.Now()
	org.UpdatedAt = org.CreatedAt
	return &org, nil
}

func TestCreate(t *testing.T) {
	parentID := int64(7)
	missingParent := int64(99)

	tests := []struct {
		name        string
		params      CreateParams
		setupMock   func(*mockRepository)
		wantErr     bool
		expectedErr error
		wantField   string
		check       func(t *testing.T, org *Organization)
	}{
		{
			name:   "success with defaults",
			params: CreateParams{Name: "Acme Logistics"},
			setupMock: func(m *mockRepository) {
				m.createFn = echoCreate
			},
			check: func(t *testing.T, org *Organization) {
				if !org.Active {
					t.Error("expected new organization to default to active")
				}
				if org.ParentID != nil {
					t.Errorf("expected no parent, got %d", *org.ParentID)
				}
			},
		},
		{
			name:      "missing name",
			params:    CreateParams{},
			setupMock: func(m *mockRepository) {},
			wantErr:   true,
			wantField: "name",
		},
		{
			name:      "name too short",
			params:    CreateParams{Name: "A"},
			setupMock: func(m *mockRepository) {},
			wantErr:   true,
			wantField: "name",
		},
		{
			name:   "parent not found",
			params: CreateParams{Name: "West Region", ParentID: &missingParent},
			setupMock: func(m *mockRepository) {
				m.existsFn = func(ctx context.Context, id int64) (bool, error) {
					return false, nil
				}
			},
			wantErr:     true,
			expectedErr: ErrNotFound,
		},
		{
			name:   "success with parent",
			params: CreateParams{Name: "West Region", ParentID: &parentID},
			setupMock: func(m *mockRepository) {
				m.existsFn = func(ctx context.Context, id int64) (bool, error) {
					return id == parentID, nil
				}
				m.createFn = echoCreate
			},
			check: func(t *testing.T, org *Organization) {
				if org.ParentID == nil || *org.ParentID != parentID {
					t.Errorf("expected parent %d, got %v", parentID, org.ParentID)
				}
			},
		},
		{
			name:   "description sanitized",
			params: CreateParams{Name: "Acme Logistics", Description: `Regional hub <script>alert('x')</script>`},
			setupMock: func(m *mockRepository) {
				m.createFn = echoCreate
			},
			check: func(t *testing.T, org *Organization) {
				if strings.Contains(org.Description, "<script") {
					t.Errorf("description not sanitized: %q", org.Description)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockRepository{}
			tt.setupMock(mock)
			svc := NewService(mock, nil, zerolog.Nop())

			org, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.expectedErr != nil && !errors.Is(err, tt.expectedErr) {
					t.Errorf("expected error %v, got %v", tt.expectedErr, err)
				}
				if tt.wantField != "" {
					ve, ok := validation.AsError(err)
					if !ok {
						t.Fatalf("expected validation error, got %v", err)
					}
					if _, ok := ve.Fields[tt.wantField]; !ok {
						t.Errorf("expected field %q in %v", tt.wantField, ve.Fields)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if org == nil {
				t.Fatal("expected organization, got nil")
			}
			if tt.check != nil {
				tt.check(t, org)
			}
		})
	}
}

func TestUpdate_PartialMerge(t *testing.T) {
	existing := Organization{
		ID:          3,
		Name:        "Acme Logistics",
		Description: "Original description",
		Active:      true,
	}

	mock := &mockRepository{
		getByIDFn: func(ctx context.Context, id int64) (*Organization, error) {
			if id != existing.ID {
				return nil, ErrNotFound
			}
			cp := existing
			return &cp, nil
		},
		updateFn: func(ctx context.Context, org Organization) (*Organization, error) {
			return &org, nil
		},
	}
	svc := NewService(mock, nil, zerolog.Nop())

	newName := "Acme Logistics EU"
	updated, err := svc.Update(context.Background(), existing.ID, UpdateParams{Name: &newName})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != newName {
		t.Errorf("expected name %q, got %q", newName, updated.Name)
	}
	if updated.Description != existing.Description {
		t.Errorf("expected description preserved, got %q", updated.Description)
	}
	if !updated.Active {
		t.Error("expected active flag preserved")
	}
}

func TestUpdate_SelfParentRejected(t *testing.T) {
	mock := &mockRepository{
		getByIDFn: func(ctx context.Context, id int64) (*Organization, error) {
			return &Organization{ID: id, Name: "Acme Logistics", Active: true}, nil
		},
	}
	svc := NewService(mock, nil, zerolog.Nop())

	self := int64(3)
	_, err := svc.Update(context.Background(), 3, UpdateParams{ParentID: &self})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	ve, ok := validation.AsError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := ve.Fields["parent_id"]; !ok {
		t.Errorf("expected parent_id field error, got %v", ve.Fields)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	mock := &mockRepository{
		getByIDFn: func(ctx context.Context, id int64) (*Organization, error) {
			return nil, ErrNotFound
		},
	}
	svc := NewService(mock, nil, zerolog.Nop())

	name := "Ghost"
	_, err := svc.Update(context.Background(), 42, UpdateParams{Name: &name})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
