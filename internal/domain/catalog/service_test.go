package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/warebase/server/internal/validation"
)

type categoryRepoMock struct {
	listFn     func(ctx context.Context, filters CategoryFilters) ([]Category, error)
	getByIDFn  func(ctx context.Context, id int64) (*Category, error)
	getByIDsFn func(ctx context.Context, ids []int64) (map[int64]Category, error)
	createFn   func(ctx context.Context, category Category) (*Category, error)
	updateFn   func(ctx context.Context, category Category) (*Category, error)
	existsFn   func(ctx context.Context, id int64) (bool, error)
}

func (m *categoryRepoMock) List(ctx context.Context, f CategoryFilters) ([]Category, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, errors.New("not implemented")
}

func (m *categoryRepoMock) GetByID(ctx context.Context, id int64) (*Category, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *categoryRepoMock) GetByIDs(ctx context.Context, ids []int64) (map[int64]Category, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, errors.New("not implemented")
}

func (m *categoryRepoMock) Create(ctx context.Context, c Category) (*Category, error) {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	return nil, errors.New("not implemented")
}

func (m *categoryRepoMock) Update(ctx context.Context, c Category) (*Category, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, c)
	}
	return nil, errors.New("not implemented")
}

func (m *categoryRepoMock) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, errors.New("not implemented")
}

type supplierRepoMock struct {
	listFn     func(ctx context.Context, filters SupplierFilters) ([]Supplier, error)
	getByIDFn  func(ctx context.Context, id int64) (*Supplier, error)
	getByIDsFn func(ctx context.Context, ids []int64) (map[int64]Supplier, error)
	createFn   func(ctx context.Context, supplier Supplier) (*Supplier, error)
	updateFn   func(ctx context.Context, supplier Supplier) (*Supplier, error)
	existsFn   func(ctx context.Context, id int64) (bool, error)
}

func (m *supplierRepoMock) List(ctx context.Context, f SupplierFilters) ([]Supplier, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, errors.New("not implemented")
}

func (m *supplierRepoMock) GetByID(ctx context.Context, id int64) (*Supplier, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *supplierRepoMock) GetByIDs(ctx context.Context, ids []int64) (map[int64]Supplier, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, errors.New("not implemented")
}

func (m *supplierRepoMock) Create(ctx context.Context, s Supplier) (*Supplier, error) {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil, errors.New("not implemented")
}

func (m *supplierRepoMock) Update(ctx context.Context, s Supplier) (*Supplier, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, s)
	}
	return nil, errors.New("not implemented")
}

func (m *supplierRepoMock) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, errors.New("not implemented")
}

type itemRepoMock struct {
	listFn     func(ctx context.Context, filters ItemFilters) ([]Item, error)
	getByIDFn  func(ctx context.Context, id int64) (*Item, error)
	getByIDsFn func(ctx context.Context, ids []int64) (map[int64]Item, error)
	getBySKUFn func(ctx context.Context, organizationID int64, sku string) (*Item, error)
	createFn   func(ctx context.Context, item Item) (*Item, error)
	updateFn   func(ctx context.Context, item Item) (*Item, error)
	existsFn   func(ctx context.Context, id int64) (bool, error)
}

func (m *itemRepoMock) List(ctx context.Context, f ItemFilters) ([]Item, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, errors.New("not implemented")
}

func (m *itemRepoMock) GetByID(ctx context.Context, id int64) (*Item, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *itemRepoMock) GetByIDs(ctx context.Context, ids []int64) (map[int64]Item, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, errors.New("not implemented")
}

func (m *itemRepoMock) GetBySKU(ctx context.Context, organizationID int64, sku string) (*Item, error) {
	if m.getBySKUFn != nil {
		return m.getBySKUFn(ctx, organizationID, sku)
	}
	return nil, errors.New("not implemented")
}

func (m *itemRepoMock) Create(ctx context.Context, i Item) (*Item, error) {
	if m.createFn != nil {
		return m.createFn(ctx, i)
	}
	return nil, errors.New("not implemented")
}

func (m *itemRepoMock) Update(ctx context.Context, i Item) (*Item, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, i)
	}
	return nil, errors.New("not implemented")
}

func (m *itemRepoMock) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, errors.New("not implemented")
}

type orgChecker bool

func (c orgChecker) Exists(ctx context.Context, id int64) (bool, error) { return bool(c), nil }

func newTestService(cats *categoryRepoMock, sups *supplierRepoMock, items *itemRepoMock, orgExists bool) *Service {
	if cats == nil {
		cats = &categoryRepoMock{}
	}
	if sups == nil {
		sups = &supplierRepoMock{}
	}
	if items == nil {
		items = &itemRepoMock{}
	}
	return NewService(cats, sups, items, orgChecker(orgExists), nil, zerolog.Nop())
}

func TestCreateItem(t *testing.T) {
	tests := []struct {
		name        string
		params      CreateItemParams
		setup       func(*itemRepoMock)
		orgExists   bool
		wantErr     bool
		expectedErr error
		wantField   string
	}{
		{
			name: "success",
			params: CreateItemParams{
				SKU:            "WID-001",
				Name:           "Widget",
				OrganizationID: 3,
			},
			setup: func(m *itemRepoMock) {
				m.getBySKUFn = func(ctx context.Context, orgID int64, sku string) (*Item, error) {
					return nil, ErrItemNotFound
				}
				m.createFn = func(ctx context.Context, item Item) (*Item, error) {
					item.ID = 1
					return &item, nil
				}
			},
			orgExists: true,
		},
		{
			name: "duplicate sku in organization",
			params: CreateItemParams{
				SKU:            "WID-001",
				Name:           "Widget",
				OrganizationID: 3,
			},
			setup: func(m *itemRepoMock) {
				m.getBySKUFn = func(ctx context.Context, orgID int64, sku string) (*Item, error) {
					return &Item{ID: 8, SKU: sku, OrganizationID: orgID}, nil
				}
			},
			orgExists:   true,
			wantErr:     true,
			expectedErr: ErrSKUTaken,
		},
		{
			name: "missing sku",
			params: CreateItemParams{
				Name:           "Widget",
				OrganizationID: 3,
			},
			setup:     func(m *itemRepoMock) {},
			orgExists: true,
			wantErr:   true,
			wantField: "sku",
		},
		{
			name: "negative weight",
			params: CreateItemParams{
				SKU:            "WID-001",
				Name:           "Widget",
				Weight:         -1,
				OrganizationID: 3,
			},
			setup:     func(m *itemRepoMock) {},
			orgExists: true,
			wantErr:   true,
			wantField: "weight",
		},
		{
			name: "organization missing",
			params: CreateItemParams{
				SKU:            "WID-001",
				Name:           "Widget",
				OrganizationID: 99,
			},
			setup:     func(m *itemRepoMock) {},
			orgExists: false,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := &itemRepoMock{}
			tt.setup(items)
			svc := newTestService(nil, nil, items, tt.orgExists)

			item, err := svc.CreateItem(context.Background(), tt.params)

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
			if item.SKU != tt.params.SKU {
				t.Errorf("expected sku %q, got %q", tt.params.SKU, item.SKU)
			}
		})
	}
}

func TestCreateItem_MissingCategory(t *testing.T) {
	items := &itemRepoMock{
		getBySKUFn: func(ctx context.Context, orgID int64, sku string) (*Item, error) {
			return nil, ErrItemNotFound
		},
	}
	cats := &categoryRepoMock{
		existsFn: func(ctx context.Context, id int64) (bool, error) { return false, nil },
	}
	svc := newTestService(cats, nil, items, true)

	catID := int64(12)
	_, err := svc.CreateItem(context.Background(), CreateItemParams{
		SKU:            "WID-001",
		Name:           "Widget",
		CategoryID:     &catID,
		OrganizationID: 3,
	})
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestUpdateItem_SKUConflictOnlyWhenChanged(t *testing.T) {
	existing := Item{ID: 5, SKU: "WID-001", Name: "Widget", OrganizationID: 3}

	items := &itemRepoMock{
		getByIDFn: func(ctx context.Context, id int64) (*Item, error) {
			cp := existing
			return &cp, nil
		},
		getBySKUFn: func(ctx context.Context, orgID int64, sku string) (*Item, error) {
			// Every SKU lookup reports a different item holding it.
			return &Item{ID: 77, SKU: sku, OrganizationID: orgID}, nil
		},
		updateFn: func(ctx context.Context, item Item) (*Item, error) {
			return &item, nil
		},
	}
	svc := newTestService(nil, nil, items, true)

	// Re-submitting the current SKU must not trip the uniqueness check.
	same := "WID-001"
	if _, err := svc.UpdateItem(context.Background(), 5, UpdateItemParams{SKU: &same}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed := "WID-002"
	_, err := svc.UpdateItem(context.Background(), 5, UpdateItemParams{SKU: &changed})
	if !errors.Is(err, ErrSKUTaken) {
		t.Errorf("expected ErrSKUTaken, got %v", err)
	}
}

func TestUpdateItem_PartialMerge(t *testing.T) {
	catID := int64(2)
	existing := Item{
		ID:              5,
		SKU:             "WID-001",
		Name:            "Widget",
		Description:     "A standard widget",
		CategoryID:      &catID,
		Weight:          1.5,
		ReorderPoint:    10,
		ReorderQuantity: 50,
		OrganizationID:  3,
	}
	items := &itemRepoMock{
		getByIDFn: func(ctx context.Context, id int64) (*Item, error) {
			cp := existing
			return &cp, nil
		},
		updateFn: func(ctx context.Context, item Item) (*Item, error) {
			return &item, nil
		},
	}
	svc := newTestService(nil, nil, items, true)

	point := int64(25)
	updated, err := svc.UpdateItem(context.Background(), 5, UpdateItemParams{ReorderPoint: &point})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ReorderPoint != 25 {
		t.Errorf("expected reorder point 25, got %d", updated.ReorderPoint)
	}
	if updated.SKU != existing.SKU || updated.Name != existing.Name || updated.Weight != existing.Weight {
		t.Errorf("expected untouched fields preserved, got %+v", updated)
	}
	if updated.CategoryID == nil || *updated.CategoryID != catID {
		t.Errorf("expected category preserved, got %v", updated.CategoryID)
	}
}

func TestCreateSupplier_NormalizesContactEmail(t *testing.T) {
	sups := &supplierRepoMock{
		createFn: func(ctx context.Context, s Supplier) (*Supplier, error) {
			s.ID = 1
			return &s, nil
		},
	}
	svc := newTestService(nil, sups, nil, true)

	created, err := svc.CreateSupplier(context.Background(), CreateSupplierParams{
		Name:           "Acme Supply Co",
		ContactEmail:   "Sales@AcmeSupply.com",
		OrganizationID: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ContactEmail != "sales@acmesupply.com" {
		t.Errorf("expected normalized email, got %q", created.ContactEmail)
	}
}

func TestCreateCategory_RequiresOrganization(t *testing.T) {
	svc := newTestService(nil, nil, nil, false)

	_, err := svc.CreateCategory(context.Background(), CreateCategoryParams{
		Name:           "Fasteners",
		OrganizationID: 99,
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
