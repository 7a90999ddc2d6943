package warehouses

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/warebase/server/internal/validation"
)

type warehouseRepoMock struct {
	listFn     func(ctx context.Context, filters WarehouseFilters) ([]Warehouse, error)
	getByIDFn  func(ctx context.Context, id int64) (*Warehouse, error)
	getByIDsFn func(ctx context.Context, ids []int64) (map[int64]Warehouse, error)
	createFn   func(ctx context.Context, warehouse Warehouse) (*Warehouse, error)
	updateFn   func(ctx context.Context, warehouse Warehouse) (*Warehouse, error)
	existsFn   func(ctx context.Context, id int64) (bool, error)
}

func (m *warehouseRepoMock) List(ctx context.Context, f WarehouseFilters) ([]Warehouse, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, errors.New("not implemented")
}

func (m *warehouseRepoMock) GetByID(ctx context.Context, id int64) (*Warehouse, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *warehouseRepoMock) GetByIDs(ctx context.Context, ids []int64) (map[int64]Warehouse, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, errors.New("not implemented")
}

func (m *warehouseRepoMock) Create(ctx context.Context, w Warehouse) (*Warehouse, error) {
	if m.createFn != nil {
		return m.createFn(ctx, w)
	}
	return nil, errors.New("not implemented")
}

func (m *warehouseRepoMock) Update(ctx context.Context, w Warehouse) (*Warehouse, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, w)
	}
	return nil, errors.New("not implemented")
}

func (m *warehouseRepoMock) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, errors.New("not implemented")
}

type zoneRepoMock struct {
	listFn     func(ctx context.Context, filters ZoneFilters) ([]Zone, error)
	getByIDFn  func(ctx context.Context, id int64) (*Zone, error)
	getByIDsFn func(ctx context.Context, ids []int64) (map[int64]Zone, error)
	createFn   func(ctx context.Context, zone Zone) (*Zone, error)
	updateFn   func(ctx context.Context, zone Zone) (*Zone, error)
	existsFn   func(ctx context.Context, id int64) (bool, error)
}

func (m *zoneRepoMock) List(ctx context.Context, f ZoneFilters) ([]Zone, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, errors.New("not implemented")
}

func (m *zoneRepoMock) GetByID(ctx context.Context, id int64) (*Zone, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *zoneRepoMock) GetByIDs(ctx context.Context, ids []int64) (map[int64]Zone, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, errors.New("not implemented")
}

func (m *zoneRepoMock) Create(ctx context.Context, z Zone) (*Zone, error) {
	if m.createFn != nil {
		return m.createFn(ctx, z)
	}
	return nil, errors.New("not implemented")
}

func (m *zoneRepoMock) Update(ctx context.Context, z Zone) (*Zone, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, z)
	}
	return nil, errors.New("not implemented")
}

func (m *zoneRepoMock) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, errors.New("not implemented")
}

type binTypeRepoMock struct {
	listFn     func(ctx context.Context, filters BinTypeFilters) ([]BinType, error)
	getByIDFn  func(ctx context.Context, id int64) (*BinType, error)
	getByIDsFn func(ctx context.Context, ids []int64) (map[int64]BinType, error)
	createFn   func(ctx context.Context, binType BinType) (*BinType, error)
	updateFn   func(ctx context.Context, binType BinType) (*BinType, error)
	existsFn   func(ctx context.Context, id int64) (bool, error)
}

func (m *binTypeRepoMock) List(ctx context.Context, f BinTypeFilters) ([]BinType, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, errors.New("not implemented")
}

func (m *binTypeRepoMock) GetByID(ctx context.Context, id int64) (*BinType, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *binTypeRepoMock) GetByIDs(ctx context.Context, ids []int64) (map[int64]BinType, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, errors.New("not implemented")
}

func (m *binTypeRepoMock) Create(ctx context.Context, bt BinType) (*BinType, error) {
	if m.createFn != nil {
		return m.createFn(ctx, bt)
	}
	return nil, errors.New("not implemented")
}

func (m *binTypeRepoMock) Update(ctx context.Context, bt BinType) (*BinType, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, bt)
	}
	return nil, errors.New("not implemented")
}

func (m *binTypeRepoMock) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, errors.New("not implemented")
}

type binRepoMock struct {
	listFn     func(ctx context.Context, filters BinFilters) ([]Bin, error)
	getByIDFn  func(ctx context.Context, id int64) (*Bin, error)
	getByIDsFn func(ctx context.Context, ids []int64) (map[int64]Bin, error)
	createFn   func(ctx context.Context, bin Bin) (*Bin, error)
	updateFn   func(ctx context.Context, bin Bin) (*Bin, error)
	existsFn   func(ctx context.Context, id int64) (bool, error)
}

func (m *binRepoMock) List(ctx context.Context, f BinFilters) ([]Bin, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, errors.New("not implemented")
}

func (m *binRepoMock) GetByID(ctx context.Context, id int64) (*Bin, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *binRepoMock) GetByIDs(ctx context.Context, ids []int64) (map[int64]Bin, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, errors.New("not implemented")
}

func (m *binRepoMock) Create(ctx context.Context, b Bin) (*Bin, error) {
	if m.createFn != nil {
		return m.createFn(ctx, b)
	}
	return nil, errors.New("not implemented")
}

func (m *binRepoMock) Update(ctx context.Context, b Bin) (*Bin, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, b)
	}
	return nil, errors.New("not implemented")
}

func (m *binRepoMock) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, errors.New("not implemented")
}

type orgChecker bool

func (c orgChecker) Exists(ctx context.Context, id int64) (bool, error) { return bool(c), nil }

func newTestService(w *warehouseRepoMock, z *zoneRepoMock, bt *binTypeRepoMock, b *binRepoMock, orgExists bool) *Service {
	if w == nil {
		w = &warehouseRepoMock{}
	}
	if z == nil {
		z = &zoneRepoMock{}
	}
	if bt == nil {
		bt = &binTypeRepoMock{}
	}
	if b == nil {
		b = &binRepoMock{}
	}
	return NewService(w, z, bt, b, orgChecker(orgExists), nil, zerolog.Nop())
}

func TestCreateWarehouse(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		w := &warehouseRepoMock{
			createFn: func(ctx context.Context, wh Warehouse) (*Warehouse, error) {
				wh.ID = 1
				return &wh, nil
			},
		}
		svc := newTestService(w, nil, nil, nil, true)

		created, err := svc.CreateWarehouse(context.Background(), CreateWarehouseParams{
			Name:           "Central Distribution",
			Code:           "CD-01",
			Address:        "400 Dock Rd",
			OrganizationID: 3,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.OrganizationID != 3 {
			t.Errorf("expected organization 3, got %d", created.OrganizationID)
		}
	})

	t.Run("missing organization reference", func(t *testing.T) {
		svc := newTestService(nil, nil, nil, nil, false)

		_, err := svc.CreateWarehouse(context.Background(), CreateWarehouseParams{
			Name:           "Central Distribution",
			Code:           "CD-01",
			OrganizationID: 99,
		})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("missing code", func(t *testing.T) {
		svc := newTestService(nil, nil, nil, nil, true)

		_, err := svc.CreateWarehouse(context.Background(), CreateWarehouseParams{
			Name:           "Central Distribution",
			OrganizationID: 3,
		})
		ve, ok := validation.AsError(err)
		if !ok {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, ok := ve.Fields["code"]; !ok {
			t.Errorf("expected code field error, got %v", ve.Fields)
		}
	})
}

func TestCreateZone_RequiresWarehouse(t *testing.T) {
	z := &zoneRepoMock{
		createFn: func(ctx context.Context, zone Zone) (*Zone, error) {
			zone.ID = 10
			return &zone, nil
		},
	}
	w := &warehouseRepoMock{
		existsFn: func(ctx context.Context, id int64) (bool, error) {
			return id == 1, nil
		},
	}
	svc := newTestService(w, z, nil, nil, true)

	if _, err := svc.CreateZone(context.Background(), CreateZoneParams{Name: "Receiving", Code: "RCV", WarehouseID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.CreateZone(context.Background(), CreateZoneParams{Name: "Receiving", Code: "RCV", WarehouseID: 2})
	if !errors.Is(err, ErrWarehouseNotFound) {
		t.Errorf("expected ErrWarehouseNotFound, got %v", err)
	}
}

func TestCreateBinType_RejectsNegativeCapacity(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil, true)

	_, err := svc.CreateBinType(context.Background(), CreateBinTypeParams{
		Name:           "Euro Pallet",
		MaxWeight:      -5,
		OrganizationID: 3,
	})
	ve, ok := validation.AsError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := ve.Fields["max_weight"]; !ok {
		t.Errorf("expected max_weight field error, got %v", ve.Fields)
	}
}

func TestCreateBin(t *testing.T) {
	zones := &zoneRepoMock{
		existsFn: func(ctx context.Context, id int64) (bool, error) { return id == 4, nil },
	}
	binTypes := &binTypeRepoMock{
		existsFn: func(ctx context.Context, id int64) (bool, error) { return id == 7, nil },
	}
	bins := &binRepoMock{
		createFn: func(ctx context.Context, b Bin) (*Bin, error) {
			b.ID = 20
			return &b, nil
		},
	}
	svc := newTestService(nil, zones, binTypes, bins, true)

	t.Run("defaults to active", func(t *testing.T) {
		created, err := svc.CreateBin(context.Background(), CreateBinParams{Name: "A-01-01", Code: "A0101", ZoneID: 4})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !created.Active {
			t.Error("expected new bin to default to active")
		}
		if created.BinTypeID != nil {
			t.Errorf("expected no bin type, got %v", created.BinTypeID)
		}
	})

	t.Run("missing zone", func(t *testing.T) {
		_, err := svc.CreateBin(context.Background(), CreateBinParams{Name: "A-01-01", Code: "A0101", ZoneID: 99})
		if !errors.Is(err, ErrZoneNotFound) {
			t.Errorf("expected ErrZoneNotFound, got %v", err)
		}
	})

	t.Run("missing bin type", func(t *testing.T) {
		bt := int64(99)
		_, err := svc.CreateBin(context.Background(), CreateBinParams{Name: "A-01-01", Code: "A0101", ZoneID: 4, BinTypeID: &bt})
		if !errors.Is(err, ErrBinTypeNotFound) {
			t.Errorf("expected ErrBinTypeNotFound, got %v", err)
		}
	})
}

func TestUpdateBin_PartialMerge(t *testing.T) {
	binType := int64(7)
	existing := Bin{ID: 20, Name: "A-01-01", Code: "A0101", ZoneID: 4, BinTypeID: &binType, Active: true}

	bins := &binRepoMock{
		getByIDFn: func(ctx context.Context, id int64) (*Bin, error) {
			cp := existing
			return &cp, nil
		},
		updateFn: func(ctx context.Context, b Bin) (*Bin, error) {
			return &b, nil
		},
	}
	svc := newTestService(nil, nil, nil, bins, true)

	inactive := false
	updated, err := svc.UpdateBin(context.Background(), 20, UpdateBinParams{Active: &inactive})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Active {
		t.Error("expected bin deactivated")
	}
	if updated.Name != existing.Name || updated.Code != existing.Code || updated.ZoneID != existing.ZoneID {
		t.Errorf("expected untouched fields preserved, got %+v", updated)
	}
	if updated.BinTypeID == nil || *updated.BinTypeID != binType {
		t.Errorf("expected bin type preserved, got %v", updated.BinTypeID)
	}
}

func TestUpdateWarehouse_NotFound(t *testing.T) {
	w := &warehouseRepoMock{
		getByIDFn: func(ctx context.Context, id int64) (*Warehouse, error) {
			return nil, ErrWarehouseNotFound
		},
	}
	svc := newTestService(w, nil, nil, nil, true)

	name := "Renamed"
	_, err := svc.UpdateWarehouse(context.Background(), 42, UpdateWarehouseParams{Name: &name})
	if !errors.Is(err, ErrWarehouseNotFound) {
		t.Errorf("expected ErrWarehouseNotFound, got %v", err)
	}
}
