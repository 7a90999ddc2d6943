package warehouses

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/warebase/server/internal/audit"
	"github.com/warebase/server/internal/domain/organizations"
	"github.com/warebase/server/internal/validation"
)

// OrganizationChecker is satisfied by the organizations repository.
type OrganizationChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Service manages the physical storage topology: warehouses, their zones,
// bin types, and bins.
type Service struct {
	warehouses WarehouseRepository
	zones      ZoneRepository
	binTypes   BinTypeRepository
	bins       BinRepository
	orgs       OrganizationChecker
	recorder   *audit.Recorder
	validate   *validator.Validate
	logger     zerolog.Logger
}

func NewService(
	warehouses WarehouseRepository,
	zones ZoneRepository,
	binTypes BinTypeRepository,
	bins BinRepository,
	orgs OrganizationChecker,
	recorder *audit.Recorder,
	logger zerolog.Logger,
) *Service {
	return &Service{
		warehouses: warehouses,
		zones:      zones,
		binTypes:   binTypes,
		bins:       bins,
		orgs:       orgs,
		recorder:   recorder,
		validate:   validation.New(),
		logger:     logger.With().Str("component", "warehouses").Logger(),
	}
}

type CreateWarehouseParams struct {
	Name           string `json:"name" validate:"required,min=2,max=200"`
	Code           string `json:"code" validate:"required,min=1,max=50"`
	Address        string `json:"address" validate:"max=500"`
	OrganizationID int64  `json:"organization_id" validate:"required,gt=0"`
}

type UpdateWarehouseParams struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=200"`
	Code    *string `json:"code" validate:"omitempty,min=1,max=50"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

type CreateZoneParams struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Code        string `json:"code" validate:"required,min=1,max=50"`
	WarehouseID int64  `json:"warehouse_id" validate:"required,gt=0"`
}

type UpdateZoneParams struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=200"`
	Code *string `json:"code" validate:"omitempty,min=1,max=50"`
}

type CreateBinTypeParams struct {
	Name           string  `json:"name" validate:"required,min=1,max=200"`
	MaxWeight      float64 `json:"max_weight" validate:"gte=0"`
	MaxVolume      float64 `json:"max_volume" validate:"gte=0"`
	Length         float64 `json:"length" validate:"gte=0"`
	Width          float64 `json:"width" validate:"gte=0"`
	Height         float64 `json:"height" validate:"gte=0"`
	OrganizationID int64   `json:"organization_id" validate:"required,gt=0"`
}

type UpdateBinTypeParams struct {
	Name      *string  `json:"name" validate:"omitempty,min=1,max=200"`
	MaxWeight *float64 `json:"max_weight" validate:"omitempty,gte=0"`
	MaxVolume *float64 `json:"max_volume" validate:"omitempty,gte=0"`
	Length    *float64 `json:"length" validate:"omitempty,gte=0"`
	Width     *float64 `json:"width" validate:"omitempty,gte=0"`
	Height    *float64 `json:"height" validate:"omitempty,gte=0"`
}

type CreateBinParams struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	Code      string `json:"code" validate:"required,min=1,max=50"`
	ZoneID    int64  `json:"zone_id" validate:"required,gt=0"`
	BinTypeID *int64 `json:"bin_type_id" validate:"omitempty,gt=0"`
	Active    *bool  `json:"active"`
}

type UpdateBinParams struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=200"`
	Code      *string `json:"code" validate:"omitempty,min=1,max=50"`
	BinTypeID *int64  `json:"bin_type_id" validate:"omitempty,gt=0"`
	Active    *bool   `json:"active"`
}

func (s *Service) ListWarehouses(ctx context.Context, filters WarehouseFilters) ([]Warehouse, error) {
	return s.warehouses.List(ctx, filters)
}

func (s *Service) GetWarehouse(ctx context.Context, id int64) (*Warehouse, error) {
	return s.warehouses.GetByID(ctx, id)
}

func (s *Service) CreateWarehouse(ctx context.Context, params CreateWarehouseParams) (*Warehouse, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}
	if err := s.checkOrganization(ctx, params.OrganizationID); err != nil {
		return nil, err
	}

	created, err := s.warehouses.Create(ctx, Warehouse{
		Name:           params.Name,
		Code:           params.Code,
		Address:        params.Address,
		OrganizationID: params.OrganizationID,
	})
	if err != nil {
		return nil, fmt.Errorf("create warehouse: %w", err)
	}

	s.record(ctx, "warehouse.created", "warehouse", created.ID, &created.OrganizationID, map[string]interface{}{
		"name": created.Name, "code": created.Code,
	})
	return created, nil
}

func (s *Service) UpdateWarehouse(ctx context.Context, id int64, params UpdateWarehouseParams) (*Warehouse, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}

	existing, err := s.warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Name != nil {
		existing.Name = *params.Name
	}
	if params.Code != nil {
		existing.Code = *params.Code
	}
	if params.Address != nil {
		existing.Address = *params.Address
	}

	updated, err := s.warehouses.Update(ctx, *existing)
	if err != nil {
		return nil, fmt.Errorf("update warehouse: %w", err)
	}

	s.record(ctx, "warehouse.updated", "warehouse", updated.ID, &updated.OrganizationID, map[string]interface{}{
		"name": updated.Name, "code": updated.Code,
	})
	return updated, nil
}

func (s *Service) ListZones(ctx context.Context, filters ZoneFilters) ([]Zone, error) {
	return s.zones.List(ctx, filters)
}

func (s *Service) GetZone(ctx context.Context, id int64) (*Zone, error) {
	return s.zones.GetByID(ctx, id)
}

func (s *Service) CreateZone(ctx context.Context, params CreateZoneParams) (*Zone, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}
	ok, err := s.warehouses.Exists(ctx, params.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("check warehouse: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("warehouse %d: %w", params.WarehouseID, ErrWarehouseNotFound)
	}

	created, err := s.zones.Create(ctx, Zone{
		Name:        params.Name,
		Code:        params.Code,
		WarehouseID: params.WarehouseID,
	})
	if err != nil {
		return nil, fmt.Errorf("create zone: %w", err)
	}

	s.record(ctx, "zone.created", "zone", created.ID, nil, map[string]interface{}{
		"name": created.Name, "code": created.Code, "warehouse_id": created.WarehouseID,
	})
	return created, nil
}

func (s *Service) UpdateZone(ctx context.Context, id int64, params UpdateZoneParams) (*Zone, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}

	existing, err := s.zones.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Name != nil {
		existing.Name = *params.Name
	}
	if params.Code != nil {
		existing.Code = *params.Code
	}

	updated, err := s.zones.Update(ctx, *existing)
	if err != nil {
		return nil, fmt.Errorf("update zone: %w", err)
	}

	s.record(ctx, "zone.updated", "zone", updated.ID, nil, map[string]interface{}{
		"name": updated.Name, "code": updated.Code,
	})
	return updated, nil
}

func (s *Service) ListBinTypes(ctx context.Context, filters BinTypeFilters) ([]BinType, error) {
	return s.binTypes.List(ctx, filters)
}

func (s *Service) GetBinType(ctx context.Context, id int64) (*BinType, error) {
	return s.binTypes.GetByID(ctx, id)
}

func (s *Service) CreateBinType(ctx context.Context, params CreateBinTypeParams) (*BinType, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}
	if err := s.checkOrganization(ctx, params.OrganizationID); err != nil {
		return nil, err
	}

	created, err := s.binTypes.Create(ctx, BinType{
		Name:           params.Name,
		MaxWeight:      params.MaxWeight,
		MaxVolume:      params.MaxVolume,
		Length:         params.Length,
		Width:          params.Width,
		Height:         params.Height,
		OrganizationID: params.OrganizationID,
	})
	if err != nil {
		return nil, fmt.Errorf("create bin type: %w", err)
	}

	s.record(ctx, "bin_type.created", "bin_type", created.ID, &created.OrganizationID, map[string]interface{}{
		"name": created.Name,
	})
	return created, nil
}

func (s *Service) UpdateBinType(ctx context.Context, id int64, params UpdateBinTypeParams) (*BinType, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}

	existing, err := s.binTypes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Name != nil {
		existing.Name = *params.Name
	}
	if params.MaxWeight != nil {
		existing.MaxWeight = *params.MaxWeight
	}
	if params.MaxVolume != nil {
		existing.MaxVolume = *params.MaxVolume
	}
	if params.Length != nil {
		existing.Length = *params.Length
	}
	if params.Width != nil {
		existing.Width = *params.Width
	}
	if params.Height != nil {
		existing.Height = *params.Height
	}

	updated, err := s.binTypes.Update(ctx, *existing)
	if err != nil {
		return nil, fmt.Errorf("update bin type: %w", err)
	}

	s.record(ctx, "bin_type.updated", "bin_type", updated.ID, &updated.OrganizationID, map[string]interface{}{
		"name": updated.Name,
	})
	return updated, nil
}

func (s *Service) ListBins(ctx context.Context, filters BinFilters) ([]Bin, error) {
	return s.bins.List(ctx, filters)
}

func (s *Service) GetBin(ctx context.Context, id int64) (*Bin, error) {
	return s.bins.GetByID(ctx, id)
}

func (s *Service) CreateBin(ctx context.Context, params CreateBinParams) (*Bin, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}
	ok, err := s.zones.Exists(ctx, params.ZoneID)
	if err != nil {
		return nil, fmt.Errorf("check zone: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("zone %d: %w", params.ZoneID, ErrZoneNotFound)
	}
	if params.BinTypeID != nil {
		ok, err := s.binTypes.Exists(ctx, *params.BinTypeID)
		if err != nil {
			return nil, fmt.Errorf("check bin type: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("bin type %d: %w", *params.BinTypeID, ErrBinTypeNotFound)
		}
	}

	active := true
	if params.Active != nil {
		active = *params.Active
	}

	created, err := s.bins.Create(ctx, Bin{
		Name:      params.Name,
		Code:      params.Code,
		ZoneID:    params.ZoneID,
		BinTypeID: params.BinTypeID,
		Active:    active,
	})
	if err != nil {
		return nil, fmt.Errorf("create bin: %w", err)
	}

	s.record(ctx, "bin.created", "bin", created.ID, nil, map[string]interface{}{
		"name": created.Name, "code": created.Code, "zone_id": created.ZoneID,
	})
	return created, nil
}

func (s *Service) UpdateBin(ctx context.Context, id int64, params UpdateBinParams) (*Bin, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}

	existing, err := s.bins.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Name != nil {
		existing.Name = *params.Name
	}
	if params.Code != nil {
		existing.Code = *params.Code
	}
	if params.BinTypeID != nil {
		ok, err := s.binTypes.Exists(ctx, *params.BinTypeID)
		if err != nil {
			return nil, fmt.Errorf("check bin type: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("bin type %d: %w", *params.BinTypeID, ErrBinTypeNotFound)
		}
		existing.BinTypeID = params.BinTypeID
	}
	if params.Active != nil {
		existing.Active = *params.Active
	}

	updated, err := s.bins.Update(ctx, *existing)
	if err != nil {
		return nil, fmt.Errorf("update bin: %w", err)
	}

	s.record(ctx, "bin.updated", "bin", updated.ID, nil, map[string]interface{}{
		"name": updated.Name, "code": updated.Code, "active": updated.Active,
	})
	return updated, nil
}

func (s *Service) checkOrganization(ctx context.Context, id int64) error {
	ok, err := s.orgs.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check organization: %w", err)
	}
	if !ok {
		return fmt.Errorf("organization %d: %w", id, organizations.ErrNotFound)
	}
	return nil
}

func (s *Service) record(ctx context.Context, action, entityType string, id int64, orgID *int64, details map[string]interface{}) {
	s.recorder.Record(ctx, audit.Entry{
		Action:         action,
		EntityType:     entityType,
		EntityID:       strconv.FormatInt(id, 10),
		OrganizationID: orgID,
		Details:        details,
	})
}
