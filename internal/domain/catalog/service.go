package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/warebase/server/internal/audit"
	"github.com/warebase/server/internal/domain/organizations"
	"github.com/warebase/server/internal/sanitize"
	"github.com/warebase/server/internal/validation"
)

// OrganizationChecker is satisfied by the organizations repository.
type OrganizationChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Service manages the product catalog: categories, suppliers, and items.
type Service struct {
	categories CategoryRepository
	suppliers  SupplierRepository
	items      ItemRepository
	orgs       OrganizationChecker
	recorder   *audit.Recorder
	validate   *validator.Validate
	logger     zerolog.Logger
}

func NewService(
	categories CategoryRepository,
	suppliers SupplierRepository,
	items ItemRepository,
	orgs OrganizationChecker,
	recorder *audit.Recorder,
	logger zerolog.Logger,
) *Service {
	return &Service{
		categories: categories,
		suppliers:  suppliers,
		items:      items,
		orgs:       orgs,
		recorder:   recorder,
		validate:   validation.New(),
		logger:     logger.With().Str("component", "catalog").Logger(),
	}
}

type CreateCategoryParams struct {
	Name           string `json:"name" validate:"required,min=1,max=200"`
	Code           string `json:"code" validate:"max=50"`
	Description    string `json:"description" validate:"max=2000"`
	OrganizationID int64  `json:"organization_id" validate:"required,gt=0"`
}

type UpdateCategoryParams struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Code        *string `json:"code" validate:"omitempty,max=50"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type CreateSupplierParams struct {
	Name           string `json:"name" validate:"required,min=1,max=200"`
	Code           string `json:"code" validate:"max=50"`
	Description    string `json:"description" validate:"max=2000"`
	ContactName    string `json:"contact_name" validate:"max=200"`
	ContactEmail   string `json:"contact_email" validate:"omitempty,email,max=255"`
	ContactPhone   string `json:"contact_phone" validate:"max=50"`
	OrganizationID int64  `json:"organization_id" validate:"required,gt=0"`
}

type UpdateSupplierParams struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	Code         *string `json:"code" validate:"omitempty,max=50"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	ContactName  *string `json:"contact_name" validate:"omitempty,max=200"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email,max=255"`
	ContactPhone *string `json:"contact_phone" validate:"omitempty,max=50"`
}

type CreateItemParams struct {
	SKU             string  `json:"sku" validate:"required,min=1,max=100"`
	Name            string  `json:"name" validate:"required,min=1,max=200"`
	Description     string  `json:"description" validate:"max=5000"`
	Barcode         string  `json:"barcode" validate:"max=100"`
	CategoryID      *int64  `json:"category_id" validate:"omitempty,gt=0"`
	SupplierID      *int64  `json:"supplier_id" validate:"omitempty,gt=0"`
	Length          float64 `json:"length" validate:"gte=0"`
	Width           float64 `json:"width" validate:"gte=0"`
	Height          float64 `json:"height" validate:"gte=0"`
	Weight          float64 `json:"weight" validate:"gte=0"`
	ReorderPoint    int64   `json:"reorder_point" validate:"gte=0"`
	ReorderQuantity int64   `json:"reorder_quantity" validate:"gte=0"`
	OrganizationID  int64   `json:"organization_id" validate:"required,gt=0"`
}

type UpdateItemParams struct {
	SKU             *string  `json:"sku" validate:"omitempty,min=1,max=100"`
	Name            *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description     *string  `json:"description" validate:"omitempty,max=5000"`
	Barcode         *string  `json:"barcode" validate:"omitempty,max=100"`
	CategoryID      *int64   `json:"category_id" validate:"omitempty,gt=0"`
	SupplierID      *int64   `json:"supplier_id" validate:"omitempty,gt=0"`
	Length          *float64 `json:"length" validate:"omitempty,gte=0"`
	Width           *float64 `json:"width" validate:"omitempty,gte=0"`
	Height          *float64 `json:"height" validate:"omitempty,gte=0"`
	Weight          *float64 `json:"weight" validate:"omitempty,gte=0"`
	ReorderPoint    *int64   `json:"reorder_point" validate:"omitempty,gte=0"`
	ReorderQuantity *int64   `json:"reorder_quantity" validate:"omitempty,gte=0"`
}

func (s *Service) ListCategories(ctx context.Context, filters CategoryFilters) ([]Category, error) {
	return s.categories.List(ctx, filters)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, params CreateCategoryParams) (*Category, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}
	if err := s.checkOrganization(ctx, params.OrganizationID); err != nil {
		return nil, err
	}

	created, err := s.categories.Create(ctx, Category{
		Name:           params.Name,
		Code:           params.Code,
		Description:    sanitize.Text(params.Description),
		OrganizationID: params.OrganizationID,
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.record(ctx, "category.created", "category", created.ID, &created.OrganizationID, map[string]interface{}{
		"name": created.Name,
	})
	return created, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, params UpdateCategoryParams) (*Category, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}

	existing, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Name != nil {
		existing.Name = *params.Name
	}
	if params.Code != nil {
		existing.Code = *params.Code
	}
	if params.Description != nil {
		existing.Description = sanitize.Text(*params.Description)
	}

	updated, err := s.categories.Update(ctx, *existing)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	s.record(ctx, "category.updated", "category", updated.ID, &updated.OrganizationID, map[string]interface{}{
		"name": updated.Name,
	})
	return updated, nil
}

func (s *Service) ListSuppliers(ctx context.Context, filters SupplierFilters) ([]Supplier, error) {
	return s.suppliers.List(ctx, filters)
}

func (s *Service) GetSupplier(ctx context.Context, id int64) (*Supplier, error) {
	return s.suppliers.GetByID(ctx, id)
}

func (s *Service) CreateSupplier(ctx context.Context, params CreateSupplierParams) (*Supplier, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}
	if err := s.checkOrganization(ctx, params.OrganizationID); err != nil {
		return nil, err
	}

	created, err := s.suppliers.Create(ctx, Supplier{
		Name:           params.Name,
		Code:           params.Code,
		Description:    sanitize.Text(params.Description),
		ContactName:    sanitize.Text(params.ContactName),
		ContactEmail:   strings.ToLower(strings.TrimSpace(params.ContactEmail)),
		ContactPhone:   params.ContactPhone,
		OrganizationID: params.OrganizationID,
	})
	if err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}

	s.record(ctx, "supplier.created", "supplier", created.ID, &created.OrganizationID, map[string]interface{}{
		"name": created.Name,
	})
	return created, nil
}

func (s *Service) UpdateSupplier(ctx context.Context, id int64, params UpdateSupplierParams) (*Supplier, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}

	existing, err := s.suppliers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Name != nil {
		existing.Name = *params.Name
	}
	if params.Code != nil {
		existing.Code = *params.Code
	}
	if params.Description != nil {
		existing.Description = sanitize.Text(*params.Description)
	}
	if params.ContactName != nil {
		existing.ContactName = sanitize.Text(*params.ContactName)
	}
	if params.ContactEmail != nil {
		existing.ContactEmail = strings.ToLower(strings.TrimSpace(*params.ContactEmail))
	}
	if params.ContactPhone != nil {
		existing.ContactPhone = *params.ContactPhone
	}

	updated, err := s.suppliers.Update(ctx, *existing)
	if err != nil {
		return nil, fmt.Errorf("update supplier: %w", err)
	}

	s.record(ctx, "supplier.updated", "supplier", updated.ID, &updated.OrganizationID, map[string]interface{}{
		"name": updated.Name,
	})
	return updated, nil
}

func (s *Service) ListItems(ctx context.Context, filters ItemFilters) ([]Item, error) {
	return s.items.List(ctx, filters)
}

func (s *Service) GetItem(ctx context.Context, id int64) (*Item, error) {
	return s.items.GetByID(ctx, id)
}

func (s *Service) GetItemsByIDs(ctx context.Context, ids []int64) (map[int64]Item, error) {
	return s.items.GetByIDs(ctx, ids)
}

func (s *Service) CreateItem(ctx context.Context, params CreateItemParams) (*Item, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}
	if err := s.checkOrganization(ctx, params.OrganizationID); err != nil {
		return nil, err
	}

	sku := strings.TrimSpace(params.SKU)
	if existing, err := s.items.GetBySKU(ctx, params.OrganizationID, sku); err == nil && existing != nil {
		return nil, ErrSKUTaken
	} else if err != nil && !errors.Is(err, ErrItemNotFound) {
		return nil, fmt.Errorf("check sku: %w", err)
	}

	if err := s.checkItemReferences(ctx, params.CategoryID, params.SupplierID); err != nil {
		return nil, err
	}

	created, err := s.items.Create(ctx, Item{
		SKU:             sku,
		Name:            params.Name,
		Description:     sanitize.Text(params.Description),
		Barcode:         params.Barcode,
		CategoryID:      params.CategoryID,
		SupplierID:      params.SupplierID,
		Length:          params.Length,
		Width:           params.Width,
		Height:          params.Height,
		Weight:          params.Weight,
		ReorderPoint:    params.ReorderPoint,
		ReorderQuantity: params.ReorderQuantity,
		OrganizationID:  params.OrganizationID,
	})
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.record(ctx, "item.created", "item", created.ID, &created.OrganizationID, map[string]interface{}{
		"sku": created.SKU, "name": created.Name,
	})
	return created, nil
}

func (s *Service) UpdateItem(ctx context.Context, id int64, params UpdateItemParams) (*Item, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}

	existing, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.SKU != nil {
		sku := strings.TrimSpace(*params.SKU)
		if sku != existing.SKU {
			if other, err := s.items.GetBySKU(ctx, existing.OrganizationID, sku); err == nil && other != nil && other.ID != id {
				return nil, ErrSKUTaken
			} else if err != nil && !errors.Is(err, ErrItemNotFound) {
				return nil, fmt.Errorf("check sku: %w", err)
			}
		}
		existing.SKU = sku
	}
	if params.Name != nil {
		existing.Name = *params.Name
	}
	if params.Description != nil {
		existing.Description = sanitize.Text(*params.Description)
	}
	if params.Barcode != nil {
		existing.Barcode = *params.Barcode
	}
	if err := s.checkItemReferences(ctx, params.CategoryID, params.SupplierID); err != nil {
		return nil, err
	}
	if params.CategoryID != nil {
		existing.CategoryID = params.CategoryID
	}
	if params.SupplierID != nil {
		existing.SupplierID = params.SupplierID
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
	if params.Weight != nil {
		existing.Weight = *params.Weight
	}
	if params.ReorderPoint != nil {
		existing.ReorderPoint = *params.ReorderPoint
	}
	if params.ReorderQuantity != nil {
		existing.ReorderQuantity = *params.ReorderQuantity
	}

	updated, err := s.items.Update(ctx, *existing)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.record(ctx, "item.updated", "item", updated.ID, &updated.OrganizationID, map[string]interface{}{
		"sku": updated.SKU, "name": updated.Name,
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

func (s *Service) checkItemReferences(ctx context.Context, categoryID, supplierID *int64) error {
	if categoryID != nil {
		ok, err := s.categories.Exists(ctx, *categoryID)
		if err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if !ok {
			return fmt.Errorf("category %d: %w", *categoryID, ErrCategoryNotFound)
		}
	}
	if supplierID != nil {
		ok, err := s.suppliers.Exists(ctx, *supplierID)
		if err != nil {
			return fmt.Errorf("check supplier: %w", err)
		}
		if !ok {
			return fmt.Errorf("supplier %d: %w", *supplierID, ErrSupplierNotFound)
		}
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
