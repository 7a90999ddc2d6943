package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/warebase/server/internal/audit"
	"github.com/warebase/server/internal/auth"
	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/organizations"
	"github.com/warebase/server/internal/sanitize"
	"github.com/warebase/server/internal/validation"
)

// OrganizationChecker is satisfied by the organizations repository.
type OrganizationChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// ItemSource resolves catalog items referenced by order lines in one batch.
type ItemSource interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]catalog.Item, error)
}

// Service manages orders and their line items.
type Service struct {
	orders     OrderRepository
	orderItems OrderItemRepository
	items      ItemSource
	orgs       OrganizationChecker
	recorder   *audit.Recorder
	validate   *validator.Validate
	logger     zerolog.Logger
}

func NewService(
	orders OrderRepository,
	orderItems OrderItemRepository,
	items ItemSource,
	orgs OrganizationChecker,
	recorder *audit.Recorder,
	logger zerolog.Logger,
) *Service {
	return &Service{
		orders:     orders,
		orderItems: orderItems,
		items:      items,
		orgs:       orgs,
		recorder:   recorder,
		validate:   validation.New(),
		logger:     logger.With().Str("component", "orders").Logger(),
	}
}

type CreateItemParams struct {
	ItemID   int64 `json:"item_id" validate:"required,gt=0"`
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

type CreateParams struct {
	OrderNumber     string             `json:"order_number" validate:"required,min=1,max=100"`
	CustomerName    string             `json:"customer_name" validate:"required,min=1,max=200"`
	CustomerEmail   string             `json:"customer_email" validate:"omitempty,email,max=255"`
	ShippingAddress string             `json:"shipping_address" validate:"max=500"`
	Notes           string             `json:"notes" validate:"max=5000"`
	OrganizationID  int64              `json:"organization_id" validate:"required,gt=0"`
	Items           []CreateItemParams `json:"items" validate:"required,min=1,dive"`
}

type UpdateParams struct {
	CustomerName    *string `json:"customer_name" validate:"omitempty,min=1,max=200"`
	CustomerEmail   *string `json:"customer_email" validate:"omitempty,email,max=255"`
	ShippingAddress *string `json:"shipping_address" validate:"omitempty,max=500"`
	Notes           *string `json:"notes" validate:"omitempty,max=5000"`
	Status          *string `json:"status"`
}

type UpdateItemParams struct {
	Allocated *int64  `json:"allocated" validate:"omitempty,gte=0"`
	Picked    *int64  `json:"picked" validate:"omitempty,gte=0"`
	Status    *string `json:"status"`
}

func (s *Service) List(ctx context.Context, filters Filters) ([]Order, error) {
	return s.orders.List(ctx, filters)
}

// ListWithItems returns matching orders and their lines, batch-fetched by
// order id set.
func (s *Service) ListWithItems(ctx context.Context, filters Filters) ([]Order, map[int64][]OrderItem, error) {
	list, err := s.orders.List(ctx, filters)
	if err != nil {
		return nil, nil, err
	}
	if len(list) == 0 {
		return list, map[int64][]OrderItem{}, nil
	}
	ids := make([]int64, len(list))
	for i, o := range list {
		ids[i] = o.ID
	}
	items, err := s.orderItems.ListByOrderIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load order items: %w", err)
	}
	return list, items, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Order, []OrderItem, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.orderItems.ListByOrder(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load order items: %w", err)
	}
	return order, items, nil
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.orders.Exists(ctx, id)
}

// GetOrder returns the order row without its lines.
func (s *Service) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// Create persists the order and all of its lines in one transaction. The
// response carries exactly one order item per submitted line.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Order, []OrderItem, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, nil, err
	}

	ok, err := s.orgs.Exists(ctx, params.OrganizationID)
	if err != nil {
		return nil, nil, fmt.Errorf("check organization: %w", err)
	}
	if !ok {
		return nil, nil, fmt.Errorf("organization %d: %w", params.OrganizationID, organizations.ErrNotFound)
	}

	orderNumber := strings.TrimSpace(params.OrderNumber)
	if existing, err := s.orders.GetByNumber(ctx, params.OrganizationID, orderNumber); err == nil && existing != nil {
		return nil, nil, ErrOrderNumberTaken
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, nil, fmt.Errorf("check order number: %w", err)
	}

	itemIDs := make([]int64, len(params.Items))
	for i, line := range params.Items {
		itemIDs[i] = line.ItemID
	}
	known, err := s.items.GetByIDs(ctx, itemIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve items: %w", err)
	}
	for _, id := range itemIDs {
		if _, ok := known[id]; !ok {
			return nil, nil, fmt.Errorf("item %d: %w", id, catalog.ErrItemNotFound)
		}
	}

	lines := make([]OrderItem, len(params.Items))
	for i, line := range params.Items {
		lines[i] = OrderItem{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Status:   ItemStatusPending,
		}
	}

	order, created, err := s.orders.CreateWithItems(ctx, Order{
		OrderNumber:     orderNumber,
		CustomerName:    sanitize.Text(params.CustomerName),
		CustomerEmail:   strings.ToLower(strings.TrimSpace(params.CustomerEmail)),
		ShippingAddress: sanitize.Text(params.ShippingAddress),
		Status:          StatusPending,
		Notes:           sanitize.Text(params.Notes),
		OrganizationID:  params.OrganizationID,
		CreatedBy:       actorID(ctx),
	}, lines)
	if err != nil {
		return nil, nil, fmt.Errorf("create order: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:         "order.created",
		EntityType:     "order",
		EntityID:       strconv.FormatInt(order.ID, 10),
		OrganizationID: &order.OrganizationID,
		Details: map[string]interface{}{
			"order_number": order.OrderNumber,
			"item_count":   len(created),
		},
	})
	return order, created, nil
}

// Update merges the submitted fields. A status change is validated against
// the transition table and writes a second audit entry tagged as a
// status-change event.
func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Order, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}

	existing, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previousStatus := existing.Status
	if params.Status != nil && *params.Status != existing.Status {
		if err := ValidateTransition(existing.Status, *params.Status); err != nil {
			return nil, err
		}
		existing.Status = *params.Status
	}
	if params.CustomerName != nil {
		existing.CustomerName = sanitize.Text(*params.CustomerName)
	}
	if params.CustomerEmail != nil {
		existing.CustomerEmail = strings.ToLower(strings.TrimSpace(*params.CustomerEmail))
	}
	if params.ShippingAddress != nil {
		existing.ShippingAddress = sanitize.Text(*params.ShippingAddress)
	}
	if params.Notes != nil {
		existing.Notes = sanitize.Text(*params.Notes)
	}

	updated, err := s.orders.Update(ctx, *existing)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:         "order.updated",
		EntityType:     "order",
		EntityID:       strconv.FormatInt(updated.ID, 10),
		OrganizationID: &updated.OrganizationID,
		Details: map[string]interface{}{
			"order_number": updated.OrderNumber,
			"status":       updated.Status,
		},
	})
	if updated.Status != previousStatus {
		s.recorder.Record(ctx, audit.Entry{
			Action:         "order.status_changed",
			EntityType:     "order",
			EntityID:       strconv.FormatInt(updated.ID, 10),
			OrganizationID: &updated.OrganizationID,
			Details: map[string]interface{}{
				"order_number": updated.OrderNumber,
				"from":         previousStatus,
				"to":           updated.Status,
			},
		})
	}
	return updated, nil
}

// MarkShipped transitions an order to shipped on behalf of a shipment.
// Already-shipped orders pass through unchanged.
func (s *Service) MarkShipped(ctx context.Context, id int64) (*Order, error) {
	existing, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == StatusShipped {
		return existing, nil
	}
	status := StatusShipped
	return s.Update(ctx, id, UpdateParams{Status: &status})
}

func (s *Service) GetItem(ctx context.Context, id int64) (*OrderItem, error) {
	return s.orderItems.GetByID(ctx, id)
}

// UpdateItem merges progress counters and status onto one order line.
func (s *Service) UpdateItem(ctx context.Context, id int64, params UpdateItemParams) (*OrderItem, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}

	existing, err := s.orderItems.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Status != nil && *params.Status != existing.Status {
		if err := ValidateItemTransition(existing.Status, *params.Status); err != nil {
			return nil, err
		}
		existing.Status = *params.Status
	}
	if params.Allocated != nil {
		existing.Allocated = *params.Allocated
	}
	if params.Picked != nil {
		existing.Picked = *params.Picked
	}

	updated, err := s.orderItems.Update(ctx, *existing)
	if err != nil {
		return nil, fmt.Errorf("update order item: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:     "order_item.updated",
		EntityType: "order_item",
		EntityID:   strconv.FormatInt(updated.ID, 10),
		Details: map[string]interface{}{
			"order_id": updated.OrderID,
			"status":   updated.Status,
		},
	})
	return updated, nil
}

func actorID(ctx context.Context) *int64 {
	if p, ok := auth.PrincipalFromContext(ctx); ok {
		return &p.UserID
	}
	return nil
}
