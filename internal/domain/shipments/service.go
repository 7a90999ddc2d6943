package shipments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/warebase/server/internal/audit"
	"github.com/warebase/server/internal/auth"
	"github.com/warebase/server/internal/domain/orders"
	"github.com/warebase/server/internal/validation"
)

// OrderGateway is satisfied by the orders service. Shipments read the parent
// order and may flip it to shipped.
type OrderGateway interface {
	GetOrder(ctx context.Context, id int64) (*orders.Order, error)
	MarkShipped(ctx context.Context, id int64) (*orders.Order, error)
}

// Notifier sends the customer-facing shipment notice. Implementations must be
// safe to skip when the order has no customer email.
type Notifier interface {
	NotifyShipmentCreated(ctx context.Context, order orders.Order, shipment Shipment) error
}

// Service manages shipments for orders.
type Service struct {
	repo     Repository
	orders   OrderGateway
	notifier Notifier
	recorder *audit.Recorder
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(repo Repository, orderGateway OrderGateway, notifier Notifier, recorder *audit.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		orders:   orderGateway,
		notifier: notifier,
		recorder: recorder,
		validate: validation.New(),
		logger:   logger.With().Str("component", "shipments").Logger(),
	}
}

type CreateParams struct {
	OrderID          int64   `json:"order_id" validate:"required,gt=0"`
	Carrier          string  `json:"carrier" validate:"required,min=1,max=100"`
	TrackingNumber   string  `json:"tracking_number" validate:"max=100"`
	Cost             float64 `json:"cost" validate:"gte=0"`
	Weight           float64 `json:"weight" validate:"gte=0"`
	Length           float64 `json:"length" validate:"gte=0"`
	Width            float64 `json:"width" validate:"gte=0"`
	Height           float64 `json:"height" validate:"gte=0"`
	LabelURL         string  `json:"label_url" validate:"omitempty,url,max=500"`
	MarkOrderShipped bool    `json:"mark_order_shipped"`
}

type UpdateParams struct {
	Carrier        *string  `json:"carrier" validate:"omitempty,min=1,max=100"`
	TrackingNumber *string  `json:"tracking_number" validate:"omitempty,max=100"`
	Cost           *float64 `json:"cost" validate:"omitempty,gte=0"`
	Weight         *float64 `json:"weight" validate:"omitempty,gte=0"`
	Length         *float64 `json:"length" validate:"omitempty,gte=0"`
	Width          *float64 `json:"width" validate:"omitempty,gte=0"`
	Height         *float64 `json:"height" validate:"omitempty,gte=0"`
	LabelURL       *string  `json:"label_url" validate:"omitempty,url,max=500"`
	Status         *string  `json:"status"`
}

func (s *Service) List(ctx context.Context, filters Filters) ([]Shipment, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Shipment, error) {
	return s.repo.GetByID(ctx, id)
}

// Create records a shipment for an order. When the caller asks for it, the
// parent order is flipped to shipped; the flip's legality is checked before
// the shipment row is written so an impossible flip fails the whole request.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Shipment, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}
	// The url tag accepts any scheme; label URLs end up in customer emails,
	// so only http(s) passes.
	if err := validation.ValidateURL(params.LabelURL, "label_url", false); err != nil {
		return nil, err
	}

	order, err := s.orders.GetOrder(ctx, params.OrderID)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", params.OrderID, err)
	}
	if params.MarkOrderShipped && order.Status != orders.StatusShipped {
		if err := orders.ValidateTransition(order.Status, orders.StatusShipped); err != nil {
			return nil, err
		}
	}

	created, err := s.repo.Create(ctx, Shipment{
		OrderID:        params.OrderID,
		Carrier:        params.Carrier,
		TrackingNumber: params.TrackingNumber,
		Cost:           params.Cost,
		Weight:         params.Weight,
		Length:         params.Length,
		Width:          params.Width,
		Height:         params.Height,
		LabelURL:       params.LabelURL,
		Status:         StatusPending,
		CreatedBy:      actorID(ctx),
	})
	if err != nil {
		return nil, fmt.Errorf("create shipment: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:         "shipment.created",
		EntityType:     "shipment",
		EntityID:       strconv.FormatInt(created.ID, 10),
		OrganizationID: &order.OrganizationID,
		Details: map[string]interface{}{
			"order_id": created.OrderID,
			"carrier":  created.Carrier,
			"tracking": created.TrackingNumber,
		},
	})

	if params.MarkOrderShipped {
		if order, err = s.orders.MarkShipped(ctx, params.OrderID); err != nil {
			return nil, fmt.Errorf("mark order shipped: %w", err)
		}
	}

	s.notify(ctx, *order, *created)
	return created, nil
}

// Update merges the submitted fields. Status changes are validated against
// the transition table.
func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Shipment, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}
	if params.LabelURL != nil {
		if err := validation.ValidateURL(*params.LabelURL, "label_url", false); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Status != nil && *params.Status != existing.Status {
		if err := ValidateTransition(existing.Status, *params.Status); err != nil {
			return nil, err
		}
		existing.Status = *params.Status
	}
	if params.Carrier != nil {
		existing.Carrier = *params.Carrier
	}
	if params.TrackingNumber != nil {
		existing.TrackingNumber = *params.TrackingNumber
	}
	if params.Cost != nil {
		existing.Cost = *params.Cost
	}
	if params.Weight != nil {
		existing.Weight = *params.Weight
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
	if params.LabelURL != nil {
		existing.LabelURL = *params.LabelURL
	}

	updated, err := s.repo.Update(ctx, *existing)
	if err != nil {
		return nil, fmt.Errorf("update shipment: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:     "shipment.updated",
		EntityType: "shipment",
		EntityID:   strconv.FormatInt(updated.ID, 10),
		Details: map[string]interface{}{
			"order_id": updated.OrderID,
			"status":   updated.Status,
		},
	})
	return updated, nil
}

// notify sends the shipment notice when the order carries a customer email.
// Failures are logged, never surfaced.
func (s *Service) notify(ctx context.Context, order orders.Order, shipment Shipment) {
	if s.notifier == nil || order.CustomerEmail == "" {
		return
	}
	if err := s.notifier.NotifyShipmentCreated(ctx, order, shipment); err != nil {
		s.logger.Error().Err(err).Int64("shipment_id", shipment.ID).Msg("shipment notification failed")
	}
}

func actorID(ctx context.Context) *int64 {
	if p, ok := auth.PrincipalFromContext(ctx); ok {
		return &p.UserID
	}
	return nil
}
