package shipments

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/warebase/server/internal/domain/orders"
	"github.com/warebase/server/internal/validation"
)

type mockRepository struct {
	listFn     func(ctx context.Context, filters Filters) ([]Shipment, error)
	getByIDFn  func(ctx context.Context, id int64) (*Shipment, error)
	getByIDsFn func(ctx context.Context, ids []int64) (map[int64]Shipment, error)
	createFn   func(ctx context.Context, shipment Shipment) (*Shipment, error)
	updateFn   func(ctx context.Context, shipment Shipment) (*Shipment, error)
	existsFn   func(ctx context.Context, id int64) (bool, error)
}

func (m *mockRepository) List(ctx context.Context, f Filters) ([]Shipment, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*Shipment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]Shipment, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) Create(ctx context.Context, sh Shipment) (*Shipment, error) {
	if m.createFn != nil {
		return m.createFn(ctx, sh)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) Update(ctx context.Context, sh Shipment) (*Shipment, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, sh)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, errors.New("not implemented")
}

// mockOrderGateway stands in for the orders service.
type mockOrderGateway struct {
	order       *orders.Order
	markShipped int
}

func (g *mockOrderGateway) GetOrder(ctx context.Context, id int64) (*orders.Order, error) {
	if g.order == nil {
		return nil, orders.ErrNotFound
	}
	cp := *g.order
	return &cp, nil
}

func (g *mockOrderGateway) MarkShipped(ctx context.Context, id int64) (*orders.Order, error) {
	g.markShipped++
	cp := *g.order
	cp.Status = orders.StatusShipped
	return &cp, nil
}

type captureNotifier struct {
	notices []Shipment
}

func (n *captureNotifier) NotifyShipmentCreated(ctx context.Context, order orders.Order, shipment Shipment) error {
	n.notices = append(n.notices, shipment)
	return nil
}

func echoCreate(ctx context.Context, sh Shipment) (*Shipment, error) {
	sh.ID = 1
	return &sh, nil
}

func TestCreateShipment(t *testing.T) {
	t.Run("success without order flip", func(t *testing.T) {
		gateway := &mockOrderGateway{order: &orders.Order{ID: 5, Status: orders.StatusProcessing, OrganizationID: 3}}
		repo := &mockRepository{createFn: echoCreate}
		svc := NewService(repo, gateway, nil, nil, zerolog.Nop())

		created, err := svc.Create(context.Background(), CreateParams{OrderID: 5, Carrier: "UPS"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.Status != StatusPending {
			t.Errorf("expected pending, got %q", created.Status)
		}
		if gateway.markShipped != 0 {
			t.Errorf("expected no order flip, got %d", gateway.markShipped)
		}
	})

	t.Run("flips order when requested", func(t *testing.T) {
		gateway := &mockOrderGateway{order: &orders.Order{ID: 5, Status: orders.StatusProcessing, OrganizationID: 3}}
		repo := &mockRepository{createFn: echoCreate}
		svc := NewService(repo, gateway, nil, nil, zerolog.Nop())

		if _, err := svc.Create(context.Background(), CreateParams{OrderID: 5, Carrier: "UPS", MarkOrderShipped: true}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gateway.markShipped != 1 {
			t.Errorf("expected one order flip, got %d", gateway.markShipped)
		}
	})

	t.Run("rejects flip for terminal order before writing", func(t *testing.T) {
		gateway := &mockOrderGateway{order: &orders.Order{ID: 5, Status: orders.StatusCanceled, OrganizationID: 3}}
		createCalled := false
		repo := &mockRepository{
			createFn: func(ctx context.Context, sh Shipment) (*Shipment, error) {
				createCalled = true
				return echoCreate(ctx, sh)
			},
		}
		svc := NewService(repo, gateway, nil, nil, zerolog.Nop())

		_, err := svc.Create(context.Background(), CreateParams{OrderID: 5, Carrier: "UPS", MarkOrderShipped: true})
		if !errors.Is(err, orders.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
		if createCalled {
			t.Error("expected no shipment row for a rejected flip")
		}
	})

	t.Run("rejects non-http label URL", func(t *testing.T) {
		gateway := &mockOrderGateway{order: &orders.Order{ID: 5, Status: orders.StatusProcessing, OrganizationID: 3}}
		svc := NewService(&mockRepository{createFn: echoCreate}, gateway, nil, nil, zerolog.Nop())

		_, err := svc.Create(context.Background(), CreateParams{
			OrderID: 5, Carrier: "UPS", LabelURL: "ftp://labels.example.com/1.pdf",
		})
		var ue validation.URLValidationError
		if !errors.As(err, &ue) {
			t.Fatalf("expected URLValidationError, got %v", err)
		}
		if ue.Field != "label_url" {
			t.Errorf("expected label_url field, got %q", ue.Field)
		}
	})

	t.Run("missing order", func(t *testing.T) {
		svc := NewService(&mockRepository{}, &mockOrderGateway{}, nil, nil, zerolog.Nop())

		_, err := svc.Create(context.Background(), CreateParams{OrderID: 99, Carrier: "UPS"})
		if !errors.Is(err, orders.ErrNotFound) {
			t.Errorf("expected orders.ErrNotFound, got %v", err)
		}
	})

	t.Run("notifies customer when email present", func(t *testing.T) {
		gateway := &mockOrderGateway{order: &orders.Order{
			ID: 5, Status: orders.StatusProcessing, OrganizationID: 3,
			CustomerEmail: "jordan@example.com",
		}}
		notifier := &captureNotifier{}
		svc := NewService(&mockRepository{createFn: echoCreate}, gateway, notifier, nil, zerolog.Nop())

		if _, err := svc.Create(context.Background(), CreateParams{OrderID: 5, Carrier: "UPS"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(notifier.notices) != 1 {
			t.Errorf("expected one notice, got %d", len(notifier.notices))
		}
	})

	t.Run("skips notice without customer email", func(t *testing.T) {
		gateway := &mockOrderGateway{order: &orders.Order{ID: 5, Status: orders.StatusProcessing, OrganizationID: 3}}
		notifier := &captureNotifier{}
		svc := NewService(&mockRepository{createFn: echoCreate}, gateway, notifier, nil, zerolog.Nop())

		if _, err := svc.Create(context.Background(), CreateParams{OrderID: 5, Carrier: "UPS"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(notifier.notices) != 0 {
			t.Errorf("expected no notices, got %d", len(notifier.notices))
		}
	})
}

func TestShipmentTransitions(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{StatusPending, StatusInTransit, true},
		{StatusPending, StatusCanceled, true},
		{StatusInTransit, StatusDelivered, true},
		{StatusInTransit, StatusReturned, true},

		{StatusPending, StatusDelivered, false},
		{StatusDelivered, StatusInTransit, false},
		{StatusReturned, StatusInTransit, false},
		{StatusCanceled, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+" to "+tt.to, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.allowed {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestUpdateShipment_StatusTransition(t *testing.T) {
	repo := &mockRepository{
		getByIDFn: func(ctx context.Context, id int64) (*Shipment, error) {
			return &Shipment{ID: id, OrderID: 5, Carrier: "UPS", Status: StatusPending}, nil
		},
		updateFn: func(ctx context.Context, sh Shipment) (*Shipment, error) {
			return &sh, nil
		},
	}
	svc := NewService(repo, &mockOrderGateway{}, nil, nil, zerolog.Nop())

	status := StatusInTransit
	tracking := "1Z999AA10123456784"
	updated, err := svc.Update(context.Background(), 1, UpdateParams{Status: &status, TrackingNumber: &tracking})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusInTransit || updated.TrackingNumber != tracking {
		t.Errorf("unexpected shipment %+v", updated)
	}
	if updated.Carrier != "UPS" {
		t.Errorf("expected carrier preserved, got %q", updated.Carrier)
	}

	bad := StatusPending
	repo.getByIDFn = func(ctx context.Context, id int64) (*Shipment, error) {
		return &Shipment{ID: id, Status: StatusDelivered}, nil
	}
	if _, err := svc.Update(context.Background(), 1, UpdateParams{Status: &bad}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}
