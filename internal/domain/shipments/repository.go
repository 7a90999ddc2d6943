package shipments

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("shipment not found")

// Shipment is one outbound parcel or freight movement for an order.
// Dimensions are in centimeters, weight in kilograms.
type Shipment struct {
	ID             int64
	OrderID        int64
	Carrier        string
	TrackingNumber string
	Cost           float64
	Weight         float64
	Length         float64
	Width          float64
	Height         float64
	LabelURL       string
	Status         string
	CreatedBy      *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Filters struct {
	OrderID *int64
	Status  string
	Carrier string
}

type Repository interface {
	List(ctx context.Context, filters Filters) ([]Shipment, error)
	GetByID(ctx context.Context, id int64) (*Shipment, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]Shipment, error)
	Create(ctx context.Context, shipment Shipment) (*Shipment, error)
	Update(ctx context.Context, shipment Shipment) (*Shipment, error)
	Exists(ctx context.Context, id int64) (bool, error)
}
