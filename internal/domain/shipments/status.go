package shipments

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Shipment lifecycle. Delivered, returned, and canceled are terminal.
const (
	StatusPending   = "pending"
	StatusInTransit = "in_transit"
	StatusDelivered = "delivered"
	StatusReturned  = "returned"
	StatusCanceled  = "canceled"
)

var transitions = map[string][]string{
	StatusPending:   {StatusInTransit, StatusCanceled},
	StatusInTransit: {StatusDelivered, StatusReturned},
	StatusDelivered: nil,
	StatusReturned:  nil,
	StatusCanceled:  nil,
}

// Statuses lists the shipment statuses in lifecycle order.
func Statuses() []string {
	return []string{StatusPending, StatusInTransit, StatusDelivered, StatusReturned, StatusCanceled}
}

func KnownStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether a shipment may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition when the move is not in the
// transition table.
func ValidateTransition(from, to string) error {
	if !KnownStatus(to) {
		return fmt.Errorf("unknown status %q: %w", to, ErrInvalidTransition)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%s to %s: %w", from, to, ErrInvalidTransition)
	}
	return nil
}
