package orders

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Order lifecycle. Delivered and canceled are terminal; a canceled order can
// never return to pending.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCanceled   = "canceled"
)

var orderTransitions = map[string][]string{
	StatusPending:    {StatusProcessing, StatusShipped, StatusCanceled},
	StatusProcessing: {StatusShipped, StatusCanceled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  nil,
	StatusCanceled:   nil,
}

// Order item lifecycle, tracking the pick workflow for a single line.
const (
	ItemStatusPending   = "pending"
	ItemStatusAllocated = "allocated"
	ItemStatusPicked    = "picked"
	ItemStatusShipped   = "shipped"
	ItemStatusCanceled  = "canceled"
)

var itemTransitions = map[string][]string{
	ItemStatusPending:   {ItemStatusAllocated, ItemStatusCanceled},
	ItemStatusAllocated: {ItemStatusPicked, ItemStatusCanceled},
	ItemStatusPicked:    {ItemStatusShipped},
	ItemStatusShipped:   nil,
	ItemStatusCanceled:  nil,
}

// Statuses lists the order statuses in lifecycle order.
func Statuses() []string {
	return []string{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCanceled}
}

// ItemStatuses lists the order item statuses in lifecycle order.
func ItemStatuses() []string {
	return []string{ItemStatusPending, ItemStatusAllocated, ItemStatusPicked, ItemStatusShipped, ItemStatusCanceled}
}

func KnownStatus(s string) bool {
	_, ok := orderTransitions[s]
	return ok
}

func KnownItemStatus(s string) bool {
	_, ok := itemTransitions[s]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition when the move is not in the
// order transition table.
func ValidateTransition(from, to string) error {
	if !KnownStatus(to) {
		return fmt.Errorf("unknown status %q: %w", to, ErrInvalidTransition)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%s to %s: %w", from, to, ErrInvalidTransition)
	}
	return nil
}

// CanTransitionItem reports whether an order item may move between statuses.
func CanTransitionItem(from, to string) bool {
	for _, allowed := range itemTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateItemTransition returns ErrInvalidTransition when the move is not in
// the item transition table.
func ValidateItemTransition(from, to string) error {
	if !KnownItemStatus(to) {
		return fmt.Errorf("unknown status %q: %w", to, ErrInvalidTransition)
	}
	if !CanTransitionItem(from, to) {
		return fmt.Errorf("%s to %s: %w", from, to, ErrInvalidTransition)
	}
	return nil
}
