package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thependalorian/buffrhost-sub008/models"
)

// Business rejections returned by the availability, inventory and order
// services. Handlers match them with errors.As to pick the HTTP status;
// everything else is treated as an internal error.

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NotFoundError reports a missing entity. An entity outside the caller's
// property scope reports exactly the same way as one that does not exist.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError reports a reservation attempt whose interval overlaps an
// existing held or confirmed reservation on the same resource.
// ConflictingID is zero when the overlap was detected by the database
// constraint rather than the in-transaction check.
type ConflictError struct {
	ResourceID    uuid.UUID
	Start         time.Time
	End           time.Time
	ConflictingID uuid.UUID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("resource %s is not available from %s to %s",
		e.ResourceID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// InsufficientStockError reports a stock decrease that would take the item's
// level below zero.
type InsufficientStockError struct {
	ItemID    uuid.UUID
	Requested float64
	Available float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s: requested %.3f, available %.3f",
		e.ItemID, e.Requested, e.Available)
}

// InvalidTransitionError reports an order status change that is not an edge
// in the lifecycle graph.
type InvalidTransitionError struct {
	OrderID uuid.UUID
	From    models.OrderStatus
	To      models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %s cannot move from %s to %s", e.OrderID, e.From, e.To)
}
