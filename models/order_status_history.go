package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatusHistory is one entry in an order's append-only audit trail.
// Every order gets a row at creation and one per transition after that.
// Rows are never updated or deleted.
type OrderStatusHistory struct {
	ID        int64       `json:"id" db:"id"`
	OrderID   uuid.UUID   `json:"order_id" db:"order_id"`
	Status    OrderStatus `json:"status" db:"status"`
	Actor     string      `json:"actor" db:"actor"`
	Notes     *string     `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}

func (OrderStatusHistory) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS order_status_history (
		id BIGSERIAL PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		status TEXT NOT NULL CHECK (status IN ('pending', 'confirmed', 'preparing', 'ready', 'completed', 'cancelled')),
		actor TEXT NOT NULL DEFAULT 'system',
		notes TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);`
}
