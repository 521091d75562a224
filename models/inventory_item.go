package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is a tracked stock item in a property's storeroom.
// CurrentStock is a cached balance; the stock_transactions ledger is the
// source of truth and the two only ever move together. The CHECK constraint
// mirrors the application-level rule that stock never goes negative.
type InventoryItem struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	PropertyID   uuid.UUID  `json:"property_id" db:"property_id"`
	SKU          string     `json:"sku" db:"sku"`
	Name         string     `json:"name" db:"name"`
	Unit         string     `json:"unit" db:"unit"`
	CurrentStock float64    `json:"current_stock" db:"current_stock"`
	MinStock     float64    `json:"min_stock" db:"min_stock"`
	MaxStock     *float64   `json:"max_stock,omitempty" db:"max_stock"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// LowStock reports whether the item has fallen to or below its reorder
// threshold.
func (i *InventoryItem) LowStock() bool {
	return i.CurrentStock <= i.MinStock
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}

func (InventoryItem) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS inventory_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		property_id UUID NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		sku TEXT NOT NULL,
		name TEXT NOT NULL,
		unit TEXT NOT NULL DEFAULT 'unit',
		current_stock NUMERIC(12,3) NOT NULL DEFAULT 0 CHECK (current_stock >= 0),
		min_stock NUMERIC(12,3) NOT NULL DEFAULT 0,
		max_stock NUMERIC(12,3),
		expiry_date TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(property_id, sku)
	);`
}
