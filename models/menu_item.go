package models

import (
	"time"

	"github.com/google/uuid"
)

// MenuItem is a sellable dish or drink on a property's menu. Orders snapshot
// its price at the moment a line item is added, so later price changes never
// rewrite an existing order.
type MenuItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	PropertyID  uuid.UUID `json:"property_id" db:"property_id"`
	Name        string    `json:"name" db:"name"`
	Category    *string   `json:"category,omitempty" db:"category"`
	Description *string   `json:"description,omitempty" db:"description"`
	Price       float64   `json:"price" db:"price"`
	ImageURL    *string   `json:"image_url,omitempty" db:"image_url"`
	IsAvailable bool      `json:"is_available" db:"is_available"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}

func (MenuItem) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS menu_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		property_id UUID NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		category TEXT,
		description TEXT,
		price DECIMAL(10,2) NOT NULL CHECK (price >= 0),
		image_url TEXT,
		is_available BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);`
}
