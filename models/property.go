package models

import (
	"time"

	"github.com/google/uuid"
)

// PropertyType distinguishes the kinds of hospitality properties the
// platform hosts.
type PropertyType string

const (
	PropertyGuesthouse PropertyType = "guesthouse"
	PropertyRestaurant PropertyType = "restaurant"
	PropertyHotel      PropertyType = "hotel"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyGuesthouse, PropertyRestaurant, PropertyHotel:
		return true
	}
	return false
}

// Property is the top-level tenant. Every resource, menu item, inventory
// item and order belongs to exactly one property, and staff tokens are
// scoped to one.
type Property struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	PropertyType PropertyType `json:"property_type" db:"property_type"`
	Address      *string      `json:"address,omitempty" db:"address"`
	City         *string      `json:"city,omitempty" db:"city"`
	Country      *string      `json:"country,omitempty" db:"country"`
	Phone        *string      `json:"phone,omitempty" db:"phone"`
	Email        *string      `json:"email,omitempty" db:"email"`
	IsActive     bool         `json:"is_active" db:"is_active"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

func (Property) TableName() string {
	return "properties"
}

func (Property) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS properties (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		property_type TEXT NOT NULL CHECK (property_type IN ('guesthouse', 'restaurant', 'hotel')),
		address TEXT,
		city TEXT,
		country TEXT,
		phone TEXT,
		email TEXT,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);`
}
