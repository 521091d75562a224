package models

import (
	"time"

	"github.com/google/uuid"
)

// ResourceKind is the kind of thing a reservation blocks out: a guest room
// booked by night or a restaurant table booked by time slot. Both share the
// same interval semantics.
type ResourceKind string

const (
	ResourceRoom  ResourceKind = "room"
	ResourceTable ResourceKind = "table"
)

func (k ResourceKind) Valid() bool {
	return k == ResourceRoom || k == ResourceTable
}

// BookableResource is a single reservable unit within a property. A
// deactivated resource keeps its reservation history but accepts no new
// reservations.
type BookableResource struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	PropertyID  uuid.UUID    `json:"property_id" db:"property_id"`
	Kind        ResourceKind `json:"kind" db:"kind"`
	Name        string       `json:"name" db:"name"`
	Capacity    int          `json:"capacity" db:"capacity"`
	Rate        float64      `json:"rate" db:"rate"`
	Description *string      `json:"description,omitempty" db:"description"`
	ImageURL    *string      `json:"image_url,omitempty" db:"image_url"`
	IsActive    bool         `json:"is_active" db:"is_active"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

func (BookableResource) TableName() string {
	return "bookable_resources"
}

func (BookableResource) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS bookable_resources (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		property_id UUID NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		kind TEXT NOT NULL CHECK (kind IN ('room', 'table')),
		name TEXT NOT NULL,
		capacity INTEGER NOT NULL DEFAULT 1 CHECK (capacity > 0),
		rate DECIMAL(10,2) NOT NULL DEFAULT 0,
		description TEXT,
		image_url TEXT,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(property_id, name)
	);`
}
