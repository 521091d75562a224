package models

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of a reservation. Holds are
// provisional and expire if never confirmed; confirmed reservations block
// their interval until cancelled.
type ReservationStatus string

const (
	ReservationHeld      ReservationStatus = "held"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationHeld, ReservationConfirmed, ReservationCancelled:
		return true
	}
	return false
}

// Active reports whether a reservation in this status still blocks its
// interval. Cancelled reservations free the slot immediately.
func (s ReservationStatus) Active() bool {
	return s == ReservationHeld || s == ReservationConfirmed
}

// Reservation blocks one resource for a half-open time interval
// [StartTime, EndTime). For rooms the interval is check-in to check-out,
// for tables it is the seating slot.
type Reservation struct {
	ID           uuid.UUID         `json:"id" db:"id"`
	ResourceID   uuid.UUID         `json:"resource_id" db:"resource_id"`
	CustomerID   uuid.UUID         `json:"customer_id" db:"customer_id"`
	Status       ReservationStatus `json:"status" db:"status"`
	StartTime    time.Time         `json:"start_time" db:"start_time"`
	EndTime      time.Time         `json:"end_time" db:"end_time"`
	PartySize    int               `json:"party_size" db:"party_size"`
	CancelReason *string           `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CreatedBy    string            `json:"created_by" db:"created_by"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" db:"updated_at"`
}

// IntervalsOverlap reports whether the half-open intervals [aStart, aEnd)
// and [bStart, bEnd) intersect. Touching endpoints do not overlap, so a
// checkout at 11:00 and a check-in at 11:00 on the same room are
// compatible.
func IntervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Overlaps reports whether the reservation's interval intersects
// [start, end).
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return IntervalsOverlap(r.StartTime, r.EndTime, start, end)
}

func (Reservation) TableName() string {
	return "reservations"
}

// CreateTableSQL declares the overlap exclusion constraint alongside the
// table. The constraint only covers active reservations, so cancelled rows
// never block a slot. Requires the btree_gist extension.
func (Reservation) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS reservations (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		resource_id UUID NOT NULL REFERENCES bookable_resources(id) ON DELETE CASCADE,
		customer_id UUID NOT NULL REFERENCES customers(id),
		status TEXT NOT NULL DEFAULT 'held' CHECK (status IN ('held', 'confirmed', 'cancelled')),
		start_time TIMESTAMP WITH TIME ZONE NOT NULL,
		end_time TIMESTAMP WITH TIME ZONE NOT NULL,
		party_size INTEGER NOT NULL DEFAULT 1 CHECK (party_size > 0),
		cancel_reason TEXT,
		created_by TEXT NOT NULL DEFAULT 'system',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CHECK (start_time < end_time),
		CONSTRAINT reservations_no_overlap EXCLUDE USING gist (
			resource_id WITH =,
			tstzrange(start_time, end_time) WITH &&
		) WHERE (status IN ('held', 'confirmed'))
	);`
}
