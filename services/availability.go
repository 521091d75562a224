package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/thependalorian/buffrhost-sub008/database"
	"github.com/thependalorian/buffrhost-sub008/models"
)

// AvailabilityService owns every reservation mutation. All writes run inside
// a transaction that first locks the resource row, so two bookings for the
// same resource serialize around the overlap check. The exclusion constraint
// on reservations is the database-level backstop for the same rule.
type AvailabilityService struct {
	db *database.DB
}

func NewAvailabilityService(db *database.DB) *AvailabilityService {
	return &AvailabilityService{db: db}
}

// ReservationInput carries the fields a caller supplies when placing a hold.
type ReservationInput struct {
	ResourceID uuid.UUID
	CustomerID uuid.UUID
	StartTime  time.Time
	EndTime    time.Time
	PartySize  int
	Actor      string
}

func validateInterval(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return &ValidationError{Field: "interval", Message: "start and end times are required"}
	}
	if !start.Before(end) {
		return &ValidationError{Field: "interval", Message: "start must be before end"}
	}
	return nil
}

// CheckAvailability reports whether the resource has no held or confirmed
// reservation overlapping [start, end). The answer is advisory: a concurrent
// booking can land between this check and a later CreateReservation, which
// is why CreateReservation re-checks under a lock.
func (s *AvailabilityService) CheckAvailability(resourceID uuid.UUID, start, end time.Time) (bool, error) {
	if err := validateInterval(start, end); err != nil {
		return false, err
	}

	var conflict bool
	err := s.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE resource_id = $1
			  AND status IN ('held', 'confirmed')
			  AND start_time < $3
			  AND $2 < end_time
		)`, resourceID, start, end).Scan(&conflict)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}

	return !conflict, nil
}

// CreateReservation places a hold on the resource for the requested
// interval. The new reservation starts in status held and expires via the
// sweeper unless confirmed within the hold TTL.
func (s *AvailabilityService) CreateReservation(propertyID uuid.UUID, in ReservationInput) (*models.Reservation, error) {
	if err := validateInterval(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}
	if in.PartySize < 0 {
		return nil, &ValidationError{Field: "party_size", Message: "party size cannot be negative"}
	}
	if in.PartySize == 0 {
		in.PartySize = 1
	}
	if in.Actor == "" {
		in.Actor = "system"
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the resource row. Concurrent reservations on the same resource
	// queue here, so the overlap check below always sees the latest state.
	var isActive bool
	var capacity int
	err = tx.QueryRow(`
		SELECT is_active, capacity FROM bookable_resources
		WHERE id = $1 AND property_id = $2
		FOR UPDATE`, in.ResourceID, propertyID).Scan(&isActive, &capacity)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "resource", ID: in.ResourceID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock resource: %w", err)
	}
	if !isActive {
		return nil, &ValidationError{Field: "resource_id", Message: "resource is deactivated"}
	}
	if in.PartySize > capacity {
		return nil, &ValidationError{Field: "party_size", Message: fmt.Sprintf("party size %d exceeds capacity %d", in.PartySize, capacity)}
	}

	var conflictingID uuid.UUID
	err = tx.QueryRow(`
		SELECT id FROM reservations
		WHERE resource_id = $1
		  AND status IN ('held', 'confirmed')
		  AND start_time < $3
		  AND $2 < end_time
		LIMIT 1`, in.ResourceID, in.StartTime, in.EndTime).Scan(&conflictingID)
	if err == nil {
		return nil, &ConflictError{
			ResourceID:    in.ResourceID,
			Start:         in.StartTime,
			End:           in.EndTime,
			ConflictingID: conflictingID,
		}
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check for conflicting reservations: %w", err)
	}

	now := time.Now()
	res := &models.Reservation{
		ID:         uuid.New(),
		ResourceID: in.ResourceID,
		CustomerID: in.CustomerID,
		Status:     models.ReservationHeld,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		PartySize:  in.PartySize,
		CreatedBy:  in.Actor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err = tx.Exec(`
		INSERT INTO reservations (id, resource_id, customer_id, status, start_time, end_time, party_size, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		res.ID, res.ResourceID, res.CustomerID, res.Status, res.StartTime, res.EndTime, res.PartySize, res.CreatedBy, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return nil, s.translateInsertError(err, in)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reservation: %w", err)
	}

	return res, nil
}

// translateInsertError maps constraint failures raised by the database into
// the matching business error. The exclusion constraint fires when a writer
// on a different resource row slipped an overlapping interval past us, which
// cannot happen under the row lock but is kept as a backstop.
func (s *AvailabilityService) translateInsertError(err error, in ReservationInput) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23P01": // exclusion_violation
			return &ConflictError{ResourceID: in.ResourceID, Start: in.StartTime, End: in.EndTime}
		case "23503": // foreign_key_violation
			return &NotFoundError{Entity: "customer", ID: in.CustomerID}
		}
	}
	return fmt.Errorf("failed to create reservation: %w", err)
}

// ConfirmReservation promotes a held reservation to confirmed. Confirming an
// already confirmed reservation is a no-op; confirming a cancelled one is an
// error because its slot may have been given away.
func (s *AvailabilityService) ConfirmReservation(propertyID, reservationID uuid.UUID) (*models.Reservation, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := s.lockReservation(tx, propertyID, reservationID)
	if err != nil {
		return nil, err
	}

	if res.Status == models.ReservationConfirmed {
		return res, nil
	}
	if res.Status == models.ReservationCancelled {
		return nil, &ValidationError{Field: "status", Message: "reservation is cancelled and cannot be confirmed"}
	}

	now := time.Now()
	_, err = tx.Exec(`
		UPDATE reservations SET status = $1, updated_at = $2 WHERE id = $3`,
		models.ReservationConfirmed, now, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit confirmation: %w", err)
	}

	res.Status = models.ReservationConfirmed
	res.UpdatedAt = now
	return res, nil
}

// CancelReservation cancels a held or confirmed reservation, freeing its
// interval immediately. Cancelling an already cancelled reservation succeeds
// without touching the row, so retried cancellations are safe.
func (s *AvailabilityService) CancelReservation(propertyID, reservationID uuid.UUID, reason string) (*models.Reservation, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := s.lockReservation(tx, propertyID, reservationID)
	if err != nil {
		return nil, err
	}

	if res.Status == models.ReservationCancelled {
		return res, nil
	}

	now := time.Now()
	var cancelReason *string
	if reason != "" {
		cancelReason = &reason
	}
	_, err = tx.Exec(`
		UPDATE reservations SET status = $1, cancel_reason = $2, updated_at = $3 WHERE id = $4`,
		models.ReservationCancelled, cancelReason, now, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	res.Status = models.ReservationCancelled
	res.CancelReason = cancelReason
	res.UpdatedAt = now
	return res, nil
}

// lockReservation loads a reservation scoped to the property and locks it
// for the rest of the transaction.
func (s *AvailabilityService) lockReservation(tx *sql.Tx, propertyID, reservationID uuid.UUID) (*models.Reservation, error) {
	var res models.Reservation
	err := tx.QueryRow(`
		SELECT r.id, r.resource_id, r.customer_id, r.status, r.start_time, r.end_time, r.party_size, r.cancel_reason, r.created_by, r.created_at, r.updated_at
		FROM reservations r
		JOIN bookable_resources br ON r.resource_id = br.id
		WHERE r.id = $1 AND br.property_id = $2
		FOR UPDATE OF r`, reservationID, propertyID).Scan(
		&res.ID, &res.ResourceID, &res.CustomerID, &res.Status, &res.StartTime, &res.EndTime,
		&res.PartySize, &res.CancelReason, &res.CreatedBy, &res.CreatedAt, &res.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "reservation", ID: reservationID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	return &res, nil
}

// ExpireStaleHolds cancels every held reservation older than the hold TTL
// and returns how many were expired. The sweeper calls this on a timer.
func (s *AvailabilityService) ExpireStaleHolds(ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)

	result, err := s.db.Exec(`
		UPDATE reservations
		SET status = 'cancelled', cancel_reason = 'hold expired', updated_at = NOW()
		WHERE status = 'held' AND created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale holds: %w", err)
	}

	return result.RowsAffected()
}
