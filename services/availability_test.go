package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thependalorian/buffrhost-sub008/database"
	"github.com/thependalorian/buffrhost-sub008/models"
)

func newAvailabilityMock(t *testing.T) (*AvailabilityService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	svc := NewAvailabilityService(&database.DB{DB: db})
	return svc, mock, func() { db.Close() }
}

func TestCheckAvailabilityRejectsBadInterval(t *testing.T) {
	svc, mock, closeFn := newAvailabilityMock(t)
	defer closeFn()

	start := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)

	_, err := svc.CheckAvailability(uuid.New(), start, start)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = svc.CheckAvailability(uuid.New(), start, start.Add(-time.Hour))
	require.ErrorAs(t, err, &vErr)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAvailabilityFreeSlot(t *testing.T) {
	svc, mock, closeFn := newAvailabilityMock(t)
	defer closeFn()

	resourceID := uuid.New()
	start := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(resourceID, start, end).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	available, err := svc.CheckAvailability(resourceID, start, end)
	require.NoError(t, err)
	assert.True(t, available)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAvailabilityOccupiedSlot(t *testing.T) {
	svc, mock, closeFn := newAvailabilityMock(t)
	defer closeFn()

	resourceID := uuid.New()
	start := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(resourceID, start, end).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	available, err := svc.CheckAvailability(resourceID, start, end)
	require.NoError(t, err)
	assert.False(t, available)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationPlacesHold(t *testing.T) {
	svc, mock, closeFn := newAvailabilityMock(t)
	defer closeFn()

	propertyID := uuid.New()
	resourceID := uuid.New()
	customerID := uuid.New()
	start := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_active, capacity FROM bookable_resources").
		WithArgs(resourceID, propertyID).
		WillReturnRows(sqlmock.NewRows([]string{"is_active", "capacity"}).AddRow(true, 4))
	mock.ExpectQuery("SELECT id FROM reservations").
		WithArgs(resourceID, start, end).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(sqlmock.AnyArg(), resourceID, customerID, "held", start, end, 2, "staff-7", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.CreateReservation(propertyID, ReservationInput{
		ResourceID: resourceID,
		CustomerID: customerID,
		StartTime:  start,
		EndTime:    end,
		PartySize:  2,
		Actor:      "staff-7",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReservationHeld, res.Status)
	assert.Equal(t, resourceID, res.ResourceID)
	assert.Equal(t, 2, res.PartySize)
	assert.Equal(t, "staff-7", res.CreatedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationConflict(t *testing.T) {
	svc, mock, closeFn := newAvailabilityMock(t)
	defer closeFn()

	propertyID := uuid.New()
	resourceID := uuid.New()
	existingID := uuid.New()
	start := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_active, capacity FROM bookable_resources").
		WithArgs(resourceID, propertyID).
		WillReturnRows(sqlmock.NewRows([]string{"is_active", "capacity"}).AddRow(true, 4))
	mock.ExpectQuery("SELECT id FROM reservations").
		WithArgs(resourceID, start, end).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(existingID.String()))
	mock.ExpectRollback()

	_, err := svc.CreateReservation(propertyID, ReservationInput{
		ResourceID: resourceID,
		CustomerID: uuid.New(),
		StartTime:  start,
		EndTime:    end,
	})
	var cErr *ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, existingID, cErr.ConflictingID)
	assert.Equal(t, resourceID, cErr.ResourceID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationUnknownResource(t *testing.T) {
	svc, mock, closeFn := newAvailabilityMock(t)
	defer closeFn()

	propertyID := uuid.New()
	resourceID := uuid.New()
	start := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_active, capacity FROM bookable_resources").
		WithArgs(resourceID, propertyID).
		WillReturnRows(sqlmock.NewRows([]string{"is_active", "capacity"}))
	mock.ExpectRollback()

	_, err := svc.CreateReservation(propertyID, ReservationInput{
		ResourceID: resourceID,
		CustomerID: uuid.New(),
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
	})
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "resource", nfErr.Entity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationDeactivatedResource(t *testing.T) {
	svc, mock, closeFn := newAvailabilityMock(t)
	defer closeFn()

	propertyID := uuid.New()
	resourceID := uuid.New()
	start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_active, capacity FROM bookable_resources").
		WithArgs(resourceID, propertyID).
		WillReturnRows(sqlmock.NewRows([]string{"is_active", "capacity"}).AddRow(false, 4))
	mock.ExpectRollback()

	_, err := svc.CreateReservation(propertyID, ReservationInput{
		ResourceID: resourceID,
		CustomerID: uuid.New(),
		StartTime:  start,
		EndTime:    start.Add(2 * time.Hour),
	})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationPartySizeOverCapacity(t *testing.T) {
	svc, mock, closeFn := newAvailabilityMock(t)
	defer closeFn()

	propertyID := uuid.New()
	resourceID := uuid.New()
	start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_active, capacity FROM bookable_resources").
		WithArgs(resourceID, propertyID).
		WillReturnRows(sqlmock.NewRows([]string{"is_active", "capacity"}).AddRow(true, 4))
	mock.ExpectRollback()

	_, err := svc.CreateReservation(propertyID, ReservationInput{
		ResourceID: resourceID,
		CustomerID: uuid.New(),
		StartTime:  start,
		EndTime:    start.Add(2 * time.Hour),
		PartySize:  6,
	})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "party_size", vErr.Field)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationExclusionRace(t *testing.T) {
	svc, mock, closeFn := newAvailabilityMock(t)
	defer closeFn()

	propertyID := uuid.New()
	resourceID := uuid.New()
	start := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_active, capacity FROM bookable_resources").
		WithArgs(resourceID, propertyID).
		WillReturnRows(sqlmock.NewRows([]string{"is_active", "capacity"}).AddRow(true, 4))
	mock.ExpectQuery("SELECT id FROM reservations").
		WithArgs(resourceID, start, end).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO reservations").
		WillReturnError(&pq.Error{Code: "23P01", Constraint: "reservations_no_overlap"})
	mock.ExpectRollback()

	_, err := svc.CreateReservation(propertyID, ReservationInput{
		ResourceID: resourceID,
		CustomerID: uuid.New(),
		StartTime:  start,
		EndTime:    end,
	})
	var cErr *ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, uuid.Nil, cErr.ConflictingID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func reservationRow(res *models.Reservation) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "resource_id", "customer_id", "status", "start_time", "end_time",
		"party_size", "cancel_reason", "created_by", "created_at", "updated_at",
	}).AddRow(
		res.ID.String(), res.ResourceID.String(), res.CustomerID.String(), string(res.Status),
		res.StartTime, res.EndTime, res.PartySize, nil, res.CreatedBy, res.CreatedAt, res.UpdatedAt,
	)
}

func sampleReservation(status models.ReservationStatus) *models.Reservation {
	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return &models.Reservation{
		ID:         uuid.New(),
		ResourceID: uuid.New(),
		CustomerID: uuid.New(),
		Status:     status,
		StartTime:  time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2025, 6, 3, 11, 0, 0, 0, time.UTC),
		PartySize:  2,
		CreatedBy:  "staff-7",
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestConfirmReservationPromotesHold(t *testing.T) {
	svc, mock, closeFn := newAvailabilityMock(t)
	defer closeFn()

	propertyID := uuid.New()
	res := sampleReservation(models.ReservationHeld)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT r.id, r.resource_id").
		WithArgs(res.ID, propertyID).
		WillReturnRows(reservationRow(res))
	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs("confirmed", sqlmock.AnyArg(), res.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	confirmed, err := svc.ConfirmReservation(propertyID, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationConfirmed, confirmed.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmReservationAlreadyConfirmedIsNoOp(t *testing.T) {
	svc, mock, closeFn := newAvailabilityMock(t)
	defer closeFn()

	propertyID := uuid.New()
	res := sampleReservation(models.ReservationConfirmed)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT r.id, r.resource_id").
		WithArgs(res.ID, propertyID).
		WillReturnRows(reservationRow(res))
	mock.ExpectRollback()

	confirmed, err := svc.ConfirmReservation(propertyID, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationConfirmed, confirmed.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmReservationCancelledFails(t *testing.T) {
	svc, mock, closeFn := newAvailabilityMock(t)
	defer closeFn()

	propertyID := uuid.New()
	res := sampleReservation(models.ReservationCancelled)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT r.id, r.resource_id").
		WithArgs(res.ID, propertyID).
		WillReturnRows(reservationRow(res))
	mock.ExpectRollback()

	_, err := svc.ConfirmReservation(propertyID, res.ID)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelReservationFreesSlot(t *testing.T) {
	svc, mock, closeFn := newAvailabilityMock(t)
	defer closeFn()

	propertyID := uuid.New()
	res := sampleReservation(models.ReservationConfirmed)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT r.id, r.resource_id").
		WithArgs(res.ID, propertyID).
		WillReturnRows(reservationRow(res))
	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs("cancelled", "guest request", sqlmock.AnyArg(), res.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	cancelled, err := svc.CancelReservation(propertyID, res.ID, "guest request")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "guest request", *cancelled.CancelReason)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelReservationIdempotent(t *testing.T) {
	svc, mock, closeFn := newAvailabilityMock(t)
	defer closeFn()

	propertyID := uuid.New()
	res := sampleReservation(models.ReservationCancelled)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT r.id, r.resource_id").
		WithArgs(res.ID, propertyID).
		WillReturnRows(reservationRow(res))
	mock.ExpectRollback()

	cancelled, err := svc.CancelReservation(propertyID, res.ID, "again")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, cancelled.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelReservationNotFound(t *testing.T) {
	svc, mock, closeFn := newAvailabilityMock(t)
	defer closeFn()

	propertyID := uuid.New()
	reservationID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT r.id, r.resource_id").
		WithArgs(reservationID, propertyID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := svc.CancelReservation(propertyID, reservationID, "")
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "reservation", nfErr.Entity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireStaleHolds(t *testing.T) {
	svc, mock, closeFn := newAvailabilityMock(t)
	defer closeFn()

	mock.ExpectExec("UPDATE reservations").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	expired, err := svc.ExpireStaleHolds(15 * time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(3), expired)
	require.NoError(t, mock.ExpectationsWereMet())
}
