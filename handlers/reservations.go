package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thependalorian/buffrhost-sub008/models"
	"github.com/thependalorian/buffrhost-sub008/services"
)

// CreateReservation places a hold on a resource for a time window. The hold
// expires automatically unless confirmed within the configured TTL.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req struct {
		ResourceID string    `json:"resource_id" binding:"required"`
		CustomerID string    `json:"customer_id" binding:"required"`
		StartTime  time.Time `json:"start_time" binding:"required"`
		EndTime    time.Time `json:"end_time" binding:"required"`
		PartySize  int       `json:"party_size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	resourceID, err := uuid.Parse(req.ResourceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resource_id"})
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer_id"})
		return
	}

	res, err := h.Availability.CreateReservation(propertyScope(c), services.ReservationInput{
		ResourceID: resourceID,
		CustomerID: customerID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		PartySize:  req.PartySize,
		Actor:      actor(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// ConfirmReservation promotes a held reservation to confirmed.
func (h *Handler) ConfirmReservation(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	res, err := h.Availability.ConfirmReservation(propertyScope(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// CancelReservation cancels a reservation and frees its time window.
func (h *Handler) CancelReservation(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// The body is optional; cancelling without a reason is fine.
	_ = c.ShouldBindJSON(&req)

	res, err := h.Availability.CancelReservation(propertyScope(c), id, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// ListReservations returns the property's reservations, optionally filtered
// by resource and status, newest first.
func (h *Handler) ListReservations(c *gin.Context) {
	query := `
		SELECT r.id, r.resource_id, r.customer_id, r.status, r.start_time, r.end_time, r.party_size, r.cancel_reason, r.created_by, r.created_at, r.updated_at
		FROM reservations r
		JOIN bookable_resources br ON r.resource_id = br.id
		WHERE br.property_id = $1`
	args := []interface{}{propertyScope(c)}

	if resourceID := c.Query("resource_id"); resourceID != "" {
		id, err := uuid.Parse(resourceID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resource_id"})
			return
		}
		query += ` AND r.resource_id = $` + strconv.Itoa(len(args)+1)
		args = append(args, id)
	}
	if status := c.Query("status"); status != "" {
		if !models.ReservationStatus(status).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
			return
		}
		query += ` AND r.status = $` + strconv.Itoa(len(args)+1)
		args = append(args, status)
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from time, expected RFC3339"})
			return
		}
		query += ` AND r.end_time > $` + strconv.Itoa(len(args)+1)
		args = append(args, t)
	}

	query += ` ORDER BY r.start_time DESC LIMIT 200`

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reservations"})
		return
	}
	defer rows.Close()

	reservations := []models.Reservation{}
	for rows.Next() {
		var r models.Reservation
		if err := rows.Scan(&r.ID, &r.ResourceID, &r.CustomerID, &r.Status, &r.StartTime, &r.EndTime,
			&r.PartySize, &r.CancelReason, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan reservation"})
			return
		}
		reservations = append(reservations, r)
	}

	c.JSON(http.StatusOK, gin.H{"reservations": reservations})
}

// GetReservation returns one reservation, scoped to the caller's property
// through the resource it books.
func (h *Handler) GetReservation(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var r models.Reservation
	err := h.DB.QueryRow(`
		SELECT r.id, r.resource_id, r.customer_id, r.status, r.start_time, r.end_time, r.party_size, r.cancel_reason, r.created_by, r.created_at, r.updated_at
		FROM reservations r
		JOIN bookable_resources br ON r.resource_id = br.id
		WHERE r.id = $1 AND br.property_id = $2`, id, propertyScope(c)).
		Scan(&r.ID, &r.ResourceID, &r.CustomerID, &r.Status, &r.StartTime, &r.EndTime,
			&r.PartySize, &r.CancelReason, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reservation"})
		return
	}

	c.JSON(http.StatusOK, r)
}
