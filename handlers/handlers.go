package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thependalorian/buffrhost-sub008/database"
	"github.com/thependalorian/buffrhost-sub008/services"
)

// Handler carries the shared dependencies for all HTTP handlers. Media is
// nil when no Cloudinary credentials are configured; image endpoints answer
// 503 in that case.
type Handler struct {
	DB           *database.DB
	Availability *services.AvailabilityService
	Ledger       *services.InventoryLedger
	Orders       *services.OrderLifecycle
	Media        *services.MediaService
}

func NewHandler(db *database.DB, media *services.MediaService) *Handler {
	return &Handler{
		DB:           db,
		Availability: services.NewAvailabilityService(db),
		Ledger:       services.NewInventoryLedger(db),
		Orders:       services.NewOrderLifecycle(db),
		Media:        media,
	}
}

// propertyScope returns the property the request's token is scoped to.
func propertyScope(c *gin.Context) uuid.UUID {
	if v, ok := c.Get("property_id"); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// actor returns the staff identity used for audit fields.
func actor(c *gin.Context) string {
	if v := c.GetString("staff_id"); v != "" {
		return v
	}
	return "system"
}

// respondServiceError translates business errors from the services into
// HTTP responses. Anything unrecognized becomes a 500 without leaking
// internals.
func respondServiceError(c *gin.Context, err error) {
	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		conflictErr   *services.ConflictError
		stockErr      *services.InsufficientStockError
		transitionErr *services.InvalidTransitionError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &conflictErr):
		body := gin.H{
			"error":       "Requested interval overlaps an existing reservation",
			"resource_id": conflictErr.ResourceID,
			"start":       conflictErr.Start,
			"end":         conflictErr.End,
		}
		if conflictErr.ConflictingID != uuid.Nil {
			body["conflicting_reservation_id"] = conflictErr.ConflictingID
		}
		c.JSON(http.StatusConflict, body)
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Insufficient stock",
			"item_id":   stockErr.ItemID,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Invalid status transition",
			"from":  transitionErr.From,
			"to":    transitionErr.To,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// parseUUIDParam reads a path parameter as a UUID, answering 400 itself on
// failure.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
