package handlers

import (
	"database/sql"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thependalorian/buffrhost-sub008/models"
)

// CreateResource registers a bookable room or table under the caller's
// property.
func (h *Handler) CreateResource(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Kind        string  `json:"kind" binding:"required"`
		Capacity    int     `json:"capacity" binding:"required"`
		Rate        float64 `json:"rate"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	kind := models.ResourceKind(req.Kind)
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown resource kind"})
		return
	}
	if req.Capacity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Capacity must be positive"})
		return
	}
	if req.Rate < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rate cannot be negative"})
		return
	}

	resource := models.BookableResource{
		PropertyID:  propertyScope(c),
		Name:        req.Name,
		Kind:        kind,
		Capacity:    req.Capacity,
		Rate:        req.Rate,
		Description: req.Description,
	}

	err := h.DB.QueryRow(`
		INSERT INTO bookable_resources (property_id, name, kind, capacity, rate, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_active, created_at, updated_at`,
		resource.PropertyID, req.Name, kind, req.Capacity, req.Rate, req.Description).
		Scan(&resource.ID, &resource.IsActive, &resource.CreatedAt, &resource.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create resource"})
		return
	}

	c.JSON(http.StatusCreated, resource)
}

// ListResources returns the property's bookable resources, optionally
// filtered by kind. Inactive ones are hidden unless ?include_inactive=true.
func (h *Handler) ListResources(c *gin.Context) {
	query := `
		SELECT id, property_id, name, kind, capacity, rate, description, image_url, is_active, created_at, updated_at
		FROM bookable_resources
		WHERE property_id = $1`
	args := []interface{}{propertyScope(c)}

	if kind := c.Query("kind"); kind != "" {
		if !models.ResourceKind(kind).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown resource kind"})
			return
		}
		args = append(args, kind)
		query += " AND kind = $" + strconv.Itoa(len(args))
	}
	if c.Query("include_inactive") != "true" {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY kind ASC, name ASC`

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch resources"})
		return
	}
	defer rows.Close()

	resources := []models.BookableResource{}
	for rows.Next() {
		var r models.BookableResource
		if err := rows.Scan(&r.ID, &r.PropertyID, &r.Name, &r.Kind, &r.Capacity, &r.Rate,
			&r.Description, &r.ImageURL, &r.IsActive, &r.CreatedAt, &r.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan resource"})
			return
		}
		resources = append(resources, r)
	}

	c.JSON(http.StatusOK, gin.H{"resources": resources})
}

// GetResource returns one resource, scoped to the caller's property.
func (h *Handler) GetResource(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var r models.BookableResource
	err := h.DB.QueryRow(`
		SELECT id, property_id, name, kind, capacity, rate, description, image_url, is_active, created_at, updated_at
		FROM bookable_resources
		WHERE id = $1 AND property_id = $2`, id, propertyScope(c)).
		Scan(&r.ID, &r.PropertyID, &r.Name, &r.Kind, &r.Capacity, &r.Rate,
			&r.Description, &r.ImageURL, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch resource"})
		return
	}

	c.JSON(http.StatusOK, r)
}

// UpdateResource changes a resource's name, capacity or description.
func (h *Handler) UpdateResource(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		Capacity    *int     `json:"capacity"`
		Rate        *float64 `json:"rate"`
		Description *string  `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}
	if req.Capacity != nil && *req.Capacity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Capacity must be positive"})
		return
	}
	if req.Rate != nil && *req.Rate < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rate cannot be negative"})
		return
	}

	result, err := h.DB.Exec(`
		UPDATE bookable_resources SET
			name = COALESCE($1, name),
			capacity = COALESCE($2, capacity),
			rate = COALESCE($3, rate),
			description = COALESCE($4, description),
			updated_at = NOW()
		WHERE id = $5 AND property_id = $6`,
		req.Name, req.Capacity, req.Rate, req.Description, id, propertyScope(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update resource"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resource updated"})
}

// DeactivateResource stops new reservations on a resource. Existing
// reservations keep their history; deactivating twice is a no-op.
func (h *Handler) DeactivateResource(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.DB.Exec(`
		UPDATE bookable_resources SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND property_id = $2`, id, propertyScope(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate resource"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resource deactivated"})
}

// UploadResourceImage stores a photo for the resource and saves its URL.
func (h *Handler) UploadResourceImage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if h.Media == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image uploads are not configured"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}

	url, err := h.Media.UploadImageFromBytes(data, "buffrhost/resources", header.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	result, err := h.DB.Exec(`
		UPDATE bookable_resources SET image_url = $1, updated_at = NOW()
		WHERE id = $2 AND property_id = $3`, url, id, propertyScope(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image URL"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}

// CheckResourceAvailability answers whether a resource is free over a
// half-open [start, end) window.
func (h *Handler) CheckResourceAvailability(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start time, expected RFC3339"})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end time, expected RFC3339"})
		return
	}

	available, err := h.Availability.CheckAvailability(id, start, end)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resource_id": id,
		"start":       start,
		"end":         end,
		"available":   available,
	})
}
