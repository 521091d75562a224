package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thependalorian/buffrhost-sub008/models"
)

// CreateProperty registers a new property on the platform. Platform admin
// only.
func (h *Handler) CreateProperty(c *gin.Context) {
	var req struct {
		Name         string  `json:"name" binding:"required"`
		PropertyType string  `json:"property_type" binding:"required"`
		Address      *string `json:"address"`
		City         *string `json:"city"`
		Country      *string `json:"country"`
		Phone        *string `json:"phone"`
		Email        *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	propertyType := models.PropertyType(req.PropertyType)
	if !propertyType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown property type"})
		return
	}

	property := models.Property{
		Name:         req.Name,
		PropertyType: propertyType,
		Address:      req.Address,
		City:         req.City,
		Country:      req.Country,
		Phone:        req.Phone,
		Email:        req.Email,
	}

	err := h.DB.QueryRow(`
		INSERT INTO properties (name, property_type, address, city, country, phone, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_active, created_at, updated_at`,
		req.Name, propertyType, req.Address, req.City, req.Country, req.Phone, req.Email).
		Scan(&property.ID, &property.IsActive, &property.CreatedAt, &property.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create property"})
		return
	}

	c.JSON(http.StatusCreated, property)
}

// ListProperties returns every property for platform admins, or just the
// caller's own property for scoped staff.
func (h *Handler) ListProperties(c *gin.Context) {
	query := `
		SELECT id, name, property_type, address, city, country, phone, email, is_active, created_at, updated_at
		FROM properties`
	var args []interface{}

	if c.GetString("role") != "admin" {
		query += ` WHERE id = $1`
		args = append(args, propertyScope(c))
	}
	query += ` ORDER BY name ASC`

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch properties"})
		return
	}
	defer rows.Close()

	properties := []models.Property{}
	for rows.Next() {
		var p models.Property
		if err := rows.Scan(&p.ID, &p.Name, &p.PropertyType, &p.Address, &p.City, &p.Country,
			&p.Phone, &p.Email, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan property"})
			return
		}
		properties = append(properties, p)
	}

	c.JSON(http.StatusOK, gin.H{"properties": properties})
}

// GetProperty returns one property. Staff outside the property get a 404,
// not a 403, so property IDs cannot be probed.
func (h *Handler) GetProperty(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if c.GetString("role") != "admin" && id != propertyScope(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	var p models.Property
	err := h.DB.QueryRow(`
		SELECT id, name, property_type, address, city, country, phone, email, is_active, created_at, updated_at
		FROM properties WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.PropertyType, &p.Address, &p.City, &p.Country,
			&p.Phone, &p.Email, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch property"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// UpdateProperty changes a property's contact details.
func (h *Handler) UpdateProperty(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if c.GetString("role") != "admin" && id != propertyScope(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	var req struct {
		Name    *string `json:"name"`
		Address *string `json:"address"`
		City    *string `json:"city"`
		Country *string `json:"country"`
		Phone   *string `json:"phone"`
		Email   *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	result, err := h.DB.Exec(`
		UPDATE properties SET
			name = COALESCE($1, name),
			address = COALESCE($2, address),
			city = COALESCE($3, city),
			country = COALESCE($4, country),
			phone = COALESCE($5, phone),
			email = COALESCE($6, email),
			updated_at = NOW()
		WHERE id = $7`,
		req.Name, req.Address, req.City, req.Country, req.Phone, req.Email, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Property updated"})
}

// DeactivateProperty takes a property off the platform without deleting its
// history. Platform admin only.
func (h *Handler) DeactivateProperty(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.DB.Exec(`UPDATE properties SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate property"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Property deactivated"})
}
