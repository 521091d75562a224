package handlers

import (
	"database/sql"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thependalorian/buffrhost-sub008/models"
)

// CreateMenuItem adds a sellable item to the property's menu.
func (h *Handler) CreateMenuItem(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Price       float64 `json:"price" binding:"required"`
		Category    *string `json:"category"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}
	if req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price cannot be negative"})
		return
	}

	item := models.MenuItem{
		PropertyID:  propertyScope(c),
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Description: req.Description,
	}

	err := h.DB.QueryRow(`
		INSERT INTO menu_items (property_id, name, price, category, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_available, created_at, updated_at`,
		item.PropertyID, req.Name, req.Price, req.Category, req.Description).
		Scan(&item.ID, &item.IsAvailable, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create menu item"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// ListMenuItems returns the property's menu. Unavailable items are hidden
// unless ?include_unavailable=true; ?category filters by category.
func (h *Handler) ListMenuItems(c *gin.Context) {
	query := `
		SELECT id, property_id, name, price, category, description, image_url, is_available, created_at, updated_at
		FROM menu_items
		WHERE property_id = $1`
	args := []interface{}{propertyScope(c)}

	if c.Query("include_unavailable") != "true" {
		query += ` AND is_available = TRUE`
	}
	if category := c.Query("category"); category != "" {
		query += ` AND category = $` + strconv.Itoa(len(args)+1)
		args = append(args, category)
	}
	query += ` ORDER BY category ASC NULLS LAST, name ASC`

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch menu items"})
		return
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var m models.MenuItem
		if err := rows.Scan(&m.ID, &m.PropertyID, &m.Name, &m.Price, &m.Category,
			&m.Description, &m.ImageURL, &m.IsAvailable, &m.CreatedAt, &m.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan menu item"})
			return
		}
		items = append(items, m)
	}

	c.JSON(http.StatusOK, gin.H{"menu_items": items})
}

// GetMenuItem returns one menu item, scoped to the caller's property.
func (h *Handler) GetMenuItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var m models.MenuItem
	err := h.DB.QueryRow(`
		SELECT id, property_id, name, price, category, description, image_url, is_available, created_at, updated_at
		FROM menu_items
		WHERE id = $1 AND property_id = $2`, id, propertyScope(c)).
		Scan(&m.ID, &m.PropertyID, &m.Name, &m.Price, &m.Category,
			&m.Description, &m.ImageURL, &m.IsAvailable, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch menu item"})
		return
	}

	c.JSON(http.StatusOK, m)
}

// UpdateMenuItem changes an item's name, price, category, description or
// availability. Price changes never touch existing order lines, which keep
// the price captured when they were added.
func (h *Handler) UpdateMenuItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		Price       *float64 `json:"price"`
		Category    *string  `json:"category"`
		Description *string  `json:"description"`
		IsAvailable *bool    `json:"is_available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}
	if req.Price != nil && *req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price cannot be negative"})
		return
	}

	result, err := h.DB.Exec(`
		UPDATE menu_items SET
			name = COALESCE($1, name),
			price = COALESCE($2, price),
			category = COALESCE($3, category),
			description = COALESCE($4, description),
			is_available = COALESCE($5, is_available),
			updated_at = NOW()
		WHERE id = $6 AND property_id = $7`,
		req.Name, req.Price, req.Category, req.Description, req.IsAvailable, id, propertyScope(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update menu item"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Menu item updated"})
}

// DeleteMenuItem takes an item off the menu. Order lines reference menu
// items, so this is a soft delete: the item stops being orderable but its
// row stays for order history.
func (h *Handler) DeleteMenuItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.DB.Exec(`
		UPDATE menu_items SET is_available = FALSE, updated_at = NOW()
		WHERE id = $1 AND property_id = $2`, id, propertyScope(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete menu item"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Menu item removed from menu"})
}

// UploadMenuItemImage stores a photo for the menu item and saves its URL.
func (h *Handler) UploadMenuItemImage(c *gin.Context) {
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

	url, err := h.Media.UploadImageFromBytes(data, "buffrhost/menu", header.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	result, err := h.DB.Exec(`
		UPDATE menu_items SET image_url = $1, updated_at = NOW()
		WHERE id = $2 AND property_id = $3`, url, id, propertyScope(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image URL"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
