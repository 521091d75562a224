package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thependalorian/buffrhost-sub008/models"
	"github.com/thependalorian/buffrhost-sub008/utils"
)

// CreateCustomer registers a guest profile. Guests are platform-wide, not
// tied to a property, so the same profile follows a guest across venues.
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req struct {
		Name  string  `json:"name" binding:"required"`
		Email *string `json:"email"`
		Phone *string `json:"phone"`
		Notes *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	avatarURL := utils.GuestAvatarURL(req.Name)
	customer := models.Customer{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Notes:     req.Notes,
		AvatarURL: &avatarURL,
	}

	err := h.DB.QueryRow(`
		INSERT INTO customers (name, email, phone, notes, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		req.Name, req.Email, req.Phone, req.Notes, avatarURL).
		Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create customer"})
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// ListCustomers returns guest profiles, optionally filtered by a search term
// matched against name, email and phone.
func (h *Handler) ListCustomers(c *gin.Context) {
	query := `
		SELECT id, name, email, phone, notes, avatar_url, created_at, updated_at
		FROM customers`
	var args []interface{}

	if q := c.Query("q"); q != "" {
		query += ` WHERE name ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1`
		args = append(args, "%"+q+"%")
	}
	query += ` ORDER BY name ASC LIMIT 200`

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customers"})
		return
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		var cu models.Customer
		if err := rows.Scan(&cu.ID, &cu.Name, &cu.Email, &cu.Phone, &cu.Notes,
			&cu.AvatarURL, &cu.CreatedAt, &cu.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan customer"})
			return
		}
		customers = append(customers, cu)
	}

	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// GetCustomer returns one guest profile.
func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var cu models.Customer
	err := h.DB.QueryRow(`
		SELECT id, name, email, phone, notes, avatar_url, created_at, updated_at
		FROM customers WHERE id = $1`, id).
		Scan(&cu.ID, &cu.Name, &cu.Email, &cu.Phone, &cu.Notes,
			&cu.AvatarURL, &cu.CreatedAt, &cu.UpdatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customer"})
		return
	}

	c.JSON(http.StatusOK, cu)
}

// UpdateCustomer changes a guest profile's contact details.
func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
		Phone *string `json:"phone"`
		Notes *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	result, err := h.DB.Exec(`
		UPDATE customers SET
			name = COALESCE($1, name),
			email = COALESCE($2, email),
			phone = COALESCE($3, phone),
			notes = COALESCE($4, notes),
			updated_at = NOW()
		WHERE id = $5`,
		req.Name, req.Email, req.Phone, req.Notes, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update customer"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer updated"})
}
