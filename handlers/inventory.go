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

// CreateInventoryItem registers a tracked stock item. Items always start at
// level zero; opening stock is booked as a purchase transaction so the
// ledger explains every unit from day one.
func (h *Handler) CreateInventoryItem(c *gin.Context) {
	var req struct {
		SKU        string     `json:"sku" binding:"required"`
		Name       string     `json:"name" binding:"required"`
		Unit       string     `json:"unit" binding:"required"`
		MinStock   float64    `json:"min_stock"`
		MaxStock   *float64   `json:"max_stock"`
		ExpiryDate *time.Time `json:"expiry_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}
	if req.MinStock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Minimum stock cannot be negative"})
		return
	}

	item := models.InventoryItem{
		PropertyID: propertyScope(c),
		SKU:        req.SKU,
		Name:       req.Name,
		Unit:       req.Unit,
		MinStock:   req.MinStock,
		MaxStock:   req.MaxStock,
		ExpiryDate: req.ExpiryDate,
	}

	err := h.DB.QueryRow(`
		INSERT INTO inventory_items (property_id, sku, name, unit, min_stock, max_stock, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, current_stock, created_at, updated_at`,
		item.PropertyID, req.SKU, req.Name, req.Unit, req.MinStock, req.MaxStock, req.ExpiryDate).
		Scan(&item.ID, &item.CurrentStock, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create inventory item"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// ListInventoryItems returns the property's tracked stock items.
func (h *Handler) ListInventoryItems(c *gin.Context) {
	rows, err := h.DB.Query(`
		SELECT id, property_id, sku, name, unit, current_stock, min_stock, max_stock, expiry_date, created_at, updated_at
		FROM inventory_items
		WHERE property_id = $1
		ORDER BY name ASC`, propertyScope(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory items"})
		return
	}
	defer rows.Close()

	items := []models.InventoryItem{}
	for rows.Next() {
		var item models.InventoryItem
		if err := rows.Scan(&item.ID, &item.PropertyID, &item.SKU, &item.Name, &item.Unit,
			&item.CurrentStock, &item.MinStock, &item.MaxStock, &item.ExpiryDate,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan inventory item"})
			return
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{"inventory_items": items})
}

// GetInventoryItem returns one stock item, scoped to the caller's property.
func (h *Handler) GetInventoryItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var item models.InventoryItem
	err := h.DB.QueryRow(`
		SELECT id, property_id, sku, name, unit, current_stock, min_stock, max_stock, expiry_date, created_at, updated_at
		FROM inventory_items
		WHERE id = $1 AND property_id = $2`, id, propertyScope(c)).
		Scan(&item.ID, &item.PropertyID, &item.SKU, &item.Name, &item.Unit,
			&item.CurrentStock, &item.MinStock, &item.MaxStock, &item.ExpiryDate,
			&item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory item"})
		return
	}

	c.JSON(http.StatusOK, item)
}

// UpdateInventoryItem changes an item's descriptive fields and thresholds.
// The stock level itself only moves through ledger transactions.
func (h *Handler) UpdateInventoryItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name       *string    `json:"name"`
		Unit       *string    `json:"unit"`
		MinStock   *float64   `json:"min_stock"`
		MaxStock   *float64   `json:"max_stock"`
		ExpiryDate *time.Time `json:"expiry_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}
	if req.MinStock != nil && *req.MinStock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Minimum stock cannot be negative"})
		return
	}

	result, err := h.DB.Exec(`
		UPDATE inventory_items SET
			name = COALESCE($1, name),
			unit = COALESCE($2, unit),
			min_stock = COALESCE($3, min_stock),
			max_stock = COALESCE($4, max_stock),
			expiry_date = COALESCE($5, expiry_date),
			updated_at = NOW()
		WHERE id = $6 AND property_id = $7`,
		req.Name, req.Unit, req.MinStock, req.MaxStock, req.ExpiryDate, id, propertyScope(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update inventory item"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Inventory item updated"})
}

// RecordStockTransaction appends a purchase, sale, waste or return to the
// item's ledger and moves the stock level accordingly.
func (h *Handler) RecordStockTransaction(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Kind        string  `json:"kind" binding:"required"`
		Quantity    float64 `json:"quantity" binding:"required"`
		Reason      string  `json:"reason"`
		ReferenceID *string `json:"reference_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	var referenceID *uuid.UUID
	if req.ReferenceID != nil {
		ref, err := uuid.Parse(*req.ReferenceID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reference_id"})
			return
		}
		referenceID = &ref
	}

	entry, err := h.Ledger.RecordTransaction(propertyScope(c), services.TransactionInput{
		ItemID:      id,
		Kind:        models.TransactionKind(req.Kind),
		Quantity:    req.Quantity,
		Reason:      req.Reason,
		Actor:       actor(c),
		ReferenceID: referenceID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// AdjustStock reconciles the item's level against a physical count.
func (h *Handler) AdjustStock(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		CountedLevel *float64 `json:"counted_level" binding:"required"`
		Reason       string   `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	entry, err := h.Ledger.AdjustStock(propertyScope(c), id, *req.CountedLevel, req.Reason, actor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// GetTransactionHistory returns the item's ledger entries newest first.
func (h *Handler) GetTransactionHistory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	history, err := h.Ledger.GetTransactionHistory(propertyScope(c), id, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if history == nil {
		history = []models.StockTransaction{}
	}

	c.JSON(http.StatusOK, gin.H{"transactions": history})
}

// GetLowStockItems lists items at or below their reorder threshold.
func (h *Handler) GetLowStockItems(c *gin.Context) {
	items, err := h.Ledger.LowStockItems(propertyScope(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if items == nil {
		items = []models.InventoryItem{}
	}

	c.JSON(http.StatusOK, gin.H{"low_stock_items": items})
}

// GetExpiringItems lists items whose expiry date falls within ?days from
// now, default seven.
func (h *Handler) GetExpiringItems(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days"})
		return
	}

	items, err := h.Ledger.ExpiringItems(propertyScope(c), time.Duration(days)*24*time.Hour)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if items == nil {
		items = []models.InventoryItem{}
	}

	c.JSON(http.StatusOK, gin.H{"expiring_items": items})
}
