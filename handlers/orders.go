package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thependalorian/buffrhost-sub008/models"
	"github.com/thependalorian/buffrhost-sub008/services"
)

// CreateOrder opens a pending order for a guest, optionally with its first
// line items.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req struct {
		CustomerID string `json:"customer_id" binding:"required"`
		Items      []struct {
			MenuItemID string  `json:"menu_item_id" binding:"required"`
			Quantity   int     `json:"quantity" binding:"required"`
			Notes      *string `json:"notes"`
		} `json:"items"`
		Notes *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer_id"})
		return
	}

	input := services.OrderInput{
		CustomerID: customerID,
		Notes:      req.Notes,
		Actor:      actor(c),
	}
	for _, item := range req.Items {
		menuItemID, err := uuid.Parse(item.MenuItemID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu_item_id"})
			return
		}
		input.Items = append(input.Items, services.OrderItemInput{
			MenuItemID: menuItemID,
			Quantity:   item.Quantity,
			Notes:      item.Notes,
		})
	}

	order, err := h.Orders.CreateOrder(propertyScope(c), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// ListOrders returns the property's orders newest first, optionally
// filtered by status.
func (h *Handler) ListOrders(c *gin.Context) {
	query := `
		SELECT id, property_id, customer_id, order_number, status, total_amount, notes, created_at, updated_at
		FROM orders
		WHERE property_id = $1`
	args := []interface{}{propertyScope(c)}

	if status := c.Query("status"); status != "" {
		if !models.OrderStatus(status).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
			return
		}
		query += ` AND status = $` + strconv.Itoa(len(args)+1)
		args = append(args, status)
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.PropertyID, &o.CustomerID, &o.OrderNumber, &o.Status,
			&o.TotalAmount, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order"})
			return
		}
		orders = append(orders, o)
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrder returns one order with its line items, each carrying the menu
// item's display name.
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var order models.Order
	err := h.DB.QueryRow(`
		SELECT id, property_id, customer_id, order_number, status, total_amount, notes, created_at, updated_at
		FROM orders
		WHERE id = $1 AND property_id = $2`, id, propertyScope(c)).
		Scan(&order.ID, &order.PropertyID, &order.CustomerID, &order.OrderNumber, &order.Status,
			&order.TotalAmount, &order.Notes, &order.CreatedAt, &order.UpdatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	rows, err := h.DB.Query(`
		SELECT oi.id, oi.order_id, oi.menu_item_id, oi.quantity, oi.unit_price, oi.notes, oi.created_at, mi.name
		FROM order_items oi
		JOIN menu_items mi ON oi.menu_item_id = mi.id
		WHERE oi.order_id = $1
		ORDER BY oi.created_at ASC`, order.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}
	defer rows.Close()

	order.Items = []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Quantity,
			&item.UnitPrice, &item.Notes, &item.CreatedAt, &item.MenuItemName); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order item"})
			return
		}
		order.Items = append(order.Items, item)
	}

	c.JSON(http.StatusOK, order)
}

// TransitionOrderStatus moves an order along its lifecycle: confirm,
// start preparing, mark ready, complete, or cancel.
func (h *Handler) TransitionOrderStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string  `json:"status" binding:"required"`
		Notes  *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	order, err := h.Orders.TransitionStatus(propertyScope(c), id, models.OrderStatus(req.Status), actor(c), req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// AddOrderItem appends a line to a pending order.
func (h *Handler) AddOrderItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		MenuItemID string  `json:"menu_item_id" binding:"required"`
		Quantity   int     `json:"quantity" binding:"required"`
		Notes      *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	menuItemID, err := uuid.Parse(req.MenuItemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu_item_id"})
		return
	}

	item, err := h.Orders.AddItem(propertyScope(c), id, services.OrderItemInput{
		MenuItemID: menuItemID,
		Quantity:   req.Quantity,
		Notes:      req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdateOrderItem changes the quantity on a pending order's line.
func (h *Handler) UpdateOrderItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	if err := h.Orders.UpdateItemQuantity(propertyScope(c), id, itemID, req.Quantity); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order item updated"})
}

// RemoveOrderItem deletes a line from a pending order.
func (h *Handler) RemoveOrderItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		return
	}

	if err := h.Orders.RemoveItem(propertyScope(c), id, itemID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order item removed"})
}

// GetOrderHistory returns the order's status audit trail oldest first.
func (h *Handler) GetOrderHistory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	history, err := h.Orders.GetStatusHistory(propertyScope(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if history == nil {
		history = []models.OrderStatusHistory{}
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}
