package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thependalorian/buffrhost-sub008/database"
	"github.com/thependalorian/buffrhost-sub008/models"
)

// OrderLifecycle owns order creation, status transitions and line item
// changes. Every status change appends to order_status_history in the same
// transaction, so the audit trail can never miss a transition.
type OrderLifecycle struct {
	db *database.DB
}

func NewOrderLifecycle(db *database.DB) *OrderLifecycle {
	return &OrderLifecycle{db: db}
}

// OrderInput carries the fields a caller supplies when opening an order.
// Items may be empty; lines can be added while the order is pending.
type OrderInput struct {
	CustomerID uuid.UUID
	Items      []OrderItemInput
	Notes      *string
	Actor      string
}

// OrderItemInput is one requested line: a menu item and how many of it.
type OrderItemInput struct {
	MenuItemID uuid.UUID
	Quantity   int
	Notes      *string
}

// CreateOrder opens a pending order and writes its first audit row. Each
// line snapshots the menu price at creation time.
func (o *OrderLifecycle) CreateOrder(propertyID uuid.UUID, in OrderInput) (*models.Order, error) {
	if in.Actor == "" {
		in.Actor = "system"
	}

	tx, err := o.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var propertyActive bool
	err = tx.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM properties WHERE id = $1 AND is_active = TRUE)`,
		propertyID).Scan(&propertyActive)
	if err != nil {
		return nil, fmt.Errorf("failed to look up property: %w", err)
	}
	if !propertyActive {
		return nil, &NotFoundError{Entity: "property", ID: propertyID}
	}

	var customerExists bool
	err = tx.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`,
		in.CustomerID).Scan(&customerExists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}
	if !customerExists {
		return nil, &NotFoundError{Entity: "customer", ID: in.CustomerID}
	}

	now := time.Now()
	order := &models.Order{
		ID:          uuid.New(),
		PropertyID:  propertyID,
		CustomerID:  in.CustomerID,
		OrderNumber: generateOrderNumber(now),
		Status:      models.OrderPending,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = tx.Exec(`
		INSERT INTO orders (id, property_id, customer_id, order_number, status, total_amount, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		order.ID, order.PropertyID, order.CustomerID, order.OrderNumber, order.Status, 0, order.Notes, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, itemIn := range in.Items {
		item, err := o.addLine(tx, order.ID, propertyID, itemIn, now)
		if err != nil {
			return nil, err
		}
		order.TotalAmount += float64(item.Quantity) * item.UnitPrice
		order.Items = append(order.Items, *item)
	}

	if len(order.Items) > 0 {
		_, err = tx.Exec(`UPDATE orders SET total_amount = $1 WHERE id = $2`, order.TotalAmount, order.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to set order total: %w", err)
		}
	}

	if err := o.appendHistory(tx, order.ID, models.OrderPending, in.Actor, strPtr("order created"), now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return order, nil
}

// TransitionStatus moves an order along one edge of the lifecycle graph and
// records who moved it. Confirming recomputes and freezes the total from the
// line items; confirming an empty order is rejected.
func (o *OrderLifecycle) TransitionStatus(propertyID, orderID uuid.UUID, next models.OrderStatus, actor string, notes *string) (*models.Order, error) {
	if !next.Valid() {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown order status %q", next)}
	}
	if actor == "" {
		actor = "system"
	}

	tx, err := o.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := o.lockOrder(tx, propertyID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, &InvalidTransitionError{OrderID: orderID, From: order.Status, To: next}
	}

	total := order.TotalAmount
	if order.Status == models.OrderPending && next == models.OrderConfirmed {
		var count int
		err = tx.QueryRow(`
			SELECT COALESCE(SUM(quantity * unit_price), 0), COUNT(*)
			FROM order_items WHERE order_id = $1`, orderID).Scan(&total, &count)
		if err != nil {
			return nil, fmt.Errorf("failed to total order items: %w", err)
		}
		if count == 0 {
			return nil, &ValidationError{Field: "items", Message: "order has no items"}
		}
	}

	now := time.Now()
	// The update is keyed on the status we just read, so a transition that
	// lost a race surfaces as zero rows instead of silently overwriting.
	result, err := tx.Exec(`
		UPDATE orders SET status = $1, total_amount = $2, updated_at = $3
		WHERE id = $4 AND status = $5`,
		next, total, now, orderID, order.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to verify status update: %w", err)
	}
	if rows == 0 {
		return nil, &InvalidTransitionError{OrderID: orderID, From: order.Status, To: next}
	}

	if err := o.appendHistory(tx, orderID, next, actor, notes, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status change: %w", err)
	}

	order.Status = next
	order.TotalAmount = total
	order.UpdatedAt = now
	return order, nil
}

// AddItem appends a line to a pending order. Once the order has left
// pending its lines are frozen.
func (o *OrderLifecycle) AddItem(propertyID, orderID uuid.UUID, in OrderItemInput) (*models.OrderItem, error) {
	tx, err := o.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := o.lockOrder(tx, propertyID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.Editable() {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("order is %s, items are frozen", order.Status)}
	}

	now := time.Now()
	item, err := o.addLine(tx, orderID, propertyID, in, now)
	if err != nil {
		return nil, err
	}

	if err := o.recomputeTotal(tx, orderID, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order item: %w", err)
	}

	return item, nil
}

// UpdateItemQuantity changes the quantity on a pending order's line.
func (o *OrderLifecycle) UpdateItemQuantity(propertyID, orderID, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "quantity must be positive"}
	}

	tx, err := o.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := o.lockOrder(tx, propertyID, orderID)
	if err != nil {
		return err
	}
	if !order.Status.Editable() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("order is %s, items are frozen", order.Status)}
	}

	result, err := tx.Exec(`
		UPDATE order_items SET quantity = $1 WHERE id = $2 AND order_id = $3`,
		quantity, itemID, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to verify item update: %w", err)
	}
	if rows == 0 {
		return &NotFoundError{Entity: "order item", ID: itemID}
	}

	now := time.Now()
	if err := o.recomputeTotal(tx, orderID, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit item update: %w", err)
	}
	return nil
}

// RemoveItem deletes a line from a pending order.
func (o *OrderLifecycle) RemoveItem(propertyID, orderID, itemID uuid.UUID) error {
	tx, err := o.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := o.lockOrder(tx, propertyID, orderID)
	if err != nil {
		return err
	}
	if !order.Status.Editable() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("order is %s, items are frozen", order.Status)}
	}

	result, err := tx.Exec(`
		DELETE FROM order_items WHERE id = $1 AND order_id = $2`, itemID, orderID)
	if err != nil {
		return fmt.Errorf("failed to remove order item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to verify item removal: %w", err)
	}
	if rows == 0 {
		return &NotFoundError{Entity: "order item", ID: itemID}
	}

	now := time.Now()
	if err := o.recomputeTotal(tx, orderID, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit item removal: %w", err)
	}
	return nil
}

// GetStatusHistory returns the order's audit trail oldest first.
func (o *OrderLifecycle) GetStatusHistory(propertyID, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	var exists bool
	err := o.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1 AND property_id = $2)`,
		orderID, propertyID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}
	if !exists {
		return nil, &NotFoundError{Entity: "order", ID: orderID}
	}

	rows, err := o.db.Query(`
		SELECT id, order_id, status, actor, notes, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load status history: %w", err)
	}
	defer rows.Close()

	var history []models.OrderStatusHistory
	for rows.Next() {
		var entry models.OrderStatusHistory
		if err := rows.Scan(&entry.ID, &entry.OrderID, &entry.Status, &entry.Actor, &entry.Notes, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

// lockOrder loads an order scoped to the property and locks it for the rest
// of the transaction.
func (o *OrderLifecycle) lockOrder(tx *sql.Tx, propertyID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := tx.QueryRow(`
		SELECT id, property_id, customer_id, order_number, status, total_amount, notes, created_at, updated_at
		FROM orders
		WHERE id = $1 AND property_id = $2
		FOR UPDATE`, orderID, propertyID).Scan(
		&order.ID, &order.PropertyID, &order.CustomerID, &order.OrderNumber,
		&order.Status, &order.TotalAmount, &order.Notes, &order.CreatedAt, &order.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "order", ID: orderID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

func (o *OrderLifecycle) addLine(tx *sql.Tx, orderID, propertyID uuid.UUID, in OrderItemInput, now time.Time) (*models.OrderItem, error) {
	if in.Quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Message: "quantity must be positive"}
	}

	var price float64
	var available bool
	var name string
	err := tx.QueryRow(`
		SELECT name, price, is_available FROM menu_items
		WHERE id = $1 AND property_id = $2`,
		in.MenuItemID, propertyID).Scan(&name, &price, &available)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "menu item", ID: in.MenuItemID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up menu item: %w", err)
	}
	if !available {
		return nil, &ValidationError{Field: "menu_item_id", Message: fmt.Sprintf("menu item %q is not available", name)}
	}

	item := &models.OrderItem{
		ID:           uuid.New(),
		OrderID:      orderID,
		MenuItemID:   in.MenuItemID,
		Quantity:     in.Quantity,
		UnitPrice:    price,
		Notes:        in.Notes,
		CreatedAt:    now,
		MenuItemName: name,
	}

	_, err = tx.Exec(`
		INSERT INTO order_items (id, order_id, menu_item_id, quantity, unit_price, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.ID, item.OrderID, item.MenuItemID, item.Quantity, item.UnitPrice, item.Notes, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order item: %w", err)
	}

	return item, nil
}

func (o *OrderLifecycle) recomputeTotal(tx *sql.Tx, orderID uuid.UUID, now time.Time) error {
	_, err := tx.Exec(`
		UPDATE orders
		SET total_amount = (SELECT COALESCE(SUM(quantity * unit_price), 0) FROM order_items WHERE order_id = $1),
		    updated_at = $2
		WHERE id = $1`, orderID, now)
	if err != nil {
		return fmt.Errorf("failed to recompute order total: %w", err)
	}
	return nil
}

func (o *OrderLifecycle) appendHistory(tx *sql.Tx, orderID uuid.UUID, status models.OrderStatus, actor string, notes *string, now time.Time) error {
	_, err := tx.Exec(`
		INSERT INTO order_status_history (order_id, status, actor, notes, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		orderID, status, actor, notes, now)
	if err != nil {
		return fmt.Errorf("failed to append status history: %w", err)
	}
	return nil
}

func generateOrderNumber(now time.Time) string {
	return fmt.Sprintf("BH-%s-%06d", now.Format("20060102"), now.UnixNano()%1000000)
}

func strPtr(s string) *string {
	return &s
}
