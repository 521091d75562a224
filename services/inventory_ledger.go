package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thependalorian/buffrhost-sub008/database"
	"github.com/thependalorian/buffrhost-sub008/models"
)

// InventoryLedger owns every stock movement. A movement is one ledger row
// plus the matching change to the item's cached level, applied in a single
// transaction; neither ever lands without the other. The cached level can
// never go below zero.
type InventoryLedger struct {
	db *database.DB
}

func NewInventoryLedger(db *database.DB) *InventoryLedger {
	return &InventoryLedger{db: db}
}

// TransactionInput carries the fields a caller supplies when recording a
// stock movement. Quantity is always the unsigned magnitude; the kind fixes
// the direction.
type TransactionInput struct {
	ItemID      uuid.UUID
	Kind        models.TransactionKind
	Quantity    float64
	Reason      string
	Actor       string
	ReferenceID *uuid.UUID
}

// RecordTransaction appends a purchase, sale, waste or return to the item's
// ledger. Movements that would take the stock level below zero are rejected
// whole; there are no partial applications. Adjustments go through
// AdjustStock, which derives the delta from a counted level.
func (l *InventoryLedger) RecordTransaction(propertyID uuid.UUID, in TransactionInput) (*models.StockTransaction, error) {
	if !in.Kind.Valid() {
		return nil, &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown transaction kind %q", in.Kind)}
	}
	if in.Kind == models.TransactionAdjustment {
		return nil, &ValidationError{Field: "kind", Message: "adjustments must supply a counted level, use the adjust operation"}
	}
	if in.Quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Message: "quantity must be positive"}
	}
	if in.Actor == "" {
		in.Actor = "system"
	}

	tx, err := l.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := l.lockItem(tx, propertyID, in.ItemID)
	if err != nil {
		return nil, err
	}

	delta := in.Kind.SignedDelta(in.Quantity)
	if current+delta < 0 {
		return nil, &InsufficientStockError{ItemID: in.ItemID, Requested: in.Quantity, Available: current}
	}

	entry := newEntry(in, delta)
	if err := l.appendEntry(tx, entry, current); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit stock transaction: %w", err)
	}

	return entry, nil
}

// AdjustStock reconciles the item's level against a physical count. The
// resulting ledger entry records the difference between the counted level
// and the current one, so a count matching the books still leaves an audit
// row showing the count happened.
func (l *InventoryLedger) AdjustStock(propertyID, itemID uuid.UUID, countedLevel float64, reason, actor string) (*models.StockTransaction, error) {
	if countedLevel < 0 {
		return nil, &ValidationError{Field: "counted_level", Message: "counted level cannot be negative"}
	}
	if actor == "" {
		actor = "system"
	}

	tx, err := l.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := l.lockItem(tx, propertyID, itemID)
	if err != nil {
		return nil, err
	}

	delta := countedLevel - current
	in := TransactionInput{
		ItemID:   itemID,
		Kind:     models.TransactionAdjustment,
		Quantity: delta,
		Reason:   reason,
		Actor:    actor,
	}
	if in.Quantity < 0 {
		in.Quantity = -in.Quantity
	}

	entry := newEntry(in, delta)
	if err := l.appendEntry(tx, entry, current); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit stock adjustment: %w", err)
	}

	return entry, nil
}

// lockItem loads the item's current level scoped to the property and locks
// the row for the rest of the transaction.
func (l *InventoryLedger) lockItem(tx *sql.Tx, propertyID, itemID uuid.UUID) (float64, error) {
	var current float64
	err := tx.QueryRow(`
		SELECT current_stock FROM inventory_items
		WHERE id = $1 AND property_id = $2
		FOR UPDATE`, itemID, propertyID).Scan(&current)
	if err == sql.ErrNoRows {
		return 0, &NotFoundError{Entity: "inventory item", ID: itemID}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock inventory item: %w", err)
	}
	return current, nil
}

func newEntry(in TransactionInput, delta float64) *models.StockTransaction {
	entry := &models.StockTransaction{
		ID:          uuid.New(),
		ItemID:      in.ItemID,
		Kind:        in.Kind,
		Quantity:    in.Quantity,
		Delta:       delta,
		Actor:       in.Actor,
		ReferenceID: in.ReferenceID,
		CreatedAt:   time.Now(),
	}
	if in.Reason != "" {
		entry.Reason = &in.Reason
	}
	return entry
}

// appendEntry writes the ledger row and moves the cached level inside the
// caller's transaction. The guarded update refuses to take current_stock
// below zero even if the balance check above it raced a stale read.
func (l *InventoryLedger) appendEntry(tx *sql.Tx, entry *models.StockTransaction, available float64) error {
	err := tx.QueryRow(`
		INSERT INTO stock_transactions (id, item_id, kind, quantity, delta, reason, actor, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`,
		entry.ID, entry.ItemID, entry.Kind, entry.Quantity, entry.Delta, entry.Reason, entry.Actor, entry.ReferenceID, entry.CreatedAt).Scan(&entry.Seq)
	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	result, err := tx.Exec(`
		UPDATE inventory_items
		SET current_stock = current_stock + $1, updated_at = $2
		WHERE id = $3 AND current_stock + $1 >= 0`,
		entry.Delta, entry.CreatedAt, entry.ItemID)
	if err != nil {
		return fmt.Errorf("failed to update stock level: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to verify stock update: %w", err)
	}
	if rows == 0 {
		return &InsufficientStockError{ItemID: entry.ItemID, Requested: entry.Quantity, Available: available}
	}
	return nil
}

// GetTransactionHistory returns the item's ledger entries newest first.
// Entries sharing a timestamp are ordered by their database sequence.
func (l *InventoryLedger) GetTransactionHistory(propertyID, itemID uuid.UUID, limit int) ([]models.StockTransaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var exists bool
	err := l.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM inventory_items WHERE id = $1 AND property_id = $2)`,
		itemID, propertyID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up inventory item: %w", err)
	}
	if !exists {
		return nil, &NotFoundError{Entity: "inventory item", ID: itemID}
	}

	rows, err := l.db.Query(`
		SELECT id, seq, item_id, kind, quantity, delta, reason, actor, reference_id, created_at
		FROM stock_transactions
		WHERE item_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2`, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction history: %w", err)
	}
	defer rows.Close()

	var history []models.StockTransaction
	for rows.Next() {
		var entry models.StockTransaction
		if err := rows.Scan(&entry.ID, &entry.Seq, &entry.ItemID, &entry.Kind, &entry.Quantity,
			&entry.Delta, &entry.Reason, &entry.Actor, &entry.ReferenceID, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

// LowStockItems lists items at or below their reorder threshold.
func (l *InventoryLedger) LowStockItems(propertyID uuid.UUID) ([]models.InventoryItem, error) {
	rows, err := l.db.Query(`
		SELECT id, property_id, sku, name, unit, current_stock, min_stock, max_stock, expiry_date, created_at, updated_at
		FROM inventory_items
		WHERE property_id = $1 AND current_stock <= min_stock
		ORDER BY current_stock ASC, name ASC`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load low stock items: %w", err)
	}
	defer rows.Close()

	return scanInventoryItems(rows)
}

// ExpiringItems lists items whose expiry date falls within the given window
// from now.
func (l *InventoryLedger) ExpiringItems(propertyID uuid.UUID, within time.Duration) ([]models.InventoryItem, error) {
	deadline := time.Now().Add(within)

	rows, err := l.db.Query(`
		SELECT id, property_id, sku, name, unit, current_stock, min_stock, max_stock, expiry_date, created_at, updated_at
		FROM inventory_items
		WHERE property_id = $1 AND expiry_date IS NOT NULL AND expiry_date <= $2
		ORDER BY expiry_date ASC`, propertyID, deadline)
	if err != nil {
		return nil, fmt.Errorf("failed to load expiring items: %w", err)
	}
	defer rows.Close()

	return scanInventoryItems(rows)
}

func scanInventoryItems(rows *sql.Rows) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	for rows.Next() {
		var item models.InventoryItem
		if err := rows.Scan(&item.ID, &item.PropertyID, &item.SKU, &item.Name, &item.Unit,
			&item.CurrentStock, &item.MinStock, &item.MaxStock, &item.ExpiryDate,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
