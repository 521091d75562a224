package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thependalorian/buffrhost-sub008/database"
	"github.com/thependalorian/buffrhost-sub008/models"
)

func newLedgerMock(t *testing.T) (*InventoryLedger, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	ledger := NewInventoryLedger(&database.DB{DB: db})
	return ledger, mock, func() { db.Close() }
}

func expectStockLevel(mock sqlmock.Sqlmock, itemID, propertyID uuid.UUID, level float64) {
	mock.ExpectQuery("SELECT current_stock FROM inventory_items").
		WithArgs(itemID, propertyID).
		WillReturnRows(sqlmock.NewRows([]string{"current_stock"}).AddRow(level))
}

func TestRecordTransactionSaleDecrementsStock(t *testing.T) {
	ledger, mock, closeFn := newLedgerMock(t)
	defer closeFn()

	propertyID := uuid.New()
	itemID := uuid.New()

	mock.ExpectBegin()
	expectStockLevel(mock, itemID, propertyID, 10)
	mock.ExpectQuery("INSERT INTO stock_transactions").
		WithArgs(sqlmock.AnyArg(), itemID, "sale", 4.0, -4.0, nil, "staff-3", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(1)))
	mock.ExpectExec("UPDATE inventory_items").
		WithArgs(-4.0, sqlmock.AnyArg(), itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entry, err := ledger.RecordTransaction(propertyID, TransactionInput{
		ItemID:   itemID,
		Kind:     models.TransactionSale,
		Quantity: 4,
		Actor:    "staff-3",
	})
	require.NoError(t, err)
	assert.Equal(t, -4.0, entry.Delta)
	assert.Equal(t, 4.0, entry.Quantity)
	assert.Equal(t, int64(1), entry.Seq)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordTransactionRejectsOverdraw(t *testing.T) {
	ledger, mock, closeFn := newLedgerMock(t)
	defer closeFn()

	propertyID := uuid.New()
	itemID := uuid.New()

	mock.ExpectBegin()
	expectStockLevel(mock, itemID, propertyID, 6)
	mock.ExpectRollback()

	_, err := ledger.RecordTransaction(propertyID, TransactionInput{
		ItemID:   itemID,
		Kind:     models.TransactionSale,
		Quantity: 10,
	})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 10.0, stockErr.Requested)
	assert.Equal(t, 6.0, stockErr.Available)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordTransactionPurchaseIncrementsStock(t *testing.T) {
	ledger, mock, closeFn := newLedgerMock(t)
	defer closeFn()

	propertyID := uuid.New()
	itemID := uuid.New()
	orderRef := uuid.New()

	mock.ExpectBegin()
	expectStockLevel(mock, itemID, propertyID, 0)
	mock.ExpectQuery("INSERT INTO stock_transactions").
		WithArgs(sqlmock.AnyArg(), itemID, "purchase", 25.0, 25.0, "weekly delivery", "staff-3", orderRef, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(9)))
	mock.ExpectExec("UPDATE inventory_items").
		WithArgs(25.0, sqlmock.AnyArg(), itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entry, err := ledger.RecordTransaction(propertyID, TransactionInput{
		ItemID:      itemID,
		Kind:        models.TransactionPurchase,
		Quantity:    25,
		Reason:      "weekly delivery",
		Actor:       "staff-3",
		ReferenceID: &orderRef,
	})
	require.NoError(t, err)
	assert.Equal(t, 25.0, entry.Delta)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordTransactionValidation(t *testing.T) {
	ledger, mock, closeFn := newLedgerMock(t)
	defer closeFn()

	propertyID := uuid.New()
	var vErr *ValidationError

	_, err := ledger.RecordTransaction(propertyID, TransactionInput{
		ItemID: uuid.New(), Kind: models.TransactionSale, Quantity: 0,
	})
	require.ErrorAs(t, err, &vErr)

	_, err = ledger.RecordTransaction(propertyID, TransactionInput{
		ItemID: uuid.New(), Kind: models.TransactionSale, Quantity: -3,
	})
	require.ErrorAs(t, err, &vErr)

	_, err = ledger.RecordTransaction(propertyID, TransactionInput{
		ItemID: uuid.New(), Kind: models.TransactionKind("transfer"), Quantity: 1,
	})
	require.ErrorAs(t, err, &vErr)

	// Adjustments carry their own sign, so they must go through AdjustStock.
	_, err = ledger.RecordTransaction(propertyID, TransactionInput{
		ItemID: uuid.New(), Kind: models.TransactionAdjustment, Quantity: 5,
	})
	require.ErrorAs(t, err, &vErr)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordTransactionUnknownItem(t *testing.T) {
	ledger, mock, closeFn := newLedgerMock(t)
	defer closeFn()

	propertyID := uuid.New()
	itemID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT current_stock FROM inventory_items").
		WithArgs(itemID, propertyID).
		WillReturnRows(sqlmock.NewRows([]string{"current_stock"}))
	mock.ExpectRollback()

	_, err := ledger.RecordTransaction(propertyID, TransactionInput{
		ItemID: itemID, Kind: models.TransactionWaste, Quantity: 1,
	})
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "inventory item", nfErr.Entity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStockUpward(t *testing.T) {
	ledger, mock, closeFn := newLedgerMock(t)
	defer closeFn()

	propertyID := uuid.New()
	itemID := uuid.New()

	mock.ExpectBegin()
	expectStockLevel(mock, itemID, propertyID, 42)
	mock.ExpectQuery("INSERT INTO stock_transactions").
		WithArgs(sqlmock.AnyArg(), itemID, "adjustment", 8.0, 8.0, "monthly count", "manager-1", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(12)))
	mock.ExpectExec("UPDATE inventory_items").
		WithArgs(8.0, sqlmock.AnyArg(), itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entry, err := ledger.AdjustStock(propertyID, itemID, 50, "monthly count", "manager-1")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionAdjustment, entry.Kind)
	assert.Equal(t, 8.0, entry.Delta)
	assert.Equal(t, 8.0, entry.Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStockDownward(t *testing.T) {
	ledger, mock, closeFn := newLedgerMock(t)
	defer closeFn()

	propertyID := uuid.New()
	itemID := uuid.New()

	mock.ExpectBegin()
	expectStockLevel(mock, itemID, propertyID, 42)
	mock.ExpectQuery("INSERT INTO stock_transactions").
		WithArgs(sqlmock.AnyArg(), itemID, "adjustment", 2.0, -2.0, "breakage", "manager-1", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(13)))
	mock.ExpectExec("UPDATE inventory_items").
		WithArgs(-2.0, sqlmock.AnyArg(), itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entry, err := ledger.AdjustStock(propertyID, itemID, 40, "breakage", "manager-1")
	require.NoError(t, err)
	assert.Equal(t, -2.0, entry.Delta)
	assert.Equal(t, 2.0, entry.Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStockMatchingCountStillRecorded(t *testing.T) {
	ledger, mock, closeFn := newLedgerMock(t)
	defer closeFn()

	propertyID := uuid.New()
	itemID := uuid.New()

	mock.ExpectBegin()
	expectStockLevel(mock, itemID, propertyID, 42)
	mock.ExpectQuery("INSERT INTO stock_transactions").
		WithArgs(sqlmock.AnyArg(), itemID, "adjustment", 0.0, 0.0, "monthly count", "manager-1", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(14)))
	mock.ExpectExec("UPDATE inventory_items").
		WithArgs(0.0, sqlmock.AnyArg(), itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entry, err := ledger.AdjustStock(propertyID, itemID, 42, "monthly count", "manager-1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, entry.Delta)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStockRejectsNegativeCount(t *testing.T) {
	ledger, mock, closeFn := newLedgerMock(t)
	defer closeFn()

	_, err := ledger.AdjustStock(uuid.New(), uuid.New(), -1, "", "")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTransactionHistoryNewestFirst(t *testing.T) {
	ledger, mock, closeFn := newLedgerMock(t)
	defer closeFn()

	propertyID := uuid.New()
	itemID := uuid.New()
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(itemID, propertyID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT id, seq, item_id").
		WithArgs(itemID, 50).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "seq", "item_id", "kind", "quantity", "delta", "reason", "actor", "reference_id", "created_at",
		}).
			AddRow(uuid.New().String(), int64(3), itemID.String(), "sale", 4.0, -4.0, nil, "staff-3", nil, base.Add(2*time.Hour)).
			AddRow(uuid.New().String(), int64(2), itemID.String(), "adjustment", 0.0, 0.0, "count", "manager-1", nil, base.Add(time.Hour)).
			AddRow(uuid.New().String(), int64(1), itemID.String(), "purchase", 25.0, 25.0, nil, "staff-3", nil, base))

	history, err := ledger.GetTransactionHistory(propertyID, itemID, 50)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, models.TransactionSale, history[0].Kind)
	assert.Equal(t, models.TransactionAdjustment, history[1].Kind)
	assert.Equal(t, models.TransactionPurchase, history[2].Kind)
	assert.True(t, history[0].CreatedAt.After(history[2].CreatedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTransactionHistoryUnknownItem(t *testing.T) {
	ledger, mock, closeFn := newLedgerMock(t)
	defer closeFn()

	propertyID := uuid.New()
	itemID := uuid.New()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(itemID, propertyID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := ledger.GetTransactionHistory(propertyID, itemID, 50)
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLowStockItems(t *testing.T) {
	ledger, mock, closeFn := newLedgerMock(t)
	defer closeFn()

	propertyID := uuid.New()
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, property_id, sku, name").
		WithArgs(propertyID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "property_id", "sku", "name", "unit", "current_stock", "min_stock", "max_stock", "expiry_date", "created_at", "updated_at",
		}).AddRow(uuid.New().String(), propertyID.String(), "COF-001", "Coffee beans", "kg", 1.5, 5.0, nil, nil, now, now))

	items, err := ledger.LowStockItems(propertyID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "COF-001", items[0].SKU)
	assert.True(t, items[0].LowStock())
	require.NoError(t, mock.ExpectationsWereMet())
}
