package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionKind classifies a stock movement. The kind fixes the direction
// of the movement: purchases and returns add stock, sales and waste remove
// it. Adjustments are reconciliations against a counted level and carry
// their own sign in the delta.
type TransactionKind string

const (
	TransactionPurchase   TransactionKind = "purchase"
	TransactionSale       TransactionKind = "sale"
	TransactionAdjustment TransactionKind = "adjustment"
	TransactionWaste      TransactionKind = "waste"
	TransactionReturn     TransactionKind = "return"
)

func (k TransactionKind) Valid() bool {
	switch k {
	case TransactionPurchase, TransactionSale, TransactionAdjustment, TransactionWaste, TransactionReturn:
		return true
	}
	return false
}

// Sign returns +1 for kinds that add stock, -1 for kinds that remove it,
// and 0 for adjustments, whose direction comes from the counted level.
func (k TransactionKind) Sign() int {
	switch k {
	case TransactionPurchase, TransactionReturn:
		return 1
	case TransactionSale, TransactionWaste:
		return -1
	}
	return 0
}

// SignedDelta converts an unsigned quantity into the signed stock movement
// for this kind.
func (k TransactionKind) SignedDelta(quantity float64) float64 {
	return float64(k.Sign()) * quantity
}

// StockTransaction is one append-only ledger entry. Rows are never updated
// or deleted; corrections are new adjustment entries. Seq is assigned by the
// database and breaks ties between entries sharing a timestamp.
type StockTransaction struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Seq         int64           `json:"seq,omitempty" db:"seq"`
	ItemID      uuid.UUID       `json:"item_id" db:"item_id"`
	Kind        TransactionKind `json:"kind" db:"kind"`
	Quantity    float64         `json:"quantity" db:"quantity"`
	Delta       float64         `json:"delta" db:"delta"`
	Reason      *string         `json:"reason,omitempty" db:"reason"`
	Actor       string          `json:"actor" db:"actor"`
	ReferenceID *uuid.UUID      `json:"reference_id,omitempty" db:"reference_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

func (StockTransaction) TableName() string {
	return "stock_transactions"
}

func (StockTransaction) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS stock_transactions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		seq BIGSERIAL NOT NULL UNIQUE,
		item_id UUID NOT NULL REFERENCES inventory_items(id) ON DELETE CASCADE,
		kind TEXT NOT NULL CHECK (kind IN ('purchase', 'sale', 'adjustment', 'waste', 'return')),
		quantity NUMERIC(12,3) NOT NULL CHECK (quantity >= 0),
		delta NUMERIC(12,3) NOT NULL,
		reason TEXT,
		actor TEXT NOT NULL DEFAULT 'system',
		reference_id UUID,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);`
}
