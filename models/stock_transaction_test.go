package models

import "testing"

func TestTransactionKindSign(t *testing.T) {
	tests := []struct {
		kind TransactionKind
		want int
	}{
		{TransactionPurchase, 1},
		{TransactionReturn, 1},
		{TransactionSale, -1},
		{TransactionWaste, -1},
		{TransactionAdjustment, 0},
	}
	for _, tt := range tests {
		if got := tt.kind.Sign(); got != tt.want {
			t.Errorf("%s.Sign() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestTransactionKindSignedDelta(t *testing.T) {
	if got := TransactionPurchase.SignedDelta(12.5); got != 12.5 {
		t.Errorf("purchase of 12.5 should move stock by +12.5, got %v", got)
	}
	if got := TransactionSale.SignedDelta(4); got != -4 {
		t.Errorf("sale of 4 should move stock by -4, got %v", got)
	}
	if got := TransactionWaste.SignedDelta(0.75); got != -0.75 {
		t.Errorf("waste of 0.75 should move stock by -0.75, got %v", got)
	}
}

func TestTransactionKindValid(t *testing.T) {
	for _, k := range []TransactionKind{TransactionPurchase, TransactionSale, TransactionAdjustment, TransactionWaste, TransactionReturn} {
		if !k.Valid() {
			t.Errorf("expected %q to be valid", k)
		}
	}
	if TransactionKind("transfer").Valid() {
		t.Error("unknown kind should not be valid")
	}
}

func TestInventoryItemLowStock(t *testing.T) {
	item := &InventoryItem{CurrentStock: 5, MinStock: 10}
	if !item.LowStock() {
		t.Error("stock below the minimum should report low")
	}
	item.CurrentStock = 10
	if !item.LowStock() {
		t.Error("stock exactly at the minimum should report low")
	}
	item.CurrentStock = 10.001
	if item.LowStock() {
		t.Error("stock above the minimum should not report low")
	}
}
