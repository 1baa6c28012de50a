package memory

import (
	"context"
	"testing"

	"bilancio/internal/core"

	"github.com/shopspring/decimal"
)

func sample(id string) core.Transaction {
	return core.Transaction{
		ID:       id,
		UserID:   "user-1",
		Type:     core.Expense,
		Category: "Food",
		Amount:   decimal.NewFromInt(42),
		Date:     core.NewDate(2025, 5, 10),
	}
}

func TestStore_Append(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Append(ctx, sample("tx-1"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("Append() ref = %v, want mem:1", ref)
	}

	if got := len(s.Items()); got != 1 {
		t.Errorf("Items() len = %d, want 1", got)
	}
}

func TestStore_Append_Invalid(t *testing.T) {
	s := New()
	tx := sample("tx-1")
	tx.Category = ""

	if _, err := s.Append(context.Background(), tx); err == nil {
		t.Error("Append() expected validation error, got nil")
	}
}

func TestStore_Remove(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.Append(ctx, sample("tx-1"))
	s.Append(ctx, sample("tx-2"))

	if err := s.Remove(ctx, "tx-1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	items := s.Items()
	if len(items) != 1 || items[0].ID != "tx-2" {
		t.Errorf("Items() after remove = %v, want only tx-2", items)
	}

	// Removing an absent id is not an error.
	if err := s.Remove(ctx, "tx-999"); err != nil {
		t.Errorf("Remove() absent id error = %v, want nil", err)
	}
}
