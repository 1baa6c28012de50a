package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "bilancio.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx := core.Transaction{
		ID:          "tx-1",
		UserID:      "u1",
		Type:        core.Expense,
		Category:    "Food",
		Amount:      decimal.RequireFromString("12.34"),
		Date:        core.NewDate(2025, 5, 10),
		Description: "lunch",
	}

	id, err := repo.AddTransaction(ctx, tx)
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if id != "tx-1" {
		t.Errorf("id = %s, want tx-1", id)
	}

	got, err := repo.GetTransaction(ctx, "u1", "tx-1")
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if !got.Amount.Equal(tx.Amount) {
		t.Errorf("Amount = %s, want %s", got.Amount, tx.Amount)
	}
	if got.Date.String() != "2025-05-10" {
		t.Errorf("Date = %s, want 2025-05-10", got.Date)
	}
	if got.Description != "lunch" {
		t.Errorf("Description = %s, want lunch", got.Description)
	}
}

func TestListTransactionsFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []core.Transaction{
		{ID: "a", UserID: "u1", Type: core.Expense, Category: "Food", Amount: decimal.NewFromInt(10), Date: core.NewDate(2025, 5, 1)},
		{ID: "b", UserID: "u1", Type: core.Expense, Category: "Rent", Amount: decimal.NewFromInt(900), Date: core.NewDate(2025, 5, 2)},
		{ID: "c", UserID: "u1", Type: core.Income, Category: "Salary", Amount: decimal.NewFromInt(3000), Date: core.NewDate(2025, 4, 28)},
		{ID: "d", UserID: "u2", Type: core.Expense, Category: "Food", Amount: decimal.NewFromInt(5), Date: core.NewDate(2025, 5, 1)},
	}
	for _, tx := range seed {
		if _, err := repo.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("seed %s: %v", tx.ID, err)
		}
	}

	start, _ := core.ParseDate("2025-05-01")
	end, _ := core.ParseDate("2025-05-31")

	got, err := repo.ListTransactions(ctx, "u1", core.Filter{Type: core.Expense, Start: start, End: end})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2", len(got))
	}
	for _, tx := range got {
		if tx.UserID != "u1" || tx.Type != core.Expense {
			t.Errorf("unexpected row: %+v", tx)
		}
	}
}

func TestBudgetUpsertAndNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetBudget(ctx, "u1", "2025-05"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	b := core.Budget{
		UserID:     "u1",
		YearMonth:  "2025-05",
		Categories: map[string]decimal.Decimal{"Food": decimal.NewFromInt(500)},
	}
	if err := repo.SaveBudget(ctx, b); err != nil {
		t.Fatalf("SaveBudget: %v", err)
	}

	b.Categories = map[string]decimal.Decimal{
		"Food": decimal.NewFromInt(450),
		"Rent": decimal.NewFromInt(1200),
	}
	if err := repo.SaveBudget(ctx, b); err != nil {
		t.Fatalf("SaveBudget upsert: %v", err)
	}

	got, err := repo.GetBudget(ctx, "u1", "2025-05")
	if err != nil {
		t.Fatalf("GetBudget: %v", err)
	}
	if len(got.Categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(got.Categories))
	}
	if !got.Categories["Food"].Equal(decimal.NewFromInt(450)) {
		t.Errorf("Food = %s, want 450", got.Categories["Food"])
	}
}

func TestGoalRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	g := core.Goal{
		ID:            "g1",
		UserID:        "u1",
		Name:          "Emergency fund",
		TargetAmount:  decimal.NewFromInt(1000),
		CurrentAmount: decimal.NewFromInt(100),
		Deadline:      core.NewDate(2026, 1, 1),
		Priority:      core.PriorityHigh,
		Notes:         "three months of expenses",
	}

	if _, err := repo.AddGoal(ctx, g); err != nil {
		t.Fatalf("AddGoal: %v", err)
	}

	g.CurrentAmount = decimal.NewFromInt(400)
	if err := repo.UpdateGoal(ctx, g); err != nil {
		t.Fatalf("UpdateGoal: %v", err)
	}

	got, err := repo.GetGoal(ctx, "u1", "g1")
	if err != nil {
		t.Fatalf("GetGoal: %v", err)
	}
	if !got.CurrentAmount.Equal(decimal.NewFromInt(400)) {
		t.Errorf("CurrentAmount = %s, want 400", got.CurrentAmount)
	}

	if err := repo.DeleteGoal(ctx, "u1", "g1"); err != nil {
		t.Fatalf("DeleteGoal: %v", err)
	}
	if _, err := repo.GetGoal(ctx, "u1", "g1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := repo.UpdateGoal(ctx, g); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("updating a missing goal should be ErrNotFound, got %v", err)
	}
}
