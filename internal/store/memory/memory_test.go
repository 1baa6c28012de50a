package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

func TestTransactionLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	tx := core.Transaction{
		UserID:   "u1",
		Type:     core.Expense,
		Category: "Food",
		Amount:   decimal.NewFromInt(10),
		Date:     core.NewDate(2025, 5, 1),
	}

	id, err := s.AddTransaction(ctx, tx)
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if id == "" {
		t.Fatal("expected synthetic id")
	}

	got, err := s.GetTransaction(ctx, "u1", id)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Category != "Food" {
		t.Errorf("Category = %s, want Food", got.Category)
	}

	got.Category = "Groceries"
	if err := s.UpdateTransaction(ctx, got); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}

	if err := s.DeleteTransaction(ctx, "u1", id); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if _, err := s.GetTransaction(ctx, "u1", id); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestUserScoping(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.AddTransaction(ctx, core.Transaction{
		UserID: "u1", Type: core.Income, Category: "Salary",
		Amount: decimal.NewFromInt(100), Date: core.NewDate(2025, 5, 1),
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	if _, err := s.GetTransaction(ctx, "u2", id); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user read must look like not-found, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, "u2", id); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user delete must look like not-found, got %v", err)
	}

	list, err := s.ListTransactions(ctx, "u2", core.Filter{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("user u2 must not see u1's records, got %d", len(list))
	}
}

func TestListTransactionsFilters(t *testing.T) {
	s := New()
	ctx := context.Background()

	seed := []core.Transaction{
		{UserID: "u1", Type: core.Expense, Category: "Food", Amount: decimal.NewFromInt(10), Date: core.NewDate(2025, 5, 1)},
		{UserID: "u1", Type: core.Expense, Category: "Rent", Amount: decimal.NewFromInt(900), Date: core.NewDate(2025, 5, 2)},
		{UserID: "u1", Type: core.Income, Category: "Salary", Amount: decimal.NewFromInt(3000), Date: core.NewDate(2025, 5, 3)},
	}
	for _, tx := range seed {
		if _, err := s.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	expenses, err := s.ListTransactions(ctx, "u1", core.Filter{Type: core.Expense})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(expenses) != 2 {
		t.Errorf("expense filter: got %d, want 2", len(expenses))
	}
}

func TestBudgetSaveIsUpsert(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetBudget(ctx, "u1", "2025-05"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing budget, got %v", err)
	}

	b := core.Budget{
		UserID:     "u1",
		YearMonth:  "2025-05",
		Categories: map[string]decimal.Decimal{"Food": decimal.NewFromInt(500)},
	}
	if err := s.SaveBudget(ctx, b); err != nil {
		t.Fatalf("SaveBudget: %v", err)
	}

	first, err := s.GetBudget(ctx, "u1", "2025-05")
	if err != nil {
		t.Fatalf("GetBudget: %v", err)
	}
	if first.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set on first save")
	}

	// Second save replaces categories and keeps CreatedAt.
	b.Categories = map[string]decimal.Decimal{"Rent": decimal.NewFromInt(1200)}
	if err := s.SaveBudget(ctx, b); err != nil {
		t.Fatalf("SaveBudget update: %v", err)
	}
	second, err := s.GetBudget(ctx, "u1", "2025-05")
	if err != nil {
		t.Fatalf("GetBudget: %v", err)
	}
	if _, ok := second.Categories["Food"]; ok {
		t.Error("save must replace the categories mapping wholesale")
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Error("CreatedAt must survive updates")
	}
}

func TestGetBudgetReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.SaveBudget(ctx, core.Budget{
		UserID:     "u1",
		YearMonth:  "2025-05",
		Categories: map[string]decimal.Decimal{"Food": decimal.NewFromInt(500)},
	}); err != nil {
		t.Fatalf("SaveBudget: %v", err)
	}

	got, _ := s.GetBudget(ctx, "u1", "2025-05")
	got.Categories["Food"] = decimal.NewFromInt(1)

	again, _ := s.GetBudget(ctx, "u1", "2025-05")
	if !again.Categories["Food"].Equal(decimal.NewFromInt(500)) {
		t.Error("mutating a returned budget must not affect the store")
	}
}

func TestGoalLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	g := core.Goal{
		UserID:        "u1",
		Name:          "Vacation",
		TargetAmount:  decimal.NewFromInt(2000),
		CurrentAmount: decimal.Zero,
		Deadline:      core.NewDate(2026, 6, 1),
		Priority:      core.PriorityLow,
	}

	id, err := s.AddGoal(ctx, g)
	if err != nil {
		t.Fatalf("AddGoal: %v", err)
	}

	got, err := s.GetGoal(ctx, "u1", id)
	if err != nil {
		t.Fatalf("GetGoal: %v", err)
	}

	got.CurrentAmount = decimal.NewFromInt(250)
	if err := s.UpdateGoal(ctx, got); err != nil {
		t.Fatalf("UpdateGoal: %v", err)
	}

	goals, err := s.ListGoals(ctx, "u1")
	if err != nil {
		t.Fatalf("ListGoals: %v", err)
	}
	if len(goals) != 1 || !goals[0].CurrentAmount.Equal(decimal.NewFromInt(250)) {
		t.Errorf("unexpected goals after update: %+v", goals)
	}

	if err := s.DeleteGoal(ctx, "u1", id); err != nil {
		t.Fatalf("DeleteGoal: %v", err)
	}
	if _, err := s.GetGoal(ctx, "u1", id); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
