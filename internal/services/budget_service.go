package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/engine"
	"bilancio/internal/store"

	"github.com/shopspring/decimal"
)

// BudgetService manages per-month category budgets and reconciles them
// against recorded spending.
type BudgetService struct {
	budgets store.BudgetStore
	txs     store.TransactionStore
}

func NewBudgetService(budgets store.BudgetStore, txs store.TransactionStore) *BudgetService {
	return &BudgetService{
		budgets: budgets,
		txs:     txs,
	}
}

// GetBudget returns the budget for the period. A period with no stored
// budget yields an empty structure rather than an error.
func (s *BudgetService) GetBudget(ctx context.Context, userID, yearMonth string) (core.Budget, error) {
	if userID == "" {
		return core.Budget{}, core.ErrUnauthenticated
	}
	if err := core.ValidateYearMonth(yearMonth); err != nil {
		return core.Budget{}, err
	}

	b, err := s.budgets.GetBudget(ctx, userID, yearMonth)
	if errors.Is(err, core.ErrNotFound) {
		return core.Budget{
			UserID:     userID,
			YearMonth:  yearMonth,
			Categories: map[string]decimal.Decimal{},
		}, nil
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// SaveBudget creates or replaces the budget for the period, replacing the
// categories mapping wholesale.
func (s *BudgetService) SaveBudget(ctx context.Context, userID string, b core.Budget) error {
	if userID == "" {
		return core.ErrUnauthenticated
	}
	b.UserID = userID
	if b.Categories == nil {
		b.Categories = map[string]decimal.Decimal{}
	}
	if err := b.Validate(); err != nil {
		return err
	}
	b.UpdatedAt = time.Now().UTC()
	if err := s.budgets.SaveBudget(ctx, b); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

// SetCategory sets one category's budgeted amount, creating the period's
// budget on first use.
func (s *BudgetService) SetCategory(ctx context.Context, userID, yearMonth, category string, amount decimal.Decimal) error {
	if userID == "" {
		return core.ErrUnauthenticated
	}
	b, err := s.GetBudget(ctx, userID, yearMonth)
	if err != nil {
		return err
	}
	b.Categories[category] = amount
	return s.SaveBudget(ctx, userID, b)
}

// RemoveCategory drops a category from the period's budget. Removing from
// an empty budget is a no-op.
func (s *BudgetService) RemoveCategory(ctx context.Context, userID, yearMonth, category string) error {
	if userID == "" {
		return core.ErrUnauthenticated
	}
	b, err := s.GetBudget(ctx, userID, yearMonth)
	if err != nil {
		return err
	}
	if _, ok := b.Categories[category]; !ok {
		return nil
	}
	delete(b.Categories, category)
	return s.SaveBudget(ctx, userID, b)
}

// DeleteBudget removes the period's budget entirely.
func (s *BudgetService) DeleteBudget(ctx context.Context, userID, yearMonth string) error {
	if userID == "" {
		return core.ErrUnauthenticated
	}
	return s.budgets.DeleteBudget(ctx, userID, yearMonth)
}

// Performance reconciles the period's budget against the expenses actually
// recorded in that calendar month.
func (s *BudgetService) Performance(ctx context.Context, userID, yearMonth string) (engine.BudgetPerformance, error) {
	if userID == "" {
		return engine.BudgetPerformance{}, core.ErrUnauthenticated
	}

	budget, err := s.GetBudget(ctx, userID, yearMonth)
	if err != nil {
		return engine.BudgetPerformance{}, err
	}

	start, end, err := core.MonthRange(yearMonth)
	if err != nil {
		return engine.BudgetPerformance{}, err
	}
	txs, err := s.txs.ListTransactions(ctx, userID, core.Filter{
		Type:  core.Expense,
		Start: start,
		End:   end,
	})
	if err != nil {
		return engine.BudgetPerformance{}, fmt.Errorf("list month expenses: %w", err)
	}

	return engine.Reconcile(budget, engine.SumByCategory(txs)), nil
}
