package engine

import (
	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

type (
	// CategoryPerformance compares one category's budgeted target with
	// actual spend. Remaining may be negative (overspend).
	CategoryPerformance struct {
		Budgeted  decimal.Decimal `json:"budgeted"`
		Actual    decimal.Decimal `json:"actual"`
		Remaining decimal.Decimal `json:"remaining"`
	}

	// BudgetPerformance is the derived budget-vs-actual record for one
	// period. It is never persisted; it is recomputed on every request.
	BudgetPerformance struct {
		YearMonth  string                         `json:"yearMonth"`
		Categories map[string]CategoryPerformance `json:"categories"`
		Totals     CategoryPerformance            `json:"totals"`
	}
)

// Reconcile merges a budget's per-category targets with actual spend for
// the same period. Every category present in either input appears exactly
// once: budget categories first (actual defaults to zero), then
// actuals-only categories (budgeted zero, remaining negative). Callers
// must not rely on map iteration order.
func Reconcile(budget core.Budget, actuals map[string]decimal.Decimal) BudgetPerformance {
	perf := BudgetPerformance{
		YearMonth:  budget.YearMonth,
		Categories: make(map[string]CategoryPerformance, len(budget.Categories)+len(actuals)),
	}

	for name, budgeted := range budget.Categories {
		actual := actuals[name]
		perf.Categories[name] = CategoryPerformance{
			Budgeted:  budgeted,
			Actual:    actual,
			Remaining: budgeted.Sub(actual),
		}
	}

	for name, actual := range actuals {
		if _, seen := perf.Categories[name]; seen {
			continue
		}
		perf.Categories[name] = CategoryPerformance{
			Budgeted:  decimal.Zero,
			Actual:    actual,
			Remaining: actual.Neg(),
		}
	}

	for _, cp := range perf.Categories {
		perf.Totals.Budgeted = perf.Totals.Budgeted.Add(cp.Budgeted)
		perf.Totals.Actual = perf.Totals.Actual.Add(cp.Actual)
	}
	perf.Totals.Remaining = perf.Totals.Budgeted.Sub(perf.Totals.Actual)

	return perf
}
