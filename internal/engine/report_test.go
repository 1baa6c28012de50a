package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
)

// reportNow pins the "current calendar month" for monthly-overview tests.
var reportNow = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

func reportLedger() []core.Transaction {
	return []core.Transaction{
		tx(core.Expense, "Food", "520.45", "2025-05-10"),
		tx(core.Expense, "Housing", "1200.00", "2025-05-05"),
		tx(core.Expense, "Transport", "245.75", "2025-05-12"),
		tx(core.Expense, "Food", "85.25", "2025-04-25"),
		tx(core.Expense, "Housing", "1200.00", "2025-04-05"),
		tx(core.Income, "Salary", "3500.00", "2025-05-01"),
		tx(core.Income, "Freelance", "850.00", "2025-05-15"),
		tx(core.Income, "Salary", "3500.00", "2025-04-01"),
	}
}

func TestCompose_ExpensesByCategory(t *testing.T) {
	r := Compose(ReportExpensesByCategory, reportLedger(), reportNow)

	assert.Equal(t, ReportExpensesByCategory, r.Kind)
	require.Len(t, r.Categories, 3)

	// Sorted by amount descending.
	assert.Equal(t, "Housing", r.Categories[0].Category)
	assert.True(t, r.Categories[0].Amount.Equal(decimal.RequireFromString("2400.00")))
	assert.Equal(t, "Food", r.Categories[1].Category)
	assert.Equal(t, "Transport", r.Categories[2].Category)

	assert.True(t, r.TotalExpenses.Equal(decimal.RequireFromString("3251.45")))

	// Percentages are integer shares of the total.
	assert.Equal(t, 74, r.Categories[0].Percentage)
	assert.Equal(t, 19, r.Categories[1].Percentage)
	assert.Equal(t, 8, r.Categories[2].Percentage)
}

func TestCompose_ExpensesByCategory_TieBreak(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, "Zoo", "50", "2025-05-01"),
		tx(core.Expense, "Art", "50", "2025-05-02"),
	}

	r := Compose(ReportExpensesByCategory, txs, reportNow)

	require.Len(t, r.Categories, 2)
	assert.Equal(t, "Art", r.Categories[0].Category, "equal amounts tie-break by name ascending")
	assert.Equal(t, "Zoo", r.Categories[1].Category)
}

func TestCompose_IncomeVsExpenses(t *testing.T) {
	r := Compose(ReportIncomeVsExpenses, reportLedger(), reportNow)

	require.Len(t, r.Months, 2)
	assert.Equal(t, "2025-04", r.Months[0].Month, "chart view is month ascending")
	assert.Equal(t, "2025-05", r.Months[1].Month)

	assert.True(t, r.Months[1].Income.Equal(decimal.RequireFromString("4350.00")))
	assert.True(t, r.Months[1].Expenses.Equal(decimal.RequireFromString("1966.20")))

	table := DescendingMonths(r.Months)
	require.Len(t, table, 2)
	assert.Equal(t, "2025-05", table[0].Month, "table view is most recent first")
	assert.True(t, table[0].Income.Equal(r.Months[1].Income),
		"both views expose the same aggregate")
}

func TestCompose_MonthlyOverview(t *testing.T) {
	r := Compose(ReportMonthlyOverview, reportLedger(), reportNow)

	require.NotNil(t, r.Overview)
	o := r.Overview

	assert.Equal(t, "2025-05", o.Month)
	assert.True(t, o.TotalIncome.Equal(decimal.RequireFromString("4350.00")))
	assert.True(t, o.TotalExpenses.Equal(decimal.RequireFromString("1966.20")))
	assert.True(t, o.Balance.Equal(decimal.RequireFromString("2383.80")))
	assert.Equal(t, 55, o.SavingsRate)

	require.Len(t, o.ExpensesByCategory, 3, "breakdown is restricted to the current month")
	assert.Equal(t, "Housing", o.ExpensesByCategory[0].Category)
	assert.True(t, o.ExpensesByCategory[0].Amount.Equal(decimal.RequireFromString("1200.00")))
}

func TestCompose_SavingsRateTrend(t *testing.T) {
	r := Compose(ReportSavingsRate, reportLedger(), reportNow)

	require.Len(t, r.Savings, 2)
	assert.Equal(t, "2025-04", r.Savings[0].Month)
	assert.Equal(t, 63, r.Savings[0].SavingsRate)
	assert.Equal(t, "2025-05", r.Savings[1].Month)
	assert.Equal(t, 55, r.Savings[1].SavingsRate)

	// Simple mean of the per-month rates, not weighted by income.
	assert.Equal(t, 59, r.AverageSavingsRate)
}

func TestCompose_UnknownKindFallsBack(t *testing.T) {
	txs := reportLedger()

	unknown := Compose("quarterly-forecast", txs, reportNow)
	fallback := Compose(ReportExpensesByCategory, txs, reportNow)

	assert.Equal(t, fallback, unknown,
		"unrecognized kinds produce the expenses-by-category report")
}

func TestCompose_EmptyLedger(t *testing.T) {
	for _, kind := range []ReportKind{
		ReportExpensesByCategory, ReportIncomeVsExpenses,
		ReportMonthlyOverview, ReportSavingsRate,
	} {
		r := Compose(kind, nil, reportNow)
		switch kind {
		case ReportMonthlyOverview:
			require.NotNil(t, r.Overview)
			assert.True(t, r.Overview.TotalIncome.IsZero())
			assert.Empty(t, r.Overview.ExpensesByCategory)
		case ReportIncomeVsExpenses:
			assert.Empty(t, r.Months)
		case ReportSavingsRate:
			assert.Empty(t, r.Savings)
			assert.Equal(t, 0, r.AverageSavingsRate)
		default:
			assert.Empty(t, r.Categories)
			assert.True(t, r.TotalExpenses.IsZero())
		}
	}
}

func TestParseReportKind(t *testing.T) {
	assert.Equal(t, ReportSavingsRate, ParseReportKind("savings-rate"))
	assert.Equal(t, ReportExpensesByCategory, ParseReportKind(""))
	assert.Equal(t, ReportExpensesByCategory, ParseReportKind("nope"))
}
