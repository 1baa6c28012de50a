package engine

import (
	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

// MonthTotals is one month's income and expense accumulation.
type MonthTotals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// SumByCategory accumulates transaction amounts into per-category buckets.
// Categories not present in the input never appear in the output; there is
// no zero-fill. Accumulation is commutative, so the result is independent
// of input order.
func SumByCategory(txs []core.Transaction) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
	}
	return sums
}

// SumByMonth buckets transactions by the YYYY-MM prefix of their date and
// accumulates into income or expense sub-totals by type. Buckets are
// created lazily on first contribution.
func SumByMonth(txs []core.Transaction) map[string]MonthTotals {
	months := make(map[string]MonthTotals)
	for _, tx := range txs {
		key := tx.Date.YearMonth()
		totals := months[key]
		switch tx.Type {
		case core.Income:
			totals.Income = totals.Income.Add(tx.Amount)
		case core.Expense:
			totals.Expenses = totals.Expenses.Add(tx.Amount)
		}
		months[key] = totals
	}
	return months
}
