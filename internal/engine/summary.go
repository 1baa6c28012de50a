package engine

import (
	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

// Summary holds the headline totals for a selected transaction set.
type Summary struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Balance       decimal.Decimal `json:"balance"`
}

// Summarize computes total income, total expenses, and their balance.
func Summarize(txs []core.Transaction) Summary {
	var s Summary
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
		case core.Expense:
			s.TotalExpenses = s.TotalExpenses.Add(tx.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpenses)
	return s
}

// SavingsRate returns round(((income - expenses) / income) * 100).
//
// When income is zero or negative the rate is defined as 0. That is a
// policy choice to avoid division by zero, not a mathematical identity:
// "no income" reports as a 0% rate rather than an error.
func SavingsRate(income, expenses decimal.Decimal) int {
	if income.Sign() <= 0 {
		return 0
	}
	return core.RoundPercent(income.Sub(expenses).Div(income))
}

// SavingsRate applies the package-level SavingsRate to the summary totals.
func (s Summary) SavingsRate() int {
	return SavingsRate(s.TotalIncome, s.TotalExpenses)
}
