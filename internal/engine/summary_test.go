package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"bilancio/internal/core"
)

func TestSummarize(t *testing.T) {
	s := Summarize(sampleLedger())

	assert.True(t, s.TotalIncome.Equal(decimal.RequireFromString("4150.00")))
	assert.True(t, s.TotalExpenses.Equal(decimal.RequireFromString("1805.70")))
	assert.True(t, s.Balance.Equal(decimal.RequireFromString("2344.30")))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.True(t, s.TotalIncome.IsZero())
	assert.True(t, s.TotalExpenses.IsZero())
	assert.True(t, s.Balance.IsZero())
}

func TestSavingsRate(t *testing.T) {
	dec := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	tests := []struct {
		name     string
		income   decimal.Decimal
		expenses decimal.Decimal
		want     int
	}{
		{name: "typical", income: dec("100"), expenses: dec("20"), want: 80},
		{name: "nothing saved", income: dec("100"), expenses: dec("100"), want: 0},
		{name: "overspent", income: dec("100"), expenses: dec("150"), want: -50},
		{name: "rounding", income: dec("3"), expenses: dec("1"), want: 67},
		// Zero or negative income is defined as a 0% rate. This is a
		// policy choice to avoid dividing by zero, not a math identity.
		{name: "zero income zero expenses", income: dec("0"), expenses: dec("0"), want: 0},
		{name: "zero income with expenses", income: dec("0"), expenses: dec("250"), want: 0},
		{name: "negative income", income: dec("-10"), expenses: dec("5"), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SavingsRate(tt.income, tt.expenses))
		})
	}
}

func TestSummarySavingsRate(t *testing.T) {
	s := Summarize([]core.Transaction{
		tx(core.Income, "Salary", "100", "2025-05-01"),
		tx(core.Expense, "Food", "20", "2025-05-02"),
	})
	assert.Equal(t, 80, s.SavingsRate())
}
