package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestReconcile(t *testing.T) {
	budget := core.Budget{
		UserID:    "u1",
		YearMonth: "2025-05",
		Categories: map[string]decimal.Decimal{
			"Food": dec("500"),
			"Rent": dec("1200"),
		},
	}
	actuals := map[string]decimal.Decimal{
		"Food":      dec("320"),
		"Transport": dec("50"),
	}

	perf := Reconcile(budget, actuals)

	require.Len(t, perf.Categories, 3, "every category in either input appears exactly once")

	food := perf.Categories["Food"]
	assert.True(t, food.Budgeted.Equal(dec("500")))
	assert.True(t, food.Actual.Equal(dec("320")))
	assert.True(t, food.Remaining.Equal(dec("180")))

	rent := perf.Categories["Rent"]
	assert.True(t, rent.Budgeted.Equal(dec("1200")))
	assert.True(t, rent.Actual.IsZero(), "budgeted category without spend gets actual 0")
	assert.True(t, rent.Remaining.Equal(dec("1200")))

	transport := perf.Categories["Transport"]
	assert.True(t, transport.Budgeted.IsZero(), "actuals-only category gets budgeted 0")
	assert.True(t, transport.Actual.Equal(dec("50")))
	assert.True(t, transport.Remaining.Equal(dec("-50")))

	assert.True(t, perf.Totals.Budgeted.Equal(dec("1700")))
	assert.True(t, perf.Totals.Actual.Equal(dec("370")))
	assert.True(t, perf.Totals.Remaining.Equal(dec("1330")))
}

func TestReconcile_TotalsMatchRows(t *testing.T) {
	budget := core.Budget{
		YearMonth: "2025-06",
		Categories: map[string]decimal.Decimal{
			"A": dec("10"), "B": dec("20"), "C": dec("0"),
		},
	}
	actuals := map[string]decimal.Decimal{"B": dec("5"), "D": dec("7")}

	perf := Reconcile(budget, actuals)

	var budgeted, actual decimal.Decimal
	for _, cp := range perf.Categories {
		budgeted = budgeted.Add(cp.Budgeted)
		actual = actual.Add(cp.Actual)
	}
	assert.True(t, perf.Totals.Budgeted.Equal(budgeted))
	assert.True(t, perf.Totals.Actual.Equal(actual))
	assert.True(t, perf.Totals.Remaining.Equal(budgeted.Sub(actual)))
}

func TestReconcile_ZeroBudgetIsNotAbsent(t *testing.T) {
	budget := core.Budget{
		YearMonth:  "2025-05",
		Categories: map[string]decimal.Decimal{"Gifts": decimal.Zero},
	}

	perf := Reconcile(budget, nil)

	gifts, present := perf.Categories["Gifts"]
	require.True(t, present, "a zero-valued budget category still appears in the result")
	assert.True(t, gifts.Budgeted.IsZero())
	assert.True(t, gifts.Remaining.IsZero())
}

func TestReconcile_EmptyInputs(t *testing.T) {
	perf := Reconcile(core.Budget{YearMonth: "2025-05"}, nil)

	assert.Empty(t, perf.Categories)
	assert.True(t, perf.Totals.Budgeted.IsZero())
	assert.True(t, perf.Totals.Actual.IsZero())
	assert.True(t, perf.Totals.Remaining.IsZero())
}
