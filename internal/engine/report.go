package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

const (
	ReportExpensesByCategory ReportKind = "expenses-by-category"
	ReportIncomeVsExpenses   ReportKind = "income-vs-expenses"
	ReportMonthlyOverview    ReportKind = "monthly-overview"
	ReportSavingsRate        ReportKind = "savings-rate"
)

type (
	ReportKind string

	// CategoryBreakdown is one row of an expenses-by-category report.
	// Percentage is the integer share of the set's total expenses.
	CategoryBreakdown struct {
		Category   string          `json:"category"`
		Amount     decimal.Decimal `json:"amount"`
		Percentage int             `json:"percentage"`
	}

	// MonthFlow is one row of a month-bucketed report.
	MonthFlow struct {
		Month    string          `json:"month"`
		Income   decimal.Decimal `json:"income"`
		Expenses decimal.Decimal `json:"expenses"`
	}

	// SavingsPoint is a MonthFlow augmented with its savings rate.
	SavingsPoint struct {
		Month       string          `json:"month"`
		Income      decimal.Decimal `json:"income"`
		Expenses    decimal.Decimal `json:"expenses"`
		SavingsRate int             `json:"savingsRate"`
	}

	// Overview is the monthly-overview report body: headline totals plus
	// the category breakdown for the current calendar month.
	Overview struct {
		Month              string              `json:"month"`
		TotalIncome        decimal.Decimal     `json:"totalIncome"`
		TotalExpenses      decimal.Decimal     `json:"totalExpenses"`
		Balance            decimal.Decimal     `json:"balance"`
		SavingsRate        int                 `json:"savingsRate"`
		ExpensesByCategory []CategoryBreakdown `json:"expensesByCategory"`
	}

	// Report is the composed output of one report request. Only the
	// fields for the requested kind are populated.
	Report struct {
		Kind               ReportKind          `json:"kind"`
		Categories         []CategoryBreakdown `json:"categories,omitempty"`
		TotalExpenses      decimal.Decimal     `json:"totalExpenses,omitempty"`
		Months             []MonthFlow         `json:"months,omitempty"`
		Overview           *Overview           `json:"overview,omitempty"`
		Savings            []SavingsPoint      `json:"savings,omitempty"`
		AverageSavingsRate int                 `json:"averageSavingsRate,omitempty"`
	}
)

// ParseReportKind maps a request string to a report kind. An unrecognized
// kind falls back to expenses-by-category rather than failing; the
// composer is deliberately lenient about what it is asked for.
func ParseReportKind(s string) ReportKind {
	switch ReportKind(s) {
	case ReportExpensesByCategory, ReportIncomeVsExpenses, ReportMonthlyOverview, ReportSavingsRate:
		return ReportKind(s)
	default:
		return ReportExpensesByCategory
	}
}

// Compose dispatches to one of the report kinds. The transaction set is
// expected to be already selected for the desired time range; "now" fixes
// the current calendar month for the monthly overview.
func Compose(kind ReportKind, txs []core.Transaction, now time.Time) Report {
	switch ParseReportKind(string(kind)) {
	case ReportIncomeVsExpenses:
		return incomeVsExpenses(txs)
	case ReportMonthlyOverview:
		return monthlyOverview(txs, now)
	case ReportSavingsRate:
		return savingsRateTrend(txs)
	default:
		return expensesByCategory(txs)
	}
}

func expensesByCategory(txs []core.Transaction) Report {
	expenses := Select(txs, core.Filter{Type: core.Expense})
	rows, total := breakdown(expenses)
	return Report{
		Kind:          ReportExpensesByCategory,
		Categories:    rows,
		TotalExpenses: total,
	}
}

// breakdown rolls expenses up by category, annotates each row with its
// integer share of the total, and orders rows amount-descending with ties
// broken by category name so the output is deterministic.
func breakdown(expenses []core.Transaction) ([]CategoryBreakdown, decimal.Decimal) {
	sums := SumByCategory(expenses)

	var total decimal.Decimal
	for _, amount := range sums {
		total = total.Add(amount)
	}

	rows := make([]CategoryBreakdown, 0, len(sums))
	for category, amount := range sums {
		row := CategoryBreakdown{Category: category, Amount: amount}
		if total.IsPositive() {
			row.Percentage = core.RoundPercent(amount.Div(total))
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Amount.Equal(rows[j].Amount) {
			return rows[i].Amount.GreaterThan(rows[j].Amount)
		}
		return rows[i].Category < rows[j].Category
	})

	return rows, total
}

func incomeVsExpenses(txs []core.Transaction) Report {
	months := SumByMonth(txs)

	rows := make([]MonthFlow, 0, len(months))
	for month, totals := range months {
		rows = append(rows, MonthFlow{Month: month, Income: totals.Income, Expenses: totals.Expenses})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month < rows[j].Month })

	return Report{
		Kind:   ReportIncomeVsExpenses,
		Months: rows,
	}
}

// DescendingMonths is the "most recent first" table view of a month-row
// report. It is a second sorted view of the same aggregate, not a second
// computation.
func DescendingMonths(rows []MonthFlow) []MonthFlow {
	out := make([]MonthFlow, len(rows))
	copy(out, rows)
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out
}

func monthlyOverview(txs []core.Transaction, now time.Time) Report {
	first, last, err := core.MonthRange(core.DateOf(now).YearMonth())
	if err != nil {
		// now always yields a well-formed year-month; keep the zero range
		// behavior defined anyway.
		return Report{Kind: ReportMonthlyOverview, Overview: &Overview{}}
	}

	month := Select(txs, core.Filter{Start: first, End: last})
	summary := Summarize(month)
	rows, _ := breakdown(Select(month, core.Filter{Type: core.Expense}))

	return Report{
		Kind: ReportMonthlyOverview,
		Overview: &Overview{
			Month:              first.YearMonth(),
			TotalIncome:        summary.TotalIncome,
			TotalExpenses:      summary.TotalExpenses,
			Balance:            summary.Balance,
			SavingsRate:        summary.SavingsRate(),
			ExpensesByCategory: rows,
		},
	}
}

func savingsRateTrend(txs []core.Transaction) Report {
	months := SumByMonth(txs)

	rows := make([]SavingsPoint, 0, len(months))
	for month, totals := range months {
		rows = append(rows, SavingsPoint{
			Month:       month,
			Income:      totals.Income,
			Expenses:    totals.Expenses,
			SavingsRate: SavingsRate(totals.Income, totals.Expenses),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month < rows[j].Month })

	// Simple mean across rows, not weighted by income.
	average := 0
	if len(rows) > 0 {
		sum := 0
		for _, row := range rows {
			sum += row.SavingsRate
		}
		average = int(decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(rows)))).Round(0).IntPart())
	}

	return Report{
		Kind:               ReportSavingsRate,
		Savings:            rows,
		AverageSavingsRate: average,
	}
}
