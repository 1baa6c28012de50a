package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	PriorityHigh   GoalPriority = "high"
	PriorityMedium GoalPriority = "medium"
	PriorityLow    GoalPriority = "low"
)

type (
	TransactionType string

	GoalPriority string

	// Transaction is a single dated money movement. Amount is never
	// negative; the sign of its contribution to totals is implied by Type.
	Transaction struct {
		ID          string          `json:"id"`
		UserID      string          `json:"userId"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		Amount      decimal.Decimal `json:"amount"`
		Date        Date            `json:"date"`
		Description string          `json:"description,omitempty"`
		CreatedAt   time.Time       `json:"createdAt,omitempty"`
	}

	// Budget holds per-category targets for one user and one year-month.
	// An absent category means "no budget set"; a zero value means
	// "budgeted zero" - the two are not interchangeable.
	Budget struct {
		UserID     string                     `json:"userId"`
		YearMonth  string                     `json:"yearMonth"`
		Categories map[string]decimal.Decimal `json:"categories"`
		CreatedAt  time.Time                  `json:"createdAt,omitempty"`
		UpdatedAt  time.Time                  `json:"updatedAt,omitempty"`
	}

	// Goal is a savings target. CurrentAmount is set directly by progress
	// updates, not incremented.
	Goal struct {
		ID            string          `json:"id"`
		UserID        string          `json:"userId"`
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		Deadline      Date            `json:"deadline"`
		Priority      GoalPriority    `json:"priority"`
		Notes         string          `json:"notes,omitempty"`
		CreatedAt     time.Time       `json:"createdAt,omitempty"`
		UpdatedAt     time.Time       `json:"updatedAt,omitempty"`
	}

	// Filter selects a subset of transactions. Zero-valued fields mean
	// "no constraint on that dimension"; all present fields are ANDed.
	Filter struct {
		Type     TransactionType
		Category string
		Start    Date
		End      Date
	}
)

var (
	ErrUnauthenticated = errors.New("no resolved user identity")
	ErrNotFound        = errors.New("not found")
	ErrInvalidAmount   = errors.New("invalid amount")

	ErrInvalidType      = errors.New("invalid transaction type")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrInvalidYearMonth = errors.New("invalid year-month")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (p GoalPriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(t.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	return nil
}

func (b Budget) Validate() error {
	if err := ValidateYearMonth(b.YearMonth); err != nil {
		return err
	}
	for name, amount := range b.Categories {
		if strings.TrimSpace(name) == "" {
			return ErrEmptyCategory
		}
		if amount.IsNegative() {
			return ErrInvalidAmount
		}
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if !g.TargetAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if g.CurrentAmount.IsNegative() {
		return ErrInvalidAmount
	}
	if g.Deadline.IsZero() {
		return ErrInvalidDate
	}
	if !g.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// BudgetKey is the storage key for one user's budget in one month.
func BudgetKey(userID, yearMonth string) string {
	return userID + "_" + yearMonth
}

// ValidateYearMonth checks the YYYY-MM form used to identify budget periods.
func ValidateYearMonth(ym string) error {
	if _, err := time.Parse("2006-01", ym); err != nil {
		return ErrInvalidYearMonth
	}
	return nil
}
