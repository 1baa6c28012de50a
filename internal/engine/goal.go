package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

// GoalProgress is the derived view of a savings goal at one evaluation
// instant. None of these fields are ever stored.
type GoalProgress struct {
	ProgressPercentage int             `json:"progressPercentage"`
	RemainingAmount    decimal.Decimal `json:"remainingAmount"`
	IsCompleted        bool            `json:"isCompleted"`
	DaysRemaining      int             `json:"daysRemaining"`
	DailyAmountNeeded  decimal.Decimal `json:"dailyAmountNeeded"`
}

// ProgressOf evaluates a goal against "now".
//
// The outputs are internally consistent: a completed goal always reports
// 100%, zero remaining, and zero daily need. A past deadline yields zero
// days remaining, never a negative count, and collapses the daily amount
// to zero instead of dividing by zero.
func ProgressOf(goal core.Goal, now time.Time) GoalProgress {
	var p GoalProgress

	if goal.TargetAmount.IsPositive() {
		ratio := goal.CurrentAmount.Div(goal.TargetAmount)
		p.ProgressPercentage = core.RoundPercent(ratio)
		if p.ProgressPercentage > 100 {
			p.ProgressPercentage = 100
		}
		if p.ProgressPercentage < 0 {
			p.ProgressPercentage = 0
		}
	}

	p.RemainingAmount = goal.TargetAmount.Sub(goal.CurrentAmount)
	if p.RemainingAmount.IsNegative() {
		p.RemainingAmount = decimal.Zero
	}

	p.IsCompleted = goal.CurrentAmount.GreaterThanOrEqual(goal.TargetAmount)
	p.DaysRemaining = daysUntil(goal.Deadline, now)

	if p.DaysRemaining > 0 {
		p.DailyAmountNeeded = p.RemainingAmount.Div(decimal.NewFromInt(int64(p.DaysRemaining)))
	} else {
		p.DailyAmountNeeded = decimal.Zero
	}

	return p
}

// daysUntil counts whole days from now to the deadline, rounding partial
// days up. A deadline at or before now yields 0.
func daysUntil(deadline core.Date, now time.Time) int {
	diff := deadline.Sub(now)
	if diff <= 0 {
		return 0
	}
	days := diff / (24 * time.Hour)
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return int(days)
}
