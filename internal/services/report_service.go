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
	"golang.org/x/sync/errgroup"
)

// ReportRequest selects a report kind and an optional inclusive date range.
type ReportRequest struct {
	Kind  string
	Start core.Date
	End   core.Date
}

// GoalStatus pairs a goal with its computed progress.
type GoalStatus struct {
	Goal     core.Goal           `json:"goal"`
	Progress engine.GoalProgress `json:"progress"`
}

// Dashboard is the combined month snapshot: totals, budget reconciliation
// and goal progress.
type Dashboard struct {
	YearMonth string                   `json:"yearMonth"`
	Summary   engine.Summary           `json:"summary"`
	Budget    engine.BudgetPerformance `json:"budget"`
	Goals     []GoalStatus             `json:"goals"`
}

// ReportService generates reports from the user's transaction history.
// Every report is recomputed from storage on each request; there is no
// cached or incrementally patched state to drift.
type ReportService struct {
	txs     store.TransactionStore
	budgets store.BudgetStore
	goals   store.GoalStore
}

func NewReportService(txs store.TransactionStore, budgets store.BudgetStore, goals store.GoalStore) *ReportService {
	return &ReportService{
		txs:     txs,
		budgets: budgets,
		goals:   goals,
	}
}

// Generate composes the requested report over the user's transactions in
// the request's date range. Unknown kinds fall back to the category
// breakdown.
func (s *ReportService) Generate(ctx context.Context, userID string, req ReportRequest) (engine.Report, error) {
	if userID == "" {
		return engine.Report{}, core.ErrUnauthenticated
	}

	txs, err := s.txs.ListTransactions(ctx, userID, core.Filter{Start: req.Start, End: req.End})
	if err != nil {
		return engine.Report{}, fmt.Errorf("list transactions: %w", err)
	}

	return engine.Compose(engine.ParseReportKind(req.Kind), txs, time.Now()), nil
}

// Dashboard assembles the month snapshot, fetching the three record
// collections concurrently.
func (s *ReportService) Dashboard(ctx context.Context, userID, yearMonth string) (Dashboard, error) {
	if userID == "" {
		return Dashboard{}, core.ErrUnauthenticated
	}
	start, end, err := core.MonthRange(yearMonth)
	if err != nil {
		return Dashboard{}, err
	}

	var (
		txs    []core.Transaction
		budget core.Budget
		goals  []core.Goal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.txs.ListTransactions(gctx, userID, core.Filter{Start: start, End: end})
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		budget, err = s.budgets.GetBudget(gctx, userID, yearMonth)
		if errors.Is(err, core.ErrNotFound) {
			budget = core.Budget{
				UserID:     userID,
				YearMonth:  yearMonth,
				Categories: map[string]decimal.Decimal{},
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("get budget: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		goals, err = s.goals.ListGoals(gctx, userID)
		if err != nil {
			return fmt.Errorf("list goals: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	now := time.Now()
	statuses := make([]GoalStatus, 0, len(goals))
	for _, goal := range goals {
		statuses = append(statuses, GoalStatus{
			Goal:     goal,
			Progress: engine.ProgressOf(goal, now),
		})
	}

	expenses := engine.Select(txs, core.Filter{Type: core.Expense})
	return Dashboard{
		YearMonth: yearMonth,
		Summary:   engine.Summarize(txs),
		Budget:    engine.Reconcile(budget, engine.SumByCategory(expenses)),
		Goals:     statuses,
	}, nil
}
