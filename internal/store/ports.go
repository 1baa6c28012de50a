// Package store declares the ports the engine's collaborators implement.
// The aggregation engine never talks to a database directly; services
// fetch record collections through these interfaces and hand plain slices
// to the engine.
package store

import (
	"context"

	"bilancio/internal/core"
)

type (
	TransactionStore interface {
		// AddTransaction persists a transaction and returns its id.
		AddTransaction(ctx context.Context, tx core.Transaction) (string, error)
		// GetTransaction returns core.ErrNotFound for unknown ids.
		GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, userID, id string) error
		// ListTransactions returns the user's transactions matching the
		// filter, in no guaranteed order.
		ListTransactions(ctx context.Context, userID string, f core.Filter) ([]core.Transaction, error)
	}

	BudgetStore interface {
		// GetBudget returns core.ErrNotFound when no budget exists for
		// the period. Callers substitute an empty structure; absence is
		// recoverable for budgets.
		GetBudget(ctx context.Context, userID, yearMonth string) (core.Budget, error)
		// SaveBudget creates on first save and updates afterwards,
		// replacing the categories mapping wholesale.
		SaveBudget(ctx context.Context, b core.Budget) error
		DeleteBudget(ctx context.Context, userID, yearMonth string) error
	}

	GoalStore interface {
		AddGoal(ctx context.Context, g core.Goal) (string, error)
		// GetGoal returns core.ErrNotFound for unknown ids; for goals
		// absence is terminal for the request.
		GetGoal(ctx context.Context, userID, id string) (core.Goal, error)
		UpdateGoal(ctx context.Context, g core.Goal) error
		DeleteGoal(ctx context.Context, userID, id string) error
		ListGoals(ctx context.Context, userID string) ([]core.Goal, error)
	}

	// Store bundles the three record collections one backend provides.
	Store interface {
		TransactionStore
		BudgetStore
		GoalStore
		Close() error
	}
)
