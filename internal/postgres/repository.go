// Package postgres is the pgx-backed alternative to the SQLite backend,
// for deployments that already run a shared Postgres instance.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
    category TEXT NOT NULL,
    amount NUMERIC NOT NULL,
    date DATE NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions (user_id, date);

CREATE TABLE IF NOT EXISTS budgets (
    budget_key TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    year_month TEXT NOT NULL,
    categories JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS goals (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL,
    target_amount NUMERIC NOT NULL,
    current_amount NUMERIC NOT NULL DEFAULT 0,
    deadline DATE NOT NULL,
    priority TEXT NOT NULL CHECK (priority IN ('high', 'medium', 'low')),
    notes TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_goals_user ON goals (user_id);
`

type Repository struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Repository)(nil)

func NewRepository(ctx context.Context, databaseURL string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) AddTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO transactions (id, user_id, type, category, amount, date, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tx.ID, tx.UserID, string(tx.Type), tx.Category, tx.Amount.String(),
		tx.Date.String(), tx.Description, tx.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	return tx.ID, nil
}

func (r *Repository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, type, category, amount::text, date::text, description, created_at
		 FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions SET type = $1, category = $2, amount = $3, date = $4, description = $5
		 WHERE id = $6 AND user_id = $7`,
		string(tx.Type), tx.Category, tx.Amount.String(), tx.Date.String(),
		tx.Description, tx.ID, tx.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID string, f core.Filter) ([]core.Transaction, error) {
	query := `SELECT id, user_id, type, category, amount::text, date::text, description, created_at
	          FROM transactions WHERE user_id = $1`
	args := []any{userID}

	if f.Type != "" {
		args = append(args, string(f.Type))
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if !f.Start.IsZero() {
		args = append(args, f.Start.String())
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if !f.End.IsZero() {
		args = append(args, f.End.String())
		query += fmt.Sprintf(` AND date <= $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *Repository) GetBudget(ctx context.Context, userID, yearMonth string) (core.Budget, error) {
	var (
		b       core.Budget
		encoded []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, year_month, categories, created_at, updated_at
		 FROM budgets WHERE budget_key = $1`, core.BudgetKey(userID, yearMonth)).
		Scan(&b.UserID, &b.YearMonth, &encoded, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Budget{}, core.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}

	b.Categories = make(map[string]decimal.Decimal)
	var raw map[string]any
	if json.Unmarshal(encoded, &raw) == nil {
		for name, v := range raw {
			b.Categories[name] = core.CoerceAmount(v)
		}
	}
	return b, nil
}

func (r *Repository) SaveBudget(ctx context.Context, b core.Budget) error {
	categories := b.Categories
	if categories == nil {
		categories = map[string]decimal.Decimal{}
	}
	encoded, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}

	now := time.Now()
	_, err = r.pool.Exec(ctx,
		`INSERT INTO budgets (budget_key, user_id, year_month, categories, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 ON CONFLICT (budget_key) DO UPDATE SET categories = excluded.categories, updated_at = excluded.updated_at`,
		core.BudgetKey(b.UserID, b.YearMonth), b.UserID, b.YearMonth, encoded, now)
	if err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

func (r *Repository) DeleteBudget(ctx context.Context, userID, yearMonth string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM budgets WHERE budget_key = $1`, core.BudgetKey(userID, yearMonth))
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) AddGoal(ctx context.Context, g core.Goal) (string, error) {
	now := time.Now()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO goals (id, user_id, name, target_amount, current_amount, deadline, priority, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		g.ID, g.UserID, g.Name, g.TargetAmount.String(), g.CurrentAmount.String(),
		g.Deadline.String(), string(g.Priority), g.Notes, g.CreatedAt, now)
	if err != nil {
		return "", fmt.Errorf("insert goal: %w", err)
	}
	return g.ID, nil
}

func (r *Repository) GetGoal(ctx context.Context, userID, id string) (core.Goal, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, target_amount::text, current_amount::text, deadline::text, priority, notes, created_at, updated_at
		 FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	g, err := scanGoal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Goal{}, core.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *Repository) UpdateGoal(ctx context.Context, g core.Goal) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE goals SET name = $1, target_amount = $2, current_amount = $3, deadline = $4, priority = $5, notes = $6, updated_at = $7
		 WHERE id = $8 AND user_id = $9`,
		g.Name, g.TargetAmount.String(), g.CurrentAmount.String(), g.Deadline.String(),
		string(g.Priority), g.Notes, time.Now(), g.ID, g.UserID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteGoal(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) ListGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, name, target_amount::text, current_amount::text, deadline::text, priority, notes, created_at, updated_at
		 FROM goals WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var (
		tx     core.Transaction
		typ    string
		amount string
		date   string
	)
	if err := row.Scan(&tx.ID, &tx.UserID, &typ, &tx.Category, &amount, &date, &tx.Description, &tx.CreatedAt); err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TransactionType(typ)
	tx.Amount = core.CoerceAmount(amount)
	parsed, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	tx.Date = parsed
	return tx, nil
}

func scanGoal(row scanner) (core.Goal, error) {
	var (
		g        core.Goal
		target   string
		current  string
		deadline string
		priority string
	)
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &target, &current, &deadline, &priority, &g.Notes, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return core.Goal{}, err
	}
	g.TargetAmount = core.CoerceAmount(target)
	g.CurrentAmount = core.CoerceAmount(current)
	g.Priority = core.GoalPriority(priority)
	parsed, err := core.ParseDate(deadline)
	if err != nil {
		return core.Goal{}, fmt.Errorf("stored deadline %q: %w", deadline, err)
	}
	g.Deadline = parsed
	return g, nil
}
