package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

// SQLiteRepository is the primary durable backend. Amounts are stored as
// decimal strings and coerced back through core.CoerceAmount on the way
// out, so a malformed value in an old row reads as zero instead of
// failing the whole query.
type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) AddTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, type, category, amount, date, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, string(tx.Type), tx.Category, tx.Amount.String(),
		tx.Date.String(), tx.Description, tx.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"type", tx.Type,
		"category", tx.Category,
		"amount", tx.Amount.String(),
		"date", tx.Date.String())

	return tx.ID, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, type, category, amount, date, description, created_at
		 FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET type = ?, category = ?, amount = ?, date = ?, description = ?
		 WHERE id = ? AND user_id = ?`,
		string(tx.Type), tx.Category, tx.Amount.String(), tx.Date.String(),
		tx.Description, tx.ID, tx.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, f core.Filter) ([]core.Transaction, error) {
	query := `SELECT id, user_id, type, category, amount, date, description, created_at
	          FROM transactions WHERE user_id = ?`
	args := []any{userID}

	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(f.Type))
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	// Zero-padded ISO dates compare correctly as strings.
	if !f.Start.IsZero() {
		query += ` AND date >= ?`
		args = append(args, f.Start.String())
	}
	if !f.End.IsZero() {
		query += ` AND date <= ?`
		args = append(args, f.End.String())
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
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

func (r *SQLiteRepository) GetBudget(ctx context.Context, userID, yearMonth string) (core.Budget, error) {
	var (
		b          core.Budget
		categories sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, year_month, categories, created_at, updated_at
		 FROM budgets WHERE budget_key = ?`, core.BudgetKey(userID, yearMonth)).
		Scan(&b.UserID, &b.YearMonth, &categories, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}

	b.Categories = decodeCategories(ctx, categories.String)
	return b, nil
}

func (r *SQLiteRepository) SaveBudget(ctx context.Context, b core.Budget) error {
	encoded, err := encodeCategories(b.Categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}

	now := time.Now()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO budgets (budget_key, user_id, year_month, categories, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (budget_key) DO UPDATE SET categories = excluded.categories, updated_at = excluded.updated_at`,
		core.BudgetKey(b.UserID, b.YearMonth), b.UserID, b.YearMonth, encoded, now, now)
	if err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, yearMonth string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE budget_key = ?`, core.BudgetKey(userID, yearMonth))
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) AddGoal(ctx context.Context, g core.Goal) (string, error) {
	now := time.Now()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (id, user_id, name, target_amount, current_amount, deadline, priority, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, g.TargetAmount.String(), g.CurrentAmount.String(),
		g.Deadline.String(), string(g.Priority), g.Notes, g.CreatedAt, now)
	if err != nil {
		return "", fmt.Errorf("insert goal: %w", err)
	}
	return g.ID, nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, userID, id string) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, target_amount, current_amount, deadline, priority, notes, created_at, updated_at
		 FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, core.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET name = ?, target_amount = ?, current_amount = ?, deadline = ?, priority = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		g.Name, g.TargetAmount.String(), g.CurrentAmount.String(), g.Deadline.String(),
		string(g.Priority), g.Notes, time.Now(), g.ID, g.UserID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, target_amount, current_amount, deadline, priority, notes, created_at, updated_at
		 FROM goals WHERE user_id = ? ORDER BY created_at DESC`, userID)
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

// decodeCategories tolerates an absent or malformed mapping: it decodes to
// an empty map rather than failing the read, and coerces each value.
func decodeCategories(ctx context.Context, encoded string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	if strings.TrimSpace(encoded) == "" {
		return out
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(encoded), &raw); err != nil {
		slog.WarnContext(ctx, "Malformed budget categories, treating as empty", "error", err)
		return out
	}
	for name, v := range raw {
		out[name] = core.CoerceAmount(v)
	}
	return out
}

func encodeCategories(categories map[string]decimal.Decimal) (string, error) {
	if categories == nil {
		categories = map[string]decimal.Decimal{}
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
