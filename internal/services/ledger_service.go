// Package services orchestrates the aggregation engine, storage ports and
// the sync pipeline. Writes go to local storage first; sheet export happens
// asynchronously and never fails a request.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/engine"
	"bilancio/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SyncPublisher publishes record sync events for the export worker.
// *amqp.Client satisfies it; a nil publisher disables export.
type SyncPublisher interface {
	PublishRecordSync(ctx context.Context, op, id, userID string) error
}

// LedgerService orchestrates transaction operations across storage and AMQP.
type LedgerService struct {
	store     store.TransactionStore
	publisher SyncPublisher
}

func NewLedgerService(s store.TransactionStore, publisher SyncPublisher) *LedgerService {
	return &LedgerService{
		store:     s,
		publisher: publisher,
	}
}

// AddExpense records an expense for the user and returns the stored
// transaction with its assigned id.
func (s *LedgerService) AddExpense(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	tx.Type = core.Expense
	return s.addTransaction(ctx, userID, tx)
}

// AddIncome records an income entry for the user.
func (s *LedgerService) AddIncome(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	tx.Type = core.Income
	return s.addTransaction(ctx, userID, tx)
}

func (s *LedgerService) addTransaction(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	if userID == "" {
		return core.Transaction{}, core.ErrUnauthenticated
	}

	tx.ID = uuid.NewString()
	tx.UserID = userID
	tx.CreatedAt = time.Now().UTC()
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	id, err := s.store.AddTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	tx.ID = id

	s.publish(ctx, amqp.OpSync, tx.ID, userID)

	return tx, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	if userID == "" {
		return core.Transaction{}, core.ErrUnauthenticated
	}
	return s.store.GetTransaction(ctx, userID, id)
}

// UpdateTransaction replaces an existing transaction's fields and
// republishes it for export.
func (s *LedgerService) UpdateTransaction(ctx context.Context, userID string, tx core.Transaction) error {
	if userID == "" {
		return core.ErrUnauthenticated
	}
	tx.UserID = userID
	if err := tx.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	s.publish(ctx, amqp.OpSync, tx.ID, userID)
	return nil
}

// DeleteTransaction removes the transaction locally and publishes a delete
// event so the exported row gets cleared.
func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id string) error {
	if userID == "" {
		return core.ErrUnauthenticated
	}
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}

	s.publish(ctx, amqp.OpDelete, id, userID)
	return nil
}

// ListTransactions returns the user's transactions matching the filter,
// newest first.
func (s *LedgerService) ListTransactions(ctx context.Context, userID string, f core.Filter) ([]core.Transaction, error) {
	if userID == "" {
		return nil, core.ErrUnauthenticated
	}
	txs, err := s.store.ListTransactions(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return engine.SortByDateDesc(txs), nil
}

// Summary computes income, expense and balance totals over the filtered set.
func (s *LedgerService) Summary(ctx context.Context, userID string, f core.Filter) (engine.Summary, error) {
	if userID == "" {
		return engine.Summary{}, core.ErrUnauthenticated
	}
	txs, err := s.store.ListTransactions(ctx, userID, f)
	if err != nil {
		return engine.Summary{}, fmt.Errorf("list transactions: %w", err)
	}
	return engine.Summarize(txs), nil
}

// ExpensesByCategory totals the user's expenses per category over the
// filtered set.
func (s *LedgerService) ExpensesByCategory(ctx context.Context, userID string, f core.Filter) (map[string]decimal.Decimal, error) {
	if userID == "" {
		return nil, core.ErrUnauthenticated
	}
	f.Type = core.Expense
	txs, err := s.store.ListTransactions(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return engine.SumByCategory(txs), nil
}

func (s *LedgerService) publish(ctx context.Context, op, id, userID string) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Sync publisher not available, skipping event", "op", op, "id", id)
		return
	}
	if err := s.publisher.PublishRecordSync(ctx, op, id, userID); err != nil {
		// The local write already succeeded; export will catch up later.
		slog.ErrorContext(ctx, "Failed to publish sync event",
			"op", op, "id", id, "error", err)
	}
}
