// Package worker mirrors locally saved transactions into an external
// ledger sheet, consuming sync messages published by the API.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/sheets"
	"bilancio/internal/store"
)

// SyncWorker handles synchronization of transactions to the ledger sheet.
type SyncWorker struct {
	store   store.TransactionStore
	writer  sheets.LedgerWriter
	remover sheets.LedgerRemover
}

func NewSyncWorker(s store.TransactionStore, writer sheets.LedgerWriter, remover sheets.LedgerRemover) *SyncWorker {
	return &SyncWorker{
		store:   s,
		writer:  writer,
		remover: remover,
	}
}

// HandleMessage processes a single record sync message from AMQP.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	switch msg.Op {
	case amqp.OpSync:
		return w.handleSync(ctx, msg)
	case amqp.OpDelete:
		return w.handleDelete(ctx, msg)
	default:
		slog.WarnContext(ctx, "Ignoring message with unknown op", "op", msg.Op, "id", msg.ID)
		return nil
	}
}

func (w *SyncWorker) handleSync(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID, "user_id", msg.UserID)

	tx, err := w.store.GetTransaction(ctx, msg.UserID, msg.ID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Deleted before we got to it; nothing left to export.
			slog.WarnContext(ctx, "Transaction gone before sync, skipping", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	ref, err := w.writer.Append(ctx, tx)
	if err != nil {
		return fmt.Errorf("append to ledger sheet: %w", err)
	}

	slog.InfoContext(ctx, "Successfully synced transaction",
		"id", msg.ID,
		"sheet_ref", ref,
		"category", tx.Category)

	return nil
}

func (w *SyncWorker) handleDelete(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	if w.remover == nil {
		slog.WarnContext(ctx, "No ledger remover configured, skipping sheet deletion", "id", msg.ID)
		return nil
	}

	if err := w.remover.Remove(ctx, msg.ID); err != nil {
		return fmt.Errorf("remove from ledger sheet: %w", err)
	}

	slog.InfoContext(ctx, "Successfully removed transaction from ledger sheet", "id", msg.ID)
	return nil
}
