package worker

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"floosafandy/internal/amqp"
	"floosafandy/internal/core"
	"floosafandy/internal/sheets"
	"floosafandy/internal/storage"
)

// SyncWorker mirrors ledger transactions from SQLite into the backup journal.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	journal   sheets.JournalWriter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, journal sheets.JournalWriter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:   storage,
		journal:   journal,
		batchSize: batchSize,
	}
}

// HandleMessage dispatches one AMQP message to the right handler.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	switch msg.Kind {
	case amqp.KindDelete:
		return w.HandleDeleteMessage(ctx, msg)
	default:
		return w.HandleSyncMessage(ctx, msg)
	}
}

// HandleSyncMessage re-reads the transaction and appends it to the journal.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	tx, err := w.storage.GetSyncableTransaction(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.syncToJournal(ctx, tx)
}

// HandleDeleteMessage appends a tombstone row built from the message payload.
// The ledger row is already gone, so there is nothing to re-read.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	if msg.Tombstone == nil {
		slog.WarnContext(ctx, "Delete message without tombstone, skipping", "id", msg.ID)
		return nil
	}

	ts := msg.Tombstone
	entry := sheets.Entry{
		TransactionID: msg.ID,
		Owner:         ts.Owner,
		AccountID:     ts.AccountID,
		Date:          ts.Date,
		Direction:     ts.Direction,
		Amount:        core.Money{Cents: ts.AmountCents},
		Description:   ts.Description,
		Category:      ts.Category,
		Deleted:       true,
	}

	ref, err := w.journal.Append(ctx, entry)
	if err != nil {
		return fmt.Errorf("append tombstone: %w", err)
	}

	slog.InfoContext(ctx, "Recorded tombstone",
		"id", msg.ID,
		"sheets_ref", ref)

	return nil
}

// ProcessPending sweeps transactions whose sync message was lost. Rows are
// processed concurrently up to the batch size.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.PendingSyncTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, tx := range pending {
		tx := tx
		g.Go(func() error {
			if err := w.syncToJournal(ctx, tx); err != nil {
				slog.ErrorContext(ctx, "Failed to sync transaction", "id", tx.ID, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// StartupSyncCheck drains the pending backlog at worker startup, recovering
// from missed messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.PendingSyncTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	synced := 0
	failed := 0
	for _, tx := range pending {
		if err := w.syncToJournal(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction during startup",
				"id", tx.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)

	return nil
}

func (w *SyncWorker) syncToJournal(ctx context.Context, tx storage.SyncableTransaction) error {
	entry := sheets.Entry{
		TransactionID: tx.ID,
		Owner:         tx.Owner,
		AccountID:     tx.AccountID,
		Date:          tx.Date,
		Direction:     tx.Direction,
		Amount:        tx.Amount,
		Description:   tx.Description,
		Category:      tx.Category,
	}

	ref, err := w.journal.Append(ctx, entry)
	if err != nil {
		if markErr := w.storage.MarkTransactionSyncError(ctx, tx.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", tx.ID, "error", markErr)
		}
		return fmt.Errorf("append to journal: %w", err)
	}

	if err := w.storage.MarkTransactionSynced(ctx, tx.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", tx.ID, "error", err)
	}

	slog.InfoContext(ctx, "Synced transaction",
		"id", tx.ID,
		"sheets_ref", ref,
		"amount_cents", tx.Amount.Cents)

	return nil
}
