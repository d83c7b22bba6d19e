package worker

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"floosafandy/internal/amqp"
	"floosafandy/internal/auth"
	"floosafandy/internal/core"
	"floosafandy/internal/sheets"
	"floosafandy/internal/sheets/memory"
	"floosafandy/internal/storage"
)

type failingJournal struct {
	mu    sync.Mutex
	calls int
}

func (f *failingJournal) Append(context.Context, sheets.Entry) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return "", errors.New("journal unavailable")
}

func newWorkerFixture(t *testing.T) (*storage.SQLiteRepository, core.Account) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	repo, err := storage.NewSQLiteRepository(dbPath, auth.BcryptHasher{})
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	ctx := context.Background()
	if err := repo.RegisterUser(ctx, "alice", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	acc, err := repo.CreateAccount(ctx, "alice", "Checking", core.Money{Cents: 10000}, core.Money{})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return repo, acc
}

func TestHandleSyncMessage(t *testing.T) {
	repo, acc := newWorkerFixture(t)
	ctx := context.Background()
	journal := memory.New()
	w := NewSyncWorker(repo, journal, 10)

	tx, err := repo.CreateTransaction(ctx, "alice", core.Transaction{
		AccountID: acc.ID, Direction: core.DirectionOut, Amount: core.Money{Cents: 500}, Category: "Food",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := w.HandleMessage(ctx, amqp.NewSyncMessage(tx.ID, 1)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	entries := journal.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 journal entry, got %d", len(entries))
	}
	got := entries[0]
	if got.TransactionID != tx.ID || got.Owner != "alice" || got.Amount.Cents != 500 || got.Deleted {
		t.Fatalf("entry mismatch: %+v", got)
	}

	synced, err := repo.GetSyncableTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if synced.SyncStatus != storage.SyncDone {
		t.Fatalf("status = %q, want %q", synced.SyncStatus, storage.SyncDone)
	}
}

func TestHandleSyncMessageMissingTransaction(t *testing.T) {
	repo, _ := newWorkerFixture(t)
	w := NewSyncWorker(repo, memory.New(), 10)

	err := w.HandleMessage(context.Background(), amqp.NewSyncMessage(9999, 1))
	if err == nil {
		t.Fatalf("expected error for missing transaction")
	}
}

func TestHandleSyncMessageJournalFailure(t *testing.T) {
	repo, acc := newWorkerFixture(t)
	ctx := context.Background()
	w := NewSyncWorker(repo, &failingJournal{}, 10)

	tx, err := repo.CreateTransaction(ctx, "alice", core.Transaction{
		AccountID: acc.ID, Direction: core.DirectionIn, Amount: core.Money{Cents: 100},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := w.HandleSyncMessage(ctx, amqp.NewSyncMessage(tx.ID, 1)); err == nil {
		t.Fatalf("expected journal error")
	}

	got, err := repo.GetSyncableTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SyncStatus != storage.SyncError {
		t.Fatalf("status = %q, want %q", got.SyncStatus, storage.SyncError)
	}
}

func TestHandleDeleteMessage(t *testing.T) {
	repo, _ := newWorkerFixture(t)
	journal := memory.New()
	w := NewSyncWorker(repo, journal, 10)

	msg := amqp.NewDeleteMessage(core.Transaction{
		ID:        7,
		Owner:     "alice",
		AccountID: 2,
		Date:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Direction: core.DirectionOut,
		Amount:    core.Money{Cents: 1250},
		Category:  "Food",
	})

	if err := w.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle delete: %v", err)
	}

	entries := journal.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if !got.Deleted || got.TransactionID != 7 || got.Amount.Cents != 1250 {
		t.Fatalf("tombstone mismatch: %+v", got)
	}
}

func TestHandleDeleteMessageWithoutTombstone(t *testing.T) {
	repo, _ := newWorkerFixture(t)
	journal := memory.New()
	w := NewSyncWorker(repo, journal, 10)

	msg := &amqp.TransactionSyncMessage{Kind: amqp.KindDelete, ID: 7}
	if err := w.HandleDeleteMessage(context.Background(), msg); err != nil {
		t.Fatalf("malformed delete should be skipped, got %v", err)
	}
	if len(journal.Entries()) != 0 {
		t.Fatalf("nothing should be journaled without a tombstone")
	}
}

func TestProcessPendingDrainsBacklog(t *testing.T) {
	repo, acc := newWorkerFixture(t)
	ctx := context.Background()
	journal := memory.New()
	w := NewSyncWorker(repo, journal, 10)

	for i := 0; i < 3; i++ {
		if _, err := repo.CreateTransaction(ctx, "alice", core.Transaction{
			AccountID: acc.ID, Direction: core.DirectionIn, Amount: core.Money{Cents: int64(100 + i)},
		}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("process pending: %v", err)
	}

	if got := len(journal.Entries()); got != 3 {
		t.Fatalf("expected 3 journal entries, got %d", got)
	}
	pending, err := repo.PendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("backlog not drained: %d left", len(pending))
	}

	// A second sweep finds nothing and journals nothing new.
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if got := len(journal.Entries()); got != 3 {
		t.Fatalf("second sweep duplicated entries: %d", got)
	}
}

func TestStartupSyncCheck(t *testing.T) {
	repo, acc := newWorkerFixture(t)
	ctx := context.Background()
	journal := memory.New()
	w := NewSyncWorker(repo, journal, 2)

	for i := 0; i < 5; i++ {
		if _, err := repo.CreateTransaction(ctx, "alice", core.Transaction{
			AccountID: acc.ID, Direction: core.DirectionOut, Amount: core.Money{Cents: int64(50 + i)},
		}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	// Startup check uses five times the batch size, so all rows drain.
	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("startup check: %v", err)
	}
	if got := len(journal.Entries()); got != 5 {
		t.Fatalf("expected 5 entries, got %d", got)
	}
}
