package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"floosafandy/internal/amqp"
	"floosafandy/internal/auth"
	"floosafandy/internal/core"
	"floosafandy/internal/storage"
)

type fakePublisher struct {
	syncIDs   []int64
	deletes   []*amqp.TransactionSyncMessage
	publishFn func() error
}

func (f *fakePublisher) PublishTransactionSync(_ context.Context, id, _ int64) error {
	if f.publishFn != nil {
		if err := f.publishFn(); err != nil {
			return err
		}
	}
	f.syncIDs = append(f.syncIDs, id)
	return nil
}

func (f *fakePublisher) PublishTransactionDelete(_ context.Context, msg *amqp.TransactionSyncMessage) error {
	if f.publishFn != nil {
		if err := f.publishFn(); err != nil {
			return err
		}
	}
	f.deletes = append(f.deletes, msg)
	return nil
}

func newServiceFixture(t *testing.T) (*LedgerService, *fakePublisher, core.Account) {
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

	pub := &fakePublisher{}
	svc := &LedgerService{storage: repo, publisher: pub}
	return svc, pub, acc
}

func TestCreateTransactionPublishesSync(t *testing.T) {
	svc, pub, acc := newServiceFixture(t)
	ctx := context.Background()

	created, err := svc.CreateTransaction(ctx, "alice", core.Transaction{
		AccountID: acc.ID, Direction: core.DirectionOut, Amount: core.Money{Cents: 500},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(pub.syncIDs) != 1 || pub.syncIDs[0] != created.ID {
		t.Fatalf("expected sync message for %d, got %v", created.ID, pub.syncIDs)
	}
}

func TestCreateTransactionSurvivesPublishFailure(t *testing.T) {
	svc, pub, acc := newServiceFixture(t)
	pub.publishFn = func() error { return errors.New("broker down") }
	ctx := context.Background()

	created, err := svc.CreateTransaction(ctx, "alice", core.Transaction{
		AccountID: acc.ID, Direction: core.DirectionIn, Amount: core.Money{Cents: 100},
	})
	if err != nil {
		t.Fatalf("publish failure must not fail the request: %v", err)
	}

	txs, err := svc.storage.ListTransactions(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 1 || txs[0].ID != created.ID {
		t.Fatalf("transaction not persisted despite publish failure")
	}
}

func TestCreateTransactionValidationShortCircuits(t *testing.T) {
	svc, pub, acc := newServiceFixture(t)
	ctx := context.Background()

	_, err := svc.CreateTransaction(ctx, "alice", core.Transaction{
		AccountID: acc.ID, Direction: core.DirectionIn,
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if len(pub.syncIDs) != 0 {
		t.Fatalf("rejected write must not publish")
	}
}

func TestDeleteTransactionPublishesTombstone(t *testing.T) {
	svc, pub, acc := newServiceFixture(t)
	ctx := context.Background()

	created, err := svc.CreateTransaction(ctx, "alice", core.Transaction{
		AccountID: acc.ID, Direction: core.DirectionOut, Amount: core.Money{Cents: 750}, Category: "Food",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteTransaction(ctx, "alice", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(pub.deletes) != 1 {
		t.Fatalf("expected one tombstone, got %d", len(pub.deletes))
	}
	msg := pub.deletes[0]
	if msg.Kind != amqp.KindDelete || msg.ID != created.ID {
		t.Fatalf("tombstone kind/id = %q/%d", msg.Kind, msg.ID)
	}
	if msg.Tombstone == nil || msg.Tombstone.AmountCents != 750 || msg.Tombstone.Category != "Food" {
		t.Fatalf("tombstone payload mismatch: %+v", msg.Tombstone)
	}
}

func TestDeleteTransactionCrossUserNoPublish(t *testing.T) {
	svc, pub, acc := newServiceFixture(t)
	ctx := context.Background()
	if err := svc.storage.RegisterUser(ctx, "bob", "pw"); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	created, err := svc.CreateTransaction(ctx, "alice", core.Transaction{
		AccountID: acc.ID, Direction: core.DirectionIn, Amount: core.Money{Cents: 100},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteTransaction(ctx, "bob", created.ID); err != nil {
		t.Fatalf("cross-user delete should be a no-op, got %v", err)
	}
	if len(pub.deletes) != 0 {
		t.Fatalf("cross-user delete must not publish a tombstone")
	}
	txs, _ := svc.storage.ListTransactions(ctx, "alice")
	if len(txs) != 1 {
		t.Fatalf("cross-user delete removed the transaction")
	}
}

func TestDeleteTransactionMissingNoOp(t *testing.T) {
	svc, pub, _ := newServiceFixture(t)

	if err := svc.DeleteTransaction(context.Background(), "alice", 9999); err != nil {
		t.Fatalf("missing delete should be a no-op, got %v", err)
	}
	if len(pub.deletes) != 0 {
		t.Fatalf("missing delete must not publish")
	}
}

func TestNilPublisherSkipsMessages(t *testing.T) {
	svc, _, acc := newServiceFixture(t)
	svc.publisher = nil
	ctx := context.Background()

	created, err := svc.CreateTransaction(ctx, "alice", core.Transaction{
		AccountID: acc.ID, Direction: core.DirectionIn, Amount: core.Money{Cents: 100},
	})
	if err != nil {
		t.Fatalf("create without publisher: %v", err)
	}
	if err := svc.DeleteTransaction(ctx, "alice", created.ID); err != nil {
		t.Fatalf("delete without publisher: %v", err)
	}
}
