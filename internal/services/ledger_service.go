package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"floosafandy/internal/amqp"
	"floosafandy/internal/core"
	"floosafandy/internal/storage"
)

// SyncPublisher publishes backup sync messages. *amqp.Client satisfies it.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id, version int64) error
	PublishTransactionDelete(ctx context.Context, msg *amqp.TransactionSyncMessage) error
}

// LedgerService orchestrates transaction writes across SQLite and AMQP. The
// journal write always wins; a failed publish is logged and retried by the
// worker's pending sweep, never surfaced to the caller.
type LedgerService struct {
	storage   *storage.SQLiteRepository
	publisher SyncPublisher
	closer    func() error
}

func NewLedgerService(repo *storage.SQLiteRepository, client *amqp.Client) *LedgerService {
	svc := &LedgerService{storage: repo}
	if client != nil {
		svc.publisher = client
		svc.closer = client.Close
	}
	return svc
}

// CreateTransaction saves the transaction locally and publishes a sync
// message for the backup journal.
func (s *LedgerService) CreateTransaction(ctx context.Context, owner string, tx core.Transaction) (core.Transaction, error) {
	created, err := s.storage.CreateTransaction(ctx, owner, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publishSync(ctx, created.ID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", created.ID, "error", err)
	}

	return created, nil
}

// DeleteTransaction removes the transaction locally and publishes a tombstone
// so the backup journal records the removal. Deleting a transaction the owner
// does not hold is a no-op.
func (s *LedgerService) DeleteTransaction(ctx context.Context, owner string, id int64) error {
	snapshot, err := s.storage.GetSyncableTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load transaction: %w", err)
	}
	if snapshot.Owner != owner {
		return nil
	}

	if err := s.storage.DeleteTransaction(ctx, owner, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := s.publishDelete(ctx, snapshot.Transaction); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
	}

	return nil
}

func (s *LedgerService) publishSync(ctx context.Context, id, version int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.publisher.PublishTransactionSync(ctx, id, version)
}

func (s *LedgerService) publishDelete(ctx context.Context, tx core.Transaction) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	return s.publisher.PublishTransactionDelete(ctx, amqp.NewDeleteMessage(tx))
}

// Close closes both storage and AMQP connections.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.closer != nil {
		if err := s.closer(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
