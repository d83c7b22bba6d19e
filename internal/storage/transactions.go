package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"floosafandy/internal/core"
)

// Sync states for the backup journal.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

// SyncableTransaction is a transaction together with its backup bookkeeping,
// as consumed by the sync worker.
type SyncableTransaction struct {
	core.Transaction
	SyncStatus string
	Version    int64
}

// CreateTransaction validates and inserts a transaction for owner. The target
// account must belong to owner (ErrNotFound otherwise). The account's stored
// balance is deliberately left untouched; balance and journal are maintained
// independently.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, owner string, tx core.Transaction) (core.Transaction, error) {
	tx.Owner = owner
	if tx.Date.IsZero() {
		tx.Date = r.now().UTC()
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	owned, err := r.ownsAccount(ctx, owner, tx.AccountID)
	if err != nil {
		return core.Transaction{}, err
	}
	if !owned {
		return core.Transaction{}, fmt.Errorf("account %d: %w", tx.AccountID, ErrNotFound)
	}

	now := r.now().UTC().Format(dateFormat)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions
		   (user_id, account_id, date, type, amount_cents, description, payment_method, category, sync_status, version, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`,
		owner, tx.AccountID, tx.Date.Format(dateFormat), string(tx.Direction),
		tx.Amount.Cents, tx.Description, tx.PaymentMethod, tx.Category,
		SyncPending, now)
	if err != nil {
		if isConstraintErr(err) {
			return core.Transaction{}, fmt.Errorf("create transaction: %w", ErrConflict)
		}
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	tx.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"owner", owner,
		"transaction_id", tx.ID,
		"account_id", tx.AccountID,
		"direction", string(tx.Direction),
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category)

	return tx, nil
}

// DeleteTransaction removes the transaction matching both owner and id.
// A non-owned id is a no-op.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, owner string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		slog.DebugContext(ctx, "Transaction delete matched no rows", "owner", owner, "transaction_id", id)
		return nil
	}
	slog.InfoContext(ctx, "Transaction deleted", "owner", owner, "transaction_id", id)
	return nil
}

// ListTransactions returns all of owner's transactions in insertion order.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, owner string) ([]core.Transaction, error) {
	return r.FilterTransactions(ctx, owner, core.TransactionFilter{})
}

// FilterTransactions returns owner's transactions narrowed by the provided
// filter. Absent filter fields are no-ops; present ones AND-compose. The date
// range is inclusive on both ends, so a reversed range matches nothing.
func (r *SQLiteRepository) FilterTransactions(ctx context.Context, owner string, f core.TransactionFilter) ([]core.Transaction, error) {
	var (
		where = []string{"user_id = ?"}
		args  = []any{owner}
	)

	if f.AccountID > 0 {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if !f.Start.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.Start.Format(dateFormat))
	}
	if !f.End.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, f.End.Format(dateFormat))
	}
	if f.Direction != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Direction))
	}
	if f.Category != "" {
		// Match a single label inside the comma-joined multi-label column.
		where = append(where, "instr(',' || replace(category, ', ', ',') || ',', ',' || ? || ',') > 0")
		args = append(args, f.Category)
	}

	query := `SELECT id, user_id, account_id, date, type, amount_cents, description, payment_method, category
		 FROM transactions WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// GetSyncableTransaction loads a single transaction with its sync metadata.
// Unscoped: only the backup worker uses it.
func (r *SQLiteRepository) GetSyncableTransaction(ctx context.Context, id int64) (SyncableTransaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, account_id, date, type, amount_cents, description, payment_method, category, sync_status, version
		 FROM transactions WHERE id = ?`, id)

	var (
		st   SyncableTransaction
		date string
	)
	err := row.Scan(&st.ID, &st.Owner, &st.AccountID, &date, (*string)(&st.Direction),
		&st.Amount.Cents, &st.Description, &st.PaymentMethod, &st.Category,
		&st.SyncStatus, &st.Version)
	if err == sql.ErrNoRows {
		return SyncableTransaction{}, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return SyncableTransaction{}, fmt.Errorf("get transaction: %w", err)
	}
	if t, perr := time.Parse(dateFormat, date); perr == nil {
		st.Date = t
	}
	return st, nil
}

// PendingSyncTransactions returns up to limit transactions awaiting backup,
// oldest first.
func (r *SQLiteRepository) PendingSyncTransactions(ctx context.Context, limit int) ([]SyncableTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, account_id, date, type, amount_cents, description, payment_method, category, sync_status, version
		 FROM transactions WHERE sync_status = ? ORDER BY id LIMIT ?`,
		SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending transactions: %w", err)
	}
	defer rows.Close()

	var out []SyncableTransaction
	for rows.Next() {
		var (
			st   SyncableTransaction
			date string
		)
		err := rows.Scan(&st.ID, &st.Owner, &st.AccountID, &date, (*string)(&st.Direction),
			&st.Amount.Cents, &st.Description, &st.PaymentMethod, &st.Category,
			&st.SyncStatus, &st.Version)
		if err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		if t, perr := time.Parse(dateFormat, date); perr == nil {
			st.Date = t
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// MarkTransactionSynced records a successful backup append.
func (r *SQLiteRepository) MarkTransactionSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncDone, id)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "transaction_id", id)
	return nil
}

// MarkTransactionSyncError flags a transaction whose backup append failed.
func (r *SQLiteRepository) MarkTransactionSyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncError, id)
	if err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "transaction_id", id)
	return nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx   core.Transaction
		date string
	)
	err := row.Scan(&tx.ID, &tx.Owner, &tx.AccountID, &date, (*string)(&tx.Direction),
		&tx.Amount.Cents, &tx.Description, &tx.PaymentMethod, &tx.Category)
	if err != nil {
		return core.Transaction{}, err
	}
	if t, perr := time.Parse(dateFormat, date); perr == nil {
		tx.Date = t
	}
	return tx, nil
}
