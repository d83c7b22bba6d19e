package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"floosafandy/internal/core"
)

// CreateAccount inserts a new account for owner with the given opening
// balance and minimum-balance alert threshold.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, owner, name string, opening, min core.Money) (core.Account, error) {
	acc := core.Account{
		Owner:      owner,
		Name:       name,
		Balance:    opening,
		MinBalance: min,
		CreatedAt:  r.now().UTC(),
	}
	if err := acc.Validate(); err != nil {
		return core.Account{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (user_id, name, balance_cents, min_balance_cents, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		owner, name, opening.Cents, min.Cents, acc.CreatedAt.Format(dateFormat))
	if err != nil {
		if isConstraintErr(err) {
			return core.Account{}, fmt.Errorf("create account: %w", ErrConflict)
		}
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}

	acc.ID, err = res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account id: %w", err)
	}

	slog.InfoContext(ctx, "Account created",
		"owner", owner,
		"account_id", acc.ID,
		"name", name,
		"balance_cents", opening.Cents)

	return acc, nil
}

// ListAccounts returns all of owner's accounts ordered by id.
func (r *SQLiteRepository) ListAccounts(ctx context.Context, owner string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, balance_cents, min_balance_cents, created_at
		 FROM accounts WHERE user_id = ? ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// UpdateAccount rewrites name, stored balance, and threshold for the account
// matching both owner and id. A non-owned or absent id is a no-op.
func (r *SQLiteRepository) UpdateAccount(ctx context.Context, owner string, id int64, name string, balance, min core.Money) error {
	check := core.Account{Owner: owner, Name: name, Balance: balance, MinBalance: min}
	if err := check.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, balance_cents = ?, min_balance_cents = ?
		 WHERE user_id = ? AND id = ?`,
		name, balance.Cents, min.Cents, owner, id)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		slog.DebugContext(ctx, "Account update matched no rows", "owner", owner, "account_id", id)
		return nil
	}

	slog.InfoContext(ctx, "Account updated", "owner", owner, "account_id", id)
	return nil
}

// DeleteAccount removes the account matching both owner and id, cascading to
// its transactions, budgets, and categories. A non-owned id is a no-op.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, owner string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE user_id = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		slog.DebugContext(ctx, "Account delete matched no rows", "owner", owner, "account_id", id)
		return nil
	}

	slog.InfoContext(ctx, "Account deleted", "owner", owner, "account_id", id)
	return nil
}

// Overview computes the dashboard totals for one user: stored balance across
// accounts plus journal-derived IN/OUT sums.
func (r *SQLiteRepository) Overview(ctx context.Context, owner string) (core.Overview, error) {
	var ov core.Overview

	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(balance_cents), 0) FROM accounts WHERE user_id = ?`,
		owner).Scan(&ov.TotalBalance.Cents)
	if err != nil {
		return ov, fmt.Errorf("sum balances: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT
		   COALESCE(SUM(CASE WHEN type = 'IN' THEN amount_cents ELSE 0 END), 0),
		   COALESCE(SUM(CASE WHEN type = 'OUT' THEN amount_cents ELSE 0 END), 0),
		   COUNT(*)
		 FROM transactions WHERE user_id = ?`,
		owner).Scan(&ov.TotalIn.Cents, &ov.TotalOut.Cents, &ov.TransactionCount)
	if err != nil {
		return ov, fmt.Errorf("sum transactions: %w", err)
	}

	ov.Net = core.Money{Cents: ov.TotalIn.Cents - ov.TotalOut.Cents}
	return ov, nil
}

// LowBalanceAccounts returns owner's accounts whose stored balance has
// dropped below their minimum-balance threshold.
func (r *SQLiteRepository) LowBalanceAccounts(ctx context.Context, owner string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, balance_cents, min_balance_cents, created_at
		 FROM accounts WHERE user_id = ? AND balance_cents < min_balance_cents
		 ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list low-balance accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (core.Account, error) {
	var (
		acc     core.Account
		created string
	)
	err := row.Scan(&acc.ID, &acc.Owner, &acc.Name, &acc.Balance.Cents, &acc.MinBalance.Cents, &created)
	if err != nil {
		return core.Account{}, err
	}
	if t, err := time.Parse(dateFormat, created); err == nil {
		acc.CreatedAt = t
	}
	return acc, nil
}
