package storage

import (
	"context"
	"fmt"
	"log/slog"

	"floosafandy/internal/core"
)

// CreateBudget inserts a budget allocation for a category on one of owner's
// accounts. The account must belong to owner.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, owner string, accountID int64, category string, allocated core.Money) (core.Budget, error) {
	b := core.Budget{AccountID: accountID, Category: category, Allocated: allocated}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	owned, err := r.ownsAccount(ctx, owner, accountID)
	if err != nil {
		return core.Budget{}, err
	}
	if !owned {
		return core.Budget{}, fmt.Errorf("account %d: %w", accountID, ErrNotFound)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (account_id, category, amount_cents, created_at)
		 VALUES (?, ?, ?, ?)`,
		accountID, category, allocated.Cents, r.now().UTC().Format(dateFormat))
	if err != nil {
		if isConstraintErr(err) {
			return core.Budget{}, fmt.Errorf("create budget: %w", ErrConflict)
		}
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}

	b.ID, err = res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget id: %w", err)
	}

	slog.InfoContext(ctx, "Budget created",
		"owner", owner,
		"account_id", accountID,
		"category", category,
		"amount_cents", allocated.Cents)

	return b, nil
}

// ListBudgets returns all budgets on owner's accounts. Spent is computed at
// read time by summing OUT transactions on the same account whose category
// labels include the budget's category.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, owner string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.account_id, b.category, b.amount_cents,
		   COALESCE((SELECT SUM(t.amount_cents) FROM transactions t
		     WHERE t.account_id = b.account_id
		       AND t.type = 'OUT'
		       AND instr(',' || replace(t.category, ', ', ',') || ',', ',' || b.category || ',') > 0), 0)
		 FROM budgets b
		 JOIN accounts a ON a.id = b.account_id
		 WHERE a.user_id = ?
		 ORDER BY b.id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.AccountID, &b.Category, &b.Allocated.Cents, &b.Spent.Cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// DeleteBudget removes a budget on one of owner's accounts. A non-owned id
// is a no-op.
func (r *SQLiteRepository) DeleteBudget(ctx context.Context, owner string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ?
		   AND account_id IN (SELECT id FROM accounts WHERE user_id = ?)`,
		id, owner)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		slog.DebugContext(ctx, "Budget delete matched no rows", "owner", owner, "budget_id", id)
		return nil
	}
	slog.InfoContext(ctx, "Budget deleted", "owner", owner, "budget_id", id)
	return nil
}
