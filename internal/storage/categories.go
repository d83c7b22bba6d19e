package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"floosafandy/internal/core"
)

// CreateCategory adds a category name scoped to (account, direction).
// Adding a name that already exists in that scope is an idempotent no-op.
// The account must belong to owner.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, owner string, accountID int64, direction core.Direction, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyName
	}
	if !direction.Valid() {
		return core.ErrInvalidDirection
	}

	owned, err := r.ownsAccount(ctx, owner, accountID)
	if err != nil {
		return err
	}
	if !owned {
		return fmt.Errorf("account %d: %w", accountID, ErrNotFound)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO categories (account_id, type, name) VALUES (?, ?, ?)`,
		accountID, string(direction), name)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category added",
		"owner", owner,
		"account_id", accountID,
		"direction", string(direction),
		"category", name)
	return nil
}

// ListCategories returns category names scoped to (account, direction),
// alphabetically. The account must belong to owner.
func (r *SQLiteRepository) ListCategories(ctx context.Context, owner string, accountID int64, direction core.Direction) ([]string, error) {
	if !direction.Valid() {
		return nil, core.ErrInvalidDirection
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT c.name FROM categories c
		 JOIN accounts a ON a.id = c.account_id
		 WHERE a.user_id = ? AND c.account_id = ? AND c.type = ?
		 ORDER BY c.name`,
		owner, accountID, string(direction))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteCategory removes a category name from the (account, direction) scope.
// Absent names and non-owned accounts are no-ops.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, owner string, accountID int64, direction core.Direction, name string) error {
	if !direction.Valid() {
		return core.ErrInvalidDirection
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE account_id = ? AND type = ? AND name = ?
		   AND account_id IN (SELECT id FROM accounts WHERE user_id = ?)`,
		accountID, string(direction), name, owner)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		slog.DebugContext(ctx, "Category delete matched no rows",
			"owner", owner, "account_id", accountID, "category", name)
		return nil
	}
	slog.InfoContext(ctx, "Category deleted",
		"owner", owner, "account_id", accountID, "direction", string(direction), "category", name)
	return nil
}
