// Package storage implements the ledger store: an owner-scoped data-access
// layer over a local SQLite database holding users, accounts, transactions,
// budgets, and categories.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"floosafandy/internal/auth"
	"floosafandy/internal/core"

	_ "modernc.org/sqlite"
)

// dateFormat is how transaction and account timestamps are stored. Plain
// lexicographic comparison of this format matches chronological order, which
// the date-range filters rely on.
const dateFormat = "2006-01-02 15:04:05"

type SQLiteRepository struct {
	db     *sql.DB
	hasher auth.Hasher
	now    func() time.Time
}

func NewSQLiteRepository(dbPath string, hasher auth.Hasher) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		hasher: hasher,
		now:    time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// RegisterUser stores a new user with a salted one-way password digest.
// A duplicate username returns ErrConflict and leaves the existing row intact.
func (r *SQLiteRepository) RegisterUser(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return core.ErrEmptyUsername
	}
	if password == "" {
		return core.ErrEmptyPassword
	}

	digest, err := r.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, digest)
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("register user %q: %w", username, ErrConflict)
		}
		return fmt.Errorf("register user: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "owner", username)
	return nil
}

// VerifyUser checks a username/password pair against the stored digest.
// Missing user and wrong password are both reported as a plain false so the
// caller cannot distinguish them; the error is only for store failures.
func (r *SQLiteRepository) VerifyUser(ctx context.Context, username, password string) (bool, error) {
	var digest string
	err := r.db.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE username = ?`, username).Scan(&digest)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup user: %w", err)
	}
	return r.hasher.Verify(password, digest), nil
}

// SeedDemoUser inserts the demo account (mohamed / 123) if no such user
// exists yet. Idempotent; mirrors the sample data the app ships with.
func (r *SQLiteRepository) SeedDemoUser(ctx context.Context) error {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = 'mohamed'`).Scan(&count)
	if err != nil {
		return fmt.Errorf("check seed user: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := r.RegisterUser(ctx, "mohamed", "123"); err != nil {
		return fmt.Errorf("seed demo user: %w", err)
	}
	return nil
}

// ownsAccount reports whether the account exists and belongs to owner.
func (r *SQLiteRepository) ownsAccount(ctx context.Context, owner string, accountID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE user_id = ? AND id = ?`,
		owner, accountID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check account ownership: %w", err)
	}
	return n > 0, nil
}
