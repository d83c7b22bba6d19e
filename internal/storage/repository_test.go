package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"floosafandy/internal/auth"
	"floosafandy/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	repo, err := NewSQLiteRepository(dbPath, auth.BcryptHasher{})
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustRegister(t *testing.T, repo *SQLiteRepository, username string) {
	t.Helper()
	if err := repo.RegisterUser(context.Background(), username, "pw-"+username); err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
}

func mustAccount(t *testing.T, repo *SQLiteRepository, owner, name string, opening, min int64) core.Account {
	t.Helper()
	acc, err := repo.CreateAccount(context.Background(), owner, name,
		core.Money{Cents: opening}, core.Money{Cents: min})
	if err != nil {
		t.Fatalf("create account %s/%s: %v", owner, name, err)
	}
	return acc
}

func TestRegisterUserDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.RegisterUser(ctx, "alice", "first"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	var before string
	if err := repo.db.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE username = 'alice'`).Scan(&before); err != nil {
		t.Fatalf("read digest: %v", err)
	}

	err := repo.RegisterUser(ctx, "alice", "second")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	var after string
	if err := repo.db.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE username = 'alice'`).Scan(&after); err != nil {
		t.Fatalf("read digest: %v", err)
	}
	if before != after {
		t.Fatalf("digest changed by failed registration")
	}

	// The original password still works.
	ok, err := repo.VerifyUser(ctx, "alice", "first")
	if err != nil || !ok {
		t.Fatalf("expected original password to verify, ok=%v err=%v", ok, err)
	}
}

func TestRegisterUserValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.RegisterUser(ctx, "", "pw"); err != core.ErrEmptyUsername {
		t.Fatalf("expected ErrEmptyUsername, got %v", err)
	}
	if err := repo.RegisterUser(ctx, "bob", ""); err != core.ErrEmptyPassword {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestVerifySeededUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SeedDemoUser(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Seeding twice must not fail or duplicate.
	if err := repo.SeedDemoUser(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	ok, err := repo.VerifyUser(ctx, "mohamed", "123")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatalf("seeded credentials should verify")
	}

	ok, err = repo.VerifyUser(ctx, "mohamed", "wrong")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatalf("wrong password should not verify")
	}
}

func TestVerifyMissingUser(t *testing.T) {
	repo := newTestRepo(t)

	ok, err := repo.VerifyUser(context.Background(), "nobody", "whatever")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatalf("missing user should not verify")
	}
}

func TestRepositoryCreatesDBDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "ledger.db")
	repo, err := NewSQLiteRepository(dbPath, auth.BcryptHasher{})
	if err != nil {
		t.Fatalf("open repository with nested path: %v", err)
	}
	repo.Close()
}

func TestMigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	repo, err := NewSQLiteRepository(dbPath, auth.BcryptHasher{})
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	mustRegister(t, repo, "alice")
	repo.Close()

	// Re-opening the same file re-runs migrations; existing data survives.
	repo2, err := NewSQLiteRepository(dbPath, auth.BcryptHasher{})
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer repo2.Close()

	ok, err := repo2.VerifyUser(context.Background(), "alice", "pw-alice")
	if err != nil || !ok {
		t.Fatalf("user lost across reopen, ok=%v err=%v", ok, err)
	}
}

// fixedNow pins the repository clock for deterministic timestamps.
func fixedNow(t *testing.T, repo *SQLiteRepository, at time.Time) {
	t.Helper()
	repo.now = func() time.Time { return at }
}
