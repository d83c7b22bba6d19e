package storage

import (
	"context"
	"errors"
	"testing"

	"floosafandy/internal/core"
)

func TestBudgetSpentDerivedFromJournal(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	mustRegister(t, repo, "alice")
	acc := mustAccount(t, repo, "alice", "Checking", 10000, 0)
	other := mustAccount(t, repo, "alice", "Savings", 50000, 0)

	budget, err := repo.CreateBudget(ctx, "alice", acc.ID, "Food", core.Money{Cents: 5000})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	if budget.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	for _, tx := range []core.Transaction{
		{AccountID: acc.ID, Direction: core.DirectionOut, Amount: core.Money{Cents: 1200}, Category: "Food"},
		{AccountID: acc.ID, Direction: core.DirectionOut, Amount: core.Money{Cents: 800}, Category: "Food, Transport"},
		// IN rows and other categories never count against the budget.
		{AccountID: acc.ID, Direction: core.DirectionIn, Amount: core.Money{Cents: 9999}, Category: "Food"},
		{AccountID: acc.ID, Direction: core.DirectionOut, Amount: core.Money{Cents: 300}, Category: "Rent"},
		// Same category on a different account stays out of scope.
		{AccountID: other.ID, Direction: core.DirectionOut, Amount: core.Money{Cents: 700}, Category: "Food"},
	} {
		seedTransaction(t, repo, "alice", tx)
	}

	budgets, err := repo.ListBudgets(ctx, "alice")
	if err != nil {
		t.Fatalf("list budgets: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("expected 1 budget, got %d", len(budgets))
	}
	got := budgets[0]
	if got.Allocated.Cents != 5000 {
		t.Fatalf("allocated = %d, want 5000", got.Allocated.Cents)
	}
	if got.Spent.Cents != 2000 {
		t.Fatalf("spent = %d, want 2000", got.Spent.Cents)
	}
}

func TestBudgetValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	mustRegister(t, repo, "alice")
	acc := mustAccount(t, repo, "alice", "Checking", 10000, 0)

	if _, err := repo.CreateBudget(ctx, "alice", acc.ID, "Food", core.Money{}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := repo.CreateBudget(ctx, "alice", acc.ID, "", core.Money{Cents: 100}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestBudgetForeignAccount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	mustRegister(t, repo, "alice")
	mustRegister(t, repo, "bob")
	acc := mustAccount(t, repo, "alice", "Checking", 10000, 0)

	if _, err := repo.CreateBudget(ctx, "bob", acc.ID, "Food", core.Money{Cents: 100}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteBudgetScopedToOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	mustRegister(t, repo, "alice")
	mustRegister(t, repo, "bob")
	acc := mustAccount(t, repo, "alice", "Checking", 10000, 0)
	budget, err := repo.CreateBudget(ctx, "alice", acc.ID, "Food", core.Money{Cents: 5000})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}

	if err := repo.DeleteBudget(ctx, "bob", budget.ID); err != nil {
		t.Fatalf("cross-user delete should be a no-op, got %v", err)
	}
	budgets, _ := repo.ListBudgets(ctx, "alice")
	if len(budgets) != 1 {
		t.Fatalf("cross-user delete removed the budget")
	}

	if err := repo.DeleteBudget(ctx, "alice", budget.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	budgets, _ = repo.ListBudgets(ctx, "alice")
	if len(budgets) != 0 {
		t.Fatalf("owner delete did not remove the budget")
	}
}
