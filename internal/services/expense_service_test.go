package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
	"fintrack/internal/store/memory"
)

func newExpenseFixture(t *testing.T) (*ExpenseService, *memory.Store) {
	t.Helper()
	mem := memory.New()
	return NewExpenseService(mem, NewGuard(mem)), mem
}

func TestExpenseCreateValidates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newExpenseFixture(t)

	_, err := svc.Create(ctx, core.Expense{UserID: "alice", Amount: 0, Date: time.Now()})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("zero amount: got %v, want validation error", err)
	}
	_, err = svc.Create(ctx, core.Expense{UserID: "alice", Amount: 10})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("missing date: got %v, want validation error", err)
	}
}

func TestExpenseCreateChecksMilestoneOwnership(t *testing.T) {
	ctx := context.Background()
	svc, mem := newExpenseFixture(t)

	m, _ := mem.CreateMilestone(ctx, core.Milestone{UserID: "bob", Title: "Boat", Status: core.StatusActive})

	_, err := svc.Create(ctx, core.Expense{UserID: "alice", Amount: 10, Date: time.Now(), MilestoneID: m.ID})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign milestone reference: got %v, want ErrNotFound", err)
	}

	own, _ := mem.CreateMilestone(ctx, core.Milestone{UserID: "alice", Title: "Bike", Status: core.StatusActive})
	if _, err := svc.Create(ctx, core.Expense{UserID: "alice", Amount: 10, Date: time.Now(), MilestoneID: own.ID}); err != nil {
		t.Fatalf("own milestone reference: %v", err)
	}
}

func TestExpenseUpdatePartial(t *testing.T) {
	ctx := context.Background()
	svc, mem := newExpenseFixture(t)

	m, _ := mem.CreateMilestone(ctx, core.Milestone{UserID: "alice", Title: "Bike", Status: core.StatusActive})
	created, err := svc.Create(ctx, core.Expense{
		UserID:      "alice",
		Amount:      25,
		Description: "groceries",
		Category:    "food",
		Date:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		MilestoneID: m.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	amount := 40.0
	updated, err := svc.Update(ctx, "alice", created.ID, ExpenseUpdate{Amount: &amount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Amount != 40 {
		t.Fatalf("amount = %v, want 40", updated.Amount)
	}
	// Untouched fields survive.
	if updated.Description != "groceries" || updated.Category != "food" || updated.MilestoneID != m.ID {
		t.Fatalf("partial update clobbered fields: %+v", updated)
	}

	// Pointer at empty string clears the milestone link.
	empty := ""
	updated, err = svc.Update(ctx, "alice", created.ID, ExpenseUpdate{MilestoneID: &empty})
	if err != nil {
		t.Fatalf("clear milestone: %v", err)
	}
	if updated.MilestoneID != "" {
		t.Fatalf("MilestoneID = %q, want cleared", updated.MilestoneID)
	}

	// Updates still run validation on the merged record.
	bad := -5.0
	if _, err := svc.Update(ctx, "alice", created.ID, ExpenseUpdate{Amount: &bad}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("negative amount: got %v, want validation error", err)
	}
}

func TestExpenseUpdateForeignIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newExpenseFixture(t)

	created, _ := svc.Create(ctx, core.Expense{UserID: "alice", Amount: 10, Date: time.Now()})

	amount := 20.0
	if _, err := svc.Update(ctx, "bob", created.ID, ExpenseUpdate{Amount: &amount}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign update: got %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, "bob", created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign delete: got %v, want ErrNotFound", err)
	}
}

func TestExpenseListReturnsTotal(t *testing.T) {
	ctx := context.Background()
	svc, _ := newExpenseFixture(t)

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.Create(ctx, core.Expense{UserID: "alice", Amount: 12.5, Date: day})
	svc.Create(ctx, core.Expense{UserID: "alice", Amount: 7.5, Date: day.AddDate(0, 0, 1)})

	expenses, total, err := svc.List(ctx, store.ExpenseFilter{UserID: "alice"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(expenses) != 2 || total != 20 {
		t.Fatalf("got %d expenses with total %v, want 2 and 20", len(expenses), total)
	}
}
