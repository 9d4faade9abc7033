package services

import (
	"context"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// ExpenseService handles expense CRUD. Writes that reference a milestone
// verify the reference belongs to the same user first; reads never leak
// other users' records thanks to the guard.
type ExpenseService struct {
	store store.Store
	guard *Guard
}

func NewExpenseService(s store.Store, guard *Guard) *ExpenseService {
	return &ExpenseService{store: s, guard: guard}
}

// ExpenseUpdate carries a partial update. Nil fields are left unchanged;
// MilestoneID set to a pointer at "" clears the reference.
type ExpenseUpdate struct {
	Amount      *float64
	Description *string
	Date        *time.Time
	Category    *string
	MilestoneID *string
}

// List returns matching expenses plus their in-order amount total.
func (s *ExpenseService) List(ctx context.Context, f store.ExpenseFilter) ([]core.Expense, float64, error) {
	expenses, err := s.store.ListExpenses(ctx, f)
	if err != nil {
		return nil, 0, classify("list expenses", err)
	}
	return expenses, core.Total(expenses), nil
}

func (s *ExpenseService) Get(ctx context.Context, userID, id string) (core.Expense, error) {
	return s.guard.Expense(ctx, userID, id)
}

func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if e.MilestoneID != "" {
		if _, err := s.guard.Milestone(ctx, e.UserID, e.MilestoneID); err != nil {
			return core.Expense{}, err
		}
	}

	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, classify("create expense", err)
	}
	return created, nil
}

func (s *ExpenseService) Update(ctx context.Context, userID, id string, update ExpenseUpdate) (core.Expense, error) {
	existing, err := s.guard.Expense(ctx, userID, id)
	if err != nil {
		return core.Expense{}, err
	}

	if update.Amount != nil {
		existing.Amount = *update.Amount
	}
	if update.Description != nil {
		existing.Description = *update.Description
	}
	if update.Date != nil {
		existing.Date = *update.Date
	}
	if update.Category != nil {
		existing.Category = *update.Category
	}
	if update.MilestoneID != nil {
		if *update.MilestoneID != "" {
			if _, err := s.guard.Milestone(ctx, userID, *update.MilestoneID); err != nil {
				return core.Expense{}, err
			}
		}
		existing.MilestoneID = *update.MilestoneID
	}

	if err := existing.Validate(); err != nil {
		return core.Expense{}, err
	}

	updated, err := s.store.UpdateExpense(ctx, existing)
	if err != nil {
		return core.Expense{}, classify("update expense", err)
	}
	return updated, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return classify("delete expense", err)
	}
	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}
