package services

import (
	"context"
	"errors"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Guard binds every record access to the requesting identity. A record that
// is absent and a record owned by someone else both come back as
// core.ErrNotFound: callers cannot tell "exists but not yours" from "does
// not exist", and that ambiguity is part of the contract.
type Guard struct {
	store store.Store
}

func NewGuard(s store.Store) *Guard {
	return &Guard{store: s}
}

// Milestone returns the milestone when it exists and belongs to userID.
func (g *Guard) Milestone(ctx context.Context, userID, id string) (core.Milestone, error) {
	m, err := g.store.GetMilestone(ctx, userID, id)
	if err != nil {
		return core.Milestone{}, classify("get milestone", err)
	}
	return m, nil
}

// Expense returns the expense when it exists and belongs to userID.
func (g *Guard) Expense(ctx context.Context, userID, id string) (core.Expense, error) {
	e, err := g.store.GetExpense(ctx, userID, id)
	if err != nil {
		return core.Expense{}, classify("get expense", err)
	}
	return e, nil
}

// classify keeps core error kinds intact and folds anything else into a
// StoreError, so no bare store fault ever reaches a caller.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, core.ErrNotFound) ||
		errors.Is(err, core.ErrUnauthorized) ||
		errors.Is(err, core.ErrValidation) ||
		errors.Is(err, core.ErrStore) {
		return err
	}
	return &core.StoreError{Op: op, Err: err}
}
