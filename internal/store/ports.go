// Package store defines the ports the core consumes to reach the record
// store. Filters are conjunctions of equality and inclusive range predicates;
// result ordering is fixed per method and part of the contract.
//
// Every Get* method takes the requesting user's id alongside the record id
// and reports core.ErrNotFound when the record is absent or owned by someone
// else, so ownership cannot be probed through the store surface.
package store

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// ExpenseFilter narrows expense listings. Zero values leave a predicate out;
// From and To are inclusive bounds on the expense date.
type ExpenseFilter struct {
	UserID      string
	MilestoneID string
	Category    string
	From        time.Time
	To          time.Time
}

type (
	MilestoneStore interface {
		// ListMilestones returns the user's milestones, newest first.
		ListMilestones(ctx context.Context, userID string) ([]core.Milestone, error)
		GetMilestone(ctx context.Context, userID, id string) (core.Milestone, error)
		CreateMilestone(ctx context.Context, m core.Milestone) (core.Milestone, error)
		UpdateMilestone(ctx context.Context, m core.Milestone) (core.Milestone, error)
		// DeleteMilestone removes the milestone and its contributions.
		// Linked expenses are left in place with a dangling reference.
		DeleteMilestone(ctx context.Context, userID, id string) error
		// SetMilestoneCurrentAmount rewrites the derived CurrentAmount.
		// Only the reconciler calls this.
		SetMilestoneCurrentAmount(ctx context.Context, id string, amount float64) error
	}

	ExpenseStore interface {
		// ListExpenses returns matching expenses, most recent date first.
		ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error)
		GetExpense(ctx context.Context, userID, id string) (core.Expense, error)
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, userID, id string) error
	}

	ContributionStore interface {
		// ListContributions returns a milestone's contributions, month key
		// descending.
		ListContributions(ctx context.Context, milestoneID string) ([]core.Contribution, error)
		// UpsertContribution writes keyed by (MilestoneID, MonthKey):
		// the amount of an existing row for that month is overwritten.
		UpsertContribution(ctx context.Context, c core.Contribution) (core.Contribution, error)
	}

	MoodStore interface {
		// ListMoodEntries returns entries dated on or after since, ascending.
		ListMoodEntries(ctx context.Context, userID string, since time.Time) ([]core.MoodEntry, error)
		// UpsertMoodEntry writes keyed by (UserID, Date): one entry per day.
		UpsertMoodEntry(ctx context.Context, e core.MoodEntry) (core.MoodEntry, error)
	}

	SalaryStore interface {
		// ListSalaries returns the user's salaries, month descending.
		ListSalaries(ctx context.Context, userID string) ([]core.Salary, error)
		// LatestSalary returns the most recent salary by month, or
		// core.ErrNotFound when the user has none.
		LatestSalary(ctx context.Context, userID string) (core.Salary, error)
		// UpsertSalary writes keyed by (UserID, Month).
		UpsertSalary(ctx context.Context, s core.Salary) (core.Salary, error)
		// GetSalaryInfo returns core.ErrNotFound when the singleton is unset.
		GetSalaryInfo(ctx context.Context, userID string) (core.SalaryInfo, error)
		UpsertSalaryInfo(ctx context.Context, info core.SalaryInfo) (core.SalaryInfo, error)
	}

	SavingStore interface {
		// ListExtraSavings returns the user's extra savings, newest first.
		ListExtraSavings(ctx context.Context, userID string) ([]core.ExtraSaving, error)
		CreateExtraSaving(ctx context.Context, s core.ExtraSaving) (core.ExtraSaving, error)
		DeleteExtraSaving(ctx context.Context, userID, id string) error
	}
)

// Store is the full record store surface the services are wired against.
type Store interface {
	MilestoneStore
	ExpenseStore
	ContributionStore
	MoodStore
	SalaryStore
	SavingStore
}
