package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// moodWindowDays is the trailing window the dashboard's mood figures cover.
const moodWindowDays = 30

// Dashboard is the composite summary view. It is derived entirely from
// stored records; building one mutates nothing.
type Dashboard struct {
	Milestones core.MilestoneCounts
	Expenses   ExpenseStats
	Mood       MoodStats
	// Salary is nil when the user has no SalaryInfo.
	Salary *SalaryStats
}

type ExpenseStats struct {
	Total        float64
	CurrentMonth float64
	ByCategory   map[string]float64
}

type MoodStats struct {
	Average float64
	Last7   []core.MoodEntry
}

type SalaryStats struct {
	Monthly   float64
	Remaining float64
}

// DashboardComposer fans out the four record retrievals the summary view
// needs and joins them through the aggregation functions.
type DashboardComposer struct {
	store store.Store
}

func NewDashboardComposer(s store.Store) *DashboardComposer {
	return &DashboardComposer{store: s}
}

// Build assembles the dashboard for userID as of now. The four fetches have
// no data dependency on each other and run concurrently; if any one fails
// the whole build fails, so a partial dashboard is never returned.
func (d *DashboardComposer) Build(ctx context.Context, userID string, now time.Time) (Dashboard, error) {
	var (
		milestones []core.Milestone
		expenses   []core.Expense
		moods      []core.MoodEntry
		salaryInfo *core.SalaryInfo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		milestones, err = d.store.ListMilestones(gctx, userID)
		return classify("list milestones", err)
	})
	g.Go(func() error {
		var err error
		expenses, err = d.store.ListExpenses(gctx, store.ExpenseFilter{UserID: userID})
		return classify("list expenses", err)
	})
	g.Go(func() error {
		since := core.DateOnly(now).AddDate(0, 0, -moodWindowDays)
		var err error
		moods, err = d.store.ListMoodEntries(gctx, userID, since)
		return classify("list mood entries", err)
	})
	g.Go(func() error {
		info, err := d.store.GetSalaryInfo(gctx, userID)
		if errors.Is(err, core.ErrNotFound) {
			// No baseline set; the salary block is simply absent.
			return nil
		}
		if err != nil {
			return classify("get salary info", err)
		}
		salaryInfo = &info
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	currentMonth := core.WindowTotal(expenses, core.MonthStart(now), time.Time{})
	mood := core.SummarizeMood(moods, now, moodWindowDays)

	dashboard := Dashboard{
		Milestones: core.CountMilestones(milestones),
		Expenses: ExpenseStats{
			Total:        core.Total(expenses),
			CurrentMonth: currentMonth,
			ByCategory:   core.CategoryTotals(expenses),
		},
		Mood: MoodStats{
			Average: mood.Average,
			Last7:   mood.Last7,
		},
	}
	if salaryInfo != nil {
		dashboard.Salary = &SalaryStats{
			Monthly:   salaryInfo.MonthlyAmount,
			Remaining: core.RemainingBudget(salaryInfo.MonthlyAmount, currentMonth),
		}
	}
	return dashboard, nil
}
