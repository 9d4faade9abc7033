// Package core holds the domain model and the pure aggregation functions
// that derive budget and progress views from already-fetched records.
//
// All reductions iterate their input in order, so sums are deterministic for
// a given slice. Amounts are float64; addition is not associative, and
// callers must not expect bit-identical totals across re-orderings.
package core

import (
	"math"
	"sort"
	"time"
)

// OtherCategory groups expenses that carry no category.
const OtherCategory = "Other"

// CategoryTotals sums expense amounts per category. Uncategorized expenses
// group under OtherCategory.
func CategoryTotals(expenses []Expense) map[string]float64 {
	totals := make(map[string]float64)
	for _, e := range expenses {
		category := e.Category
		if category == "" {
			category = OtherCategory
		}
		totals[category] += e.Amount
	}
	return totals
}

// WindowTotal sums expenses whose date falls in [from, to], inclusive on
// both ends. A zero bound leaves that end open.
func WindowTotal(expenses []Expense, from, to time.Time) float64 {
	var total float64
	for _, e := range expenses {
		if !from.IsZero() && e.Date.Before(from) {
			continue
		}
		if !to.IsZero() && e.Date.After(to) {
			continue
		}
		total += e.Amount
	}
	return total
}

// Total sums all expense amounts in input order.
func Total(expenses []Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}

// MonthStart returns the first instant of the UTC calendar month containing t.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// Progress reports spend against and funding toward a single milestone.
// Expenses and contributions are kept apart: one is money leaving the
// budget, the other money set aside for the goal.
type Progress struct {
	TotalExpenses      float64
	TotalContributions float64
	ExpenseCount       int
}

// MilestoneProgress sums a milestone's linked expenses and contributions.
func MilestoneProgress(expenses []Expense, contributions []Contribution) Progress {
	p := Progress{ExpenseCount: len(expenses)}
	for _, e := range expenses {
		p.TotalExpenses += e.Amount
	}
	for _, c := range contributions {
		p.TotalContributions += c.Amount
	}
	return p
}

// MoodSummary is the windowed mood view: the mean score over the window,
// rounded to one decimal, and the trailing trend series.
type MoodSummary struct {
	Average float64
	Last7   []MoodEntry
}

// SummarizeMood filters entries to the trailing windowDays before now,
// averages their scores (0 when the window is empty) and exposes the last 7
// entries of the date-ascending list as the trend. The trend is positional,
// not a 7-day window: with sparse data it may reach further back.
func SummarizeMood(entries []MoodEntry, now time.Time, windowDays int) MoodSummary {
	cutoff := DateOnly(now).AddDate(0, 0, -windowDays)

	windowed := make([]MoodEntry, 0, len(entries))
	for _, e := range entries {
		if e.Date.Before(cutoff) {
			continue
		}
		windowed = append(windowed, e)
	}
	sort.SliceStable(windowed, func(i, j int) bool {
		return windowed[i].Date.Before(windowed[j].Date)
	})

	var summary MoodSummary
	if len(windowed) > 0 {
		var sum float64
		for _, e := range windowed {
			sum += float64(e.Score)
		}
		summary.Average = Round1(sum / float64(len(windowed)))
	}

	start := len(windowed) - 7
	if start < 0 {
		start = 0
	}
	summary.Last7 = windowed[start:]
	return summary
}

// RemainingBudget subtracts the current month's expense total from the
// monthly baseline. A negative result means overspend, not an error.
func RemainingBudget(monthlyAmount, currentMonthTotal float64) float64 {
	return monthlyAmount - currentMonthTotal
}

// MilestoneCounts breaks milestones down by status.
type MilestoneCounts struct {
	Active    int
	Completed int
	Total     int
}

// CountMilestones counts active and completed milestones by exact status
// match. Total includes every status, archived ones too.
func CountMilestones(milestones []Milestone) MilestoneCounts {
	counts := MilestoneCounts{Total: len(milestones)}
	for _, m := range milestones {
		switch m.Status {
		case StatusActive:
			counts.Active++
		case StatusCompleted:
			counts.Completed++
		}
	}
	return counts
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}
