package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func newTestStore() *Store {
	s := New()
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return s
}

func TestMilestoneOwnership(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	created, err := s.CreateMilestone(ctx, core.Milestone{UserID: "alice", Title: "Car", Status: core.StatusActive})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}

	if _, err := s.GetMilestone(ctx, "alice", created.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := s.GetMilestone(ctx, "bob", created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign get: got %v, want ErrNotFound", err)
	}
	if err := s.DeleteMilestone(ctx, "bob", created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign delete: got %v, want ErrNotFound", err)
	}

	listed, err := s.ListMilestones(ctx, "bob")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("bob sees %d milestones, want 0", len(listed))
	}
}

func TestListMilestonesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	for _, title := range []string{"first", "second", "third"} {
		if _, err := s.CreateMilestone(ctx, core.Milestone{UserID: "alice", Title: title, Status: core.StatusActive}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	listed, err := s.ListMilestones(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("got %d milestones, want 3", len(listed))
	}
	if listed[0].Title != "third" || listed[2].Title != "first" {
		t.Fatalf("order = [%s %s %s], want newest first", listed[0].Title, listed[1].Title, listed[2].Title)
	}
}

func TestDeleteMilestoneKeepsExpenses(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	m, _ := s.CreateMilestone(ctx, core.Milestone{UserID: "alice", Title: "Trip", Status: core.StatusActive})
	if _, err := s.UpsertContribution(ctx, core.Contribution{MilestoneID: m.ID, UserID: "alice", MonthKey: "2024-01", Amount: 50}); err != nil {
		t.Fatalf("upsert contribution: %v", err)
	}
	e, _ := s.CreateExpense(ctx, core.Expense{UserID: "alice", Amount: 30, Date: time.Now(), MilestoneID: m.ID})

	if err := s.DeleteMilestone(ctx, "alice", m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	contributions, _ := s.ListContributions(ctx, m.ID)
	if len(contributions) != 0 {
		t.Fatalf("contributions survived milestone delete: %v", contributions)
	}
	// The expense stays, with its milestone reference now dangling.
	got, err := s.GetExpense(ctx, "alice", e.ID)
	if err != nil {
		t.Fatalf("expense gone after milestone delete: %v", err)
	}
	if got.MilestoneID != m.ID {
		t.Fatalf("expense MilestoneID = %q, want %q", got.MilestoneID, m.ID)
	}
}

func TestUpsertContributionOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	first, err := s.UpsertContribution(ctx, core.Contribution{MilestoneID: "m1", UserID: "alice", MonthKey: "2024-03", Amount: 100})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := s.UpsertContribution(ctx, core.Contribution{MilestoneID: "m1", UserID: "alice", MonthKey: "2024-03", Amount: 40})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second upsert created new row: id %s != %s", second.ID, first.ID)
	}
	if second.Amount != 40 {
		t.Fatalf("amount = %v, want 40 (overwrite, not accumulate)", second.Amount)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatal("CreatedAt changed on overwrite")
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatal("UpdatedAt not advanced on overwrite")
	}

	listed, _ := s.ListContributions(ctx, "m1")
	if len(listed) != 1 {
		t.Fatalf("got %d contributions, want 1", len(listed))
	}
}

func TestListContributionsMonthDescending(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	for _, month := range []string{"2024-01", "2024-03", "2024-02"} {
		if _, err := s.UpsertContribution(ctx, core.Contribution{MilestoneID: "m1", MonthKey: month, Amount: 10}); err != nil {
			t.Fatalf("upsert %s: %v", month, err)
		}
	}
	listed, _ := s.ListContributions(ctx, "m1")
	want := []string{"2024-03", "2024-02", "2024-01"}
	for i, c := range listed {
		if c.MonthKey != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, c.MonthKey, want[i])
		}
	}
}

func TestListExpensesFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	day := func(d int) time.Time { return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC) }

	seed := []core.Expense{
		{UserID: "alice", Amount: 10, Category: "food", Date: day(1)},
		{UserID: "alice", Amount: 20, Category: "food", Date: day(10), MilestoneID: "m1"},
		{UserID: "alice", Amount: 30, Category: "transport", Date: day(20)},
		{UserID: "bob", Amount: 99, Category: "food", Date: day(10)},
	}
	for i, e := range seed {
		if _, err := s.CreateExpense(ctx, e); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	cases := []struct {
		name   string
		filter store.ExpenseFilter
		want   int
	}{
		{"all for user", store.ExpenseFilter{UserID: "alice"}, 3},
		{"by category", store.ExpenseFilter{UserID: "alice", Category: "food"}, 2},
		{"by milestone", store.ExpenseFilter{UserID: "alice", MilestoneID: "m1"}, 1},
		{"date range inclusive", store.ExpenseFilter{UserID: "alice", From: day(10), To: day(20)}, 2},
		{"other user isolated", store.ExpenseFilter{UserID: "bob"}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.ListExpenses(ctx, tc.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("got %d expenses, want %d", len(got), tc.want)
			}
		})
	}

	// Most recent date first.
	all, _ := s.ListExpenses(ctx, store.ExpenseFilter{UserID: "alice"})
	if !all[0].Date.Equal(day(20)) || !all[2].Date.Equal(day(1)) {
		t.Fatalf("expenses not date descending: %v, %v, %v", all[0].Date, all[1].Date, all[2].Date)
	}
}

func TestUpsertMoodEntryOnePerDay(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	if _, err := s.UpsertMoodEntry(ctx, core.MoodEntry{UserID: "alice", Date: day, Score: 4}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := s.UpsertMoodEntry(ctx, core.MoodEntry{UserID: "alice", Date: day, Score: 9}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	entries, _ := s.ListMoodEntries(ctx, "alice", time.Time{})
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Score != 9 {
		t.Fatalf("score = %d, want 9", entries[0].Score)
	}
}

func TestListMoodEntriesSinceAscending(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	base := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	for _, offset := range []int{-5, 0, -2, -10} {
		e := core.MoodEntry{UserID: "alice", Date: base.AddDate(0, 0, offset), Score: 5}
		if _, err := s.UpsertMoodEntry(ctx, e); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	entries, _ := s.ListMoodEntries(ctx, "alice", base.AddDate(0, 0, -5))
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Date.Before(entries[i-1].Date) {
			t.Fatal("entries not date ascending")
		}
	}
}

func TestSalaryLatestAndUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	if _, err := s.LatestSalary(ctx, "alice"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("latest with none: got %v, want ErrNotFound", err)
	}

	for _, month := range []string{"2024-02", "2024-04", "2024-03"} {
		if _, err := s.UpsertSalary(ctx, core.Salary{UserID: "alice", Month: month, Amount: 3000, ModelID: core.DefaultModelID}); err != nil {
			t.Fatalf("upsert %s: %v", month, err)
		}
	}
	latest, err := s.LatestSalary(ctx, "alice")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Month != "2024-04" {
		t.Fatalf("latest month = %s, want 2024-04", latest.Month)
	}

	// Same month again overwrites amount, keeps the row.
	updated, err := s.UpsertSalary(ctx, core.Salary{UserID: "alice", Month: "2024-04", Amount: 3500, ModelID: core.DefaultModelID})
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if updated.ID != latest.ID || updated.Amount != 3500 {
		t.Fatalf("overwrite result = %+v, want same id with amount 3500", updated)
	}
	listed, _ := s.ListSalaries(ctx, "alice")
	if len(listed) != 3 {
		t.Fatalf("got %d salaries, want 3", len(listed))
	}
}

func TestSalaryInfoSingleton(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	if _, err := s.GetSalaryInfo(ctx, "alice"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unset info: got %v, want ErrNotFound", err)
	}
	if _, err := s.UpsertSalaryInfo(ctx, core.SalaryInfo{UserID: "alice", MonthlyAmount: 2800}); err != nil {
		t.Fatalf("set info: %v", err)
	}
	if _, err := s.UpsertSalaryInfo(ctx, core.SalaryInfo{UserID: "alice", MonthlyAmount: 3100}); err != nil {
		t.Fatalf("overwrite info: %v", err)
	}
	info, err := s.GetSalaryInfo(ctx, "alice")
	if err != nil {
		t.Fatalf("get info: %v", err)
	}
	if info.MonthlyAmount != 3100 {
		t.Fatalf("MonthlyAmount = %v, want 3100", info.MonthlyAmount)
	}
}

func TestExtraSavingsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	for _, amount := range []float64{10, 20, 30} {
		if _, err := s.CreateExtraSaving(ctx, core.ExtraSaving{UserID: "alice", Amount: amount}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	listed, _ := s.ListExtraSavings(ctx, "alice")
	if len(listed) != 3 {
		t.Fatalf("got %d savings, want 3", len(listed))
	}
	if listed[0].Amount != 30 || listed[2].Amount != 10 {
		t.Fatalf("order = [%v %v %v], want newest first", listed[0].Amount, listed[1].Amount, listed[2].Amount)
	}
}

func TestDeleteExtraSaving(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	saving, err := s.CreateExtraSaving(ctx, core.ExtraSaving{UserID: "alice", Amount: 100})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.DeleteExtraSaving(ctx, "bob", saving.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign delete: err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteExtraSaving(ctx, "alice", "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("missing id: err = %v, want ErrNotFound", err)
	}

	if err := s.DeleteExtraSaving(ctx, "alice", saving.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	listed, _ := s.ListExtraSavings(ctx, "alice")
	if len(listed) != 0 {
		t.Fatalf("got %d savings after delete, want 0", len(listed))
	}
}
