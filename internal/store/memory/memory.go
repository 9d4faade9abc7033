// Package memory is the in-memory record store backend. Singleton-by-key
// records (contributions, mood entries, salaries, salary info) live in maps
// keyed by their composite key, so the at-most-one-per-key invariants are
// structural rather than checked.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type Store struct {
	mu            sync.RWMutex
	milestones    map[string]core.Milestone
	expenses      map[string]core.Expense
	contributions map[string]map[string]core.Contribution // milestoneID -> monthKey
	moods         map[string]map[string]core.MoodEntry    // userID -> YYYY-MM-DD
	salaries      map[string]map[string]core.Salary       // userID -> YYYY-MM
	salaryInfo    map[string]core.SalaryInfo
	savings       []core.ExtraSaving

	// now is swappable for tests that need stable timestamps.
	now func() time.Time
}

func New() *Store {
	return &Store{
		milestones:    make(map[string]core.Milestone),
		expenses:      make(map[string]core.Expense),
		contributions: make(map[string]map[string]core.Contribution),
		moods:         make(map[string]map[string]core.MoodEntry),
		salaries:      make(map[string]map[string]core.Salary),
		salaryInfo:    make(map[string]core.SalaryInfo),
		now:           time.Now,
	}
}

var _ store.Store = (*Store)(nil)

// --- milestones ---

func (s *Store) ListMilestones(_ context.Context, userID string) ([]core.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Milestone
	for _, m := range s.milestones {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetMilestone(_ context.Context, userID, id string) (core.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.milestones[id]
	if !ok || m.UserID != userID {
		return core.Milestone{}, core.ErrNotFound
	}
	return m, nil
}

func (s *Store) CreateMilestone(_ context.Context, m core.Milestone) (core.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = uuid.NewString()
	m.CreatedAt = s.now()
	m.UpdatedAt = m.CreatedAt
	s.milestones[m.ID] = m
	return m, nil
}

func (s *Store) UpdateMilestone(_ context.Context, m core.Milestone) (core.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.milestones[m.ID]
	if !ok || existing.UserID != m.UserID {
		return core.Milestone{}, core.ErrNotFound
	}
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = s.now()
	s.milestones[m.ID] = m
	return m, nil
}

func (s *Store) DeleteMilestone(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.milestones[id]
	if !ok || m.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.milestones, id)
	delete(s.contributions, id)
	// Expenses keep their MilestoneID on purpose; aggregation treats the
	// dangling reference as absent.
	return nil
}

func (s *Store) SetMilestoneCurrentAmount(_ context.Context, id string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.milestones[id]
	if !ok {
		return core.ErrNotFound
	}
	m.CurrentAmount = amount
	m.UpdatedAt = s.now()
	s.milestones[id] = m
	return nil
}

// --- expenses ---

func (s *Store) ListExpenses(_ context.Context, f store.ExpenseFilter) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if e.UserID != f.UserID {
			continue
		}
		if f.MilestoneID != "" && e.MilestoneID != f.MilestoneID {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if !f.From.IsZero() && e.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && e.Date.After(f.To) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, userID, id string) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return core.Expense{}, core.ErrNotFound
	}
	return e, nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.NewString()
	e.CreatedAt = s.now()
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.expenses[e.ID]
	if !ok || existing.UserID != e.UserID {
		return core.Expense{}, core.ErrNotFound
	}
	e.CreatedAt = existing.CreatedAt
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

// --- contributions ---

func (s *Store) ListContributions(_ context.Context, milestoneID string) ([]core.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Contribution
	for _, c := range s.contributions[milestoneID] {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].MonthKey > out[j].MonthKey
	})
	return out, nil
}

func (s *Store) UpsertContribution(_ context.Context, c core.Contribution) (core.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byMonth := s.contributions[c.MilestoneID]
	if byMonth == nil {
		byMonth = make(map[string]core.Contribution)
		s.contributions[c.MilestoneID] = byMonth
	}
	if existing, ok := byMonth[c.MonthKey]; ok {
		existing.Amount = c.Amount
		existing.UpdatedAt = s.now()
		byMonth[c.MonthKey] = existing
		return existing, nil
	}
	c.ID = uuid.NewString()
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	byMonth[c.MonthKey] = c
	return c, nil
}

// --- mood entries ---

func (s *Store) ListMoodEntries(_ context.Context, userID string, since time.Time) ([]core.MoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.MoodEntry
	for _, e := range s.moods[userID] {
		if !since.IsZero() && e.Date.Before(since) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (s *Store) UpsertMoodEntry(_ context.Context, e core.MoodEntry) (core.MoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDay := s.moods[e.UserID]
	if byDay == nil {
		byDay = make(map[string]core.MoodEntry)
		s.moods[e.UserID] = byDay
	}
	byDay[e.Date.Format("2006-01-02")] = e
	return e, nil
}

// --- salaries ---

func (s *Store) ListSalaries(_ context.Context, userID string) ([]core.Salary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Salary
	for _, sal := range s.salaries[userID] {
		out = append(out, sal)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month > out[j].Month
	})
	return out, nil
}

func (s *Store) LatestSalary(ctx context.Context, userID string) (core.Salary, error) {
	salaries, err := s.ListSalaries(ctx, userID)
	if err != nil {
		return core.Salary{}, err
	}
	if len(salaries) == 0 {
		return core.Salary{}, core.ErrNotFound
	}
	return salaries[0], nil
}

func (s *Store) UpsertSalary(_ context.Context, sal core.Salary) (core.Salary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byMonth := s.salaries[sal.UserID]
	if byMonth == nil {
		byMonth = make(map[string]core.Salary)
		s.salaries[sal.UserID] = byMonth
	}
	if existing, ok := byMonth[sal.Month]; ok {
		existing.Amount = sal.Amount
		existing.ModelID = sal.ModelID
		existing.UpdatedAt = s.now()
		byMonth[sal.Month] = existing
		return existing, nil
	}
	sal.ID = uuid.NewString()
	sal.CreatedAt = s.now()
	sal.UpdatedAt = sal.CreatedAt
	byMonth[sal.Month] = sal
	return sal, nil
}

func (s *Store) GetSalaryInfo(_ context.Context, userID string) (core.SalaryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.salaryInfo[userID]
	if !ok {
		return core.SalaryInfo{}, core.ErrNotFound
	}
	return info, nil
}

func (s *Store) UpsertSalaryInfo(_ context.Context, info core.SalaryInfo) (core.SalaryInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info.UpdatedAt = s.now()
	s.salaryInfo[info.UserID] = info
	return info, nil
}

// --- extra savings ---

func (s *Store) ListExtraSavings(_ context.Context, userID string) ([]core.ExtraSaving, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.ExtraSaving
	for _, sav := range s.savings {
		if sav.UserID == userID {
			out = append(out, sav)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateExtraSaving(_ context.Context, sav core.ExtraSaving) (core.ExtraSaving, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sav.ID = uuid.NewString()
	sav.CreatedAt = s.now()
	s.savings = append(s.savings, sav)
	return sav, nil
}

func (s *Store) DeleteExtraSaving(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sav := range s.savings {
		if sav.ID == id && sav.UserID == userID {
			s.savings = append(s.savings[:i], s.savings[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}
