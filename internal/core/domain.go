package core

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// Milestone status values.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

// DefaultModelID is the budget model assigned to salaries created without one.
const DefaultModelID = "50-30-20"

var monthKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

type (
	// Salary is a month-specific salary record, unique per (UserID, Month).
	Salary struct {
		ID        string
		UserID    string
		Month     string // YYYY-MM
		Amount    float64
		ModelID   string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// SalaryInfo is the per-user recurring budget baseline, at most one per user.
	SalaryInfo struct {
		UserID        string
		MonthlyAmount float64
		UpdatedAt     time.Time
	}

	// Expense is a dated spend record. MilestoneID is empty when the expense
	// is not linked to a savings goal; a non-empty value may dangle after the
	// milestone is deleted and is then treated as absent by aggregation.
	Expense struct {
		ID          string
		UserID      string
		Amount      float64
		Description string
		Date        time.Time
		Category    string
		MilestoneID string
		CreatedAt   time.Time
	}

	// Milestone is a savings goal. CurrentAmount is derived: once the
	// milestone has contributions its value is always the sum of their
	// amounts, rewritten by the reconciler after every contribution upsert.
	Milestone struct {
		ID                    string
		UserID                string
		Title                 string
		Description           string
		TargetAmount          float64
		CurrentAmount         float64
		StartDate             time.Time // zero when unset
		TargetDate            time.Time // zero when unset
		Category              string
		Status                string
		SalarySnapshot        json.RawMessage
		ModelSnapshot         json.RawMessage
		Plan                  json.RawMessage
		CelebrationsHalfShown bool
		CelebrationsDoneShown bool
		CreatedAt             time.Time
		UpdatedAt             time.Time
	}

	// Contribution is a monthly funding entry toward a milestone, unique per
	// (MilestoneID, MonthKey). A second write for the same month overwrites
	// the amount.
	Contribution struct {
		ID          string
		MilestoneID string
		UserID      string
		MonthKey    string // YYYY-MM
		Amount      float64
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// MoodEntry is a daily mood score, unique per (UserID, Date). Date is
	// normalized to midnight UTC.
	MoodEntry struct {
		UserID           string
		Date             time.Time
		Score            int // 1..10
		EmotionalInsight string
	}

	// ExtraSaving is a one-off saving amount outside any milestone.
	ExtraSaving struct {
		ID        string
		UserID    string
		Amount    float64
		Note      string
		CreatedAt time.Time
	}
)

// ValidMonthKey reports whether s matches the YYYY-MM pattern.
func ValidMonthKey(s string) bool {
	return monthKeyPattern.MatchString(s)
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s Salary) Validate() error {
	if !ValidMonthKey(s.Month) {
		return &ValidationError{Field: "month", Reason: "must be in YYYY-MM format"}
	}
	if s.Amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	return nil
}

func (i SalaryInfo) Validate() error {
	if i.MonthlyAmount <= 0 {
		return &ValidationError{Field: "monthlyAmount", Reason: "must be positive"}
	}
	return nil
}

func (e Expense) Validate() error {
	if e.Amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if e.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}
	return nil
}

func (m Milestone) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	switch m.Status {
	case StatusActive, StatusCompleted, StatusArchived:
	default:
		return &ValidationError{Field: "status", Reason: "must be active, completed or archived"}
	}
	return nil
}

func (c Contribution) Validate() error {
	if !ValidMonthKey(c.MonthKey) {
		return &ValidationError{Field: "monthKey", Reason: "must be in YYYY-MM format"}
	}
	return nil
}

func (e MoodEntry) Validate() error {
	if e.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}
	if e.Score < 1 || e.Score > 10 {
		return &ValidationError{Field: "score", Reason: "must be between 1 and 10"}
	}
	return nil
}

func (s ExtraSaving) Validate() error {
	if s.Amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	return nil
}
