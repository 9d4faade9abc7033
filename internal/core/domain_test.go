package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidMonthKey(t *testing.T) {
	cases := []struct {
		key string
		ok  bool
	}{
		{"2024-01", true},
		{"1999-12", true},
		{"2024-1", false},
		{"2024/01", false},
		{"202401", false},
		{"", false},
		{"abcd-ef", false},
	}
	for _, tc := range cases {
		if got := ValidMonthKey(tc.key); got != tc.ok {
			t.Fatalf("ValidMonthKey(%q) = %v, want %v", tc.key, got, tc.ok)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{Amount: 10, Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Amount: 0, Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{Amount: -5, Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{Amount: 10},
	}
	for i, e := range bads {
		err := e.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: error %v is not a validation error", i, err)
		}
	}
}

func TestMilestoneValidate(t *testing.T) {
	good := Milestone{Title: "Emergency fund", Status: StatusActive}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	if err := (Milestone{Title: "  ", Status: StatusActive}).Validate(); err == nil {
		t.Fatal("expected error for blank title")
	}
	if err := (Milestone{Title: "x", Status: "paused"}).Validate(); err == nil {
		t.Fatal("expected error for unknown status")
	}
	for _, status := range []string{StatusActive, StatusCompleted, StatusArchived} {
		if err := (Milestone{Title: "x", Status: status}).Validate(); err != nil {
			t.Fatalf("status %q should be valid: %v", status, err)
		}
	}
}

func TestMoodEntryValidate(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, score := range []int{1, 5, 10} {
		if err := (MoodEntry{Date: day, Score: score}).Validate(); err != nil {
			t.Fatalf("score %d should be valid: %v", score, err)
		}
	}
	for _, score := range []int{0, -1, 11} {
		if err := (MoodEntry{Date: day, Score: score}).Validate(); err == nil {
			t.Fatalf("score %d should be rejected", score)
		}
	}
	if err := (MoodEntry{Score: 5}).Validate(); err == nil {
		t.Fatal("expected error for zero date")
	}
}

func TestSalaryValidate(t *testing.T) {
	if err := (Salary{Month: "2024-02", Amount: 3000}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Salary{Month: "02-2024", Amount: 3000}).Validate(); err == nil {
		t.Fatal("expected error for bad month format")
	}
	if err := (Salary{Month: "2024-02", Amount: 0}).Validate(); err == nil {
		t.Fatal("expected error for non-positive amount")
	}
}

func TestContributionValidate(t *testing.T) {
	if err := (Contribution{MonthKey: "2024-05", Amount: 100}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	// Amounts are unconstrained: corrections may be zero or negative.
	if err := (Contribution{MonthKey: "2024-05", Amount: -20}).Validate(); err != nil {
		t.Fatalf("negative contribution should be allowed, got %v", err)
	}
	if err := (Contribution{MonthKey: "2024-5"}).Validate(); err == nil {
		t.Fatal("expected error for bad month key")
	}
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	in := time.Date(2024, 6, 15, 23, 30, 0, 0, loc)
	got := DateOnly(in)
	want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DateOnly = %v, want %v", got, want)
	}
}
