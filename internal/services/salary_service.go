package services

import (
	"context"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// SalaryService handles month-specific salary records and the per-user
// SalaryInfo baseline singleton.
type SalaryService struct {
	store store.Store
}

func NewSalaryService(s store.Store) *SalaryService {
	return &SalaryService{store: s}
}

// Upsert writes the salary keyed by (UserID, Month); a second write for the
// same month replaces amount and model.
func (s *SalaryService) Upsert(ctx context.Context, salary core.Salary) (core.Salary, error) {
	if salary.ModelID == "" {
		salary.ModelID = core.DefaultModelID
	}
	if err := salary.Validate(); err != nil {
		return core.Salary{}, err
	}

	written, err := s.store.UpsertSalary(ctx, salary)
	if err != nil {
		return core.Salary{}, classify("upsert salary", err)
	}
	slog.InfoContext(ctx, "Salary upserted", "month", salary.Month, "amount", salary.Amount)
	return written, nil
}

// List returns the user's salaries, most recent month first.
func (s *SalaryService) List(ctx context.Context, userID string) ([]core.Salary, error) {
	salaries, err := s.store.ListSalaries(ctx, userID)
	if err != nil {
		return nil, classify("list salaries", err)
	}
	return salaries, nil
}

// Latest returns the most recent salary record, or core.ErrNotFound when
// the user has none.
func (s *SalaryService) Latest(ctx context.Context, userID string) (core.Salary, error) {
	salary, err := s.store.LatestSalary(ctx, userID)
	if err != nil {
		return core.Salary{}, classify("latest salary", err)
	}
	return salary, nil
}

// SetInfo replaces the user's recurring budget baseline.
func (s *SalaryService) SetInfo(ctx context.Context, info core.SalaryInfo) (core.SalaryInfo, error) {
	if err := info.Validate(); err != nil {
		return core.SalaryInfo{}, err
	}

	written, err := s.store.UpsertSalaryInfo(ctx, info)
	if err != nil {
		return core.SalaryInfo{}, classify("upsert salary info", err)
	}
	return written, nil
}
