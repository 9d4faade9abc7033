package services

import (
	"context"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// MilestoneService handles milestone CRUD and the decorated list view.
type MilestoneService struct {
	store store.Store
	guard *Guard
}

func NewMilestoneService(s store.Store, guard *Guard) *MilestoneService {
	return &MilestoneService{store: s, guard: guard}
}

// MilestoneWithProgress pairs a milestone with its derived spend and funding
// figures.
type MilestoneWithProgress struct {
	core.Milestone
	core.Progress
}

// MilestoneDetail is the single-milestone view with its expense history.
type MilestoneDetail struct {
	core.Milestone
	Expenses      []core.Expense
	TotalExpenses float64
}

// MilestoneUpdate carries a partial update. Only these fields are writable
// after creation; CurrentAmount in particular is owned by the reconciler.
type MilestoneUpdate struct {
	Title       *string
	Description *string
	TargetDate  *time.Time
	Category    *string
	Status      *string
}

// List returns the user's milestones, newest first, each decorated with its
// expense and contribution totals.
func (s *MilestoneService) List(ctx context.Context, userID string) ([]MilestoneWithProgress, error) {
	milestones, err := s.store.ListMilestones(ctx, userID)
	if err != nil {
		return nil, classify("list milestones", err)
	}

	out := make([]MilestoneWithProgress, 0, len(milestones))
	for _, m := range milestones {
		expenses, err := s.store.ListExpenses(ctx, store.ExpenseFilter{UserID: userID, MilestoneID: m.ID})
		if err != nil {
			return nil, classify("list milestone expenses", err)
		}
		contributions, err := s.store.ListContributions(ctx, m.ID)
		if err != nil {
			return nil, classify("list milestone contributions", err)
		}
		out = append(out, MilestoneWithProgress{
			Milestone: m,
			Progress:  core.MilestoneProgress(expenses, contributions),
		})
	}
	return out, nil
}

func (s *MilestoneService) Get(ctx context.Context, userID, id string) (MilestoneDetail, error) {
	m, err := s.guard.Milestone(ctx, userID, id)
	if err != nil {
		return MilestoneDetail{}, err
	}
	expenses, err := s.store.ListExpenses(ctx, store.ExpenseFilter{UserID: userID, MilestoneID: id})
	if err != nil {
		return MilestoneDetail{}, classify("list milestone expenses", err)
	}
	return MilestoneDetail{
		Milestone:     m,
		Expenses:      expenses,
		TotalExpenses: core.Total(expenses),
	}, nil
}

func (s *MilestoneService) Create(ctx context.Context, m core.Milestone) (core.Milestone, error) {
	if m.Status == "" {
		m.Status = core.StatusActive
	}
	if err := m.Validate(); err != nil {
		return core.Milestone{}, err
	}

	created, err := s.store.CreateMilestone(ctx, m)
	if err != nil {
		return core.Milestone{}, classify("create milestone", err)
	}
	return created, nil
}

func (s *MilestoneService) Update(ctx context.Context, userID, id string, update MilestoneUpdate) (core.Milestone, error) {
	existing, err := s.guard.Milestone(ctx, userID, id)
	if err != nil {
		return core.Milestone{}, err
	}

	if update.Title != nil {
		existing.Title = *update.Title
	}
	if update.Description != nil {
		existing.Description = *update.Description
	}
	if update.TargetDate != nil {
		existing.TargetDate = *update.TargetDate
	}
	if update.Category != nil {
		existing.Category = *update.Category
	}
	if update.Status != nil {
		existing.Status = *update.Status
	}

	if err := existing.Validate(); err != nil {
		return core.Milestone{}, err
	}

	updated, err := s.store.UpdateMilestone(ctx, existing)
	if err != nil {
		return core.Milestone{}, classify("update milestone", err)
	}
	return updated, nil
}

// Delete removes the milestone. Its expenses stay behind with a dangling
// reference that aggregation treats as "no milestone".
func (s *MilestoneService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteMilestone(ctx, userID, id); err != nil {
		return classify("delete milestone", err)
	}
	slog.InfoContext(ctx, "Milestone deleted", "id", id)
	return nil
}
