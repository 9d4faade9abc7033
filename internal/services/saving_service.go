package services

import (
	"context"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// SavingService handles one-off extra savings outside any milestone.
type SavingService struct {
	store store.Store
}

func NewSavingService(s store.Store) *SavingService {
	return &SavingService{store: s}
}

func (s *SavingService) List(ctx context.Context, userID string) ([]core.ExtraSaving, error) {
	savings, err := s.store.ListExtraSavings(ctx, userID)
	if err != nil {
		return nil, classify("list extra savings", err)
	}
	return savings, nil
}

func (s *SavingService) Create(ctx context.Context, saving core.ExtraSaving) (core.ExtraSaving, error) {
	if err := saving.Validate(); err != nil {
		return core.ExtraSaving{}, err
	}

	created, err := s.store.CreateExtraSaving(ctx, saving)
	if err != nil {
		return core.ExtraSaving{}, classify("create extra saving", err)
	}
	return created, nil
}

func (s *SavingService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteExtraSaving(ctx, userID, id); err != nil {
		return classify("delete extra saving", err)
	}
	slog.InfoContext(ctx, "Extra saving deleted", "id", id)
	return nil
}
