package services

import (
	"context"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// MoodService handles daily mood logging and the windowed history view.
type MoodService struct {
	store store.Store
}

func NewMoodService(s store.Store) *MoodService {
	return &MoodService{store: s}
}

// MoodHistory is the windowed mood listing with its rounded average.
type MoodHistory struct {
	Entries []core.MoodEntry
	Average float64
	Count   int
}

// History returns entries from the trailing days window, date ascending,
// with the mean score rounded to one decimal (0 when empty).
func (s *MoodService) History(ctx context.Context, userID string, days int, now time.Time) (MoodHistory, error) {
	since := core.DateOnly(now).AddDate(0, 0, -days)
	entries, err := s.store.ListMoodEntries(ctx, userID, since)
	if err != nil {
		return MoodHistory{}, classify("list mood entries", err)
	}

	history := MoodHistory{Entries: entries, Count: len(entries)}
	if len(entries) > 0 {
		var sum float64
		for _, e := range entries {
			sum += float64(e.Score)
		}
		history.Average = core.Round1(sum / float64(len(entries)))
	}
	return history, nil
}

// Log upserts the entry for its calendar day; a second write for the same
// day overwrites score and insight.
func (s *MoodService) Log(ctx context.Context, entry core.MoodEntry) (core.MoodEntry, error) {
	entry.Date = core.DateOnly(entry.Date)
	if err := entry.Validate(); err != nil {
		return core.MoodEntry{}, err
	}

	written, err := s.store.UpsertMoodEntry(ctx, entry)
	if err != nil {
		return core.MoodEntry{}, classify("upsert mood entry", err)
	}
	return written, nil
}
