package http

import (
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/core"
)

type moodRequest struct {
	Date             string `json:"date"`
	Score            *int   `json:"score"`
	EmotionalInsight string `json:"emotionalInsight"`
}

func moodJSON(e core.MoodEntry) map[string]any {
	return map[string]any{
		"date":             e.Date.Format("2006-01-02"),
		"score":            e.Score,
		"emotionalInsight": e.EmotionalInsight,
	}
}

// handleMood serves GET and POST /api/mood.
func (s *Server) handleMood(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.moodHistory(w, r)
	case http.MethodPost:
		s.logMood(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) moodHistory(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			days = parsed
		}
	}

	history, err := s.moods.History(r.Context(), userID(r), days, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries := make([]map[string]any, 0, len(history.Entries))
	for _, e := range history.Entries {
		entries = append(entries, moodJSON(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"average": history.Average,
		"count":   history.Count,
	})
}

func (s *Server) logMood(w http.ResponseWriter, r *http.Request) {
	var req moodRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Score == nil {
		writeError(w, r, &core.ValidationError{Field: "score", Reason: "is required"})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, r, &core.ValidationError{Field: "date", Reason: "is not a valid date"})
		return
	}

	entry, err := s.moods.Log(r.Context(), core.MoodEntry{
		UserID:           userID(r),
		Date:             date,
		Score:            *req.Score,
		EmotionalInsight: req.EmotionalInsight,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboard(userID(r))
	writeJSON(w, http.StatusCreated, map[string]any{"entry": moodJSON(entry)})
}
