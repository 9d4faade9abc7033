package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type moodPoint struct {
	Date  string `json:"date"`
	Score int    `json:"score"`
}

type dashboardResponse struct {
	Milestones struct {
		Active    int `json:"active"`
		Completed int `json:"completed"`
		Total     int `json:"total"`
	} `json:"milestones"`
	Expenses struct {
		Total        float64            `json:"total"`
		CurrentMonth float64            `json:"currentMonth"`
		ByCategory   map[string]float64 `json:"byCategory"`
	} `json:"expenses"`
	Mood struct {
		Average   float64     `json:"average"`
		Last7Days []moodPoint `json:"last7Days"`
	} `json:"mood"`
	Salary *struct {
		Monthly   float64 `json:"monthly"`
		Remaining float64 `json:"remaining"`
	} `json:"salary"`
}

// handleDashboardStats serves GET /api/dashboard/stats.
func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	uid := userID(r)

	dashboard, ok := s.dashCache.Get(uid)
	if !ok {
		var err error
		dashboard, err = s.dashboards.Build(r.Context(), uid, time.Now())
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.dashCache.Set(uid, dashboard)
	}

	writeJSON(w, http.StatusOK, toDashboardResponse(dashboard))
}

func toDashboardResponse(d services.Dashboard) dashboardResponse {
	var resp dashboardResponse
	resp.Milestones.Active = d.Milestones.Active
	resp.Milestones.Completed = d.Milestones.Completed
	resp.Milestones.Total = d.Milestones.Total
	resp.Expenses.Total = d.Expenses.Total
	resp.Expenses.CurrentMonth = d.Expenses.CurrentMonth
	resp.Expenses.ByCategory = d.Expenses.ByCategory
	resp.Mood.Average = d.Mood.Average
	resp.Mood.Last7Days = make([]moodPoint, 0, len(d.Mood.Last7))
	for _, e := range d.Mood.Last7 {
		resp.Mood.Last7Days = append(resp.Mood.Last7Days, moodPoint{
			Date:  e.Date.Format("2006-01-02"),
			Score: e.Score,
		})
	}
	if d.Salary != nil {
		resp.Salary = &struct {
			Monthly   float64 `json:"monthly"`
			Remaining float64 `json:"remaining"`
		}{Monthly: d.Salary.Monthly, Remaining: d.Salary.Remaining}
	}
	return resp
}

func expenseJSON(e core.Expense) map[string]any {
	out := map[string]any{
		"id":          e.ID,
		"amount":      e.Amount,
		"description": e.Description,
		"date":        e.Date.Format(timeFormat),
		"category":    e.Category,
		"createdAt":   e.CreatedAt.Format(timeFormat),
	}
	if e.MilestoneID != "" {
		out["milestoneId"] = e.MilestoneID
	}
	return out
}

const timeFormat = "2006-01-02T15:04:05Z07:00"
