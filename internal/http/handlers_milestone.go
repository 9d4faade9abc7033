package http

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type milestoneRequest struct {
	Title                 *string          `json:"title"`
	Description           *string          `json:"description"`
	TargetAmount          *float64         `json:"targetAmount"`
	CurrentAmount         *float64         `json:"currentAmount"`
	StartDate             *string          `json:"startDate"`
	TargetDate            *string          `json:"targetDate"`
	Category              *string          `json:"category"`
	Status                *string          `json:"status"`
	SalarySnapshot        json.RawMessage  `json:"salarySnapshot"`
	ModelSnapshot         json.RawMessage  `json:"modelSnapshot"`
	Plan                  json.RawMessage  `json:"plan"`
	CelebrationsHalfShown *bool            `json:"celebrationsHalfShown"`
	CelebrationsDoneShown *bool            `json:"celebrationsDoneShown"`
}

type contributionRequest struct {
	MonthKey string   `json:"monthKey"`
	Amount   *float64 `json:"amount"`
}

func milestoneJSON(m core.Milestone) map[string]any {
	out := map[string]any{
		"id":                    m.ID,
		"title":                 m.Title,
		"description":           m.Description,
		"targetAmount":          m.TargetAmount,
		"currentAmount":         m.CurrentAmount,
		"category":              m.Category,
		"status":                m.Status,
		"celebrationsHalfShown": m.CelebrationsHalfShown,
		"celebrationsDoneShown": m.CelebrationsDoneShown,
		"createdAt":             m.CreatedAt.Format(timeFormat),
		"updatedAt":             m.UpdatedAt.Format(timeFormat),
	}
	if !m.StartDate.IsZero() {
		out["startDate"] = m.StartDate.Format(timeFormat)
	}
	if !m.TargetDate.IsZero() {
		out["targetDate"] = m.TargetDate.Format(timeFormat)
	}
	if len(m.SalarySnapshot) > 0 {
		out["salarySnapshot"] = m.SalarySnapshot
	}
	if len(m.ModelSnapshot) > 0 {
		out["modelSnapshot"] = m.ModelSnapshot
	}
	if len(m.Plan) > 0 {
		out["plan"] = m.Plan
	}
	return out
}

func contributionJSON(c core.Contribution) map[string]any {
	return map[string]any{
		"id":          c.ID,
		"milestoneId": c.MilestoneID,
		"monthKey":    c.MonthKey,
		"amount":      c.Amount,
		"createdAt":   c.CreatedAt.Format(timeFormat),
		"updatedAt":   c.UpdatedAt.Format(timeFormat),
	}
}

// handleMilestones serves GET and POST /api/milestones.
func (s *Server) handleMilestones(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listMilestones(w, r)
	case http.MethodPost:
		s.createMilestone(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listMilestones(w http.ResponseWriter, r *http.Request) {
	milestones, err := s.milestones.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]map[string]any, 0, len(milestones))
	for _, m := range milestones {
		item := milestoneJSON(m.Milestone)
		item["totalExpenses"] = m.TotalExpenses
		item["totalContributions"] = m.TotalContributions
		item["expenseCount"] = m.ExpenseCount
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{"milestones": items})
}

func (s *Server) createMilestone(w http.ResponseWriter, r *http.Request) {
	var req milestoneRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	milestone := core.Milestone{
		UserID:         userID(r),
		SalarySnapshot: req.SalarySnapshot,
		ModelSnapshot:  req.ModelSnapshot,
		Plan:           req.Plan,
	}
	if req.Title != nil {
		milestone.Title = *req.Title
	}
	if req.Description != nil {
		milestone.Description = *req.Description
	}
	if req.TargetAmount != nil {
		milestone.TargetAmount = *req.TargetAmount
	}
	if req.CurrentAmount != nil {
		// Allowed only here: with no contributions yet the field is not
		// derived from anything.
		milestone.CurrentAmount = *req.CurrentAmount
	}
	if req.Category != nil {
		milestone.Category = *req.Category
	}
	if req.Status != nil {
		milestone.Status = *req.Status
	}
	if req.CelebrationsHalfShown != nil {
		milestone.CelebrationsHalfShown = *req.CelebrationsHalfShown
	}
	if req.CelebrationsDoneShown != nil {
		milestone.CelebrationsDoneShown = *req.CelebrationsDoneShown
	}
	if req.StartDate != nil {
		t, err := parseDate(*req.StartDate)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "startDate", Reason: "is not a valid date"})
			return
		}
		milestone.StartDate = t
	}
	if req.TargetDate != nil {
		t, err := parseDate(*req.TargetDate)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "targetDate", Reason: "is not a valid date"})
			return
		}
		milestone.TargetDate = t
	}

	created, err := s.milestones.Create(r.Context(), milestone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboard(milestone.UserID)
	writeJSON(w, http.StatusCreated, map[string]any{"milestone": milestoneJSON(created)})
}

// handleMilestoneSubpath serves /api/milestones/{id} and
// /api/milestones/{id}/contributions.
func (s *Server) handleMilestoneSubpath(w http.ResponseWriter, r *http.Request) {
	parts := pathSuffix(r, "/api/milestones/")
	switch {
	case len(parts) == 1:
		s.handleMilestoneByID(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "contributions":
		s.handleContributions(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleMilestoneByID(w http.ResponseWriter, r *http.Request, id string) {
	uid := userID(r)

	switch r.Method {
	case http.MethodGet:
		detail, err := s.milestones.Get(r.Context(), uid, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		item := milestoneJSON(detail.Milestone)
		item["totalExpenses"] = detail.TotalExpenses
		expenses := make([]map[string]any, 0, len(detail.Expenses))
		for _, e := range detail.Expenses {
			expenses = append(expenses, expenseJSON(e))
		}
		item["expenses"] = expenses
		writeJSON(w, http.StatusOK, map[string]any{"milestone": item})

	case http.MethodPut:
		var req milestoneRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		update := services.MilestoneUpdate{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			Status:      req.Status,
		}
		if req.TargetDate != nil {
			t, err := parseDate(*req.TargetDate)
			if err != nil {
				writeError(w, r, &core.ValidationError{Field: "targetDate", Reason: "is not a valid date"})
				return
			}
			update.TargetDate = &t
		}
		updated, err := s.milestones.Update(r.Context(), uid, id, update)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateDashboard(uid)
		writeJSON(w, http.StatusOK, map[string]any{"milestone": milestoneJSON(updated)})

	case http.MethodDelete:
		if err := s.milestones.Delete(r.Context(), uid, id); err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateDashboard(uid)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Milestone deleted successfully"})

	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}

func (s *Server) handleContributions(w http.ResponseWriter, r *http.Request, milestoneID string) {
	uid := userID(r)

	switch r.Method {
	case http.MethodGet:
		contributions, err := s.contributions.List(r.Context(), uid, milestoneID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		items := make([]map[string]any, 0, len(contributions))
		for _, c := range contributions {
			items = append(items, contributionJSON(c))
		}
		writeJSON(w, http.StatusOK, map[string]any{"contributions": items})

	case http.MethodPost:
		var req contributionRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.Amount == nil {
			writeError(w, r, &core.ValidationError{Field: "amount", Reason: "is required"})
			return
		}
		contribution, err := s.contributions.Upsert(r.Context(), uid, milestoneID, req.MonthKey, *req.Amount)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateDashboard(uid)
		writeJSON(w, http.StatusOK, map[string]any{"contribution": contributionJSON(contribution)})

	default:
		methodNotAllowed(w, "GET, POST")
	}
}
