package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
)

type salaryRequest struct {
	Month   string   `json:"month"`
	Amount  *float64 `json:"amount"`
	ModelID string   `json:"modelId"`
}

type salaryInfoRequest struct {
	MonthlyAmount *float64 `json:"monthlyAmount"`
}

func salaryJSON(s core.Salary) map[string]any {
	return map[string]any{
		"id":        s.ID,
		"month":     s.Month,
		"amount":    s.Amount,
		"modelId":   s.ModelID,
		"createdAt": s.CreatedAt.Format(timeFormat),
		"updatedAt": s.UpdatedAt.Format(timeFormat),
	}
}

// handleSalaries serves GET and POST /api/salaries.
func (s *Server) handleSalaries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		salaries, err := s.salaries.List(r.Context(), userID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		items := make([]map[string]any, 0, len(salaries))
		for _, sal := range salaries {
			items = append(items, salaryJSON(sal))
		}
		writeJSON(w, http.StatusOK, map[string]any{"salaries": items, "count": len(items)})

	case http.MethodPost:
		var req salaryRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.Amount == nil {
			writeError(w, r, &core.ValidationError{Field: "amount", Reason: "is required"})
			return
		}
		salary, err := s.salaries.Upsert(r.Context(), core.Salary{
			UserID:  userID(r),
			Month:   req.Month,
			Amount:  *req.Amount,
			ModelID: req.ModelID,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"salary": salaryJSON(salary)})

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

// handleLatestSalary serves GET /api/salaries/latest. A user with no salary
// records gets a null body, not a 404.
func (s *Server) handleLatestSalary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	salary, err := s.salaries.Latest(r.Context(), userID(r))
	if errors.Is(err, core.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]any{"salary": nil})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"salary": salaryJSON(salary)})
}

// handleSalaryInfo serves POST /api/user/salary-info.
func (s *Server) handleSalaryInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req salaryInfoRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.MonthlyAmount == nil {
		writeError(w, r, &core.ValidationError{Field: "monthlyAmount", Reason: "is required"})
		return
	}

	info, err := s.salaries.SetInfo(r.Context(), core.SalaryInfo{
		UserID:        userID(r),
		MonthlyAmount: *req.MonthlyAmount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboard(userID(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"salaryInfo": map[string]any{
			"monthlyAmount": info.MonthlyAmount,
			"updatedAt":     info.UpdatedAt.Format(timeFormat),
		},
	})
}
