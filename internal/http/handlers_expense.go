package http

import (
	"bytes"
	"encoding/json"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

type expenseRequest struct {
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
	Category    *string  `json:"category"`
	// Raw so an explicit null (clear the link) can be told apart from an
	// absent field (leave it alone).
	MilestoneID json.RawMessage `json:"milestoneId"`
}

// milestoneID resolves the three states of the milestoneId field: absent
// returns nil, null returns a pointer to "" (clear), a string returns a
// pointer to its value.
func (req expenseRequest) milestoneID() (*string, error) {
	if len(req.MilestoneID) == 0 {
		return nil, nil
	}
	if bytes.Equal(req.MilestoneID, []byte("null")) {
		cleared := ""
		return &cleared, nil
	}
	var id string
	if err := json.Unmarshal(req.MilestoneID, &id); err != nil {
		return nil, &core.ValidationError{Field: "milestoneId", Reason: "must be a string or null"}
	}
	return &id, nil
}

// handleExpenses serves GET and POST /api/expenses.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listExpenses(w, r)
	case http.MethodPost:
		s.createExpense(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ExpenseFilter{
		UserID:      userID(r),
		MilestoneID: q.Get("milestoneId"),
		Category:    q.Get("category"),
	}
	if v := q.Get("startDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "startDate", Reason: "is not a valid date"})
			return
		}
		filter.From = t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "endDate", Reason: "is not a valid date"})
			return
		}
		filter.To = t
	}

	expenses, total, err := s.expenses.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]map[string]any, 0, len(expenses))
	for _, e := range expenses {
		items = append(items, expenseJSON(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"expenses": items,
		"total":    total,
		"count":    len(expenses),
	})
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Amount == nil {
		writeError(w, r, &core.ValidationError{Field: "amount", Reason: "is required"})
		return
	}
	if req.Date == nil {
		writeError(w, r, &core.ValidationError{Field: "date", Reason: "is required"})
		return
	}
	date, err := parseDate(*req.Date)
	if err != nil {
		writeError(w, r, &core.ValidationError{Field: "date", Reason: "is not a valid date"})
		return
	}

	expense := core.Expense{
		UserID: userID(r),
		Amount: *req.Amount,
		Date:   date,
	}
	if req.Description != nil {
		expense.Description = *req.Description
	}
	if req.Category != nil {
		expense.Category = *req.Category
	}
	milestoneID, err := req.milestoneID()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if milestoneID != nil {
		expense.MilestoneID = *milestoneID
	}

	created, err := s.expenses.Create(r.Context(), expense)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboard(expense.UserID)
	writeJSON(w, http.StatusCreated, map[string]any{"expense": expenseJSON(created)})
}

// handleExpenseByID serves GET, PUT and DELETE /api/expenses/{id}.
func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	parts := pathSuffix(r, "/api/expenses/")
	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}
	id := parts[0]
	uid := userID(r)

	switch r.Method {
	case http.MethodGet:
		expense, err := s.expenses.Get(r.Context(), uid, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"expense": expenseJSON(expense)})

	case http.MethodPut:
		var req expenseRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		milestoneID, err := req.milestoneID()
		if err != nil {
			writeError(w, r, err)
			return
		}
		update := services.ExpenseUpdate{
			Amount:      req.Amount,
			Description: req.Description,
			Category:    req.Category,
			MilestoneID: milestoneID,
		}
		if req.Date != nil {
			date, err := parseDate(*req.Date)
			if err != nil {
				writeError(w, r, &core.ValidationError{Field: "date", Reason: "is not a valid date"})
				return
			}
			update.Date = &date
		}
		updated, err := s.expenses.Update(r.Context(), uid, id, update)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateDashboard(uid)
		writeJSON(w, http.StatusOK, map[string]any{"expense": expenseJSON(updated)})

	case http.MethodDelete:
		if err := s.expenses.Delete(r.Context(), uid, id); err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateDashboard(uid)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})

	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}
