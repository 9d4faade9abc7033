package http

import (
	"net/http"

	"fintrack/internal/core"
)

type savingRequest struct {
	Amount *float64 `json:"amount"`
	Note   string   `json:"note"`
}

func savingJSON(s core.ExtraSaving) map[string]any {
	return map[string]any{
		"id":        s.ID,
		"amount":    s.Amount,
		"note":      s.Note,
		"createdAt": s.CreatedAt.Format(timeFormat),
	}
}

// handleExtraSavings serves GET and POST /api/extra-savings.
func (s *Server) handleExtraSavings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		savings, err := s.savings.List(r.Context(), userID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		items := make([]map[string]any, 0, len(savings))
		for _, sav := range savings {
			items = append(items, savingJSON(sav))
		}
		writeJSON(w, http.StatusOK, map[string]any{"extraSavings": items, "count": len(items)})

	case http.MethodPost:
		var req savingRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.Amount == nil {
			writeError(w, r, &core.ValidationError{Field: "amount", Reason: "is required"})
			return
		}
		saving, err := s.savings.Create(r.Context(), core.ExtraSaving{
			UserID: userID(r),
			Amount: *req.Amount,
			Note:   req.Note,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"extraSaving": savingJSON(saving)})

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

// handleExtraSavingByID serves DELETE /api/extra-savings/{id}.
func (s *Server) handleExtraSavingByID(w http.ResponseWriter, r *http.Request) {
	parts := pathSuffix(r, "/api/extra-savings/")
	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}

	if err := s.savings.Delete(r.Context(), userID(r), parts[0]); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Extra saving deleted successfully"})
}
