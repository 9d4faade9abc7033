// Package http is the JSON boundary over the core. It owns request parsing,
// identity extraction and the mapping of core error kinds to status codes;
// no domain decision lives here.
package http

import (
	"net/http"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/services"
)

type Server struct {
	http.Server

	dashboards    *services.DashboardComposer
	expenses      *services.ExpenseService
	milestones    *services.MilestoneService
	contributions *services.Reconciler
	moods         *services.MoodService
	salaries      *services.SalaryService
	savings       *services.SavingService

	auth *authenticator

	// Dashboard responses are cached per user for a short TTL and dropped
	// on any write by that user.
	dashCache *cache.LRUCache[services.Dashboard]
}

type Options struct {
	Addr              string
	JWTSecret         string
	DashboardCacheTTL time.Duration

	Dashboards    *services.DashboardComposer
	Expenses      *services.ExpenseService
	Milestones    *services.MilestoneService
	Contributions *services.Reconciler
	Moods         *services.MoodService
	Salaries      *services.SalaryService
	Savings       *services.SavingService
}

func NewServer(opts Options) *Server {
	s := &Server{
		dashboards:    opts.Dashboards,
		expenses:      opts.Expenses,
		milestones:    opts.Milestones,
		contributions: opts.Contributions,
		moods:         opts.Moods,
		salaries:      opts.Salaries,
		savings:       opts.Savings,
		auth:          newAuthenticator(opts.JWTSecret),
		dashCache:     cache.NewLRUCache[services.Dashboard](1024, opts.DashboardCacheTTL),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/dashboard/stats", s.handleDashboardStats)
	mux.HandleFunc("/api/expenses", s.handleExpenses)
	mux.HandleFunc("/api/expenses/", s.handleExpenseByID)
	mux.HandleFunc("/api/milestones", s.handleMilestones)
	mux.HandleFunc("/api/milestones/", s.handleMilestoneSubpath)
	mux.HandleFunc("/api/mood", s.handleMood)
	mux.HandleFunc("/api/salaries", s.handleSalaries)
	mux.HandleFunc("/api/salaries/latest", s.handleLatestSalary)
	mux.HandleFunc("/api/user/salary-info", s.handleSalaryInfo)
	mux.HandleFunc("/api/extra-savings", s.handleExtraSavings)
	mux.HandleFunc("/api/extra-savings/", s.handleExtraSavingByID)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.Addr = opts.Addr
	s.Handler = logRequests(s.auth.middleware(mux))
	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// invalidateDashboard drops the cached dashboard after any write for the
// user, so the next read rebuilds from the store.
func (s *Server) invalidateDashboard(userID string) {
	s.dashCache.Delete(userID)
}
