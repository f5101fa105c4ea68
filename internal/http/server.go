// Package http exposes the JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"dime/internal/auth"
	"dime/internal/log"
	"dime/internal/middleware/ratelimit"
	"dime/internal/middleware/security"
	"dime/internal/middleware/trace"
	"dime/internal/services"
	"dime/internal/storage"
)

// Deps carries everything the server needs. All fields are required except
// where noted on the handler using them.
type Deps struct {
	Store        *storage.Repository
	Transactions *services.TransactionService
	Dashboard    *services.DashboardService
	JWT          *auth.JWT
	Logger       *log.Logger
}

type Server struct {
	http.Server

	store        *storage.Repository
	transactions *services.TransactionService
	dashboard    *services.DashboardService
	jwt          *auth.JWT
	logger       *log.Logger

	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		store:        deps.Store,
		transactions: deps.Transactions,
		dashboard:    deps.Dashboard,
		jwt:          deps.JWT,
		logger:       deps.Logger.WithComponent(log.ComponentHTTP),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.Handle("GET /api/dashboard", s.requireAuth(s.handleDashboard))

	mux.Handle("POST /api/transactions", s.requireAuth(s.handleCreateTransaction))
	mux.Handle("GET /api/transactions", s.requireAuth(s.handleListTransactions))
	mux.Handle("GET /api/transactions/{id}", s.requireAuth(s.handleGetTransaction))
	mux.Handle("PUT /api/transactions/{id}", s.requireAuth(s.handleUpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", s.requireAuth(s.handleDeleteTransaction))

	mux.Handle("POST /api/categories", s.requireAuth(s.handleCreateCategory))
	mux.Handle("GET /api/categories", s.requireAuth(s.handleListCategories))
	mux.Handle("GET /api/categories/{id}", s.requireAuth(s.handleGetCategory))
	mux.Handle("PUT /api/categories/{id}", s.requireAuth(s.handleUpdateCategory))
	mux.Handle("DELETE /api/categories/{id}", s.requireAuth(s.handleDeleteCategory))

	mux.Handle("POST /api/recurring-payments", s.requireAuth(s.handleCreatePayment))
	mux.Handle("GET /api/recurring-payments", s.requireAuth(s.handleListPayments))
	mux.Handle("GET /api/recurring-payments/{id}", s.requireAuth(s.handleGetPayment))
	mux.Handle("PUT /api/recurring-payments/{id}", s.requireAuth(s.handleUpdatePayment))
	mux.Handle("DELETE /api/recurring-payments/{id}", s.requireAuth(s.handleDeletePayment))

	mux.Handle("POST /api/goals", s.requireAuth(s.handleCreateGoal))
	mux.Handle("GET /api/goals", s.requireAuth(s.handleListGoals))
	mux.Handle("GET /api/goals/{id}", s.requireAuth(s.handleGetGoal))
	mux.Handle("PUT /api/goals/{id}", s.requireAuth(s.handleUpdateGoal))
	mux.Handle("DELETE /api/goals/{id}", s.requireAuth(s.handleDeleteGoal))

	detector := security.NewDetector()
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(detector.ExtractClientIP, deps.Logger)
	limited := s.limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		errorJSON(w, http.StatusTooManyRequests, "rate limit exceeded")
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           headers.Middleware(tracer.Middleware(limited(mux))),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Shutdown stops the background cleanup goroutines and drains connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store == nil || s.store.DB().PingContext(r.Context()) != nil {
		errorJSON(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
