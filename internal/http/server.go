// Package http exposes the JSON API: transactions, budgets, goals and
// reports, all scoped to the authenticated user.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"bilancio/internal/auth"
	"bilancio/internal/services"
)

type ctxKey int

const userIDKey ctxKey = iota

// userID returns the authenticated user for the request, or "" when the
// middleware did not resolve one.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// Simple in-memory rate limiter for mutating requests.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes.
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

type Server struct {
	http.Server

	authProvider auth.Provider
	ledger       *services.LedgerService
	budgets      *services.BudgetService
	goals        *services.GoalService
	reports      *services.ReportService

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, provider auth.Provider, ledger *services.LedgerService, budgets *services.BudgetService, goals *services.GoalService, reports *services.ReportService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		authProvider: provider,
		ledger:       ledger,
		budgets:      budgets,
		goals:        goals,
		reports:      reports,
		rateLimiter:  newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/transactions", s.with(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.with(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/{id}", s.with(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.with(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.with(s.handleDeleteTransaction))
	mux.HandleFunc("GET /api/summary", s.with(s.handleSummary))
	mux.HandleFunc("GET /api/expenses/by-category", s.with(s.handleExpensesByCategory))

	mux.HandleFunc("GET /api/budgets/{yearMonth}", s.with(s.handleGetBudget))
	mux.HandleFunc("PUT /api/budgets/{yearMonth}", s.with(s.handleSaveBudget))
	mux.HandleFunc("DELETE /api/budgets/{yearMonth}", s.with(s.handleDeleteBudget))
	mux.HandleFunc("PUT /api/budgets/{yearMonth}/categories/{category}", s.with(s.handleSetBudgetCategory))
	mux.HandleFunc("DELETE /api/budgets/{yearMonth}/categories/{category}", s.with(s.handleRemoveBudgetCategory))
	mux.HandleFunc("GET /api/budgets/{yearMonth}/performance", s.with(s.handleBudgetPerformance))

	mux.HandleFunc("POST /api/goals", s.with(s.handleCreateGoal))
	mux.HandleFunc("GET /api/goals", s.with(s.handleListGoals))
	mux.HandleFunc("GET /api/goals/{id}", s.with(s.handleGetGoal))
	mux.HandleFunc("PUT /api/goals/{id}", s.with(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.with(s.handleDeleteGoal))
	mux.HandleFunc("PUT /api/goals/{id}/progress", s.with(s.handleSetGoalProgress))
	mux.HandleFunc("GET /api/goals/{id}/progress", s.with(s.handleGoalProgress))

	mux.HandleFunc("GET /api/reports", s.with(s.handleReports))
	mux.HandleFunc("GET /api/dashboard/{yearMonth}", s.with(s.handleDashboard))

	return s
}

// with adds request logging, rate limiting and bearer-token authentication.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := r.Context()

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		if id, ok := s.resolveUser(r); ok {
			ctx = context.WithValue(ctx, userIDKey, id)
		}
		r = r.WithContext(ctx)

		w.Header().Set("X-Content-Type-Options", "nosniff")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

// resolveUser extracts the bearer token and maps it to a user identity.
// Handlers receive an empty user on failure and answer 401 through the
// services' own precondition.
func (s *Server) resolveUser(r *http.Request) (string, bool) {
	if s.authProvider == nil {
		return "", false
	}
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	id, err := s.authProvider.ResolveUser(r.Context(), strings.TrimSpace(token))
	if err != nil {
		return "", false
	}
	return id, true
}

// Shutdown stops the rate limiter's cleanup goroutine along with the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
