// Package http exposes the ledger over a JSON API and serves the web UI
// through the offline asset cache.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Arpanmondalz/zen-spend/internal/backup"
	"github.com/Arpanmondalz/zen-spend/internal/cache"
	"github.com/Arpanmondalz/zen-spend/internal/log"
	"github.com/Arpanmondalz/zen-spend/internal/offline"
	"github.com/Arpanmondalz/zen-spend/internal/services"
)

type Server struct {
	http.Server

	ledger  *services.LedgerService
	backups *backup.Service
	assets  *offline.Controller
	logger  *log.Logger

	rateLimiter *rateLimiter

	// Memoized month overview; purged on every ledger mutation.
	overviewCache *cache.LRU[services.Overview]
	cleanup       *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, ledger *services.LedgerService, backups *backup.Service, assets *offline.Controller, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ledger:        ledger,
		backups:       backups,
		assets:        assets,
		logger:        logger.WithComponent(log.ComponentHTTP),
		rateLimiter:   newRateLimiter(),
		overviewCache: cache.NewLRU[services.Overview](16, 5*time.Minute),
		cleanup:       cache.NewManager(),
	}

	s.cleanup.Register(s.overviewCache)
	s.cleanup.StartCleanup(10 * time.Minute)

	// UI shell and assets go through the offline controller so the app
	// keeps working without a network connection.
	mux.Handle("GET /{$}", assets)
	mux.Handle("GET /static/", assets)
	mux.Handle("GET /vendor/", assets)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/overview", s.withMiddleware(s.handleOverview))
	mux.HandleFunc("GET /api/expenses", s.withMiddleware(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.withMiddleware(s.handleCreateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withMiddleware(s.handleDeleteExpense))
	mux.HandleFunc("GET /api/parking", s.withMiddleware(s.handleListParked))
	mux.HandleFunc("POST /api/parking", s.withMiddleware(s.handleParkItem))
	mux.HandleFunc("DELETE /api/parking/{id}", s.withMiddleware(s.handleDeleteParked))
	mux.HandleFunc("POST /api/parking/{id}/convert", s.withMiddleware(s.handleConvertParked))
	mux.HandleFunc("GET /api/budget", s.withMiddleware(s.handleGetBudget))
	mux.HandleFunc("PUT /api/budget", s.withMiddleware(s.handleSetBudget))
	mux.HandleFunc("GET /api/cost-per-use", s.withMiddleware(s.handleCostPerUse))
	mux.HandleFunc("GET /api/backup/export", s.withMiddleware(s.handleExport))
	mux.HandleFunc("POST /api/backup/import", s.withMiddleware(s.handleImport))
	mux.HandleFunc("POST /api/clear", s.withMiddleware(s.handleClear))

	return s
}

// Shutdown stops the cleanup goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cleanup.Stop()
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// invalidateOverview is called after every ledger mutation.
func (s *Server) invalidateOverview() {
	s.overviewCache.Purge()
}

// withMiddleware adds security headers, rate limiting on mutations, a
// request id, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := log.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			s.logger.Warn("Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			errorJSON(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports readiness once the offline cache can serve the app
// shell without the network.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	phase, generation := s.assets.Status()
	status := http.StatusOK
	if !s.assets.Ready() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"phase":      phase,
		"generation": generation,
	})
}
