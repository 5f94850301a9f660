// Package http exposes the report pipeline as a JSON API with the
// hardening middleware the service runs behind in production: request
// IDs, rate limiting on writes, security headers and structured
// request logging.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finpulse/internal/cache"
	"finpulse/internal/core"
	"finpulse/internal/log"
	"finpulse/internal/report"
)

// ReportService is the inbound port the handlers drive.
type ReportService interface {
	Compute(ctx context.Context, req report.Request) (report.Report, error)
	CreateTransaction(ctx context.Context, tx core.Transaction) (string, error)
}

type Server struct {
	httpServer   *http.Server
	reports      ReportService
	rateLimiter  *rateLimiter
	cacheManager *cache.Manager
	logger       *log.Logger
	httpLog      *log.HTTPLogger
	shutdownOnce sync.Once
}

// ServerOption customizes a Server.
type ServerOption func(*Server)

// WithCacheManager ties cache cleanup lifecycle to the server shutdown.
func WithCacheManager(m *cache.Manager) ServerOption {
	return func(s *Server) { s.cacheManager = m }
}

// WithLogger overrides the default component logger.
func WithLogger(l *log.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

func NewServer(port string, reports ReportService, opts ...ServerOption) *Server {
	s := &Server{
		reports:     reports,
		rateLimiter: newRateLimiter(),
		logger:      log.New(log.Config{}).WithComponent(log.ComponentHTTP),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.httpLog = log.NewHTTPLogger(s.logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /api/series", s.handleSeries)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      s.withSecurityHeaders(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server and its background helpers.
// Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.Info("HTTP server shutting down")
		s.rateLimiter.stop()
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}

// newRequestID returns a random hex request identifier.
func newRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// withSecurityHeaders wraps every handler with request identification,
// rate limiting for writes, security headers and lifecycle logging.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := newRequestID()

		reqLogger := s.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), log.LoggerContextKey, reqLogger)
		r = r.WithContext(ctx)

		s.httpLog.LogStart(ctx, r, clientIP)

		// Reads are cheap and memoized; only writes are rate limited.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldComponent, log.ComponentRateLimit,
				log.FieldClientIP, clientIP)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Request-ID", requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.httpLog.LogEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) computeReport(w http.ResponseWriter, r *http.Request) (report.Report, bool) {
	req, err := parseReportRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return report.Report{}, false
	}

	rep, err := s.reports.Compute(r.Context(), req)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Report computation failed",
			log.FieldError, err.Error(),
			log.FieldOperation, log.OpCompute)
		writeError(w, http.StatusInternalServerError, "failed to compute report")
		return report.Report{}, false
	}
	return rep, true
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.computeReport(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, buildReport(rep))
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.computeReport(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, seriesResponse{
		Window: buildWindow(rep.Window),
		Series: buildSeries(rep.Series),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.computeReport(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, categoriesResponse{
		Window:     buildWindow(rep.Window),
		Categories: buildCategories(rep.Categories),
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := parseTransactionBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ref, err := s.reports.CreateTransaction(r.Context(), tx)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction write failed",
			log.FieldError, err.Error(),
			log.FieldOperation, log.OpCreate)
		writeError(w, http.StatusInternalServerError, "failed to store transaction")
		return
	}

	writeJSON(w, http.StatusCreated, transactionCreatedResponse{Ref: ref})
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidType) ||
		errors.Is(err, core.ErrInvalidClass) ||
		errors.Is(err, core.ErrMissingDate) ||
		errors.Is(err, core.ErrMissingCategory)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, http.StatusServiceUnavailable, "report service not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
