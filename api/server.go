// Package api provides the HTTP REST API server for loanlens.
//
// It exposes endpoints for contract extraction, full financial analysis,
// amortization schedules, rendered reports, rate sensitivity and prepayment
// simulation.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/seenimoa/loanlens/internal/analysis"
	"github.com/seenimoa/loanlens/internal/config"
	"github.com/seenimoa/loanlens/internal/refdata"
)

// maxBodyBytes bounds request bodies; contracts are plain text.
const maxBodyBytes = 4 << 20

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	analyzer *analysis.Analyzer
	tables   *refdata.Tables
	logger   *zap.Logger
	version  string
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, analyzer *analysis.Analyzer, tables *refdata.Tables, logger *zap.Logger, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if analyzer == nil {
		analyzer = analysis.New(nil, nil, analysis.Options{}, logger)
	}
	if version == "" {
		version = "dev"
	}
	srv := &Server{
		cfg:      cfg,
		analyzer: analyzer,
		tables:   tables,
		logger:   logger,
		version:  version,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and shuts it down gracefully on
// SIGINT, SIGTERM or when ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanupCtx, cancelCleanup := context.WithCancel(ctx)
	defer cancelCleanup()
	go s.analyzer.Cache().RunCleanup(cleanupCtx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api: listening", zap.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	s.logger.Info("api: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	origins := []string{"*"}
	if s.cfg != nil && len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Contract pipeline
		r.Post("/extract", s.handleExtract)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/schedule", s.handleSchedule)
		r.Post("/report", s.handleReport)

		// On-demand analyses
		r.Post("/sensitivity", s.handleSensitivity)
		r.Post("/prepayment", s.handlePrepayment)

		// Reference data & configuration
		r.Get("/refdata", s.handleRefData)
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/files", s.handleGetConfigFiles)
	})

	return r
}

// writeJSON encodes v as the response body with status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("api: failed to write JSON response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// decode reads a JSON request body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
