package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minseo/saju-reporter/internal/batch"
)

// Runner executes one batch and reports progress to obs. The CLI wires the
// full orchestrator in; tests substitute a stub.
type Runner interface {
	Run(ctx context.Context, serviceID string, jobs []batch.CustomerJob, obs batch.Observer) (*batch.Summary, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, serviceID string, jobs []batch.CustomerJob, obs batch.Observer) (*batch.Summary, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, serviceID string, jobs []batch.CustomerJob, obs batch.Observer) (*batch.Summary, error) {
	return f(ctx, serviceID, jobs, obs)
}

// Config holds server configuration
type Config struct {
	Addr      string
	ServiceID string // default service when the upload names none
	UploadDir string // where uploaded batch files are spooled
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	runner     Runner
	registry   *runRegistry
	cfg        Config

	// baseCtx parents every batch run, so shutdown cancels in-flight runs
	// the same cooperative way the CLI's signal context does.
	baseCtx    context.Context
	cancelRuns context.CancelFunc
}

// New creates a new server instance
func New(cfg Config, runner Runner) (*Server, error) {
	if runner == nil {
		return nil, fmt.Errorf("batch runner is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = os.TempDir()
	}

	s := &Server{
		runner:   runner,
		registry: newRunRegistry(),
		cfg:      cfg,
	}
	s.baseCtx, s.cancelRuns = context.WithCancel(context.Background())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/batches", s.handleCreateBatch)
	mux.HandleFunc("GET /api/batches/{id}/events", s.handleBatchEvents)
	mux.HandleFunc("GET /api/batches/{id}/summary", s.handleBatchSummary)
	mux.HandleFunc("GET /api/batches/{id}/artifacts/{digest}", s.handleArtifact)
	mux.HandleFunc("GET /api/batches/{id}/archive", s.handleArchive)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 0, // SSE streams stay open for the whole batch
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler exposes the configured routes for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return err
	}

	log.Println("Server stopped")
	return nil
}

// Shutdown cancels in-flight batch runs and stops the listener. Runs are
// canceled cooperatively: customers already being processed finish, the
// rest are counted as canceled in the run summary.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancelRuns()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
