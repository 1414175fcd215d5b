// Package server provides the HTTP REST API for the curriculum builder.
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

	"github.com/jordan/curriculum-builder/internal/config"
	"github.com/jordan/curriculum-builder/internal/db"
	"github.com/jordan/curriculum-builder/internal/digest"
	"github.com/jordan/curriculum-builder/internal/embedding"
	"github.com/jordan/curriculum-builder/internal/job"
	"github.com/jordan/curriculum-builder/internal/llm"
	"github.com/jordan/curriculum-builder/internal/synthesis"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	controller *job.Controller
	database   *db.DB
}

// New creates a new server instance. The database is optional: without
// DATABASE_URL the server runs entirely in memory and jobs do not
// survive a restart.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	s := &Server{}

	var store job.Store
	var persist job.Persister
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		s.database = database
		store = db.NewJobStore(database)
		persist = database
	} else {
		store = job.NewMemoryStore()
	}

	embedder, err := embedding.NewProvider(ctx, cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}

	digester, err := digest.NewService(ctx, cfg.Digestion)
	if err != nil {
		return nil, fmt.Errorf("failed to create digestion service: %w", err)
	}

	var client llm.Client
	if cfg.GenerationBackend != "stub" && cfg.Generation.Configured() {
		client, err = llm.NewClient(ctx, cfg.GenerationBackend, cfg.Generation)
		if err != nil {
			return nil, fmt.Errorf("failed to create generation client: %w", err)
		}
	}
	engine := synthesis.NewEngine(client)

	s.controller = job.NewController(store, embedder, digester, engine, persist)

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("POST /programs/{program_id}/generate", s.handleGenerate)
	mux.HandleFunc("GET /programs/{program_id}/generation-status", s.handleGenerationStatus)
	mux.HandleFunc("GET /programs/{program_id}/generation-status/stream", s.handleGenerationStream)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for SSE streams
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
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

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.database != nil {
		s.database.Close()
	}
	log.Println("Server stopped")
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

// withLogging logs each request
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if s.database != nil {
		if err := s.database.Ping(r.Context()); err != nil {
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
		status["database"] = "ok"
	}
	s.jsonResponse(w, http.StatusOK, status)
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
