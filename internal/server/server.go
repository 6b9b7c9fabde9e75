package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/privacykit/cohortd/internal/classifier"
	"github.com/privacykit/cohortd/internal/cohort"
	"github.com/privacykit/cohortd/internal/config"
	"github.com/privacykit/cohortd/internal/db"
	"github.com/privacykit/cohortd/internal/metrics"
	"github.com/privacykit/cohortd/internal/taxonomy"
)

// Server is the cohortd HTTP server. It wires the taxonomy, classifier,
// cohort and metrics APIs onto a single chi router.
type Server struct {
	cfg        config.Config
	db         *db.DB
	taxonomy   *taxonomy.Manager
	classifier *classifier.Classifier
	cohorts    *cohort.Engine
	metrics    *metrics.Engine
	hub        *Hub
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies.
func New(cfg config.Config, database *db.DB, tax *taxonomy.Manager, cls *classifier.Classifier, cohorts *cohort.Engine, me *metrics.Engine) *Server {
	s := &Server{
		cfg:        cfg,
		db:         database,
		taxonomy:   tax,
		classifier: cls,
		cohorts:    cohorts,
		metrics:    me,
		hub:        NewHub(),
	}

	// Recorded events are fanned out to websocket subscribers.
	me.OnRecord = s.hub.Broadcast

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	taxonomy.RegisterRoutes(r, s.taxonomy)
	classifier.RegisterRoutes(r, s.classifier)
	cohort.RegisterRoutes(r, s.cohorts)
	metrics.RegisterRoutes(r, s.metrics)

	r.Get("/api/events/stream", s.hub.handleWebSocket)

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Database returns the database connection.
func (s *Server) Database() *db.DB { return s.db }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() config.Config { return s.cfg }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("cohortd server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
