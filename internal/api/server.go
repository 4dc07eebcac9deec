package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/dgallion1/boletoscan/internal/config"
	"github.com/dgallion1/boletoscan/internal/pipeline"
	"github.com/dgallion1/boletoscan/internal/resident"
)

// Roster is the resident roster as seen by the API.
type Roster interface {
	Residents(ctx context.Context) ([]resident.Resident, error)
	Refresh(ctx context.Context) error
	Info() resident.CacheInfo
}

// Server is the HTTP API server for boletoscan.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	roster       Roster
	gatherer     prometheus.Gatherer
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, roster Roster, gatherer prometheus.Gatherer, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		roster:       roster,
		gatherer:     gatherer,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}).Handler)

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Group(func(r chi.Router) {
			r.Use(RateLimit(rate.NewLimiter(rate.Limit(s.cfg.RateLimitRPS), s.cfg.RateLimitBurst)))
			r.Post("/api/boletos", s.handleProcess)
			r.Post("/api/boletos/text", s.handleProcessText)
			r.Post("/api/boletos/batch", s.handleBatch)
		})

		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/residents", s.handleListResidents)
		r.Post("/api/residents/refresh", s.handleRefreshResidents)
		r.Get("/api/stats/extraction", s.handleExtractionStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
