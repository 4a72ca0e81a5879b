// Package server provides the HTTP server and routing for the dividend
// service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/broadcast777/my-dividend-app/internal/config"
	"github.com/broadcast777/my-dividend-app/internal/database"
	"github.com/broadcast777/my-dividend-app/internal/modules/calendar"
	"github.com/broadcast777/my-dividend-app/internal/modules/exposure"
	"github.com/broadcast777/my-dividend-app/internal/modules/portfolio"
	"github.com/broadcast777/my-dividend-app/internal/modules/recommendation"
	"github.com/broadcast777/my-dividend-app/internal/modules/simulation"
	"github.com/broadcast777/my-dividend-app/internal/modules/universe"
)

// Config holds server configuration
type Config struct {
	Log        zerolog.Logger
	Cfg        *config.Config
	UniverseDB *database.DB
	CacheDB    *database.DB

	UniverseHandler       *universe.Handler
	ExposureHandler       *exposure.Handler
	RecommendationHandler *recommendation.Handler
	SimulationHandler     *simulation.Handler
	PortfolioHandler      *portfolio.Handler
	CalendarHandler       *calendar.Handler
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    Config

	systemHandlers *SystemHandlers
	streamHandler  *StreamHandler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.Cfg.DataDir,
			cfg.UniverseDB, cfg.CacheDB),
		streamHandler: NewStreamHandler(cfg.UniverseHandler.Hub(), cfg.Log),
	}

	s.setupMiddleware(cfg.Cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/system/stats", s.systemHandlers.HandleStats)

		r.Route("/securities", func(r chi.Router) {
			u := s.cfg.UniverseHandler
			r.Get("/", u.HandleList)
			r.Post("/refresh", u.HandleRefresh)
			r.Post("/refresh/stop", u.HandleStopRefresh)
			r.Get("/refresh/stream", s.streamHandler.HandleStream)
			r.Post("/{code}/lock", u.HandleLock)
			r.Post("/{code}/unlock", u.HandleUnlock)
			r.Post("/{code}/dividends", u.HandleAppendDividend)
		})

		r.Post("/exposure", s.cfg.ExposureHandler.HandleCompute)

		r.Route("/recommendations", func(r chi.Router) {
			r.Post("/", s.cfg.RecommendationHandler.HandleRecommend)
			r.Get("/{id}", s.cfg.RecommendationHandler.HandleGet)
		})

		r.Route("/simulation", func(r chi.Router) {
			r.Post("/projection", s.cfg.SimulationHandler.HandleProjection)
			r.Post("/goal", s.cfg.SimulationHandler.HandleGoal)
		})

		r.Post("/portfolio/roadmap", s.cfg.PortfolioHandler.HandleRoadmap)

		r.Route("/calendar", func(r chi.Router) {
			r.Get("/ics", s.cfg.CalendarHandler.HandleICS)
			r.Get("/google", s.cfg.CalendarHandler.HandleGoogleLink)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
