package server

import (
	"net/http"

	"github.com/zip2addr/zip2addr/internal/server/handlers"
	"github.com/zip2addr/zip2addr/internal/server/middleware"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(s.app, s.store, s.cache, s.logger, s.config.PathPrefix, s.startTime)
	s.registerRoutes(mux, h)

	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	// Avoid 404 noise in the request log.
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /{$}", h.HandleUsage)
	mux.HandleFunc("GET /health", h.HandleHealth)
	if prefix != "" {
		mux.HandleFunc("GET "+prefix+"/health", h.HandleHealth)
	}
	mux.HandleFunc("GET "+prefix+"/ping", h.HandlePing)

	mux.HandleFunc("GET "+prefix+"/zipcodes", h.HandleListZipcodes)
	mux.HandleFunc("GET "+prefix+"/zipcodes/{zipcode}", h.HandleGetZipcode)
	mux.HandleFunc("GET "+prefix+"/zipcodes/partial/{prefix}", h.HandlePartialZipcodes)

	// Trailing-slash form used by existing clients.
	mux.HandleFunc("GET "+prefix+"/ping/{$}", h.HandlePing)

	// Anything else gets the JSON envelope instead of the mux's plain-text
	// 404/405.
	mux.HandleFunc("/", h.HandleNotFound)
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	if s.limiter != nil {
		handler = middleware.RateLimit(s.limiter)(handler)
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		corsConfig.AllowedOrigins = cfg.CORSOrigins
		handler = middleware.CORS(corsConfig)(handler)
	}

	// Logging and recovery (always enabled)
	return middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
	)(handler)
}
