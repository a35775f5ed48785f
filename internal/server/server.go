// Package server provides the HTTP API for zip code lookups.
package server

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zip2addr/zip2addr/cmd/application"
	"github.com/zip2addr/zip2addr/internal/server/cache"
	"github.com/zip2addr/zip2addr/internal/server/middleware"
	"github.com/zip2addr/zip2addr/pkg/constants"
	"github.com/zip2addr/zip2addr/pkg/store"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	app       application.Application
	store     store.ReadCloser
	cache     *cache.Cache
	limiter   *middleware.RateLimiter
	logger    *zerolog.Logger
	config    Config
	startTime time.Time
	closeOnce sync.Once
}

// New opens the store read-only and creates a server for it.
func New(ctx context.Context, app application.Application, cfg Config) (*Server, error) {
	logger := app.Logger()

	cfg.PathPrefix = normalizePrefix(cfg.PathPrefix)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit, logger)
		if err := limiter.TrustProxies(cfg.TrustedProxies...); err != nil {
			return nil, err
		}
	}

	reader, err := app.Store(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("db", cfg.DBPath).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Server instance created")

	return &Server{
		app:       app,
		store:     reader,
		cache:     cache.New(cfg.CacheTTL, constants.CacheCleanupInterval),
		limiter:   limiter,
		logger:    logger,
		config:    cfg,
		startTime: time.Now(),
	}, nil
}

// normalizePrefix returns prefix with one leading slash and no trailing
// slash. "" and "/" mount the API at the root.
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return "/" + prefix
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown releases the store. It is safe to call more than once.
func (s *Server) Shutdown(_ context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		s.logger.Info().Msg("Closing store")
		err = s.store.Close()
	})
	return err
}

// Cache returns the server's cache instance.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
