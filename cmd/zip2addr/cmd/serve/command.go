// Package serve provides the serve command: the HTTP lookup API.
package serve

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zip2addr/zip2addr/cmd/application"
	"github.com/zip2addr/zip2addr/internal/cmd/cmdutil"
	"github.com/zip2addr/zip2addr/internal/server"
	"github.com/zip2addr/zip2addr/pkg/constants"
	"github.com/zip2addr/zip2addr/pkg/errors"
)

// NewCommand creates the serve command.
func NewCommand(app application.Application) *cobra.Command {
	defaults := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "core",
		Short:   "Serve the zip code lookup API",
		Long: `Start the REST API over the store.

Endpoints (prefix defaults to /api/v1):
  GET /health
  GET {prefix}/ping
  GET {prefix}/zipcodes?skip=&limit=
  GET {prefix}/zipcodes/{zipcode}
  GET {prefix}/zipcodes/partial/{prefix}?skip=&limit=

The store is opened read-only. Responses are cached in memory for
--cache-ttl.`,
		Example: `  # Serve ./zipcodes.db on localhost:8080
  zip2addr serve

  # Public bind with CORS and rate limiting
  zip2addr serve --host 0.0.0.0 --port 8000 --cors --rate-limit 120 --db /srv/zipcodes.db

  # Behind a local reverse proxy
  zip2addr serve --rate-limit 120 --trusted-proxies 127.0.0.1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := parseConfig(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), app, cfg)
		},
	}

	cmd.Flags().StringP("port", "p", strconv.Itoa(defaults.Port), "Server port")
	cmd.Flags().String("host", defaults.Host, "Bind address")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")
	cmd.Flags().String(cmdutil.FlagDB, "", "Store path (default: configured db_path)")

	cmd.Flags().Bool("cors", false, "Enable CORS for all origins")
	cmd.Flags().StringSlice("cors-origins", []string{}, "Allowed CORS origins (comma-separated, implies --cors)")

	cmd.Flags().Int("rate-limit", defaults.RateLimit, "Requests per minute per IP (0 to disable)")
	cmd.Flags().StringSlice("trusted-proxies", []string{}, "Proxy IPs or CIDRs whose X-Forwarded-For is used for rate limiting")
	cmd.Flags().Duration("cache-ttl", defaults.CacheTTL, "Response cache TTL (0 to disable)")

	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")

	return cmd
}

// parseConfig builds the server config from flags, then HTTP_HOST and
// HTTP_PORT when set.
func parseConfig(cmd *cobra.Command) (server.Config, error) {
	f := cmd.Flags()
	cfg := server.DefaultConfig()

	portStr, _ := f.GetString("port")
	cfg.Host, _ = f.GetString("host")
	cfg.PathPrefix, _ = f.GetString("prefix")
	cfg.DBPath, _ = f.GetString(cmdutil.FlagDB)
	cfg.CORSEnabled, _ = f.GetBool("cors")
	cfg.CORSOrigins, _ = f.GetStringSlice("cors-origins")
	cfg.RateLimit, _ = f.GetInt("rate-limit")
	cfg.TrustedProxies, _ = f.GetStringSlice("trusted-proxies")
	cfg.CacheTTL, _ = f.GetDuration("cache-ttl")
	cfg.ReadTimeout, _ = f.GetDuration("read-timeout")
	cfg.WriteTimeout, _ = f.GetDuration("write-timeout")
	cfg.IdleTimeout, _ = f.GetDuration("idle-timeout")

	if len(cfg.CORSOrigins) > 0 {
		cfg.CORSEnabled = true
	}

	if envHost := os.Getenv("HTTP_HOST"); envHost != "" && !f.Changed("host") {
		cfg.Host = envHost
	}
	if envPort := os.Getenv("HTTP_PORT"); envPort != "" && !f.Changed("port") {
		portStr = envPort
	}

	port, err := parsePort(portStr)
	if err != nil {
		return cfg, err
	}
	cfg.Port = port

	if cfg.RateLimit < 0 {
		return cfg, errors.NewValidationError("rate-limit", cfg.RateLimit, "must not be negative")
	}
	return cfg, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || port < 0 || port > 65535 {
		return 0, errors.NewValidationError("port", s, "must be a number between 0 and 65535")
	}
	return port, nil
}

// run serves until ctx is cancelled, then drains connections.
func run(ctx context.Context, app application.Application, cfg server.Config) error {
	logger := app.Logger()

	srv, err := server.New(ctx, app, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return errors.WrapIO("listen", httpServer.Addr, err)
	}

	logger.Info().
		Str("addr", ln.Addr().String()).
		Str("prefix", cfg.PathPrefix).
		Bool("cors", cfg.CORSEnabled).
		Int("rate_limit", cfg.RateLimit).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Starting API server")

	return serveWithGracefulShutdown(ctx, httpServer, ln, logger)
}

// serveWithGracefulShutdown serves on ln until ctx is done or the server
// fails. Shutdown waits up to constants.ShutdownTimeout for open requests.
func serveWithGracefulShutdown(ctx context.Context, httpServer *http.Server, ln net.Listener, logger *zerolog.Logger) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()

		start := time.Now()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Dur("took", time.Since(start)).Msg("Server stopped gracefully")
		return nil
	}
}
