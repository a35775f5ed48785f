package server

import (
	"time"

	"github.com/zip2addr/zip2addr/pkg/constants"
)

// Config holds server configuration.
type Config struct {
	Host string
	Port int

	// PathPrefix is prepended to every API route.
	PathPrefix string

	// DBPath is the store to serve. Empty means the configured db_path.
	DBPath string

	CORSEnabled bool
	CORSOrigins []string

	// RateLimit is requests per minute per client IP (0 to disable).
	RateLimit int
	// TrustedProxies are IPs or CIDR ranges whose X-Forwarded-For header
	// names the client for rate limiting. Empty means the remote address
	// is always the client.
	TrustedProxies []string
	// CacheTTL is how long query results are kept (0 to disable).
	CacheTTL time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         8080,
		PathPrefix:   "/api/v1",
		CORSOrigins:  []string{},
		RateLimit:    0,
		CacheTTL:     constants.CacheTTL,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
