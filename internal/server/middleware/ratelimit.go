package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/zip2addr/zip2addr/internal/server/response"
	"github.com/zip2addr/zip2addr/pkg/errors"
)

// RateLimiter counts requests per client in fixed windows. Counters live in
// a go-cache whose expiry equals the window, so an idle client's counter
// disappears on its own.
//
// Clients are keyed by remote address. X-Forwarded-For is only read when the
// request arrives from a trusted proxy.
type RateLimiter struct {
	counters *gocache.Cache
	limit    int
	window   time.Duration
	logger   *zerolog.Logger
	trusted  []netip.Prefix
}

// NewRateLimiter creates a limiter allowing limit requests per minute per client.
func NewRateLimiter(limit int, logger *zerolog.Logger) *RateLimiter {
	return NewRateLimiterWindow(limit, time.Minute, logger)
}

// NewRateLimiterWindow creates a limiter with a custom window.
func NewRateLimiterWindow(limit int, window time.Duration, logger *zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		counters: gocache.New(window, 2*window),
		limit:    limit,
		window:   window,
		logger:   logger,
	}
}

// TrustProxies sets the proxies whose X-Forwarded-For header is believed.
// Entries are IP addresses or CIDR ranges.
func (rl *RateLimiter) TrustProxies(proxies ...string) error {
	trusted := make([]netip.Prefix, 0, len(proxies))
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.Contains(p, "/") {
			prefix, err := netip.ParsePrefix(p)
			if err != nil {
				return errors.NewValidationError("trusted-proxies", p, "not an IP address or CIDR range")
			}
			trusted = append(trusted, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(p)
		if err != nil {
			return errors.NewValidationError("trusted-proxies", p, "not an IP address or CIDR range")
		}
		addr = addr.Unmap()
		trusted = append(trusted, netip.PrefixFrom(addr, addr.BitLen()))
	}
	rl.trusted = trusted
	return nil
}

// Allow records a request for client and reports whether it is within the limit.
func (rl *RateLimiter) Allow(client string) bool {
	// Add only succeeds for the first request of a window.
	if err := rl.counters.Add(client, 1, rl.window); err == nil {
		return rl.limit > 0
	}
	n, err := rl.counters.IncrementInt(client, 1)
	if err != nil {
		// The window expired between Add and IncrementInt.
		rl.counters.Set(client, 1, rl.window)
		return rl.limit > 0
	}
	return n <= rl.limit
}

// RateLimit middleware rejects clients over the limit with 429.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := rl.clientIP(r)

			if !rl.Allow(client) {
				rl.logger.Warn().
					Str("ip", client).
					Str("path", r.URL.Path).
					Msg("Rate limit exceeded")
				response.RateLimited(w, "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the remote host. Behind a trusted proxy it walks
// X-Forwarded-For from the right and returns the first hop that is not
// itself a trusted proxy.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !rl.isTrusted(host) {
		return host
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !rl.isTrusted(hop) {
			return hop
		}
	}
	return host
}

func (rl *RateLimiter) isTrusted(ip string) bool {
	if len(rl.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range rl.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
