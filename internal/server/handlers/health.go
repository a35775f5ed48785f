package handlers

import (
	"net/http"
	"time"

	"github.com/zip2addr/zip2addr/internal/server/response"
	"github.com/zip2addr/zip2addr/pkg/logging"
)

// ServiceName is reported by /health and /ping.
const ServiceName = "zip2addr"

// Pong is the /ping payload.
type Pong struct {
	Message string `json:"message"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HandleUsage handles GET /.
func (h *Handlers) HandleUsage(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]string{
		"message": "Usage: GET " + h.prefix + "/zipcodes/<zipcode>",
	})
}

// HandlePing handles GET /api/v1/ping.
func (h *Handlers) HandlePing(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, Pong{
		Message: "Pong!",
		Name:    ServiceName,
		Version: h.app.Version(),
	})
}

// HandleHealth handles GET /health. It reports unavailable when the store
// cannot be queried.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Count(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Msg("Store health check failed")
		response.ServiceUnavailable(w, "Store not available")
		return
	}

	response.OK(w, map[string]any{
		"status":   "healthy",
		"service":  ServiceName,
		"version":  h.app.Version(),
		"uptime":   time.Since(h.startTime).Round(time.Second).String(),
		"zipcodes": count,
		"cache":    h.cache.Stats(),
	})
}
