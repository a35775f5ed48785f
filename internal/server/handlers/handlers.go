// Package handlers provides HTTP request handlers for the zip2addr API.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/zip2addr/zip2addr/cmd/application"
	"github.com/zip2addr/zip2addr/internal/server/cache"
	"github.com/zip2addr/zip2addr/internal/server/response"
	"github.com/zip2addr/zip2addr/pkg/constants"
	"github.com/zip2addr/zip2addr/pkg/errors"
	"github.com/zip2addr/zip2addr/pkg/store"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	app       application.Application
	store     store.Reader
	cache     *cache.Cache
	logger    *zerolog.Logger
	prefix    string
	startTime time.Time
}

// New creates a new Handlers instance.
func New(
	app application.Application,
	reader store.Reader,
	cache *cache.Cache,
	logger *zerolog.Logger,
	prefix string,
	startTime time.Time,
) *Handlers {
	return &Handlers{
		app:       app,
		store:     reader,
		cache:     cache,
		logger:    logger,
		prefix:    prefix,
		startTime: startTime,
	}
}

// HandleNotFound answers unmatched API paths with the JSON envelope.
func (h *Handlers) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		response.MethodNotAllowed(w, r.Method)
		return
	}
	response.NotFound(w, "Not found", "No route for "+r.URL.Path)
}

// pagination reads skip and limit from the query string. Missing values
// default to 0 and constants.DefaultPageSize; limit is capped at
// constants.MaxPageSize.
func pagination(r *http.Request) (skip, limit int, err error) {
	q := r.URL.Query()
	skip, err = intParam(q.Get("skip"), "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	limit, err = intParam(q.Get("limit"), "limit", constants.DefaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	if limit == 0 {
		return 0, 0, errors.NewValidationError("limit", limit, "must be positive")
	}
	return skip, min(limit, constants.MaxPageSize), nil
}

func intParam(raw, name string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationError(name, raw, "must be an integer")
	}
	if n < 0 {
		return 0, errors.NewValidationError(name, raw, "must not be negative")
	}
	return n, nil
}

// validDigits reports whether s is 1 to constants.ZipcodeLength ASCII digits.
func validDigits(s string) bool {
	if s == "" || len(s) > constants.ZipcodeLength {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// cacheKey identifies a request by path and raw query.
func cacheKey(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return r.URL.Path
	}
	return r.URL.Path + "?" + r.URL.RawQuery
}
