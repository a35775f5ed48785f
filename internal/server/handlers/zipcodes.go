package handlers

import (
	"net/http"

	"github.com/zip2addr/zip2addr/internal/server/response"
	"github.com/zip2addr/zip2addr/pkg/errors"
	"github.com/zip2addr/zip2addr/pkg/logging"
)

// HandleListZipcodes handles GET /api/v1/zipcodes?skip=&limit=.
func (h *Handlers) HandleListZipcodes(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pagination(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	h.serveCached(w, r, func() (any, error) {
		return h.store.List(r.Context(), skip, limit)
	})
}

// HandleGetZipcode handles GET /api/v1/zipcodes/{zipcode}.
func (h *Handlers) HandleGetZipcode(w http.ResponseWriter, r *http.Request) {
	zipcode := r.PathValue("zipcode")
	if !validDigits(zipcode) {
		response.ErrorFromType(w, errors.NewValidationError("zipcode", zipcode, "must be up to 7 digits"))
		return
	}

	h.serveCached(w, r, func() (any, error) {
		return h.store.FindByZip(r.Context(), zipcode)
	})
}

// HandlePartialZipcodes handles GET /api/v1/zipcodes/partial/{prefix}?skip=&limit=.
func (h *Handlers) HandlePartialZipcodes(w http.ResponseWriter, r *http.Request) {
	prefix := r.PathValue("prefix")
	if !validDigits(prefix) {
		response.ErrorFromType(w, errors.NewValidationError("prefix", prefix, "must be up to 7 digits"))
		return
	}

	skip, limit, err := pagination(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	h.serveCached(w, r, func() (any, error) {
		return h.store.FindByPrefix(r.Context(), prefix, skip, limit)
	})
}

// serveCached answers from the response cache or runs load and caches a
// successful result. Misses are not cached.
func (h *Handlers) serveCached(w http.ResponseWriter, r *http.Request, load func() (any, error)) {
	data, err := h.cache.GetOrLoad(cacheKey(r), load)
	if err != nil {
		if !errors.IsNotFound(err) {
			logging.FromContext(r.Context()).Error().Err(err).Msg("Lookup failed")
		}
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, data)
}
