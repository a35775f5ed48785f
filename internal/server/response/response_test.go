package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zip2addr/zip2addr/pkg/errors"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]string{"pref": "東京都", "html": "<b>"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "東京都")
	assert.Contains(t, rec.Body.String(), "<b>")
	assert.Contains(t, rec.Body.String(), `"error":null`)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		code   string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "bad", "d") }, http.StatusBadRequest, CodeBadRequest},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "missing", "") }, http.StatusNotFound, CodeNotFound},
		{"method", func(w http.ResponseWriter) { MethodNotAllowed(w, http.MethodPost) }, http.StatusMethodNotAllowed, CodeMethodNotAllowed},
		{"rate limited", func(w http.ResponseWriter) { RateLimited(w, "slow down") }, http.StatusTooManyRequests, CodeRateLimited},
		{"internal", func(w http.ResponseWriter) { InternalError(w, fmt.Errorf("secret")) }, http.StatusInternalServerError, CodeInternalError},
		{"unavailable", func(w http.ResponseWriter) { ServiceUnavailable(w, "no store") }, http.StatusServiceUnavailable, CodeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			assert.Nil(t, resp.Data)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotContains(t, rec.Body.String(), "secret")
		})
	}
}

func TestErrorFromType(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", errors.NewNotFoundError("zipcode", "0000000"), http.StatusNotFound, CodeNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", errors.NewNotFoundError("zipcode", "1")), http.StatusNotFound, CodeNotFound},
		{"sentinel not found", errors.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"validation", errors.NewValidationError("zipcode", "abc", "must be digits"), http.StatusBadRequest, CodeBadRequest},
		{"other", errors.NewIOError("read", "x.db", fmt.Errorf("disk")), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ErrorFromType(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode(t, rec).Error.Code)
		})
	}
}
