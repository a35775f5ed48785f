// Package response writes the JSON envelope used by every API endpoint:
// {"data": ..., "error": null} on success and
// {"data": null, "error": {"code", "message", "details"}} on failure.
package response

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/zip2addr/zip2addr/pkg/errors"
)

// Response represents the standardized API response structure.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error represents an API error with code, message, and optional details.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error codes.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Success creates a successful response with data.
func Success(data any) Response {
	return Response{Data: data}
}

// Fail creates an error response.
func Fail(code, message, details string) Response {
	return Response{
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// JSON writes resp with the given status code. Addresses are written as
// UTF-8 without HTML escaping.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	// Headers are already sent; nothing useful can be done on failure.
	_ = enc.Encode(resp)
}

// OK writes a successful response with 200 status.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Success(data))
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusBadRequest, Fail(CodeBadRequest, message, details))
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusNotFound, Fail(CodeNotFound, message, details))
}

// MethodNotAllowed writes a 405 error response.
func MethodNotAllowed(w http.ResponseWriter, method string) {
	JSON(w, http.StatusMethodNotAllowed, Fail(
		CodeMethodNotAllowed,
		"Method not allowed",
		"Method "+method+" is not supported for this endpoint",
	))
}

// RateLimited writes a 429 error response.
func RateLimited(w http.ResponseWriter, message string) {
	JSON(w, http.StatusTooManyRequests, Fail(CodeRateLimited, "Rate limit exceeded", message))
}

// InternalError writes a 500 error response. The error is not exposed to
// the client; the request logger records it.
func InternalError(w http.ResponseWriter, _ error) {
	JSON(w, http.StatusInternalServerError, Fail(
		CodeInternalError,
		"Internal server error",
		"An unexpected error occurred",
	))
}

// ServiceUnavailable writes a 503 error response.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	JSON(w, http.StatusServiceUnavailable, Fail(CodeServiceUnavailable, "Service unavailable", message))
}

// ErrorFromType maps typed errors to HTTP responses. Wrapped errors are
// unwrapped before matching.
func ErrorFromType(w http.ResponseWriter, err error) {
	var (
		notFound   *errors.NotFoundError
		validation *errors.ValidationError
	)
	switch {
	case stderrors.As(err, &notFound):
		NotFound(w, notFound.Error(), "")
	case stderrors.As(err, &validation):
		BadRequest(w, validation.Error(), "")
	case errors.IsNotFound(err):
		NotFound(w, err.Error(), "")
	default:
		InternalError(w, err)
	}
}
