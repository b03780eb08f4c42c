// Package apierror provides a centralized error response format for the
// SmartBee API. Every component uses WriteJSON to produce consistent,
// machine-readable error responses with stable error codes.
package apierror

import (
	"encoding/json"
	"net/http"
)

// ErrorCode is a machine-readable error classification string.
type ErrorCode string

// Error codes. These form a public API contract; clients can program
// against these stable codes. Do not rename or remove existing codes.
const (
	RouteNotFound     ErrorCode = "SMARTBEE_ROUTE_NOT_FOUND"
	MethodNotAllowed  ErrorCode = "SMARTBEE_METHOD_NOT_ALLOWED"
	MalformedBody     ErrorCode = "SMARTBEE_MALFORMED_BODY"
	ValidationFailed  ErrorCode = "SMARTBEE_VALIDATION_FAILED"
	BodyTooLarge      ErrorCode = "SMARTBEE_BODY_TOO_LARGE"
	RateLimitExceeded ErrorCode = "SMARTBEE_RATE_LIMIT_EXCEEDED"
	Forbidden         ErrorCode = "SMARTBEE_FORBIDDEN"
	InternalError     ErrorCode = "SMARTBEE_INTERNAL_ERROR"
	DeadlineExceeded  ErrorCode = "SMARTBEE_DEADLINE_EXCEEDED"
	CORSRejected      ErrorCode = "SMARTBEE_CORS_REJECTED"
)

// FieldError describes one request field that failed validation.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ErrorResponse is the standardized error body.
type ErrorResponse struct {
	Error     string       `json:"error"`
	ErrorCode string       `json:"error_code"`
	Message   string       `json:"message"`
	RequestID string       `json:"request_id,omitempty"`
	Details   []FieldError `json:"details,omitempty"`
}

// Pre-serialized JSON bodies for the most common error responses.
// These do NOT include request_id since it varies per request.
var (
	preRouteNotFound     = mustMarshal(http.StatusNotFound, RouteNotFound, "no matching route")
	preRateLimitExceeded = mustMarshal(http.StatusTooManyRequests, RateLimitExceeded, "rate limit exceeded, retry later")
	preBodyTooLarge      = mustMarshal(http.StatusRequestEntityTooLarge, BodyTooLarge, "request body exceeds maximum allowed size")
)

func mustMarshal(status int, code ErrorCode, message string) []byte {
	b, _ := json.Marshal(ErrorResponse{
		Error:     http.StatusText(status),
		ErrorCode: string(code),
		Message:   message,
	})
	return append(b, '\n')
}

// WriteJSON writes a structured JSON error response. For common error
// code+message combinations, pre-serialized bodies are used (no allocation).
// When request_id is available (from X-Request-ID header), it is included in
// the response. The request parameter may be nil for contexts where the
// request is not available.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, code ErrorCode, message string) {
	WriteDetailed(w, r, status, code, message, nil)
}

// WriteDetailed is WriteJSON with per-field validation details attached.
func WriteDetailed(w http.ResponseWriter, r *http.Request, status int, code ErrorCode, message string, details []FieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	requestID := ""
	if r != nil {
		requestID = r.Header.Get("X-Request-ID")
	}

	if requestID == "" && len(details) == 0 {
		if body := preSerialized(status, code, message); body != nil {
			w.Write(body) //nolint:errcheck
			return
		}
	}

	json.NewEncoder(w).Encode(ErrorResponse{ //nolint:errcheck
		Error:     http.StatusText(status),
		ErrorCode: string(code),
		Message:   message,
		RequestID: requestID,
		Details:   details,
	})
}

// preSerialized returns a pre-built response body for common error
// combinations, or nil if no match.
func preSerialized(status int, code ErrorCode, message string) []byte {
	switch {
	case code == RouteNotFound && status == http.StatusNotFound && message == "no matching route":
		return preRouteNotFound
	case code == RateLimitExceeded && status == http.StatusTooManyRequests && message == "rate limit exceeded, retry later":
		return preRateLimitExceeded
	case code == BodyTooLarge && status == http.StatusRequestEntityTooLarge && message == "request body exceeds maximum allowed size":
		return preBodyTooLarge
	}
	return nil
}

// WriteMethodNotAllowed writes a 405 response advertising the allowed method.
func WriteMethodNotAllowed(w http.ResponseWriter, r *http.Request, allow string) {
	w.Header().Set("Allow", allow)
	WriteJSON(w, r, http.StatusMethodNotAllowed, MethodNotAllowed, "method not allowed")
}
