package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/verilogica/orchestrator/pkg/existdb"
)

// ErrorResponse is the body returned for every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse is the body returned for successful mutations.
type MessageResponse struct {
	Message string `json:"message"`
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, log hclog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("error encoding response", "error", err)
	}
}

// respondFault maps a service fault to its HTTP status. This is the
// presentation layer's sole job: one fault kind, one status code.
// Infrastructure faults deliberately hide downstream detail from callers.
func respondFault(w http.ResponseWriter, log hclog.Logger, err error) {
	var (
		status int
		detail string
	)

	switch {
	case errors.Is(err, existdb.ErrValidation):
		status = http.StatusBadRequest
		detail = err.Error()
	case errors.Is(err, existdb.ErrAlreadyExists):
		status = http.StatusConflict
		detail = err.Error()
	case errors.Is(err, existdb.ErrNotFound):
		// Covers ErrCollectionNotFound too; it unwraps to ErrNotFound.
		status = http.StatusNotFound
		detail = err.Error()
	case errors.Is(err, existdb.ErrInfrastructure):
		status = http.StatusServiceUnavailable
		detail = "A problem occurred with a downstream service."
	default:
		log.Error("unclassified error reached the API boundary", "error", err)
		status = http.StatusInternalServerError
		detail = "Internal server error."
	}

	respondJSON(w, log, status, ErrorResponse{Detail: detail})
}

// splitDocumentPath splits a "{collection}/{name}" resource path. The
// collection part may itself contain slashes; the document name is the last
// segment.
func splitDocumentPath(path string) (collection, name string, ok bool) {
	path = strings.Trim(path, "/")
	idx := strings.LastIndex(path, "/")
	if idx <= 0 || idx == len(path)-1 {
		return "", "", false
	}
	return path[:idx], path[idx+1:], true
}

// RequestID tags every request with a generated ID, echoed in the
// X-Request-Id header and attached to handler log lines downstream.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", id)
		r.Header.Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

// requestLogArgs builds the common key/value log arguments for a request.
func requestLogArgs(r *http.Request) []any {
	return []any{
		"path", r.URL.Path,
		"method", r.Method,
		"request_id", r.Header.Get("X-Request-Id"),
	}
}
