package api

import (
	"net/http"

	"github.com/verilogica/orchestrator/internal/server"
	"github.com/verilogica/orchestrator/internal/version"
)

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// HealthHandler reports process liveness.
// Endpoint: GET /health
func HealthHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		respondJSON(w, srv.Logger, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: version.Version,
		})
	})
}

// RegisterRoutes attaches all handlers to the mux, wrapped with the
// request-ID middleware.
func RegisterRoutes(mux *http.ServeMux, srv server.Server) {
	mux.Handle("/health", RequestID(HealthHandler(srv)))
	mux.Handle("/api/v1/documents", RequestID(DocumentsHandler(srv)))
	mux.Handle("/api/v1/documents/", RequestID(DocumentHandler(srv)))
	mux.Handle("/api/v1/collections/", RequestID(CollectionHandler(srv)))
	mux.Handle("/api/v1/query", RequestID(QueryHandler(srv)))
}
