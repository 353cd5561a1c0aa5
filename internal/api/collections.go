package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/verilogica/orchestrator/internal/server"
)

// ListDocumentsResponse is the response for a collection listing.
type ListDocumentsResponse struct {
	Collection string   `json:"collection"`
	Documents  []string `json:"documents"`
}

// DeleteCollectionResponse reports whether a deletion actually occurred.
type DeleteCollectionResponse struct {
	Deleted bool `json:"deleted"`
}

// QueryRequest is the payload for POST /api/v1/query.
type QueryRequest struct {
	Query string `json:"query"`
}

// CollectionHandler handles operations on a collection.
// Endpoints:
//
//	GET    /api/v1/collections/{collection}/documents
//	DELETE /api/v1/collections/{collection}
func CollectionHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := requestLogArgs(r)

		collection := strings.Trim(
			strings.TrimPrefix(r.URL.Path, "/api/v1/collections/"), "/")
		listing := false
		if trimmed, found := strings.CutSuffix(collection, "/documents"); found && r.Method == "GET" {
			listing = true
			collection = trimmed
		}
		if collection == "" {
			respondJSON(w, srv.Logger, http.StatusBadRequest,
				ErrorResponse{Detail: "Collection name required."})
			return
		}
		logArgs = append(logArgs, "collection", collection)

		switch {
		case listing:
			documents, err := srv.Documents.ListDocuments(r.Context(), collection)
			if err != nil {
				respondFault(w, srv.Logger, err)
				return
			}
			respondJSON(w, srv.Logger, http.StatusOK, ListDocumentsResponse{
				Collection: collection,
				Documents:  documents,
			})

		case r.Method == "DELETE":
			deleted, err := srv.Documents.DeleteCollection(r.Context(), collection)
			if err != nil {
				respondFault(w, srv.Logger, err)
				return
			}

			srv.Logger.Info("collection delete handled",
				append(logArgs, "deleted", deleted)...)
			respondJSON(w, srv.Logger, http.StatusOK, DeleteCollectionResponse{Deleted: deleted})

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// QueryHandler executes an ad-hoc query against the store and relays the raw
// XML result.
// Endpoint: POST /api/v1/query
func QueryHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := requestLogArgs(r)

		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			srv.Logger.Error("error decoding query request",
				append(logArgs, "error", err)...)
			respondJSON(w, srv.Logger, http.StatusBadRequest,
				ErrorResponse{Detail: "Invalid request body."})
			return
		}

		result, err := srv.Documents.Query(r.Context(), req.Query)
		if err != nil {
			respondFault(w, srv.Logger, err)
			return
		}

		w.Header().Set("Content-Type", "application/xml")
		if _, err := w.Write([]byte(result)); err != nil {
			srv.Logger.Error("error writing response", append(logArgs, "error", err)...)
		}
	})
}
