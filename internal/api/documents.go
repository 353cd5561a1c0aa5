package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/verilogica/orchestrator/internal/server"
)

// CreateDocumentRequest is the payload for POST /api/v1/documents.
type CreateDocumentRequest struct {
	Collection   string `json:"collection"`
	DocumentName string `json:"documentName"`
	Content      string `json:"content"`
}

// UpdateDocumentRequest is the payload for PUT /api/v1/documents/{collection}/{name}.
type UpdateDocumentRequest struct {
	Content string `json:"content"`
}

// DocumentExistsResponse is the response for GET .../exists.
type DocumentExistsResponse struct {
	Exists bool `json:"exists"`
}

// DocumentsHandler handles document creation.
// Endpoint: POST /api/v1/documents
func DocumentsHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := requestLogArgs(r)

		switch r.Method {
		case "POST":
			var req CreateDocumentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				srv.Logger.Error("error decoding create request",
					append(logArgs, "error", err)...)
				respondJSON(w, srv.Logger, http.StatusBadRequest,
					ErrorResponse{Detail: "Invalid request body."})
				return
			}

			if err := srv.Documents.CreateDocument(
				r.Context(), req.Collection, req.DocumentName, req.Content,
			); err != nil {
				respondFault(w, srv.Logger, err)
				return
			}

			srv.Logger.Info("document created",
				append(logArgs, "collection", req.Collection, "name", req.DocumentName)...)
			respondJSON(w, srv.Logger, http.StatusCreated,
				MessageResponse{Message: "Document created successfully"})

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// DocumentHandler handles operations on a single document.
// Endpoints:
//
//	GET    /api/v1/documents/{collection}/{name}
//	PUT    /api/v1/documents/{collection}/{name}
//	DELETE /api/v1/documents/{collection}/{name}
//	GET    /api/v1/documents/{collection}/{name}/exists
func DocumentHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := requestLogArgs(r)

		rest := strings.TrimPrefix(r.URL.Path, "/api/v1/documents/")
		existsProbe := false
		if trimmed, found := strings.CutSuffix(rest, "/exists"); found {
			existsProbe = true
			rest = trimmed
		}

		collection, name, ok := splitDocumentPath(rest)
		if !ok {
			respondJSON(w, srv.Logger, http.StatusBadRequest,
				ErrorResponse{Detail: "Expected path /api/v1/documents/{collection}/{name}."})
			return
		}
		logArgs = append(logArgs, "collection", collection, "name", name)

		if existsProbe {
			if r.Method != "GET" {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			present, err := srv.Documents.DocumentExists(r.Context(), collection, name)
			if err != nil {
				respondFault(w, srv.Logger, err)
				return
			}
			respondJSON(w, srv.Logger, http.StatusOK, DocumentExistsResponse{Exists: present})
			return
		}

		switch r.Method {
		case "GET":
			content, err := srv.Documents.GetDocument(r.Context(), collection, name)
			if err != nil {
				respondFault(w, srv.Logger, err)
				return
			}
			w.Header().Set("Content-Type", "application/xml")
			if _, err := w.Write([]byte(content)); err != nil {
				srv.Logger.Error("error writing response", append(logArgs, "error", err)...)
			}

		case "PUT":
			var req UpdateDocumentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				srv.Logger.Error("error decoding update request",
					append(logArgs, "error", err)...)
				respondJSON(w, srv.Logger, http.StatusBadRequest,
					ErrorResponse{Detail: "Invalid request body."})
				return
			}

			if err := srv.Documents.UpdateDocument(r.Context(), collection, name, req.Content); err != nil {
				respondFault(w, srv.Logger, err)
				return
			}

			srv.Logger.Info("document updated", logArgs...)
			respondJSON(w, srv.Logger, http.StatusOK,
				MessageResponse{Message: "Document updated successfully"})

		case "DELETE":
			if err := srv.Documents.DeleteDocument(r.Context(), collection, name); err != nil {
				respondFault(w, srv.Logger, err)
				return
			}

			srv.Logger.Info("document deleted", logArgs...)
			respondJSON(w, srv.Logger, http.StatusOK,
				MessageResponse{Message: "Document deleted successfully"})

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
}
