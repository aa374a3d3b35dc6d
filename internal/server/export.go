package server

import (
	"errors"
	"net/http"
	"strings"

	"cadpilot/internal/artifact"
)

// ExportHandler serves stored export artifacts over HTTP:
// GET /exports/{documentID}/{name}.
type ExportHandler struct {
	store artifact.Store
}

func NewExportHandler(store artifact.Store) *ExportHandler {
	return &ExportHandler{store: store}
}

func (h *ExportHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.store == nil {
		http.Error(w, "export storage is not configured", http.StatusNotImplemented)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/exports/")
	docID, name, ok := strings.Cut(rest, "/")
	if !ok || docID == "" || name == "" {
		http.Error(w, "expected /exports/{document}/{name}", http.StatusBadRequest)
		return
	}
	content, err := h.store.Get(r.Context(), docID, name)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			http.Error(w, "artifact not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(content)
}
