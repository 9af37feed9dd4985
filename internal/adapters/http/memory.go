package httpadapter

import (
	"net/http"

	"github.com/raglab/docqa/internal/core/domain"
)

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request, documentID string) {
	if r.Method != http.MethodDelete {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	outcome, err := rt.remover.Delete(r.Context(), documentID, r.URL.Query().Get("index"))
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordDeletion(serviceName, "error")
		}
		writeError(w, err)
		return
	}

	switch outcome {
	case domain.DeleteOutcomeDeleted:
		if rt.metrics != nil {
			rt.metrics.RecordDeletion(serviceName, "deleted")
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		if rt.metrics != nil {
			rt.metrics.RecordDeletion(serviceName, "not_found")
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found in any index"})
	}
}

func (rt *Router) documentReady(w http.ResponseWriter, r *http.Request, documentID string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	index := rt.resolveIndex(r)
	ready, err := rt.engine.IsDocumentReady(r.Context(), documentID, index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documentId": documentID,
		"index":      index,
		"ready":      ready,
	})
}

func (rt *Router) documentStatus(w http.ResponseWriter, r *http.Request, documentID string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	index := rt.resolveIndex(r)
	status, err := rt.engine.GetDocumentStatus(r.Context(), documentID, index)
	if err != nil {
		writeError(w, err)
		return
	}
	if status == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no pipeline record for document"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documentId":     documentID,
		"index":          index,
		"remainingSteps": status.RemainingSteps,
		"completedSteps": status.CompletedSteps,
	})
}

func (rt *Router) resolveIndex(r *http.Request) string {
	if index := r.URL.Query().Get("index"); index != "" {
		return index
	}
	return rt.cfg.MemoryIndex
}
