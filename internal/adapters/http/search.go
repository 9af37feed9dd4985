package httpadapter

import (
	"net/http"
	"strings"
	"time"
)

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	start := time.Now()
	answer, err := rt.asker.Ask(r.Context(), query, r.URL.Query().Get("model"), r.URL.Query().Get("country"))
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordRAGObservation(serviceName, "/search", answer.Stats.Chunks, time.Since(start))
	}

	writeJSON(w, http.StatusOK, answer)
}
