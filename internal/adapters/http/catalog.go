package httpadapter

import (
	"net/http"
	"strconv"
)

func (rt *Router) listIndexed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	page, err := rt.catalog.ListDocuments(r.Context(), r.URL.Query().Get("country"), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	response := map[string]any{"documents": page.Documents}
	if page.CacheDerived {
		if rt.metrics != nil {
			rt.metrics.RecordCatalogFallback(serviceName)
		}
		response["note"] = "listing derived from local upload records; engine returned no documents"
	}
	writeJSON(w, http.StatusOK, response)
}
