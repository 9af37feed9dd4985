package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/raglab/docqa/internal/config"
	"github.com/raglab/docqa/internal/core/ports"
	"github.com/raglab/docqa/internal/observability/metrics"
)

const serviceName = "docqa-api"

type Router struct {
	cfg config.Config

	uploader ports.DocumentUploader
	catalog  ports.DocumentCatalog
	remover  ports.DocumentRemover
	asker    ports.QuestionService
	engine   ports.MemoryEngine

	metrics *metrics.HTTPServerMetrics
	logger  *slog.Logger
}

func NewRouter(
	cfg config.Config,
	uploader ports.DocumentUploader,
	catalog ports.DocumentCatalog,
	remover ports.DocumentRemover,
	asker ports.QuestionService,
	engine ports.MemoryEngine,
	serverMetrics *metrics.HTTPServerMetrics,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		cfg:      cfg,
		uploader: uploader,
		catalog:  catalog,
		remover:  remover,
		asker:    asker,
		engine:   engine,
		metrics:  serverMetrics,
		logger:   logger,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/extract/upload", rt.uploadDocuments)
	mux.HandleFunc("/indexed", rt.listIndexed)
	mux.HandleFunc("/memory/", rt.memoryDocument)
	mux.HandleFunc("/search", rt.search)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, rt.cfg.APIQueueTimeout)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// memoryDocument dispatches /memory/{documentId}[/ready|/status].
func (rt *Router) memoryDocument(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/memory/")
	documentID, action, _ := strings.Cut(rest, "/")
	if documentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	switch action {
	case "":
		rt.deleteDocument(w, r, documentID)
	case "ready":
		rt.documentReady(w, r, documentID)
	case "status":
		rt.documentStatus(w, r, documentID)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown resource"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
