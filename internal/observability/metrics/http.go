package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	uploadsTotal         *prometheus.CounterVec
	uploadedFiles        *prometheus.HistogramVec
	deletionsTotal       *prometheus.CounterVec
	readinessWaitsTotal  *prometheus.CounterVec
	readinessWaitSeconds *prometheus.HistogramVec
	catalogFallbackTotal *prometheus.CounterVec

	ragRequestsTotal     *prometheus.CounterVec
	ragRetrievalHitTotal *prometheus.CounterVec
	ragNoContextTotal    *prometheus.CounterVec
	ragCitedChunks       *prometheus.HistogramVec
	ragDuration          *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docqa",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "ingest",
			Name:      "uploads_total",
			Help:      "Total upload requests by outcome.",
		},
		[]string{"service", "status"},
	)
	uploadedFiles := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "ingest",
			Name:      "uploaded_files",
			Help:      "Distribution of files per upload request.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	deletionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "ingest",
			Name:      "deletions_total",
			Help:      "Total deletion requests by outcome.",
		},
		[]string{"service", "outcome"},
	)
	readinessWaitsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "ingest",
			Name:      "readiness_waits_total",
			Help:      "Total readiness waits by result.",
		},
		[]string{"service", "result"},
	)
	readinessWaitSeconds := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "ingest",
			Name:      "readiness_wait_seconds",
			Help:      "Time spent waiting for pipeline readiness.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service"},
	)
	catalogFallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "catalog",
			Name:      "fallback_total",
			Help:      "Total catalog listings served from the local registry.",
		},
		[]string{"service"},
	)
	ragRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "rag",
			Name:      "requests_total",
			Help:      "Total successful question requests.",
		},
		[]string{"service", "endpoint"},
	)
	ragRetrievalHitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "rag",
			Name:      "retrieval_hit_total",
			Help:      "Total question requests with at least one cited source.",
		},
		[]string{"service", "endpoint"},
	)
	ragNoContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "rag",
			Name:      "no_context_total",
			Help:      "Total question requests without retrieved sources.",
		},
		[]string{"service", "endpoint"},
	)
	ragCitedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "rag",
			Name:      "cited_chunks",
			Help:      "Distribution of cited chunks per successful question request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "endpoint"},
	)
	ragDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "rag",
			Name:      "duration_seconds",
			Help:      "Question answering duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		uploadsTotal,
		uploadedFiles,
		deletionsTotal,
		readinessWaitsTotal,
		readinessWaitSeconds,
		catalogFallbackTotal,
		ragRequestsTotal,
		ragRetrievalHitTotal,
		ragNoContextTotal,
		ragCitedChunks,
		ragDuration,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		uploadsTotal:         uploadsTotal,
		uploadedFiles:        uploadedFiles,
		deletionsTotal:       deletionsTotal,
		readinessWaitsTotal:  readinessWaitsTotal,
		readinessWaitSeconds: readinessWaitSeconds,
		catalogFallbackTotal: catalogFallbackTotal,
		ragRequestsTotal:     ragRequestsTotal,
		ragRetrievalHitTotal: ragRetrievalHitTotal,
		ragNoContextTotal:    ragNoContextTotal,
		ragCitedChunks:       ragCitedChunks,
		ragDuration:          ragDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/memory/") {
		return path
	}
	switch {
	case strings.HasSuffix(path, "/ready"):
		return "/memory/{document_id}/ready"
	case strings.HasSuffix(path, "/status"):
		return "/memory/{document_id}/status"
	default:
		return "/memory/{document_id}"
	}
}

func (m *HTTPServerMetrics) RecordUpload(service, status string, fileCount int) {
	if status == "" {
		status = "unknown"
	}
	m.uploadsTotal.WithLabelValues(service, status).Inc()
	if fileCount > 0 {
		m.uploadedFiles.WithLabelValues(service).Observe(float64(fileCount))
	}
}

func (m *HTTPServerMetrics) RecordDeletion(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.deletionsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordReadinessWait(service, result string, waited time.Duration) {
	if result == "" {
		result = "unknown"
	}
	m.readinessWaitsTotal.WithLabelValues(service, result).Inc()
	m.readinessWaitSeconds.WithLabelValues(service).Observe(waited.Seconds())
}

func (m *HTTPServerMetrics) RecordCatalogFallback(service string) {
	m.catalogFallbackTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordRAGObservation(service, endpoint string, citedChunks int, duration time.Duration) {
	m.ragRequestsTotal.WithLabelValues(service, endpoint).Inc()
	m.ragCitedChunks.WithLabelValues(service, endpoint).Observe(float64(citedChunks))
	m.ragDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())

	if citedChunks > 0 {
		m.ragRetrievalHitTotal.WithLabelValues(service, endpoint).Inc()
		return
	}
	m.ragNoContextTotal.WithLabelValues(service, endpoint).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
