package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WatcherMetrics struct {
	registry *prometheus.Registry

	watchTotal    *prometheus.CounterVec
	watchDuration *prometheus.HistogramVec
	watchInFlight prometheus.Gauge
	queueLag      *prometheus.HistogramVec
}

func NewWatcherMetrics(service string) *WatcherMetrics {
	registry := prometheus.NewRegistry()

	watchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "watcher",
			Name:      "document_watch_total",
			Help:      "Total watched documents by readiness result.",
		},
		[]string{"service", "result"},
	)
	watchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "watcher",
			Name:      "document_watch_duration_seconds",
			Help:      "Per-document readiness watch duration in seconds by result.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "result"},
	)
	watchInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docqa",
			Subsystem: "watcher",
			Name:      "document_watch_in_flight",
			Help:      "Number of documents currently being watched for readiness.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "watcher",
			Name:      "queue_lag_seconds",
			Help:      "Delay between document upload and watch start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(watchTotal, watchDuration, watchInFlight, queueLag)

	return &WatcherMetrics{
		registry:      registry,
		watchTotal:    watchTotal,
		watchDuration: watchDuration,
		watchInFlight: watchInFlight,
		queueLag:      queueLag,
	}
}

func (m *WatcherMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WatcherMetrics) StartWatch() {
	m.watchInFlight.Inc()
}

func (m *WatcherMetrics) FinishWatch(service string, duration time.Duration, ready bool) {
	m.watchInFlight.Dec()

	result := "ready"
	if !ready {
		result = "timeout"
	}

	m.watchTotal.WithLabelValues(service, result).Inc()
	m.watchDuration.WithLabelValues(service, result).Observe(duration.Seconds())
}

func (m *WatcherMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
