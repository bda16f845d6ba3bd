// Package metrics exposes Prometheus instrumentation for the HTTP server
// and the analysis service. All methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medscan"

// Metrics owns a private registry so tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	analysisTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	analysisInFlight prometheus.Gauge
	stageDuration    *prometheus.HistogramVec
	parametersFound  prometheus.Histogram
	enrichmentTotal  *prometheus.CounterVec
}

// New creates a Metrics instance labelled with service.
func New(service string) *Metrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "Total HTTP requests processed.",
			ConstLabels: constLabels,
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
		[]string{"method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: constLabels,
		},
	)
	analysisTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "analysis",
			Name:        "documents_total",
			Help:        "Analysed documents by outcome status and report type.",
			ConstLabels: constLabels,
		},
		[]string{"status", "report_type"},
	)
	analysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "analysis",
			Name:        "duration_seconds",
			Help:        "End-to-end document analysis duration in seconds.",
			Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			ConstLabels: constLabels,
		},
		[]string{"result"},
	)
	analysisInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "analysis",
			Name:        "in_flight",
			Help:        "Number of documents currently being analysed.",
			ConstLabels: constLabels,
		},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "analysis",
			Name:        "stage_duration_seconds",
			Help:        "Duration of each analysis stage (ocr, pipeline, enrich, archive, persist).",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
		[]string{"stage"},
	)
	parametersFound := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "analysis",
			Name:        "parameters_found",
			Help:        "Distribution of extracted parameters per medical document.",
			Buckets:     []float64{0, 1, 2, 3, 5, 8, 13},
			ConstLabels: constLabels,
		},
	)
	enrichmentTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "enrichment",
			Name:        "requests_total",
			Help:        "LLM enrichment attempts by outcome (success, fallback).",
			ConstLabels: constLabels,
		},
		[]string{"outcome"},
	)

	registry.MustRegister(
		requestTotal, requestDuration, requestInFlight,
		analysisTotal, analysisDuration, analysisInFlight,
		stageDuration, parametersFound, enrichmentTotal,
	)

	return &Metrics{
		registry:         registry,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		requestInFlight:  requestInFlight,
		analysisTotal:    analysisTotal,
		analysisDuration: analysisDuration,
		analysisInFlight: analysisInFlight,
		stageDuration:    stageDuration,
		parametersFound:  parametersFound,
		enrichmentTotal:  enrichmentTotal,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) StartRequest() {
	if m == nil {
		return
	}
	m.requestInFlight.Inc()
}

func (m *Metrics) FinishRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestInFlight.Dec()
	if path == "" {
		path = "unmatched"
	}
	m.requestTotal.WithLabelValues(method, path, statusLabel(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) StartAnalysis() {
	if m == nil {
		return
	}
	m.analysisInFlight.Inc()
}

// FinishAnalysis records one completed Analyze call. status and reportType
// are empty when err is non-nil.
func (m *Metrics) FinishAnalysis(status, reportType string, parameters int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.analysisInFlight.Dec()

	result := "success"
	if err != nil {
		result = "error"
		status = "error"
	}
	if reportType == "" {
		reportType = "none"
	}
	m.analysisTotal.WithLabelValues(status, reportType).Inc()
	m.analysisDuration.WithLabelValues(result).Observe(duration.Seconds())
	if err == nil && reportType != "none" {
		m.parametersFound.Observe(float64(parameters))
	}
}

func (m *Metrics) ObserveStage(stage string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func (m *Metrics) ObserveEnrichment(fallback bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if fallback {
		outcome = "fallback"
	}
	m.enrichmentTotal.WithLabelValues(outcome).Inc()
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
