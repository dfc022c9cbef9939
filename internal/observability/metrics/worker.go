package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	queueLag        *prometheus.HistogramVec

	chunksProduced  *prometheus.HistogramVec
	classifications *prometheus.CounterVec
	validations     *prometheus.CounterVec
	validationScore *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragp",
			Subsystem: "worker",
			Name:      "document_process_total",
			Help:      "Total processed documents by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ragp",
			Subsystem: "worker",
			Name:      "document_process_duration_seconds",
			Help:      "Document processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ragp",
			Subsystem: "worker",
			Name:      "document_process_in_flight",
			Help:      "Number of in-flight document processing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ragp",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between document creation and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	chunksProduced := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ragp",
			Subsystem: "worker",
			Name:      "chunks_produced",
			Help:      "Distribution of chunks produced per processed document.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 250, 500},
		},
		[]string{"service", "strategy"},
	)
	classifications := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragp",
			Subsystem: "worker",
			Name:      "classifications_total",
			Help:      "Total document classifications by detected type.",
		},
		[]string{"service", "document_type"},
	)
	validations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragp",
			Subsystem: "worker",
			Name:      "validations_total",
			Help:      "Total chunk validations by result.",
		},
		[]string{"service", "result"},
	)
	validationScore := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ragp",
			Subsystem: "worker",
			Name:      "validation_score",
			Help:      "Distribution of validation scores.",
			Buckets:   []float64{0, 0.25, 0.5, 0.7, 0.8, 0.9, 0.95, 1.0},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		processTotal,
		processDuration,
		processInFlight,
		queueLag,
		chunksProduced,
		classifications,
		validations,
		validationScore,
	)

	return &WorkerMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		queueLag:        queueLag,
		chunksProduced:  chunksProduced,
		classifications: classifications,
		validations:     validations,
		validationScore: validationScore,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(service string, duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) RecordClassification(service, documentType string) {
	if documentType == "" {
		documentType = "unknown"
	}
	m.classifications.WithLabelValues(service, documentType).Inc()
}

func (m *WorkerMetrics) RecordChunking(service, strategy string, chunkCount int) {
	if strategy == "" {
		strategy = "unknown"
	}
	m.chunksProduced.WithLabelValues(service, strategy).Observe(float64(chunkCount))
}

func (m *WorkerMetrics) RecordValidation(service string, passed bool, score float64) {
	result := "passed"
	if !passed {
		result = "failed"
	}
	m.validations.WithLabelValues(service, result).Inc()
	m.validationScore.WithLabelValues(service).Observe(score)
}
