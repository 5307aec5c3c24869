// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "meditech"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// HTTP surface metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Consult pipeline metrics
	ConsultsTotal   prometheus.Counter
	ConsultsActive  prometheus.Gauge
	ConsultsSuccess prometheus.Counter
	ConsultsFailed  prometheus.Counter
	ConsultDuration prometheus.Histogram
	StageDuration   *prometheus.HistogramVec
	StagesSkipped   *prometheus.CounterVec

	// Language detection metrics
	DetectionsTotal *prometheus.CounterVec

	// Speech inference metrics
	InferenceRuns     *prometheus.CounterVec
	InferenceDuration *prometheus.HistogramVec

	// Gemini client metrics
	GeminiRequests *prometheus.CounterVec
	GeminiRetries  *prometheus.CounterVec
	GeminiDuration prometheus.Histogram

	// Audio ingestion metrics
	AudioBytesReceived prometheus.Counter
	AudioConvertErrors prometheus.Counter

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec

	// Room and websocket metrics
	RoomsCreated  prometheus.Counter
	WSConnections prometheus.Gauge
	WSMessages    prometheus.Counter
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		// HTTP surface metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		}, []string{"method", "route", "status"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"method", "route"}),

		// Consult pipeline metrics
		ConsultsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consults_total",
			Help:      "Total number of consult requests started",
		}),
		ConsultsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "consults_active",
			Help:      "Number of consult requests currently in flight",
		}),
		ConsultsSuccess: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consults_success_total",
			Help:      "Total number of consult requests that produced a record",
		}),
		ConsultsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consults_failed_total",
			Help:      "Total number of consult requests that failed",
		}),
		ConsultDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "consult_duration_seconds",
			Help:      "End-to-end consult processing duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"stage"}),
		StagesSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stages_skipped_total",
			Help:      "Total number of pipeline stages skipped",
		}, []string{"stage", "reason"}),

		// Language detection metrics
		DetectionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "language_detections_total",
			Help:      "Total number of language resolutions",
		}, []string{"language", "method"}),

		// Speech inference metrics
		InferenceRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inference_runs_total",
			Help:      "Total number of speech inference runs",
		}, []string{"model", "outcome"}),
		InferenceDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Speech inference duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"model"}),

		// Gemini client metrics
		GeminiRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gemini_requests_total",
			Help:      "Total number of Gemini generation calls",
		}, []string{"outcome"}),
		GeminiRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gemini_retries_total",
			Help:      "Total number of Gemini retry attempts",
		}, []string{"reason"}),
		GeminiDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gemini_duration_seconds",
			Help:      "Gemini call duration in seconds, including retries",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),

		// Audio ingestion metrics
		AudioBytesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_received_total",
			Help:      "Total audio bytes accepted for processing",
		}),
		AudioConvertErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_convert_errors_total",
			Help:      "Total number of audio conversion failures",
		}),

		// Kafka publish metrics
		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		// Room and websocket metrics
		RoomsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Total number of consult rooms created",
		}),
		WSConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections_active",
			Help:      "Number of active websocket connections",
		}),
		WSMessages: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "Total number of websocket messages relayed",
		}),
	}
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// RecordConsultStart records a new consult request starting.
func (m *Metrics) RecordConsultStart() {
	m.ConsultsTotal.Inc()
	m.ConsultsActive.Inc()
}

// RecordConsultEnd records a consult request ending.
func (m *Metrics) RecordConsultEnd(success bool, durationSeconds float64) {
	m.ConsultsActive.Dec()
	m.ConsultDuration.Observe(durationSeconds)
	if success {
		m.ConsultsSuccess.Inc()
	} else {
		m.ConsultsFailed.Inc()
	}
}

// RecordStageDuration records the duration of a completed pipeline stage.
func (m *Metrics) RecordStageDuration(stage string, durationSeconds float64) {
	m.StageDuration.WithLabelValues(stage).Observe(durationSeconds)
}

// RecordStageSkipped records a pipeline stage being skipped.
func (m *Metrics) RecordStageSkipped(stage, reason string) {
	m.StagesSkipped.WithLabelValues(stage, reason).Inc()
}

// RecordDetection records a language resolution outcome.
func (m *Metrics) RecordDetection(language, method string) {
	m.DetectionsTotal.WithLabelValues(language, method).Inc()
}

// RecordInference records a speech inference run.
func (m *Metrics) RecordInference(model, outcome string, durationSeconds float64) {
	m.InferenceRuns.WithLabelValues(model, outcome).Inc()
	m.InferenceDuration.WithLabelValues(model).Observe(durationSeconds)
}

// RecordGeminiRequest records a completed Gemini call.
func (m *Metrics) RecordGeminiRequest(outcome string, durationSeconds float64) {
	m.GeminiRequests.WithLabelValues(outcome).Inc()
	m.GeminiDuration.Observe(durationSeconds)
}

// RecordGeminiRetry records a Gemini retry attempt.
func (m *Metrics) RecordGeminiRetry(reason string) {
	m.GeminiRetries.WithLabelValues(reason).Inc()
}

// RecordAudioReceived records audio bytes accepted for processing.
func (m *Metrics) RecordAudioReceived(bytes int) {
	m.AudioBytesReceived.Add(float64(bytes))
}

// RecordConvertError records an audio conversion failure.
func (m *Metrics) RecordConvertError() {
	m.AudioConvertErrors.Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}

// RecordRoomCreated records a consult room being created.
func (m *Metrics) RecordRoomCreated() {
	m.RoomsCreated.Inc()
}

// RecordWSConnect records a websocket client connecting.
func (m *Metrics) RecordWSConnect() {
	m.WSConnections.Inc()
}

// RecordWSDisconnect records a websocket client disconnecting.
func (m *Metrics) RecordWSDisconnect() {
	m.WSConnections.Dec()
}

// RecordWSMessage records a websocket message relayed to a room.
func (m *Metrics) RecordWSMessage() {
	m.WSMessages.Inc()
}
