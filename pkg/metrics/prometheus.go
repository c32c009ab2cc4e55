// Package metrics provides Prometheus metrics for the beat tracking engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Correction outcomes.
const (
	OutcomeApplied = "applied"
	OutcomeDropped = "dropped"
)

// Manager owns every tapbeat metric.
type Manager struct {
	namespace    string
	subsystem    string
	errorBuckets []float64
	registry     *prometheus.Registry

	// Judging
	taps     *prometheus.CounterVec
	tapError prometheus.Histogram

	// Grid
	gridLocks  prometheus.Counter
	gridResets prometheus.Counter
	gridBPM    prometheus.Gauge
	tempoNudge prometheus.Counter

	// Sources
	onsets      *prometheus.CounterVec
	corrections *prometheus.CounterVec
	analysis    prometheus.Histogram
	lappedReads *prometheus.CounterVec

	// Event queue
	queueSize    prometheus.Gauge
	queueEnqueue prometheus.Counter
	queueDequeue prometheus.Counter
	queueDropped *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics manager

func init() { //nolint:gochecknoinits // metrics are always registered
	globalManager = NewManager()
}

// Init replaces the global manager. It must run before anything records.
func Init(opts ...Option) {
	globalManager = NewManager(opts...)
}

// NewManager creates a manager registered on its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:    "tapbeat",
		subsystem:    "engine",
		errorBuckets: []float64{0.005, 0.015, 0.03, 0.045, 0.06, 0.09, 0.12, 0.15, 0.225, 0.3},
		registry:     prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// Handler serves the manager's registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.taps = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "taps_total",
		Help:      "Judged taps by tier",
	}, []string{"tier"})

	m.tapError = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tap_error_seconds",
		Help:      "Absolute timing error of judged taps",
		Buckets:   m.errorBuckets,
	})

	m.gridLocks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "grid_locks_total",
		Help:      "Completed tap tempo calibrations",
	})

	m.gridResets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "grid_resets_total",
		Help:      "Explicit or gesture resets of the beat grid",
	})

	m.gridBPM = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "grid_bpm",
		Help:      "Current tempo of the beat grid, 0 when unlocked",
	})

	m.tempoNudge = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tempo_corrections_total",
		Help:      "Tempo adjustments made from a systematic tap bias",
	})

	m.onsets = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "onsets_detected_total",
		Help:      "Onsets reported by each source",
	}, []string{"source"})

	m.corrections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "onset_corrections_total",
		Help:      "External onset corrections by source and outcome",
	}, []string{"source", "outcome"})

	m.analysis = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analysis_duration_seconds",
		Help:      "Wall time of offline track analysis",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	m.lappedReads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "capture_lapped_total",
		Help:      "Polls where the capture writer had lapped the reader",
	}, []string{"source"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Events waiting for the next tick",
	})

	m.queueEnqueue = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Events accepted by the queue",
	})

	m.queueDequeue = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Events drained by ticks",
	})

	m.queueDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dropped_total",
		Help:      "Events rejected by the queue",
	}, []string{"reason"})
}

// RecordTap counts a judged tap and observes its absolute error.
func RecordTap(tier string, absErrorSeconds float64) {
	globalManager.taps.WithLabelValues(tier).Inc()
	globalManager.tapError.Observe(absErrorSeconds)
}

// RecordMiss counts a miss that has no meaningful timing error.
func RecordMiss(tier string) {
	globalManager.taps.WithLabelValues(tier).Inc()
}

// RecordGridLock counts a calibration and publishes the new tempo.
func RecordGridLock(bpm float64) {
	globalManager.gridLocks.Inc()
	globalManager.gridBPM.Set(bpm)
}

// RecordGridReset counts a reset and zeroes the tempo gauge.
func RecordGridReset() {
	globalManager.gridResets.Inc()
	globalManager.gridBPM.Set(0)
}

// RecordTempoCorrection counts a bias driven tempo change.
func RecordTempoCorrection(bpm float64) {
	globalManager.tempoNudge.Inc()
	globalManager.gridBPM.Set(bpm)
}

// RecordOnset counts an onset reported by source.
func RecordOnset(source string) {
	globalManager.onsets.WithLabelValues(source).Inc()
}

// RecordCorrection counts an external correction outcome.
func RecordCorrection(source, outcome string) {
	globalManager.corrections.WithLabelValues(source, outcome).Inc()
}

// RecordAnalysis observes the duration of an offline analysis.
func RecordAnalysis(seconds float64) {
	globalManager.analysis.Observe(seconds)
}

// RecordLapped counts a capture poll that found the writer ahead by more than the ring.
func RecordLapped(source string) {
	globalManager.lappedReads.WithLabelValues(source).Inc()
}

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// RecordQueueEnqueue counts an accepted event.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue counts a drained event.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueDrop counts a rejected event.
func RecordQueueDrop(reason string) {
	globalManager.queueDropped.WithLabelValues(reason).Inc()
}

// Handler serves the global registry in the Prometheus exposition format.
func Handler() http.Handler {
	return globalManager.Handler()
}
