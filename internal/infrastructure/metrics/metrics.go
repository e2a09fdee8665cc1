package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConflictMetrics covers the detection and resolution pipeline.
type ConflictMetrics struct {
	ConflictsDetectedTotal prometheus.CounterVec
	ConflictsResolvedTotal prometheus.CounterVec
	DealsDisputedTotal     prometheus.Counter
	DetectionDuration      prometheus.Histogram
	DetectionErrorsTotal   prometheus.CounterVec
	DealsSubmittedTotal    prometheus.CounterVec
}

func NewConflictMetrics() *ConflictMetrics {
	return &ConflictMetrics{
		ConflictsDetectedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conflicts_detected_total",
				Help: "Conflicts persisted by the detection engine",
			},
			[]string{"conflict_type", "severity"},
		),

		ConflictsResolvedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conflicts_resolved_total",
				Help: "Conflicts moved to a terminal resolution status",
			},
			[]string{"resolution"},
		),

		DealsDisputedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "deals_disputed_total",
				Help: "Deals moved to DISPUTED by a high-severity conflict",
			},
		),

		DetectionDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "conflict_detection_duration_seconds",
				Help:    "Time to run one detection pass",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
			},
		),

		DetectionErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conflict_detection_errors_total",
				Help: "Detection pipeline errors by stage",
			},
			[]string{"error_type"},
		),

		DealsSubmittedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deals_submitted_total",
				Help: "Deals accepted through the submission flow",
			},
			[]string{"territory"},
		),
	}
}

func (m *ConflictMetrics) RecordConflictDetected(conflictType, severity string) {
	m.ConflictsDetectedTotal.WithLabelValues(conflictType, severity).Inc()
}

func (m *ConflictMetrics) RecordConflictResolved(resolution string) {
	m.ConflictsResolvedTotal.WithLabelValues(resolution).Inc()
}

func (m *ConflictMetrics) RecordDealDisputed() {
	m.DealsDisputedTotal.Inc()
}

func (m *ConflictMetrics) ObserveDetectionDuration(seconds float64) {
	m.DetectionDuration.Observe(seconds)
}

func (m *ConflictMetrics) RecordDetectionError(errorType string) {
	m.DetectionErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *ConflictMetrics) RecordDealSubmitted(territory string) {
	m.DealsSubmittedTotal.WithLabelValues(territory).Inc()
}
