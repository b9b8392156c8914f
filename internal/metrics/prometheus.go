package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LabelsAppliedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frameclassifier_labels_applied_total",
		Help: "Total number of labels set on images, by label",
	}, []string{"label"})

	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frameclassifier_frames_extracted_total",
		Help: "Total number of frames written across all extractions",
	})

	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frameclassifier_extractions_total",
		Help: "Total number of finished extraction jobs, by outcome",
	}, []string{"outcome"})

	ExtractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "frameclassifier_extraction_duration_seconds",
		Help:    "Duration of extraction jobs",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	CSVOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frameclassifier_csv_operations_total",
		Help: "Total number of csv imports and exports, by operation and outcome",
	}, []string{"operation", "outcome"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "frameclassifier_active_sessions",
		Help: "Number of classification sessions held by the server",
	})
)
