package analysis

import "github.com/prometheus/client_golang/prometheus"

var (
	analysisRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "label_approvals",
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "The total number of label analyses, by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	analysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "label_approvals",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Time taken to extract and match one label.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"mode"},
	)

	fieldsFound = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "label_approvals",
			Subsystem: "analysis",
			Name:      "fields_found_total",
			Help:      "Compliance checks answered true, by field.",
		},
		[]string{"field"},
	)
)

const (
	outcomeOK      = "ok"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"
)

func init() {
	prometheus.MustRegister(analysisRuns)
	prometheus.MustRegister(analysisDuration)
	prometheus.MustRegister(fieldsFound)
}
