package async

import "github.com/prometheus/client_golang/prometheus"

var (
	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "label_approvals",
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Number of analysis tasks waiting in queue.",
		},
	)

	queueActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "label_approvals",
			Subsystem: "queue",
			Name:      "active_tasks",
			Help:      "Number of analysis tasks currently being processed.",
		},
	)

	tasksProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "label_approvals",
			Subsystem: "queue",
			Name:      "tasks_processed_total",
			Help:      "Analysis tasks taken off the queue, by result.",
		},
		[]string{"result"},
	)

	tasksRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "label_approvals",
			Subsystem: "queue",
			Name:      "tasks_rejected_total",
			Help:      "Analysis tasks refused because the queue was closed or the caller gave up.",
		},
	)
)

func init() {
	prometheus.MustRegister(queueDepth)
	prometheus.MustRegister(queueActive)
	prometheus.MustRegister(tasksProcessed)
	prometheus.MustRegister(tasksRejected)
}
