package ingest

import "github.com/prometheus/client_golang/prometheus"

var manifestsProcessed = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "label_approvals",
		Subsystem: "ingest",
		Name:      "manifests_total",
		Help:      "Inbox manifests processed, by result.",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(manifestsProcessed)
}
