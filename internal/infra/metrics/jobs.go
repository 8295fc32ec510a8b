package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsProcessedTotal, jobDurationSeconds, jobsDispatchedTotal) }

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "conversion_jobs_processed_total",
		Help: "Total number of conversion jobs processed, labeled by kind and terminal status.",
	},
	[]string{"kind", "status"}, // 'success', 'failure'
)

var jobsDispatchedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "conversion_jobs_dispatched_total",
		Help: "Total number of conversion jobs accepted for processing.",
	},
	[]string{"kind"},
)

var jobDurationSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "conversion_job_duration_seconds",
		Help:    "Wall-clock duration of conversion jobs from pickup to terminal state.",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	},
	[]string{"kind"},
)

func IncJobDispatched(kind string) {
	jobsDispatchedTotal.WithLabelValues(norm(kind)).Inc()
}

func ObserveJob(kind, status string, seconds float64) {
	jobsProcessedTotal.WithLabelValues(norm(kind), norm(status)).Inc()
	jobDurationSeconds.WithLabelValues(norm(kind)).Observe(seconds)
}
