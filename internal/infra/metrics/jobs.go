package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(jobsTotal, jobStageDuration, workerQueueDepth) }

var jobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jobs_total",
		Help: "Total number of stitch jobs finished, labeled by outcome.",
	},
	[]string{"status"}, // 'succeeded', 'failed', 'rejected'
)

var jobStageDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "job_stage_duration_seconds",
		Help:    "Wall time spent in each pipeline stage.",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
	},
	[]string{"stage"},
)

var workerQueueDepth = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "worker_queue_depth",
		Help: "Jobs waiting for a free worker.",
	},
)

func IncJob(status string) {
	jobsTotal.WithLabelValues(norm(status)).Inc()
}

func ObserveStage(stage string, d time.Duration) {
	jobStageDuration.WithLabelValues(norm(stage)).Observe(d.Seconds())
}

func SetQueueDepth(n int) {
	workerQueueDepth.Set(float64(n))
}
