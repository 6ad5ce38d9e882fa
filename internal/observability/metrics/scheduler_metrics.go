package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SchedulerMetrics captures background job health signals.
type SchedulerMetrics struct {
	jobRuns      *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	jobTimeouts  *prometheus.CounterVec
	jobErrors    *prometheus.CounterVec
	ordersSynced prometheus.Counter
	syncFailures prometheus.Counter
}

var (
	schedulerOnce    sync.Once
	schedulerMetrics *SchedulerMetrics
)

// Scheduler returns the singleton scheduler metrics registry.
func Scheduler() *SchedulerMetrics {
	schedulerOnce.Do(func() {
		schedulerMetrics = &SchedulerMetrics{
			jobRuns: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "opshub",
				Subsystem: "scheduler",
				Name:      "job_runs_total",
				Help:      "Scheduler job executions by job name.",
			}, []string{"job"}),
			jobDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "opshub",
				Subsystem: "scheduler",
				Name:      "job_duration_seconds",
				Help:      "Scheduler job duration by job name.",
				Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
			}, []string{"job"}),
			jobTimeouts: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "opshub",
				Subsystem: "scheduler",
				Name:      "job_timeouts_total",
				Help:      "Scheduler job soft timeouts by job name.",
			}, []string{"job"}),
			jobErrors: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "opshub",
				Subsystem: "scheduler",
				Name:      "job_errors_total",
				Help:      "Scheduler job failures by job name.",
			}, []string{"job"}),
			ordersSynced: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "opshub",
				Subsystem: "sync",
				Name:      "orders_synced_total",
				Help:      "Orders upserted from the upstream platform.",
			}),
			syncFailures: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "opshub",
				Subsystem: "sync",
				Name:      "order_failures_total",
				Help:      "Orders that failed to sync inside a pass.",
			}),
		}
	})
	return schedulerMetrics
}

func (m *SchedulerMetrics) IncJobRun(job string) {
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) ObserveJobDuration(job string, d time.Duration) {
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *SchedulerMetrics) IncJobTimeout(job string) {
	m.jobTimeouts.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) IncJobError(job string) {
	m.jobErrors.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) AddOrdersSynced(n int) {
	m.ordersSynced.Add(float64(n))
}

func (m *SchedulerMetrics) IncSyncFailure() {
	m.syncFailures.Inc()
}
