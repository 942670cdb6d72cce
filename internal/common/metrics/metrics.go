// internal/common/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"volunteer-engine/internal/engine/pipeline"
	"volunteer-engine/internal/engine/workload"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of job processing in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"task_type"},
	)
)

// EngineMetrics records analysis runs. It satisfies pipeline.Recorder.
type EngineMetrics struct {
	runs           *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	membersScored  *prometheus.CounterVec
	memberFailures *prometheus.CounterVec
	burnout        *prometheus.GaugeVec
}

var _ pipeline.Recorder = (*EngineMetrics)(nil)

// NewEngineMetrics registers the engine collectors with reg.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	f := promauto.With(reg)
	return &EngineMetrics{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "volunteer_engine_runs_total",
			Help: "Analysis runs by kind and outcome",
		}, []string{"kind", "status"}),
		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "volunteer_engine_run_duration_seconds",
			Help:    "Wall time of analysis runs",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"kind"}),
		membersScored: f.NewCounterVec(prometheus.CounterOpts{
			Name: "volunteer_engine_members_processed_total",
			Help: "Members processed by kind and outcome",
		}, []string{"kind", "outcome"}),
		memberFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "volunteer_engine_member_failures_total",
			Help: "Members whose work failed, by stage and error code",
		}, []string{"kind", "stage", "code"}),
		burnout: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "volunteer_engine_burnout_risk_volunteers",
			Help: "Volunteers per burnout risk level from the latest workload run",
		}, []string{"tenant", "risk"}),
	}
}

func (m *EngineMetrics) RunCompleted(kind, status string, duration time.Duration) {
	m.runs.WithLabelValues(kind, status).Inc()
	m.runDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (m *EngineMetrics) MemberProcessed(kind, outcome string) {
	m.membersScored.WithLabelValues(kind, outcome).Inc()
}

func (m *EngineMetrics) MemberFailed(kind, stage, code string) {
	m.memberFailures.WithLabelValues(kind, stage, code).Inc()
}

func (m *EngineMetrics) BurnoutDistribution(tenantID string, dist workload.RiskDistribution) {
	m.burnout.WithLabelValues(tenantID, "LOW").Set(float64(dist.Low))
	m.burnout.WithLabelValues(tenantID, "MEDIUM").Set(float64(dist.Medium))
	m.burnout.WithLabelValues(tenantID, "HIGH").Set(float64(dist.High))
	m.burnout.WithLabelValues(tenantID, "CRITICAL").Set(float64(dist.Critical))
}

// Handler serves the default registry, which holds the worker and engine collectors.
func Handler() http.Handler {
	return promhttp.Handler()
}
