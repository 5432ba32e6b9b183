package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
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
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	AssessmentsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessments_scored_total",
			Help: "Risk profiles produced, by scoring strategy and risk level",
		},
		[]string{"strategy", "risk_level"},
	)

	ScoringFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_failures_total",
			Help: "Scoring attempts that returned an error, by strategy",
		},
		[]string{"strategy"},
	)

	ScorerFallbackActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scorer_fallback_active",
			Help: "1 when the classifier failed to load and rule-based scoring is in use",
		},
	)

	BenchmarkDisclosures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "benchmark_disclosures_total",
			Help: "Benchmark requests by disclosure outcome",
		},
		[]string{"status"},
	)
)
