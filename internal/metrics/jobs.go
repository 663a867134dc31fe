// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus instrumentation for the job pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobsStarted counts submitted jobs.
	JobsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ytgrab_jobs_started_total",
		Help: "Total jobs submitted",
	})

	// JobsCompleted counts jobs that reached the completed state.
	JobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ytgrab_jobs_completed_total",
		Help: "Total jobs that completed successfully",
	})

	// JobsFailed counts jobs that reached the error state, by failing stage.
	JobsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytgrab_jobs_failed_total",
		Help: "Total jobs that failed",
	}, []string{"stage"})

	// StageDuration tracks wall time per pipeline stage.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ytgrab_job_stage_duration_seconds",
		Help:    "Duration of job pipeline stages",
		Buckets: prometheus.ExponentialBuckets(0.1, 2.0, 14), // 100ms to ~13m
	}, []string{"stage"})

	// TaggingFailures counts non-fatal artwork embedding failures.
	TaggingFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ytgrab_tagging_failures_total",
		Help: "Total non-fatal artwork embedding failures",
	})
)
