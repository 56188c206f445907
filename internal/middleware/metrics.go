package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal        atomic.Uint64
	RequestsInProgress   atomic.Int64
	RequestsSuccess      atomic.Uint64
	RequestsFailed       atomic.Uint64
	SubmissionsTotal     atomic.Uint64
	SubmissionsPersisted atomic.Uint64
	SubmissionsSkipped   atomic.Uint64
	SubmissionsRejected  atomic.Uint64
	StartTime            time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// SubmissionOutcome is what happened to one submission
type SubmissionOutcome int

const (
	OutcomePersisted SubmissionOutcome = iota
	OutcomeSkipped                     // no identity
	OutcomeRejected                    // failed validation
)

// RecordSubmission counts one submission by outcome
func RecordSubmission(o SubmissionOutcome) {
	globalMetrics.SubmissionsTotal.Add(1)
	switch o {
	case OutcomePersisted:
		globalMetrics.SubmissionsPersisted.Add(1)
	case OutcomeSkipped:
		globalMetrics.SubmissionsSkipped.Add(1)
	case OutcomeRejected:
		globalMetrics.SubmissionsRejected.Add(1)
	}
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":        globalMetrics.RequestsTotal.Load(),
		"requests_in_progress":  globalMetrics.RequestsInProgress.Load(),
		"requests_success":      globalMetrics.RequestsSuccess.Load(),
		"requests_failed":       globalMetrics.RequestsFailed.Load(),
		"submissions_total":     globalMetrics.SubmissionsTotal.Load(),
		"submissions_persisted": globalMetrics.SubmissionsPersisted.Load(),
		"submissions_skipped":   globalMetrics.SubmissionsSkipped.Load(),
		"submissions_rejected":  globalMetrics.SubmissionsRejected.Load(),
		"uptime_seconds":        time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		globalMetrics.RequestsTotal.Add(1)
		globalMetrics.RequestsInProgress.Add(1)
		defer globalMetrics.RequestsInProgress.Add(-1)

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			globalMetrics.RequestsSuccess.Add(1)
		} else {
			globalMetrics.RequestsFailed.Add(1)
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}
