package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the result computation engine.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	recomputeDuration *prometheus.HistogramVec
	resultsRecorded   prometheus.Counter
	summariesBuilt    prometheus.Counter
	lockTimeouts      prometheus.Counter
	reportJobs        *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	recomputeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cohort_recompute_duration_seconds",
		Help:    "Duration of cohort ranking and summary recomputation",
		Buckets: prometheus.DefBuckets,
	}, []string{"scope"})

	resultsRecorded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "results_recorded_total",
		Help: "Total subject result rows recorded",
	})

	summariesBuilt := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "term_summaries_built_total",
		Help: "Total term summaries recomputed",
	})

	lockTimeouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cohort_lock_timeouts_total",
		Help: "Total cohort lock acquisitions that timed out",
	})

	reportJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_jobs_total",
		Help: "Report card jobs by terminal status",
	}, []string{"status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, recomputeDuration, resultsRecorded, summariesBuilt, lockTimeouts, reportJobs, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		recomputeDuration: recomputeDuration,
		resultsRecorded:   resultsRecorded,
		summariesBuilt:    summariesBuilt,
		lockTimeouts:      lockTimeouts,
		reportJobs:        reportJobs,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveCohortRecompute records the duration of a derived-field
// recomputation. Scope is "subject" for cohort ranking and "class" for
// term summary rebuilds.
func (m *MetricsService) ObserveCohortRecompute(scope string, seconds float64) {
	if m == nil {
		return
	}
	m.recomputeDuration.WithLabelValues(scope).Observe(seconds)
}

// IncResultsRecorded counts recorded result rows.
func (m *MetricsService) IncResultsRecorded(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.resultsRecorded.Add(float64(n))
}

// IncSummariesBuilt counts recomputed term summaries.
func (m *MetricsService) IncSummariesBuilt(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.summariesBuilt.Add(float64(n))
}

// IncLockTimeout counts lock acquisition timeouts.
func (m *MetricsService) IncLockTimeout() {
	if m == nil {
		return
	}
	m.lockTimeouts.Inc()
}

// IncReportJob counts a report job reaching a terminal status.
func (m *MetricsService) IncReportJob(status string) {
	if m == nil {
		return
	}
	m.reportJobs.WithLabelValues(status).Inc()
}
