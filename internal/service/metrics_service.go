package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/timetabler-api/internal/domain"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP surface
// and the solver workers.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	jobsStarted   prometheus.Counter
	jobsFinished  *prometheus.CounterVec
	improvements  prometheus.Counter
	solveDuration prometheus.Histogram
	bestHardScore *prometheus.GaugeVec
	bestSoftScore *prometheus.GaugeVec
}

// NewMetricsService registers the service collectors.
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

	jobsStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solver_jobs_started_total",
		Help: "Total number of solver jobs launched",
	})

	jobsFinished := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solver_jobs_finished_total",
		Help: "Total number of solver jobs finished by outcome",
	}, []string{"outcome"})

	improvements := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solver_improvements_published_total",
		Help: "Total number of improving solutions published to the cache",
	})

	solveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "solver_solve_duration_seconds",
		Help:    "Wall time of solver runs in seconds",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	bestHardScore := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solver_best_hard_score",
		Help: "Hard score of the latest published best solution per term",
	}, []string{"term_id"})

	bestSoftScore := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solver_best_soft_score",
		Help: "Soft score of the latest published best solution per term",
	}, []string{"term_id"})

	registry.MustRegister(requestDuration, requestTotal, jobsStarted, jobsFinished, improvements, solveDuration, bestHardScore, bestSoftScore)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		jobsStarted:     jobsStarted,
		jobsFinished:    jobsFinished,
		improvements:    improvements,
		solveDuration:   solveDuration,
		bestHardScore:   bestHardScore,
		bestSoftScore:   bestSoftScore,
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// ObserveHTTPRequest records one handled request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	m.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(labels...).Inc()
}

// JobStarted counts a launched solver job.
func (m *MetricsService) JobStarted() {
	m.jobsStarted.Inc()
}

// JobFinished counts a finished job and its wall time.
func (m *MetricsService) JobFinished(outcome string, took time.Duration) {
	m.jobsFinished.WithLabelValues(outcome).Inc()
	m.solveDuration.Observe(took.Seconds())
}

// ImprovementPublished counts a cache publish and tracks the best scores.
func (m *MetricsService) ImprovementPublished(termID string, score domain.Score) {
	m.improvements.Inc()
	m.bestHardScore.WithLabelValues(termID).Set(float64(score.Hard))
	m.bestSoftScore.WithLabelValues(termID).Set(float64(score.Soft))
}
