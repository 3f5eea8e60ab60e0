package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/igorsal/commit-reviewer/internal/interfaces"
)

// PrometheusCollector implements the MetricsCollector interface using Prometheus
type PrometheusCollector struct {
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
}

// NewPrometheusCollector creates a new Prometheus metrics collector
func NewPrometheusCollector() interfaces.MetricsCollector {
	collector := &PrometheusCollector{
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}

	// Initialize common metrics
	collector.initializeMetrics()

	return collector
}

func (p *PrometheusCollector) initializeMetrics() {
	// HTTP request metrics
	p.counters["http_requests_total"] = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commit_reviewer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	p.histograms["http_request_duration_seconds"] = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "commit_reviewer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// GitLab API metrics
	p.counters["gitlab_requests_total"] = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commit_reviewer_gitlab_requests_total",
			Help: "Total number of GitLab API requests",
		},
		[]string{"service", "operation", "status"},
	)

	p.histograms["gitlab_request_duration_seconds"] = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "commit_reviewer_gitlab_request_duration_seconds",
			Help:    "GitLab API request duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		},
		[]string{"service", "operation"},
	)

	// DingTalk webhook metrics
	p.counters["dingtalk_notifications_total"] = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commit_reviewer_dingtalk_notifications_total",
			Help: "Total number of DingTalk webhook deliveries",
		},
		[]string{"service", "kind", "status"},
	)

	p.histograms["dingtalk_notification_duration_seconds"] = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "commit_reviewer_dingtalk_notification_duration_seconds",
			Help:    "DingTalk webhook delivery duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"service", "kind"},
	)

	// Business metrics
	p.counters["commit_reviews_total"] = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commit_reviewer_commit_reviews_total",
			Help: "Total number of commit reviews performed",
		},
		[]string{"project", "status"},
	)

	p.histograms["push_pipeline_duration_seconds"] = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "commit_reviewer_push_pipeline_duration_seconds",
			Help:    "End-to-end push pipeline duration in seconds",
			Buckets: []float64{1.0, 5.0, 10.0, 30.0, 60.0, 120.0},
		},
		[]string{"project"},
	)

	p.gauges["last_review_score"] = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "commit_reviewer_last_review_score",
			Help: "Overall score of the most recent commit review",
		},
		[]string{"project"},
	)

	// Circuit breaker metrics
	p.gauges["circuit_breaker_state"] = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "commit_reviewer_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"service", "name"},
	)
}

// IncrementCounter increments a counter metric
func (p *PrometheusCollector) IncrementCounter(name string, labels map[string]string) {
	counter, exists := p.counters[name]
	if !exists {
		return
	}

	counter.With(labels).Inc()
}

// RecordDuration records a duration in a histogram
func (p *PrometheusCollector) RecordDuration(name string, duration float64, labels map[string]string) {
	histogram, exists := p.histograms[name]
	if !exists {
		return
	}

	histogram.With(labels).Observe(duration)
}

// SetGauge sets a gauge value
func (p *PrometheusCollector) SetGauge(name string, value float64, labels map[string]string) {
	gauge, exists := p.gauges[name]
	if !exists {
		return
	}

	gauge.With(labels).Set(value)
}
