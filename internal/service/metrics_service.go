package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/course-registration-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the registration workflows.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	registrations   *prometheus.CounterVec
	drops           prometheus.Counter
	promotions      prometheus.Counter
}

// NewMetricsService registers the collectors.
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

	registrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registrations_total",
		Help: "Total registrations by resulting enrollment status",
	}, []string{"status"})

	drops := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "drops_total",
		Help: "Total completed drop workflows",
	})

	promotions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waitlist_promotions_total",
		Help: "Total students promoted from a waitlist into a seat",
	})

	registry.MustRegister(requestDuration, requestTotal, registrations, drops, promotions)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		registrations:   registrations,
		drops:           drops,
		promotions:      promotions,
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records duration and count for a completed request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if s == nil {
		return
	}
	code := strconv.Itoa(status)
	s.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(method, path, code).Inc()
}

// RecordRegistration counts a successful registration by resulting status.
func (s *MetricsService) RecordRegistration(status models.EnrollmentStatus) {
	if s == nil {
		return
	}
	s.registrations.WithLabelValues(string(status)).Inc()
}

// RecordDrop counts a completed drop workflow.
func (s *MetricsService) RecordDrop() {
	if s == nil {
		return
	}
	s.drops.Inc()
}

// RecordPromotion counts a completed waitlist promotion.
func (s *MetricsService) RecordPromotion() {
	if s == nil {
		return
	}
	s.promotions.Inc()
}
