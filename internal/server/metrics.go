package server

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tsawler/patro"
)

type metrics struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	documentsTotal     *prometheus.CounterVec
	documentPages      *prometheus.HistogramVec
	generationDuration *prometheus.HistogramVec
	warningsTotal      *prometheus.CounterVec
}

// setupMetrics registers the collectors on a private registry and serves
// them on /metrics.
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	m := &metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		documentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "patro_documents_generated_total",
				Help: "Documents generated, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		documentPages: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "patro_document_pages",
				Help:    "Pages per generated document",
				Buckets: []float64{1, 2, 4, 8, 12, 16, 24, 32, 64},
			},
			[]string{"kind"},
		),
		generationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "patro_generation_duration_seconds",
				Help:    "Document generation time in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"kind"},
		),
		warningsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "patro_generation_warnings_total",
				Help: "Generation warnings, by kind",
			},
			[]string{"kind"},
		),
	}
	registry.MustRegister(m.requestsTotal, m.requestDuration, m.documentsTotal,
		m.documentPages, m.generationDuration, m.warningsTotal)
	s.metrics = m

	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			m.requestsTotal.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(c.Request().Method, c.Path()).Observe(time.Since(start).Seconds())
			return err
		}
	})

	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}

// observeGeneration records one generation. It is a no-op when metrics are
// disabled.
func (s *Server) observeGeneration(kind string, pages int, warnings []patro.Warning, elapsed time.Duration, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.documentsTotal.WithLabelValues(kind, outcome).Inc()
	s.metrics.generationDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if err == nil {
		s.metrics.documentPages.WithLabelValues(kind).Observe(float64(pages))
	}
	for _, w := range warnings {
		s.metrics.warningsTotal.WithLabelValues(w.Kind.String()).Inc()
	}
}
