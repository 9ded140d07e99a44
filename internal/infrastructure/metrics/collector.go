// Package metrics expone métricas Prometheus del servicio: peticiones HTTP y resoluciones
// de backends (planificadores y detectores) con su desenlace.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Despensa-api/internal/application/backend"
)

const namespace = "despensa"

// Desenlaces de una resolución de backend.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeFailed   = "failed"
)

// Collector agrupa las métricas en un registro propio (no el global).
type Collector struct {
	registry *prometheus.Registry

	backendRuns  *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var _ backend.Recorder = (*Collector)(nil)

// New crea el colector con las métricas de proceso y de Go incluidas.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		backendRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_runs_total",
				Help:      "Resoluciones de backend por familia, backend pedido, backend usado y desenlace.",
			},
			[]string{"kind", "requested", "used", "outcome"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Peticiones HTTP por método, ruta y estado.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duración de las peticiones HTTP.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	c.registry.MustRegister(
		c.backendRuns,
		c.httpRequests,
		c.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Record implementa backend.Recorder.
func (c *Collector) Record(kind string, meta backend.Meta, err error) {
	outcome := OutcomeOK
	switch {
	case err != nil:
		outcome = OutcomeFailed
	case meta.Degraded:
		outcome = OutcomeDegraded
	}
	c.backendRuns.WithLabelValues(kind, meta.Requested, meta.Used, outcome).Inc()
}

// Middleware mide cada petición usando el patrón de ruta (no la URL) como etiqueta.
func (c *Collector) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := ctx.Route().Path
		method := ctx.Method()
		c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		c.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Gatherer expone el registro propio (pruebas y exportadores externos).
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

// Handler sirve /metrics en formato de exposición de Prometheus.
func (c *Collector) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
}
