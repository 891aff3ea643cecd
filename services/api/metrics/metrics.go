// Package metrics exposes Prometheus instrumentation for the viewer.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	seriesQueries   *prometheus.CounterVec
	events          *prometheus.CounterVec
	exports         *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec
	catalogStations prometheus.Gauge
	catalogSkipped  prometheus.Gauge
	activeSessions  prometheus.Gauge
}

// New registers every collector on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		seriesQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pegel_series_queries_total",
			Help: "Time-series reads issued against the store, by kind.",
		}, []string{"kind"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pegel_events_total",
			Help: "Dashboard events applied to a session selection.",
		}, []string{"event"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pegel_exports_total",
			Help: "CSV exports produced, by kind.",
		}, []string{"kind"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pegel_store_query_seconds",
			Help:    "Latency of store reads.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"op"}),
		catalogStations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pegel_catalog_stations",
			Help: "Stations loaded into the catalog.",
		}),
		catalogSkipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pegel_catalog_skipped",
			Help: "Station rows excluded from the catalog.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pegel_active_sessions",
			Help: "Sessions currently holding a selection.",
		}),
	}

	m.registry.MustRegister(
		m.seriesQueries,
		m.events,
		m.exports,
		m.storeLatency,
		m.catalogStations,
		m.catalogSkipped,
		m.activeSessions,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) SeriesQuery(kind string) {
	if m == nil {
		return
	}
	m.seriesQueries.WithLabelValues(kind).Inc()
}

func (m *Metrics) Event(name string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(name).Inc()
}

func (m *Metrics) Export(kind string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(kind).Inc()
}

// ObserveStore records the time elapsed since start for op.
func (m *Metrics) ObserveStore(op string, start time.Time) {
	if m == nil {
		return
	}
	m.storeLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) SetCatalog(stations, skipped int) {
	if m == nil {
		return
	}
	m.catalogStations.Set(float64(stations))
	m.catalogSkipped.Set(float64(skipped))
}

func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
