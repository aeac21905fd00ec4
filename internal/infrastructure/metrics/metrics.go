// Package metrics expone contadores Prometheus del servicio. Implementa los
// puertos de métricas que declaran los casos de uso, así la capa de aplicación
// no conoce Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Almacen-api/internal/application/alerts"
	"github.com/jhoicas/Almacen-api/internal/application/analytics"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
)

var (
	_ stock.Metrics     = (*Metrics)(nil)
	_ alerts.Metrics    = (*Metrics)(nil)
	_ analytics.Metrics = (*Metrics)(nil)
)

// Metrics agrupa los contadores del servicio sobre un registry propio.
type Metrics struct {
	registry  *prometheus.Registry
	mutations *prometheus.CounterVec
	alerts    *prometheus.CounterVec
	queries   *prometheus.CounterVec
}

// New crea los contadores y los registra en un registry nuevo.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "almacen_stock_mutations_total",
			Help: "Mutaciones de stock aplicadas, por acción del ledger.",
		}, []string{"action"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "almacen_alerts_created_total",
			Help: "Alertas creadas por el evaluador, por tipo.",
		}, []string{"kind"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "almacen_analytics_queries_total",
			Help: "Consultas de analítica servidas, por reporte.",
		}, []string{"report"}),
	}
	m.registry.MustRegister(m.mutations, m.alerts, m.queries)
	return m
}

// MutationApplied incrementa el contador de mutaciones.
func (m *Metrics) MutationApplied(action string) {
	m.mutations.WithLabelValues(action).Inc()
}

// AlertCreated incrementa el contador de alertas.
func (m *Metrics) AlertCreated(kind string) {
	m.alerts.WithLabelValues(kind).Inc()
}

// QueryServed incrementa el contador de reportes de analítica.
func (m *Metrics) QueryServed(report string) {
	m.queries.WithLabelValues(report).Inc()
}

// Handler devuelve el handler HTTP del endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
