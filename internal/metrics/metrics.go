// Package metrics exposes relay counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	// EventsRelayed counts inbound frames dispatched to the engine,
	// labeled by event name.
	EventsRelayed *prometheus.CounterVec
	// Uploads counts files accepted by the upload endpoint.
	Uploads prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		EventsRelayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_events_total",
			Help: "Inbound events dispatched to the relay engine.",
		}, []string{"event"}),
		Uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_uploads_total",
			Help: "Files accepted by the upload endpoint.",
		}),
	}
	reg.MustRegister(m.EventsRelayed, m.Uploads)
	return m
}

// ObserveEngine registers live gauges backed by the engine's own counts.
func (m *Metrics) ObserveEngine(rooms, conns func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "relay_rooms_active",
		Help: "Rooms currently holding at least one member.",
	}, func() float64 { return float64(rooms()) }))
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "relay_connections_active",
		Help: "Live websocket connections.",
	}, func() float64 { return float64(conns()) }))
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
