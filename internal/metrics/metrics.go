// Package metrics exposes the relay's Prometheus surface.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the relay's counters behind a private registry.
type Metrics struct {
	registry *prometheus.Registry
	fills    *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	fills := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fills_total",
			Help: "Number of decoded fills",
		},
		[]string{"market", "isGlobal", "takerIsBuy"},
	)
	registry.MustRegister(fills)

	return &Metrics{registry: registry, fills: fills}
}

// RecordFill increments the fill counter once per decoded fill.
func (m *Metrics) RecordFill(market string, isGlobal, takerIsBuy bool) {
	m.fills.WithLabelValues(market, strconv.FormatBool(isGlobal), strconv.FormatBool(takerIsBuy)).Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
