// Package monitor exposes the server's Prometheus metrics.
package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	ConnectedClients prometheus.Gauge
	MessagesReceived prometheus.Counter
	MovesTotal       prometheus.Counter
	GamesFinished    *prometheus.CounterVec
}

// New builds and registers the metric set. activeRooms is sampled on scrape
// so the gauge can never drift from the registry, janitor expiry included.
func New(reg prometheus.Registerer, namespace string, activeRooms func() float64) *Metrics {
	m := &Metrics{
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Number of open WebSocket connections",
		}),
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total number of inbound WebSocket messages",
		}),
		MovesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Total number of accepted moves",
		}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Total number of finished games by outcome",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.ConnectedClients,
		m.MessagesReceived,
		m.MovesTotal,
		m.GamesFinished,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of rooms currently in the registry",
		}, activeRooms),
	)

	return m
}

func (m *Metrics) ObserveFinishedGame(draw bool) {
	outcome := "win"
	if draw {
		outcome = "draw"
	}

	m.GamesFinished.WithLabelValues(outcome).Inc()
}
