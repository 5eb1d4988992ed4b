// Package metrics provides observability for the game server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers server-wide gauges and counters.
type Collector struct {
	SessionsOnline prometheus.Gauge
	RoomsOpen      prometheus.Gauge
	GamesRunning   prometheus.Gauge

	MessagesIn     prometheus.Counter
	EventsEmitted  prometheus.Counter
	ArchivesStored prometheus.Counter
	ArchiveErrors  prometheus.Counter
	GameAborts     prometheus.Counter
}

var collector = newCollector(prometheus.DefaultRegisterer)

func newCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		SessionsOnline: f.NewGauge(prometheus.GaugeOpts{
			Name: "salem_sessions_online",
			Help: "Connected player sessions.",
		}),
		RoomsOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "salem_rooms_open",
			Help: "Rooms currently in the registry.",
		}),
		GamesRunning: f.NewGauge(prometheus.GaugeOpts{
			Name: "salem_games_running",
			Help: "Rooms with a match in progress.",
		}),
		MessagesIn: f.NewCounter(prometheus.CounterOpts{
			Name: "salem_messages_in_total",
			Help: "Client frames accepted by the dispatcher.",
		}),
		EventsEmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "salem_events_emitted_total",
			Help: "Events fanned out to sessions.",
		}),
		ArchivesStored: f.NewCounter(prometheus.CounterOpts{
			Name: "salem_archives_stored_total",
			Help: "Match transcripts written to storage.",
		}),
		ArchiveErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "salem_archive_errors_total",
			Help: "Failed transcript writes.",
		}),
		GameAborts: f.NewCounter(prometheus.CounterOpts{
			Name: "salem_game_aborts_total",
			Help: "Matches ended by an internal fault.",
		}),
	}
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
