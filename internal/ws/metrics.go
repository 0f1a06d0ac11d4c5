package ws

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	GamesStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bussen_games_started_total",
			Help: "Total games started",
		},
	)
	GamesFinished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bussen_games_finished_total",
			Help: "Total games that reached the end of the bus",
		},
	)
	GameActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bussen_game_actions_total",
			Help: "Total game actions handled, by phase and type",
		},
		[]string{"phase", "type"},
	)
)

func init() {
	prometheus.MustRegister(GamesStarted)
	prometheus.MustRegister(GamesFinished)
	prometheus.MustRegister(GameActions)
}
