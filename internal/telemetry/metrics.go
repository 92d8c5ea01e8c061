package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magefree/monopoly-server-go/internal/game/rules"
)

// Metrics exports game activity to prometheus.
type Metrics struct {
	Events        *prometheus.CounterVec
	MoneyMoved    *prometheus.CounterVec
	DiceTotals    prometheus.Histogram
	Turns         prometheus.Gauge
	Bankruptcies  prometheus.Counter
	GamesFinished prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Number of game events published, by type",
		}, []string{"type"}),
		MoneyMoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "money_moved_total",
			Help:      "Dollars moved by money events, by type",
		}, []string{"type"}),
		DiceTotals: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dice_total",
			Help:      "Distribution of dice totals",
			Buckets:   prometheus.LinearBuckets(2, 1, 11),
		}),
		Turns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "turn_number",
			Help:      "Turn number of the most recently completed turn",
		}),
		Bankruptcies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bankruptcies_total",
			Help:      "Number of players declared bankrupt",
		}),
		GamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Number of games that reached game over",
		}),
	}

	reg.MustRegister(
		m.Events,
		m.MoneyMoved,
		m.DiceTotals,
		m.Turns,
		m.Bankruptcies,
		m.GamesFinished,
	)

	return m
}

// Observe updates the collectors from one event. It has the shape of a
// rules.Listener.
func (m *Metrics) Observe(evt rules.Event) {
	m.Events.WithLabelValues(string(evt.Type)).Inc()
	if IsMoney(evt.Type) && evt.Amount > 0 {
		m.MoneyMoved.WithLabelValues(string(evt.Type)).Add(float64(evt.Amount))
	}

	switch evt.Type {
	case rules.EventDiceRolled:
		m.DiceTotals.Observe(float64(evt.Amount))
	case rules.EventTurnCompleted:
		m.Turns.Set(float64(evt.Amount))
	case rules.EventPlayerBankrupt:
		m.Bankruptcies.Inc()
	case rules.EventGameOver:
		m.GamesFinished.Inc()
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
