package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for lookups, commands and the
// lobby. A nil *Metrics is valid and records nothing.
type Metrics struct {
	lookupsTotal  *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	commandsTotal *prometheus.CounterVec
	playersOnline prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		lookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aliases_lookups_total",
			Help: "Name-history lookups by outcome.",
		}, []string{"outcome"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aliases_lookup_stage_duration_seconds",
			Help:    "Time spent in each lookup stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		commandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aliases_commands_total",
			Help: "Commands dispatched by name.",
		}, []string{"command"}),
		playersOnline: factory.NewGauge(prometheus.GaugeOpts{
			Name: "aliases_players_online",
			Help: "Players currently connected to the lobby.",
		}),
	}
}

// ObserveLookup counts a finished lookup.
func (m *Metrics) ObserveLookup(outcome string) {
	if m == nil {
		return
	}
	m.lookupsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records how long a lookup stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveCommand counts a dispatched command.
func (m *Metrics) ObserveCommand(name string) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(name).Inc()
}

// SetPlayersOnline updates the online player gauge.
func (m *Metrics) SetPlayersOnline(n int) {
	if m == nil {
		return
	}
	m.playersOnline.Set(float64(n))
}
