package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the simulation metrics on a private registry, so tests and
// multiple servers in one process never collide. Labels are bounded: attack
// names come from the static table and reasons are fixed strings.
type Collector struct {
	reg *prometheus.Registry

	tickDuration   prometheus.Histogram
	pathExpanded   prometheus.Histogram
	islands        prometheus.Gauge
	players        prometheus.Gauge
	enemies        prometheus.Gauge
	projectiles    prometheus.Gauge
	sessions       prometheus.Gauge
	damage         *prometheus.CounterVec
	attacks        *prometheus.CounterVec
	kills          *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	negated        prometheus.Counter
	islandsCreated prometheus.Counter
	islandsTorn    prometheus.Counter
	ledgerDropped  prometheus.Counter
}

// Intent rejection reasons.
const (
	RejectCooldown  = "cooldown"
	RejectStunned   = "stunned"
	RejectAttacking = "attacking"
	RejectBlocked   = "blocked"
	RejectUnknown   = "unknown_attack"
	RejectDirection = "direction"
	RejectRate      = "rate_limit"
	RejectMalformed = "malformed"
	RejectStale     = "stale"
	RejectState     = "state"
)

func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)
	return &Collector{
		reg: reg,
		tickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "isle_tick_duration_seconds",
			Help:    "Time spent in one simulation tick",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
		}),
		pathExpanded: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "isle_path_nodes_expanded",
			Help:    "A* nodes expanded per search",
			Buckets: prometheus.ExponentialBuckets(4, 4, 7),
		}),
		islands: f.NewGauge(prometheus.GaugeOpts{
			Name: "isle_islands_active",
			Help: "Islands currently loaded",
		}),
		players: f.NewGauge(prometheus.GaugeOpts{
			Name: "isle_players",
			Help: "Players on all islands",
		}),
		enemies: f.NewGauge(prometheus.GaugeOpts{
			Name: "isle_enemies",
			Help: "Enemies on all islands",
		}),
		projectiles: f.NewGauge(prometheus.GaugeOpts{
			Name: "isle_projectiles",
			Help: "Projectiles in flight",
		}),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "isle_sessions",
			Help: "Connected sessions",
		}),
		damage: f.NewCounterVec(prometheus.CounterOpts{
			Name: "isle_damage_total",
			Help: "Health removed by attacks",
		}, []string{"attack"}),
		attacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "isle_attacks_cast_total",
			Help: "Casts that passed the cooldown gate",
		}, []string{"attack"}),
		kills: f.NewCounterVec(prometheus.CounterOpts{
			Name: "isle_kills_total",
			Help: "Actors removed by damage",
		}, []string{"kind"}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "isle_intents_rejected_total",
			Help: "Client intents rejected by the server",
		}, []string{"reason"}),
		negated: f.NewCounter(prometheus.CounterOpts{
			Name: "isle_hits_negated_total",
			Help: "Hits consumed by a counter stance",
		}),
		islandsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "isle_islands_created_total",
			Help: "Islands generated on first arrival",
		}),
		islandsTorn: f.NewCounter(prometheus.CounterOpts{
			Name: "isle_islands_torn_down_total",
			Help: "Islands removed by the cleanup sweep",
		}),
		ledgerDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "isle_ledger_dropped_total",
			Help: "Ledger entries dropped because the writer queue was full",
		}),
	}
}

// Registry exposes the underlying registry (tests gather from it).
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}

func (c *Collector) ObserveTick(d time.Duration) { c.tickDuration.Observe(d.Seconds()) }
func (c *Collector) ObservePath(expanded int)    { c.pathExpanded.Observe(float64(expanded)) }

// Population is the per-tick gauge snapshot.
type Population struct {
	Islands, Players, Enemies, Projectiles, Sessions int
}

func (c *Collector) SetPopulation(p Population) {
	c.islands.Set(float64(p.Islands))
	c.players.Set(float64(p.Players))
	c.enemies.Set(float64(p.Enemies))
	c.projectiles.Set(float64(p.Projectiles))
	c.sessions.Set(float64(p.Sessions))
}

func (c *Collector) AddDamage(attack string, amount uint32) {
	c.damage.WithLabelValues(attack).Add(float64(amount))
}

func (c *Collector) AttackCast(attack string) { c.attacks.WithLabelValues(attack).Inc() }
func (c *Collector) Kill(kind string)         { c.kills.WithLabelValues(kind).Inc() }
func (c *Collector) Rejected(reason string)   { c.rejected.WithLabelValues(reason).Inc() }
func (c *Collector) Negated()                 { c.negated.Inc() }
func (c *Collector) IslandCreated()           { c.islandsCreated.Inc() }
func (c *Collector) IslandTornDown()          { c.islandsTorn.Inc() }
func (c *Collector) LedgerDropped(n int)      { c.ledgerDropped.Add(float64(n)) }
