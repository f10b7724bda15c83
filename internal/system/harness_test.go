package system

import (
	"testing"
	"time"

	"github.com/isleclash/server/internal/config"
	"github.com/isleclash/server/internal/core/event"
	coresys "github.com/isleclash/server/internal/core/system"
	"github.com/isleclash/server/internal/data"
	"github.com/isleclash/server/internal/grid"
	"github.com/isleclash/server/internal/metrics"
	"github.com/isleclash/server/internal/net"
	"github.com/isleclash/server/internal/net/packet"
	"github.com/isleclash/server/internal/path"
	"github.com/isleclash/server/internal/persist"
	"github.com/isleclash/server/internal/world"
	"go.uber.org/zap/zaptest"
	"golang.org/x/time/rate"
)

const testDT = 50 * time.Millisecond

const testIsland uint64 = 1

// plate is a 13x13 sand floor at y=0 with the portal in the corner.
func plate(spawns ...grid.EnemySpawn) grid.Generator {
	return grid.GeneratorFunc(func(uint64) grid.Layout {
		var l grid.Layout
		for x := int32(-6); x <= 6; x++ {
			for z := int32(-6); z <= 6; z++ {
				l.Terrain = append(l.Terrain, grid.TerrainPlacement{Pos: grid.V(x, 0, z), Kind: grid.Sand})
			}
		}
		l.LeavePosition = grid.V(-6, 0, -6)
		l.Spawns = spawns
		return l
	})
}

type recordingSink struct {
	entries []persist.LedgerEntry
}

func (r *recordingSink) Submit(entries []persist.LedgerEntry) bool {
	r.entries = append(r.entries, entries...)
	return true
}

func (r *recordingSink) count(kind string) int {
	n := 0
	for _, e := range r.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

type harness struct {
	t      *testing.T
	deps   *Deps
	runner *coresys.Runner
	caster *Caster
	ledger *recordingSink
	nextID uint64
}

// newHarness wires the full tick the way the server binary does, minus the
// Lua engine (enemies use the built-in decision).
func newHarness(t *testing.T, spawns ...grid.EnemySpawn) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Debug.FailFast = true
	log := zaptest.NewLogger(t)

	deps := &Deps{
		World:    world.NewState(grid.NewIslands(plate(spawns...))),
		Attacks:  data.DefaultAttackTable(),
		Enemies:  data.DefaultEnemyTable(),
		Rules:    path.NewRuleTable(),
		Events:   event.NewQueue(),
		Metrics:  metrics.New(),
		Sessions: net.NewSessionStore(),
		Intents:  NewIntents(),
		Config:   cfg,
		Log:      log,
	}
	h := &harness{t: t, deps: deps, caster: NewCaster(deps), ledger: &recordingSink{}}
	NewDamagePipeline(deps)

	hub := net.NewHub(net.HubConfig{InQueueSize: 16, OutQueueSize: 1024}, log)
	r := coresys.NewRunner()
	r.Register(NewInputSystem(hub, packet.NewRegistry(log), deps, 32))
	r.Register(NewTimerSystem(deps.World))
	r.Register(NewInterruptSystem(deps.World))
	r.Register(NewIslandSystem(deps))
	r.Register(NewMovementSystem(deps))
	r.Register(NewEnemyAISystem(deps, h.caster))
	r.Register(NewCombatSystem(deps, h.caster))
	r.Register(NewProjectileSystem(deps))
	r.Register(NewEventSystem(deps.Events))
	r.Register(NewActionStateSystem(deps))
	r.Register(NewOutputSystem(deps, nil))
	r.Register(NewLedgerSystem(deps, h.ledger))
	r.Register(NewIslandSweepSystem(deps))
	r.Register(NewCleanupSystem(deps))
	h.runner = r
	return h
}

func (h *harness) tick(n int) { h.tickAt(testDT, n) }

func (h *harness) tickAt(dt time.Duration, n int) {
	for range n {
		h.runner.Tick(dt)
	}
}

func (h *harness) grid() *grid.Grid {
	h.t.Helper()
	g, _, err := h.deps.World.Islands.GetOrCreate(testIsland)
	if err != nil {
		h.t.Fatal(err)
	}
	return g
}

func (h *harness) session() *net.Session {
	h.nextID++
	sess := net.NewSession(h.nextID, 16, 1024, rate.Inf, 0, h.deps.Log)
	h.deps.Sessions.Add(sess)
	return sess
}

// player places a player directly, skipping the arrival flow.
func (h *harness) player(pos grid.Vec3) (*world.Actor, *net.Session) {
	h.t.Helper()
	h.grid()
	sess := h.session()
	p, err := h.deps.World.SpawnPlayer(testIsland, pos, sess.ID, "p", 100)
	if err != nil {
		h.t.Fatal(err)
	}
	sess.SetState(packet.StateOnIsland)
	return p, sess
}

func (h *harness) enemy(pos grid.Vec3) *world.Actor {
	h.t.Helper()
	h.grid()
	tmpl := h.deps.Enemies.Get("crab")
	e, err := h.deps.World.SpawnEnemy(testIsland, pos, tmpl, path.Standard, h.attack("EnemyStrike"))
	if err != nil {
		h.t.Fatal(err)
	}
	return e
}

func (h *harness) attack(name string) data.AttackID {
	h.t.Helper()
	spec := h.deps.Attacks.GetByName(name)
	if spec == nil {
		h.t.Fatalf("no attack %q", name)
	}
	return spec.ID
}

// opcodes drains everything flushed to a session so far.
func opcodes(sess *net.Session) []byte {
	var out []byte
	for {
		select {
		case msg := <-sess.OutQueue:
			out = append(out, msg[0])
		default:
			return out
		}
	}
}

func countEvents[T any](q *event.Queue) *int {
	n := new(int)
	event.Subscribe(q, func(T) { *n++ })
	return n
}
