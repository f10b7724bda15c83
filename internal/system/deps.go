package system

import (
	"github.com/isleclash/server/internal/config"
	"github.com/isleclash/server/internal/core/ecs"
	"github.com/isleclash/server/internal/core/event"
	"github.com/isleclash/server/internal/data"
	"github.com/isleclash/server/internal/metrics"
	"github.com/isleclash/server/internal/net"
	"github.com/isleclash/server/internal/path"
	"github.com/isleclash/server/internal/scripting"
	"github.com/isleclash/server/internal/world"
	"go.uber.org/zap"
)

// Deps is the simulation context handed to every system and packet handler.
// Everything in here is owned by the game loop goroutine.
type Deps struct {
	World     *world.State
	Attacks   *data.AttackTable
	Enemies   *data.EnemyTable
	Rules     data.RuleLookup
	Events    *event.Queue
	Planner   path.Planner
	Scripting *scripting.Engine // nil = built-in enemy decisions
	Metrics   *metrics.Collector
	Sessions  *net.SessionStore
	Intents   *Intents
	Config    *config.Config
	Log       *zap.Logger

	Tick uint64 // advanced by OutputSystem
}

// Invariant reports a broken world invariant. With debug.fail_fast it panics
// so tests and dev servers stop at the first corruption; otherwise it logs
// and the tick carries on.
func (d *Deps) Invariant(err error) {
	if err == nil {
		return
	}
	if d.Config != nil && d.Config.Debug.FailFast {
		panic(err)
	}
	d.Log.Error("世界狀態不一致", zap.Error(err), zap.Uint64("tick", d.Tick))
}

// SendTo queues a message for one session.
func (d *Deps) SendTo(sessionID uint64, msg []byte) {
	if sess := d.Sessions.Get(sessionID); sess != nil {
		sess.Send(msg)
	}
}

// Broadcast queues a message for every player on an island.
func (d *Deps) Broadcast(island uint64, msg []byte) {
	for _, p := range d.World.PlayersOn(island) {
		d.SendTo(p.SessionID, msg)
	}
}

// attackName resolves a label for logs and metrics.
func (d *Deps) attackName(id data.AttackID) string {
	if spec := d.Attacks.Get(id); spec != nil {
		return spec.Name
	}
	return "unknown"
}

func (d *Deps) reject(reason string) {
	if d.Metrics != nil {
		d.Metrics.Rejected(reason)
	}
}

func entityField(id ecs.EntityID) zap.Field { return zap.Uint64("entity", uint64(id)) }
