package system

import (
	"fmt"
	"time"

	"github.com/isleclash/server/internal/core/ecs"
	"github.com/isleclash/server/internal/core/event"
	coresys "github.com/isleclash/server/internal/core/system"
	"github.com/isleclash/server/internal/data"
	"github.com/isleclash/server/internal/grid"
	"github.com/isleclash/server/internal/net/packet"
	"github.com/isleclash/server/internal/world"
	"go.uber.org/zap"
)

// maxSpawnClimb bounds the search for a free arrival cell above the portal.
const maxSpawnClimb = 64

// IslandSystem applies disconnects, arrivals and departures, in that order.
// It runs first in the Update phase so the cleanup sweep of the same tick
// already sees the new player counts. Phase 2 (Update).
type IslandSystem struct {
	deps *Deps
}

func NewIslandSystem(deps *Deps) *IslandSystem {
	return &IslandSystem{deps: deps}
}

func (s *IslandSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *IslandSystem) Update(_ time.Duration) {
	for _, id := range s.deps.Intents.takeDisconnects() {
		if p, ok := s.deps.World.PlayerBySession(id); ok {
			s.leave(p, event.LeaveDisconnect)
		}
	}
	for _, req := range s.deps.Intents.takeEnters() {
		s.arrive(req)
	}
	s.departures()
}

func (s *IslandSystem) arrive(req EnterRequest) {
	d := s.deps
	sess := d.Sessions.Get(req.SessionID)
	if sess == nil {
		return
	}
	if _, ok := d.World.PlayerBySession(req.SessionID); ok {
		d.Log.Debug("重複進入島嶼請求", zap.Uint64("session", req.SessionID))
		return
	}

	g, created, err := d.World.Islands.GetOrCreate(req.Island)
	if err != nil {
		d.Log.Error("島嶼生成失敗", zap.Uint64("island", req.Island), zap.Error(err))
		return
	}
	if created {
		n := s.spawnEnemies(req.Island, g)
		if d.Metrics != nil {
			d.Metrics.IslandCreated()
		}
		d.Log.Info("島嶼已建立",
			zap.Uint64("island", req.Island),
			zap.Int("chunks", g.ChunkCount()),
			zap.Int("enemies", n),
		)
	}

	pos, ok := arrivalCell(g, d.Config.Simulation.SpawnLift)
	if !ok {
		d.Invariant(&spawnError{island: req.Island, at: g.LeavePosition})
		return
	}
	p, err := d.World.SpawnPlayer(req.Island, pos, req.SessionID, req.Name, uint32(d.Config.Simulation.PlayerHP))
	if err != nil {
		d.Invariant(err)
		return
	}

	sess.SetState(packet.StateOnIsland)
	sess.Send(packet.IslandEnterMsg{
		Island:        req.Island,
		Self:          uint64(p.ID),
		Position:      pos,
		LeavePosition: g.LeavePosition,
	}.Encode())
	for _, other := range d.World.ActorsOn(req.Island) {
		if other.ID != p.ID {
			sess.Send(spawnActorMsg(other))
		}
	}
	d.World.Projectiles.Each(func(id ecs.EntityID, pr *world.Projectile) {
		if pr.Island == req.Island && !pr.Done {
			sess.Send(spawnProjectileMsg(id, pr))
		}
	})
	d.Broadcast(req.Island, spawnActorMsg(p))

	event.Emit(d.Events, event.IslandEntered{
		Player:    p.ID,
		Island:    req.Island,
		SessionID: req.SessionID,
		Position:  pos,
		Created:   created,
	})
}

// arrivalCell starts lift cells above the portal and climbs until free.
func arrivalCell(g *grid.Grid, lift int32) (grid.Vec3, bool) {
	pos := g.LeavePosition.Add(grid.Up.Scale(lift))
	for i := 0; i < maxSpawnClimb; i++ {
		if g.Tile(pos).IsEmpty() {
			return pos, true
		}
		pos = pos.Add(grid.Up)
	}
	return pos, false
}

func (s *IslandSystem) spawnEnemies(island uint64, g *grid.Grid) int {
	d := s.deps
	n := 0
	for _, sp := range g.Spawns {
		tmpl := d.Enemies.Get(sp.Template)
		if tmpl == nil {
			d.Log.Warn("未知敵人模板", zap.String("template", sp.Template))
			continue
		}
		rule, ok := d.Rules.Get(tmpl.MoveRule)
		if !ok {
			d.Log.Warn("未知移動規則", zap.String("template", tmpl.Name), zap.String("rule", tmpl.MoveRule))
			continue
		}
		var attack data.AttackID
		if spec := d.Attacks.GetByName(tmpl.Attack); spec != nil {
			attack = spec.ID
		}
		if !g.Tile(sp.Pos).IsEmpty() {
			continue
		}
		e, err := d.World.SpawnEnemy(island, sp.Pos, tmpl, rule, attack)
		if err != nil {
			d.Invariant(err)
			continue
		}
		if brain, ok := d.World.Enemies.Get(e.ID); ok {
			if brain.AggroRange <= 0 {
				brain.AggroRange = d.Config.Simulation.AggroRange
			}
			if brain.MoveTimer.Duration <= 0 {
				brain.MoveTimer = world.RepeatTimer(d.Config.Simulation.EnemyMoveInterval)
			}
		}
		n++
	}
	return n
}

// departures takes off every player standing on the portal cell.
func (s *IslandSystem) departures() {
	for _, id := range s.deps.World.Actors.IDs() {
		p, ok := s.deps.World.Actor(id)
		if !ok || !p.IsPlayer() {
			continue
		}
		g, ok := s.deps.World.Grid(p)
		if !ok {
			continue
		}
		if p.Pos == g.LeavePosition.Add(grid.Up) {
			s.leave(p, event.LeavePortal)
		}
	}
}

// leave takes a player off its island. Death goes through the damage
// pipeline instead; this path is for the portal and disconnects.
func (s *IslandSystem) leave(p *world.Actor, reason event.LeaveReason) {
	first, err := s.deps.World.Remove(p)
	s.deps.Invariant(err)
	if !first {
		return
	}
	s.deps.Broadcast(p.Island, removeMsg(p.ID))
	event.Emit(s.deps.Events, event.IslandLeft{
		Player:    p.ID,
		Island:    p.Island,
		SessionID: p.SessionID,
		Reason:    reason,
	})
}

type spawnError struct {
	island uint64
	at     grid.Vec3
}

func (e *spawnError) Error() string {
	return fmt.Sprintf("no free arrival cell above %s on island %d", e.at, e.island)
}
