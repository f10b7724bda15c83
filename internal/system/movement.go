package system

import (
	"slices"
	"time"

	coresys "github.com/isleclash/server/internal/core/system"
	"github.com/isleclash/server/internal/grid"
	"github.com/isleclash/server/internal/metrics"
	"github.com/isleclash/server/internal/path"
	"github.com/isleclash/server/internal/world"
	"go.uber.org/zap"
)

// MovementSystem applies queued player steps. Phase 2 (Update).
type MovementSystem struct {
	deps *Deps
}

func NewMovementSystem(deps *Deps) *MovementSystem {
	return &MovementSystem{deps: deps}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(_ time.Duration) {
	for _, req := range s.deps.Intents.takeMoves() {
		s.apply(req)
	}
}

func (s *MovementSystem) apply(req MoveRequest) {
	d := s.deps
	p, ok := d.World.PlayerBySession(req.SessionID)
	if !ok {
		return
	}
	if d.World.IsStunned(p.ID) {
		s.refuse(p, metrics.RejectStunned)
		return
	}
	if d.World.HasActiveAttack(p.ID) {
		s.refuse(p, metrics.RejectAttacking)
		return
	}
	g, ok := d.World.Grid(p)
	if !ok {
		return
	}
	to, ok := ResolveStep(g, p.Pos, req.Step)
	if !ok {
		s.refuse(p, metrics.RejectBlocked)
		return
	}
	if err := d.World.MoveActor(p, to); err != nil {
		d.Invariant(err)
		s.refuse(p, metrics.RejectBlocked)
		return
	}
	p.State = world.Moving
	d.Broadcast(p.Island, positionMsg(p))
}

// refuse tells the client where its player really is.
func (s *MovementSystem) refuse(p *world.Actor, reason string) {
	s.deps.reject(reason)
	s.deps.SendTo(p.SessionID, positionMsg(p))
	s.deps.Log.Debug("移動被拒絕",
		entityField(p.ID),
		zap.String("reason", reason),
		zap.Stringer("pos", p.Pos),
	)
}

// ResolveStep turns a one-cell horizontal step into the cell the player ends
// up in. Walking into terrain climbs one cell when the cell above it is free;
// walking off a ledge drops one cell when there is ground two cells down.
// Occupied cells are never entered.
func ResolveStep(g *grid.Grid, from, step grid.Vec3) (grid.Vec3, bool) {
	if !isStandardStep(step) {
		return from, false
	}
	to := from.Add(step)
	switch g.Tile(to).Kind {
	case grid.TileTerrain:
		to = to.Add(grid.Up)
		if !g.Tile(to).IsEmpty() {
			return from, false
		}
	case grid.TileEmpty:
		below := to.Add(grid.Down)
		if g.Tile(below).IsEmpty() {
			if g.Tile(below.Add(grid.Down)).Kind != grid.TileTerrain {
				return from, false
			}
			to = below
		}
	default:
		return from, false
	}
	if !g.CanMove(to) || !g.Tile(to).IsEmpty() {
		return from, false
	}
	return to, true
}

func isStandardStep(step grid.Vec3) bool {
	return slices.Contains(path.StandardOffsets, step)
}
