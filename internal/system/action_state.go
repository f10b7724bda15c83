package system

import (
	"time"

	"github.com/isleclash/server/internal/core/ecs"
	coresys "github.com/isleclash/server/internal/core/system"
	"github.com/isleclash/server/internal/world"
)

// ActionStateSystem recomputes every actor's action state once damage has
// been dispatched: Stunned > Attacking > Moving > Idle. Changes are
// replicated with a position message. Phase 3 (PostUpdate), last.
type ActionStateSystem struct {
	deps *Deps
}

func NewActionStateSystem(deps *Deps) *ActionStateSystem {
	return &ActionStateSystem{deps: deps}
}

func (s *ActionStateSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ActionStateSystem) Update(_ time.Duration) {
	ws := s.deps.World
	ws.Actors.Each(func(_ ecs.EntityID, a *world.Actor) {
		if a.Removed {
			return
		}
		next := actionState(ws, a)
		a.Moved = false
		if next == a.State {
			return
		}
		a.State = next
		s.deps.Broadcast(a.Island, positionMsg(a))
	})
}

func actionState(ws *world.State, a *world.Actor) world.ActionState {
	switch {
	case ws.IsStunned(a.ID):
		return world.Stunned
	case ws.HasActiveAttack(a.ID):
		return world.Attacking
	case a.Moved:
		return world.Moving
	default:
		return world.Idle
	}
}
