package system

import (
	"time"

	"github.com/isleclash/server/internal/core/ecs"
	coresys "github.com/isleclash/server/internal/core/system"
	"github.com/isleclash/server/internal/world"
)

// InterruptSystem cancels interruptible attacks of stunned owners.
// Phase 1 (PreUpdate), after TimerSystem so stuns that just ran out no longer
// interrupt.
type InterruptSystem struct {
	world *world.State
}

func NewInterruptSystem(ws *world.State) *InterruptSystem {
	return &InterruptSystem{world: ws}
}

func (s *InterruptSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *InterruptSystem) Update(_ time.Duration) {
	interruptStunned(s.world)
}

func interruptStunned(ws *world.State) int {
	var ids []ecs.EntityID
	ws.Attacks.Each(func(id ecs.EntityID, inst *world.AttackInstance) {
		if !inst.Done && inst.Interruptible && ws.IsStunned(inst.Owner) {
			ids = append(ids, id)
		}
	})
	for _, id := range ids {
		ws.FinishAttack(id)
	}
	return len(ids)
}

// interruptOwner cancels one owner's interruptible attacks right away.
func interruptOwner(ws *world.State, owner ecs.EntityID) int {
	n := 0
	for _, c := range ws.ECS.Children(owner) {
		if inst, ok := ws.Attacks.Get(c); ok && !inst.Done && inst.Interruptible {
			ws.FinishAttack(c)
			n++
		}
	}
	return n
}
