package system

import (
	"time"

	"github.com/isleclash/server/internal/core/ecs"
	coresys "github.com/isleclash/server/internal/core/system"
	"github.com/isleclash/server/internal/world"
)

// TimerSystem advances cooldowns, stuns and enemy move timers.
// Phase 1 (PreUpdate).
type TimerSystem struct {
	world *world.State
}

func NewTimerSystem(ws *world.State) *TimerSystem {
	return &TimerSystem{world: ws}
}

func (s *TimerSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *TimerSystem) Update(dt time.Duration) {
	s.world.Actors.Each(func(_ ecs.EntityID, a *world.Actor) {
		if !a.Removed {
			a.Cooldowns.Tick(dt)
		}
	})

	var expired []ecs.EntityID
	s.world.Stuns.Each(func(id ecs.EntityID, st *world.Stun) {
		st.Timer.Tick(dt)
		if st.Timer.Finished() {
			expired = append(expired, id)
		}
	})
	for _, id := range expired {
		s.world.Stuns.Remove(id)
	}

	s.world.Enemies.Each(func(_ ecs.EntityID, b *world.EnemyBrain) {
		b.MoveTimer.Tick(dt)
	})
}
