package system

import (
	"time"

	"github.com/isleclash/server/internal/core/ecs"
	"github.com/isleclash/server/internal/core/event"
	coresys "github.com/isleclash/server/internal/core/system"
	"github.com/isleclash/server/internal/grid"
	"github.com/isleclash/server/internal/world"
)

// maxProjectileStep is the longest distance a projectile covers between two
// collision samples, so a fast projectile cannot skip a cell.
const maxProjectileStep = 0.5

// rangeEpsilon absorbs float drift when comparing travelled distance to range.
const rangeEpsilon = 1e-9

// ProjectileSystem flies projectiles and turns collisions into damage
// intents. Phase 3 (PostUpdate), before EventSystem.
type ProjectileSystem struct {
	deps *Deps
}

func NewProjectileSystem(deps *Deps) *ProjectileSystem {
	return &ProjectileSystem{deps: deps}
}

func (s *ProjectileSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ProjectileSystem) Update(dt time.Duration) {
	s.deps.World.Projectiles.Each(func(id ecs.EntityID, p *world.Projectile) {
		if p.Done {
			return
		}
		g, ok := s.deps.World.Islands.Get(p.Island)
		if !ok {
			s.finish(id, p)
			return
		}
		if s.fly(g, p, p.Speed*dt.Seconds()) {
			s.finish(id, p)
		}
	})
}

// fly advances p by dist in bounded sub-steps. It reports whether the
// projectile is spent.
func (s *ProjectileSystem) fly(g *grid.Grid, p *world.Projectile, dist float64) bool {
	for dist > 0 {
		step := min(dist, maxProjectileStep)
		dist -= step
		p.Advance(step)

		cell := p.Cell()
		t := g.Tile(cell)
		switch {
		case t.Kind == grid.TileTerrain:
			return true
		case t.Kind.IsActor() && t.Occupant != p.Owner:
			event.Emit(s.deps.Events, event.DamageIntent{
				Attacker: p.Owner,
				Island:   p.Island,
				Target:   cell,
				Amount:   p.Damage,
				Attack:   p.Attack,
			})
			return true
		}
		if p.Traveled >= p.Range-rangeEpsilon {
			return true
		}
	}
	return false
}

func (s *ProjectileSystem) finish(id ecs.EntityID, p *world.Projectile) {
	p.Done = true
	s.deps.World.ECS.MarkForDestruction(id)
	s.deps.Broadcast(p.Island, removeMsg(id))
}
