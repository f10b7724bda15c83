package system

import (
	"time"

	"github.com/isleclash/server/internal/api"
	"github.com/isleclash/server/internal/core/ecs"
	coresys "github.com/isleclash/server/internal/core/system"
	"github.com/isleclash/server/internal/grid"
	"github.com/isleclash/server/internal/metrics"
	"github.com/isleclash/server/internal/world"
)

// OutputSystem flushes every session's buffered messages, updates the
// population gauges and publishes the read-only snapshot for the HTTP API.
// Phase 4 (Output).
type OutputSystem struct {
	deps      *Deps
	snapshots *api.SnapshotStore // nil = no snapshots
}

func NewOutputSystem(deps *Deps, snapshots *api.SnapshotStore) *OutputSystem {
	return &OutputSystem{deps: deps, snapshots: snapshots}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	d := s.deps
	for _, id := range d.Sessions.IDs() {
		d.Sessions.Get(id).FlushOutput()
	}

	projectiles := 0
	d.World.Projectiles.Each(func(_ ecs.EntityID, p *world.Projectile) {
		if !p.Done {
			projectiles++
		}
	})

	snap := &api.Snapshot{
		Tick:        d.Tick,
		Sessions:    d.Sessions.Count(),
		Projectiles: projectiles,
	}
	enemies := 0
	for _, id := range d.World.Islands.IDs() {
		g, _ := d.World.Islands.Get(id)
		enemies += g.EnemyCount
		snap.Islands = append(snap.Islands, islandSnapshot(id, g))
	}

	if d.Metrics != nil {
		d.Metrics.SetPopulation(metrics.Population{
			Islands:     d.World.Islands.Len(),
			Players:     d.World.PlayerCount(),
			Enemies:     enemies,
			Projectiles: projectiles,
			Sessions:    d.Sessions.Count(),
		})
	}
	if s.snapshots != nil {
		s.snapshots.Publish(snap)
	}
	d.Tick++
}

func islandSnapshot(id uint64, g *grid.Grid) api.IslandSnapshot {
	lp := g.LeavePosition
	return api.IslandSnapshot{
		ID:            id,
		Players:       g.PlayerCount,
		Enemies:       g.EnemyCount,
		Chunks:        g.ChunkCount(),
		LeavePosition: [3]int32{lp.X, lp.Y, lp.Z},
	}
}
