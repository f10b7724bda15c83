package system

import (
	"time"

	"github.com/isleclash/server/internal/core/event"
	coresys "github.com/isleclash/server/internal/core/system"
	"github.com/isleclash/server/internal/grid"
	"go.uber.org/zap"
)

// IslandSweepSystem tears down islands nobody stands on any more. An
// arrival processed earlier in the same tick keeps its island alive.
// Phase 6 (Cleanup), before CleanupSystem so despawned enemies are flushed
// in the same tick.
type IslandSweepSystem struct {
	deps *Deps
}

func NewIslandSweepSystem(deps *Deps) *IslandSweepSystem {
	return &IslandSweepSystem{deps: deps}
}

func (s *IslandSweepSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *IslandSweepSystem) Update(_ time.Duration) {
	d := s.deps
	removed := d.World.Islands.Retain(func(_ uint64, g *grid.Grid) bool {
		return g.PlayerCount > 0
	})
	for _, id := range removed {
		n := d.World.DespawnIslandEntities(id)
		event.Emit(d.Events, event.IslandTornDown{Island: id, Enemies: n})
		if d.Metrics != nil {
			d.Metrics.IslandTornDown()
		}
		d.Log.Info("島嶼已回收", zap.Uint64("island", id), zap.Int("enemies", n))
	}
	if len(removed) > 0 {
		// teardown rows are picked up by the next Persist pass
		d.Events.Drain()
	}
}
