package system

import (
	"time"

	coresys "github.com/isleclash/server/internal/core/system"
	"go.uber.org/zap"
)

// CleanupSystem destroys everything marked during the tick: finished attack
// instances, spent projectiles, removed actors with their children, and the
// enemies of torn-down islands. Phase 6 (Cleanup), last.
type CleanupSystem struct {
	deps *Deps
}

func NewCleanupSystem(deps *Deps) *CleanupSystem {
	return &CleanupSystem{deps: deps}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if n := s.deps.World.ECS.FlushDestroyQueue(); n > 0 {
		s.deps.Log.Debug("實體已銷毀", zap.Int("count", n), zap.Uint64("tick", s.deps.Tick))
	}
}
