package system

import (
	"time"

	"github.com/isleclash/server/internal/core/ecs"
	coresys "github.com/isleclash/server/internal/core/system"
	"github.com/isleclash/server/internal/scripting"
	"github.com/isleclash/server/internal/world"
	"go.uber.org/zap"
)

// EnemyAISystem picks targets for enemies and carries out their decisions.
// Target acquisition is done here; what to do about the target comes from
// the enemy_ai Lua function, or DecideEnemy when no script is loaded.
// Phase 2 (Update), after MovementSystem and before CombatSystem.
type EnemyAISystem struct {
	deps   *Deps
	caster *Caster
}

func NewEnemyAISystem(deps *Deps, caster *Caster) *EnemyAISystem {
	return &EnemyAISystem{deps: deps, caster: caster}
}

func (s *EnemyAISystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *EnemyAISystem) Update(_ time.Duration) {
	ws := s.deps.World
	ecs.Each2(ws.Enemies, ws.Actors, func(id ecs.EntityID, brain *world.EnemyBrain, e *world.Actor) {
		if e.Removed || ws.IsStunned(id) {
			return
		}
		s.think(e, brain)
	})
}

func (s *EnemyAISystem) think(e *world.Actor, brain *world.EnemyBrain) {
	ws := s.deps.World
	target := s.acquire(e, brain)

	busy := ws.HasActiveAttack(e.ID)
	ctx := scripting.AIContext{
		EnemyID:    uint64(e.ID),
		Template:   brain.Template,
		X:          int(e.Pos.X),
		Y:          int(e.Pos.Y),
		Z:          int(e.Pos.Z),
		HP:         int(e.HP),
		MaxHP:      int(e.MaxHP),
		AggroRange: int(s.aggroRange(brain)),
		CanMove:    brain.MoveTimer.Finished() && !busy,
		CanAttack:  brain.Attack != 0 && e.Cooldowns.Ready(brain.Attack) && !busy,
	}
	if target != nil {
		ctx.TargetID = uint64(target.ID)
		ctx.TargetDist = int(e.Pos.Manhattan(target.Pos))
		ctx.TargetDistSq = int(e.Pos.DistSq(target.Pos))
	}

	var (
		cmds []scripting.AICommand
		ok   bool
	)
	if s.deps.Scripting != nil {
		cmds, ok = s.deps.Scripting.RunEnemyAI(ctx)
	}
	if !ok {
		cmds = scripting.DecideEnemy(ctx)
	}

	for _, cmd := range cmds {
		switch cmd.Type {
		case scripting.CmdMove:
			if target != nil {
				s.chase(e, brain, target)
			}
		case scripting.CmdAttack:
			if target != nil {
				s.strike(e, brain, target)
			}
		case scripting.CmdLoseAggro:
			brain.Target = 0
		case scripting.CmdIdle, "":
		default:
			s.deps.Log.Debug("未知 AI 指令", entityField(e.ID), zap.String("cmd", cmd.Type))
		}
	}
}

func (s *EnemyAISystem) aggroRange(brain *world.EnemyBrain) int32 {
	if brain.AggroRange > 0 {
		return brain.AggroRange
	}
	return s.deps.Config.Simulation.AggroRange
}

// acquire keeps a still valid target, or picks the closest player on the
// island within aggro range. Ties go to the lower entity id.
func (s *EnemyAISystem) acquire(e *world.Actor, brain *world.EnemyBrain) *world.Actor {
	ws := s.deps.World
	if brain.Target != 0 {
		if t, ok := ws.Actor(brain.Target); ok && t.Island == e.Island {
			return t
		}
		brain.Target = 0
	}

	r := int64(s.aggroRange(brain))
	var (
		best   *world.Actor
		bestSq int64
	)
	for _, p := range ws.PlayersOn(e.Island) {
		dsq := e.Pos.DistSq(p.Pos)
		if dsq > r*r {
			continue
		}
		if best == nil || dsq < bestSq {
			best, bestSq = p, dsq
		}
	}
	if best != nil {
		brain.Target = best.ID
	}
	return best
}

// chase plans a path to the target and takes its first step. The step is
// skipped when it would be the target's own cell or is taken by someone.
func (s *EnemyAISystem) chase(e *world.Actor, brain *world.EnemyBrain, target *world.Actor) {
	g, ok := s.deps.World.Grid(e)
	if !ok {
		return
	}
	res := s.deps.Planner.Search(e.Pos, target.Pos, g, brain.Rule)
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObservePath(res.Expanded)
	}
	if len(res.Path) == 0 {
		return
	}
	next := res.Path[0]
	if next == target.Pos || !g.Tile(next).IsEmpty() {
		return
	}
	if err := s.deps.World.MoveActor(e, next); err != nil {
		s.deps.Invariant(err)
		return
	}
	s.deps.Broadcast(e.Island, positionMsg(e))
}

func (s *EnemyAISystem) strike(e *world.Actor, brain *world.EnemyBrain, target *world.Actor) {
	if _, err := s.caster.Cast(e, brain.Attack, target.Pos.Sub(e.Pos)); err != nil {
		s.deps.Log.Debug("敵人攻擊失敗", entityField(e.ID), zap.Error(err))
	}
}
