package world

import (
	"time"

	"github.com/isleclash/server/internal/core/ecs"
	"github.com/isleclash/server/internal/data"
	"github.com/isleclash/server/internal/grid"
	"github.com/isleclash/server/internal/path"
)

// ActionState is the mutually exclusive behaviour mode of an actor.
type ActionState uint8

const (
	Idle ActionState = iota
	Moving
	Attacking
	Stunned
)

func (s ActionState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Moving:
		return "moving"
	case Attacking:
		return "attacking"
	case Stunned:
		return "stunned"
	default:
		return "unknown"
	}
}

// Actor is the required component set of every player and enemy. Built in one
// piece by State.SpawnPlayer / State.SpawnEnemy.
type Actor struct {
	ID     ecs.EntityID
	Kind   grid.TileKind // TilePlayer or TileEnemy
	Island uint64
	Pos    grid.Vec3
	Facing grid.Vec3

	HP    uint32
	MaxHP uint32

	State     ActionState
	Cooldowns Cooldowns

	// Moved is set by a successful move and cleared when action states are
	// recomputed at the end of the tick.
	Moved bool
	// Removed is set exactly once, when the actor leaves the grid (death or
	// departure). Removed actors are skipped by every system until cleanup.
	Removed bool

	SessionID uint64 // players only
	Name      string
}

func (a *Actor) IsPlayer() bool { return a.Kind == grid.TilePlayer }
func (a *Actor) IsEnemy() bool  { return a.Kind == grid.TileEnemy }

// Damage subtracts amount with a floor of zero and returns the new health.
func (a *Actor) Damage(amount uint32) uint32 {
	if amount >= a.HP {
		a.HP = 0
	} else {
		a.HP -= amount
	}
	return a.HP
}

// Cooldowns maps attack id → remaining time. Absent means ready.
type Cooldowns map[data.AttackID]time.Duration

func (c Cooldowns) Ready(id data.AttackID) bool { return c[id] <= 0 }

func (c Cooldowns) Remaining(id data.AttackID) time.Duration { return max(c[id], 0) }

// Start puts id on cooldown. Running cooldowns are never shortened.
func (c Cooldowns) Start(id data.AttackID, d time.Duration) {
	if d > c[id] {
		c[id] = d
	}
}

// Tick advances every cooldown and forgets the finished ones.
func (c Cooldowns) Tick(d time.Duration) {
	for id, rem := range c {
		rem -= d
		if rem <= 0 {
			delete(c, id)
			continue
		}
		c[id] = rem
	}
}

// EnemyBrain is the AI component of an enemy.
type EnemyBrain struct {
	Template   string
	Rule       path.MovementRule
	Attack     data.AttackID
	AggroRange int32
	MoveTimer  Timer
	Target     ecs.EntityID // zero = no aggro
}

// Stun blocks input and casting until the timer finishes.
type Stun struct {
	Timer  Timer
	Source ecs.EntityID
}
