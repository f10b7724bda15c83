package event

import (
	"github.com/isleclash/server/internal/core/ecs"
	"github.com/isleclash/server/internal/data"
	"github.com/isleclash/server/internal/grid"
)

// DamageIntent asks the damage pipeline to hit whatever stands at Target.
type DamageIntent struct {
	Attacker ecs.EntityID
	Island   uint64
	Target   grid.Vec3
	Amount   uint32
	Attack   data.AttackID
}

// NegatedDamage: a counter stance ate the hit; the attacker gets stunned.
type NegatedDamage struct {
	Attacker ecs.EntityID
	Victim   ecs.EntityID
	Negator  ecs.EntityID
	Island   uint64
	Position grid.Vec3
	Attack   data.AttackID // the negated attack
	Counter  data.AttackID // the stance that negated it
}

// DamageDealt is raised after health was reduced.
type DamageDealt struct {
	Attacker  ecs.EntityID
	Victim    ecs.EntityID
	Island    uint64
	Position  grid.Vec3
	Amount    uint32
	Remaining uint32
	Attack    data.AttackID
}

// OccupantRemoved is raised once when an actor dies.
type OccupantRemoved struct {
	Entity    ecs.EntityID
	Kind      grid.TileKind
	Island    uint64
	Position  grid.Vec3
	Killer    ecs.EntityID
	SessionID uint64 // players only
}

// LeaveReason says why a player left an island.
type LeaveReason uint8

const (
	LeavePortal LeaveReason = iota + 1
	LeaveDeath
	LeaveDisconnect
)

func (r LeaveReason) String() string {
	switch r {
	case LeavePortal:
		return "portal"
	case LeaveDeath:
		return "death"
	case LeaveDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// IslandLeft is raised when a player is taken off an island for any reason.
type IslandLeft struct {
	Player    ecs.EntityID
	Island    uint64
	SessionID uint64
	Reason    LeaveReason
}

// IslandEntered is raised after a player spawned on an island.
type IslandEntered struct {
	Player    ecs.EntityID
	Island    uint64
	SessionID uint64
	Position  grid.Vec3
	Created   bool // the arrival generated the island
}

// IslandTornDown is raised by the cleanup sweep.
type IslandTornDown struct {
	Island  uint64
	Enemies int
}

// AttackCast is raised when a cast passed the cooldown gate.
type AttackCast struct {
	Caster    ecs.EntityID
	Island    uint64
	Attack    data.AttackID
	Direction grid.Vec3
}

// StunApplied is raised when a counter stuns an attacker.
type StunApplied struct {
	Target ecs.EntityID
	Source ecs.EntityID
	Island uint64
}
