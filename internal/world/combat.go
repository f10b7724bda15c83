package world

import (
	"math"

	"github.com/isleclash/server/internal/core/ecs"
	"github.com/isleclash/server/internal/data"
	"github.com/isleclash/server/internal/grid"
)

// AttackPhase is the stage of an attack instance.
type AttackPhase uint8

const (
	PhaseActive AttackPhase = iota // single-phase swing
	PhaseWindup
	PhaseStrike
)

func (p AttackPhase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseWindup:
		return "windup"
	case PhaseStrike:
		return "strike"
	default:
		return "unknown"
	}
}

// AttackInstance is one live cast, attached as a child of its owner.
type AttackInstance struct {
	Owner         ecs.EntityID
	Attack        data.AttackID
	Kind          data.AttackKind
	Direction     grid.Vec3
	Phase         AttackPhase
	Timer         Timer
	HitApplied    bool
	Interruptible bool
	Done          bool // resolved, waiting for cleanup
}

// NegatingDamage is the counter stance tag, attached as a child of its owner.
type NegatingDamage struct {
	Owner    ecs.EntityID
	Attack   data.AttackID
	Instance ecs.EntityID // the counter cast that raised the stance
}

// Projectile is a free-flying entity; it outlives its owner.
type Projectile struct {
	Owner     ecs.EntityID
	Island    uint64
	Attack    data.AttackID
	Pos       [3]float64
	Direction grid.Vec3
	Traveled  float64
	Range     float64
	Speed     float64
	Damage    uint32
	Done      bool
}

// NewProjectile starts a projectile at the owner's cell.
func NewProjectile(owner ecs.EntityID, island uint64, from, dir grid.Vec3, spec *data.AttackSpec) *Projectile {
	return &Projectile{
		Owner:     owner,
		Island:    island,
		Attack:    spec.ID,
		Pos:       [3]float64{float64(from.X), float64(from.Y), float64(from.Z)},
		Direction: dir,
		Range:     spec.Range,
		Speed:     spec.Speed,
		Damage:    spec.Damage,
	}
}

// Advance integrates the position by direction*step and adds step to the
// travelled distance.
func (p *Projectile) Advance(step float64) {
	p.Traveled += step
	p.Pos[0] += float64(p.Direction.X) * step
	p.Pos[1] += float64(p.Direction.Y) * step
	p.Pos[2] += float64(p.Direction.Z) * step
}

// Cell is the grid cell the projectile occupies, rounded per axis.
func (p *Projectile) Cell() grid.Vec3 {
	return grid.Vec3{
		X: int32(math.Round(p.Pos[0])),
		Y: int32(math.Round(p.Pos[1])),
		Z: int32(math.Round(p.Pos[2])),
	}
}
