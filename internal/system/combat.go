package system

import (
	"errors"
	"time"

	"github.com/isleclash/server/internal/core/ecs"
	"github.com/isleclash/server/internal/core/event"
	coresys "github.com/isleclash/server/internal/core/system"
	"github.com/isleclash/server/internal/data"
	"github.com/isleclash/server/internal/grid"
	"github.com/isleclash/server/internal/metrics"
	"github.com/isleclash/server/internal/net/packet"
	"github.com/isleclash/server/internal/world"
	"go.uber.org/zap"
)

var (
	ErrUnknownAttack = errors.New("unknown attack")
	ErrCasterStunned = errors.New("caster is stunned")
	ErrBadDirection  = errors.New("direction not allowed for attack")
	ErrAlreadyActive = errors.New("attack already active")
	ErrOnCooldown    = errors.New("attack on cooldown")
)

var castRejectReasons = map[error]string{
	ErrUnknownAttack: metrics.RejectUnknown,
	ErrCasterStunned: metrics.RejectStunned,
	ErrBadDirection:  metrics.RejectDirection,
	ErrAlreadyActive: metrics.RejectAttacking,
	ErrOnCooldown:    metrics.RejectCooldown,
}

// Caster is the single entry point for starting attacks, shared by player
// intents and enemy AI.
type Caster struct {
	deps *Deps
}

func NewCaster(deps *Deps) *Caster {
	return &Caster{deps: deps}
}

// Cast validates and starts an attack. At most one instance of an attack
// runs per actor; the cooldown starts the moment the cast is accepted.
func (c *Caster) Cast(a *world.Actor, id data.AttackID, dir grid.Vec3) (ecs.EntityID, error) {
	d := c.deps
	spec := d.Attacks.Get(id)
	if spec == nil {
		return 0, ErrUnknownAttack
	}
	if d.World.IsStunned(a.ID) {
		return 0, ErrCasterStunned
	}
	if !spec.AllowsDirection(dir) {
		return 0, ErrBadDirection
	}
	if _, ok := d.World.ActiveAttack(a.ID, id); ok {
		return 0, ErrAlreadyActive
	}
	if !a.Cooldowns.Ready(id) {
		return 0, ErrOnCooldown
	}

	a.Cooldowns.Start(id, spec.Cooldown)
	inst := &world.AttackInstance{
		Owner:         a.ID,
		Attack:        id,
		Kind:          spec.Kind,
		Direction:     dir,
		Phase:         world.PhaseActive,
		Timer:         world.OnceTimer(spec.Active),
		Interruptible: spec.Interruptible,
	}
	if spec.Windup > 0 {
		inst.Phase = world.PhaseWindup
		inst.Timer = world.OnceTimer(spec.Windup)
	}
	instID := d.World.AttachAttack(inst)
	if spec.Kind == data.KindCounter {
		d.World.AttachNegator(&world.NegatingDamage{Owner: a.ID, Attack: id, Instance: instID})
	}
	if dir.X != 0 || dir.Z != 0 {
		a.Facing = grid.Vec3{X: dir.X, Z: dir.Z}
	}
	a.State = world.Attacking

	event.Emit(d.Events, event.AttackCast{Caster: a.ID, Island: a.Island, Attack: id, Direction: dir})
	d.Broadcast(a.Island, packet.AttackVisualMsg{Entity: uint64(a.ID), Attack: id, Offset: dir}.Encode())
	if d.Metrics != nil {
		d.Metrics.AttackCast(spec.Name)
	}
	return instID, nil
}

// CombatSystem casts queued player attacks and advances every live attack
// instance, including the ones started this tick. Phase 2 (Update), after
// enemy AI.
type CombatSystem struct {
	deps   *Deps
	caster *Caster
}

func NewCombatSystem(deps *Deps, caster *Caster) *CombatSystem {
	return &CombatSystem{deps: deps, caster: caster}
}

func (s *CombatSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *CombatSystem) Update(dt time.Duration) {
	for _, req := range s.deps.Intents.takeAttacks() {
		p, ok := s.deps.World.PlayerBySession(req.SessionID)
		if !ok {
			continue
		}
		if _, err := s.caster.Cast(p, req.Attack, req.Offset); err != nil {
			s.deps.reject(castRejectReasons[err])
			s.deps.Log.Debug("施放被拒絕",
				entityField(p.ID),
				zap.String("attack", s.deps.attackName(req.Attack)),
				zap.Error(err),
			)
		}
	}

	for _, id := range s.deps.World.Attacks.IDs() {
		inst, ok := s.deps.World.Attacks.Get(id)
		if !ok || inst.Done {
			continue
		}
		s.step(id, inst, dt)
	}
}

func (s *CombatSystem) step(id ecs.EntityID, inst *world.AttackInstance, dt time.Duration) {
	w := s.deps.World
	owner, ok := w.Actor(inst.Owner)
	if !ok {
		w.FinishAttack(id)
		return
	}
	spec := s.deps.Attacks.Get(inst.Attack)
	if spec == nil {
		w.FinishAttack(id)
		return
	}

	// 前搖結束後進入打擊階段，打擊計時從下一個 tick 開始
	if inst.Phase == world.PhaseWindup {
		inst.Timer.Tick(dt)
		if inst.Timer.Finished() {
			inst.Phase = world.PhaseStrike
			inst.Timer = world.OnceTimer(spec.Active)
		}
		return
	}
	inst.Timer.Tick(dt)

	switch inst.Kind {
	case data.KindMelee, data.KindEnemyStrike:
		if !inst.HitApplied && inst.Timer.Fraction() >= 0.5 {
			inst.HitApplied = true
			s.hit(owner, owner.Pos.Add(inst.Direction), spec)
		}
	case data.KindCounter:
		// stance only; the negator does the work
	case data.KindCleave:
		if !inst.HitApplied {
			inst.HitApplied = true
			s.cleave(owner, inst.Direction, spec)
		}
	case data.KindProjectile:
		if !inst.HitApplied && inst.Timer.Fraction() >= 0.5 {
			inst.HitApplied = true
			s.throw(owner, inst.Direction, spec)
		}
	}
	if inst.Timer.Finished() {
		w.FinishAttack(id)
	}
}

func (s *CombatSystem) hit(owner *world.Actor, at grid.Vec3, spec *data.AttackSpec) {
	event.Emit(s.deps.Events, event.DamageIntent{
		Attacker: owner.ID,
		Island:   owner.Island,
		Target:   at,
		Amount:   spec.Damage,
		Attack:   spec.ID,
	})
}

// cleave damages every actor in the unbroken line in front of the owner,
// then dashes the owner to the first cell past the line when it can stand
// there.
func (s *CombatSystem) cleave(owner *world.Actor, dir grid.Vec3, spec *data.AttackSpec) {
	g, ok := s.deps.World.Grid(owner)
	if !ok {
		return
	}
	at := owner.Pos.Add(dir)
	for {
		if _, ok := g.Target(at); !ok {
			break
		}
		s.hit(owner, at, spec)
		at = at.Add(dir)
	}
	if !g.Tile(at).IsEmpty() || !g.CanMove(at) {
		return
	}
	if err := s.deps.World.MoveActor(owner, at); err != nil {
		s.deps.Invariant(err)
		return
	}
	s.deps.Broadcast(owner.Island, positionMsg(owner))
}

func (s *CombatSystem) throw(owner *world.Actor, dir grid.Vec3, spec *data.AttackSpec) {
	p := world.NewProjectile(owner.ID, owner.Island, owner.Pos, dir, spec)
	id := s.deps.World.AddProjectile(p)
	s.deps.Broadcast(owner.Island, spawnProjectileMsg(id, p))
}
