package world

import (
	"fmt"

	"github.com/isleclash/server/internal/core/ecs"
	"github.com/isleclash/server/internal/data"
	"github.com/isleclash/server/internal/grid"
	"github.com/isleclash/server/internal/path"
)

// State holds every live island and entity. It is owned by the game loop
// goroutine; nothing here is safe for concurrent use.
type State struct {
	ECS     *ecs.World
	Islands *grid.Islands

	Actors      *ecs.PtrComponentStore[Actor]
	Enemies     *ecs.PtrComponentStore[EnemyBrain]
	Stuns       *ecs.PtrComponentStore[Stun]
	Attacks     *ecs.PtrComponentStore[AttackInstance]
	Negators    *ecs.PtrComponentStore[NegatingDamage]
	Projectiles *ecs.PtrComponentStore[Projectile]

	bySession map[uint64]ecs.EntityID
}

func NewState(islands *grid.Islands) *State {
	s := &State{
		ECS:         ecs.NewWorld(),
		Islands:     islands,
		Actors:      ecs.NewPtrComponentStore[Actor](),
		Enemies:     ecs.NewPtrComponentStore[EnemyBrain](),
		Stuns:       ecs.NewPtrComponentStore[Stun](),
		Attacks:     ecs.NewPtrComponentStore[AttackInstance](),
		Negators:    ecs.NewPtrComponentStore[NegatingDamage](),
		Projectiles: ecs.NewPtrComponentStore[Projectile](),
		bySession:   make(map[uint64]ecs.EntityID, 64),
	}
	reg := s.ECS.Registry()
	reg.Register(s.Actors)
	reg.Register(s.Enemies)
	reg.Register(s.Stuns)
	reg.Register(s.Attacks)
	reg.Register(s.Negators)
	reg.Register(s.Projectiles)
	return s
}

// SpawnPlayer creates a player with its full component set and places it on
// the island grid. Nothing is created when placement fails.
func (s *State) SpawnPlayer(island uint64, pos grid.Vec3, sessionID uint64, name string, hp uint32) (*Actor, error) {
	a, err := s.spawnActor(island, pos, grid.TilePlayer, hp)
	if err != nil {
		return nil, err
	}
	a.SessionID = sessionID
	a.Name = name
	s.bySession[sessionID] = a.ID
	return a, nil
}

// SpawnEnemy creates an enemy from a template and places it on the grid.
func (s *State) SpawnEnemy(island uint64, pos grid.Vec3, tmpl *data.EnemyTemplate, rule path.MovementRule, attack data.AttackID) (*Actor, error) {
	a, err := s.spawnActor(island, pos, grid.TileEnemy, tmpl.HP)
	if err != nil {
		return nil, err
	}
	a.Name = tmpl.Name
	s.Enemies.Set(a.ID, &EnemyBrain{
		Template:   tmpl.Name,
		Rule:       rule,
		Attack:     attack,
		AggroRange: tmpl.AggroRange,
		MoveTimer:  RepeatTimer(tmpl.MoveInterval()),
	})
	return a, nil
}

func (s *State) spawnActor(island uint64, pos grid.Vec3, kind grid.TileKind, hp uint32) (*Actor, error) {
	g, ok := s.Islands.Get(island)
	if !ok {
		return nil, fmt.Errorf("spawn on island %d: island not loaded", island)
	}
	id := s.ECS.CreateEntity()
	if err := g.SpawnActor(pos, kind, id); err != nil {
		s.ECS.DestroyNow(id)
		return nil, fmt.Errorf("spawn on island %d: %w", island, err)
	}
	a := &Actor{
		ID:        id,
		Kind:      kind,
		Island:    island,
		Pos:       pos,
		Facing:    grid.Vec3{X: 1},
		HP:        hp,
		MaxHP:     hp,
		State:     Idle,
		Cooldowns: make(Cooldowns, 4),
	}
	s.Actors.Set(id, a)
	return a, nil
}

// Actor returns a live (not removed) actor.
func (s *State) Actor(id ecs.EntityID) (*Actor, bool) {
	a, ok := s.Actors.Get(id)
	if !ok || a.Removed {
		return nil, false
	}
	return a, true
}

// PlayerBySession returns the player bound to a session.
func (s *State) PlayerBySession(sessionID uint64) (*Actor, bool) {
	id, ok := s.bySession[sessionID]
	if !ok {
		return nil, false
	}
	return s.Actor(id)
}

// Grid returns the island grid an actor stands on.
func (s *State) Grid(a *Actor) (*grid.Grid, bool) {
	return s.Islands.Get(a.Island)
}

// MoveActor moves an actor on its grid (remove-then-add) and updates its
// position component to match.
func (s *State) MoveActor(a *Actor, to grid.Vec3) error {
	g, ok := s.Grid(a)
	if !ok {
		return fmt.Errorf("move %d: island %d not loaded", a.ID, a.Island)
	}
	if err := g.MoveActor(a.ID, to); err != nil {
		return err
	}
	if d := to.Sub(a.Pos); d.X != 0 || d.Z != 0 {
		a.Facing = grid.Vec3{X: sign(d.X), Z: sign(d.Z)}
	}
	a.Pos = to
	a.Moved = true
	return nil
}

// Remove takes an actor off its grid, decrements the island counter, and
// queues the entity (with its children) for cleanup. Returns false when the
// actor was already removed, so callers can emit removal events exactly once.
func (s *State) Remove(a *Actor) (bool, error) {
	if a.Removed {
		return false, nil
	}
	a.Removed = true
	if a.IsPlayer() {
		delete(s.bySession, a.SessionID)
	}
	s.ECS.MarkForDestruction(a.ID)
	g, ok := s.Grid(a)
	if !ok {
		return true, nil
	}
	if _, err := g.DespawnActor(a.ID); err != nil {
		return true, err
	}
	return true, nil
}

// ActorsOn returns the live actors of an island in id order.
func (s *State) ActorsOn(island uint64) []*Actor {
	var out []*Actor
	s.Actors.Each(func(_ ecs.EntityID, a *Actor) {
		if !a.Removed && a.Island == island {
			out = append(out, a)
		}
	})
	return out
}

// PlayersOn returns the live players of an island in id order.
func (s *State) PlayersOn(island uint64) []*Actor {
	var out []*Actor
	for _, a := range s.ActorsOn(island) {
		if a.IsPlayer() {
			out = append(out, a)
		}
	}
	return out
}

// PlayerCount returns the number of live players across all islands.
func (s *State) PlayerCount() int { return len(s.bySession) }

// AttachAttack spawns an attack instance as a child of its owner.
func (s *State) AttachAttack(inst *AttackInstance) ecs.EntityID {
	id := s.ECS.CreateChild(inst.Owner)
	s.Attacks.Set(id, inst)
	return id
}

// ActiveAttack finds the owner's live instance of an attack, if any.
func (s *State) ActiveAttack(owner ecs.EntityID, attack data.AttackID) (ecs.EntityID, bool) {
	for _, c := range s.ECS.Children(owner) {
		if inst, ok := s.Attacks.Get(c); ok && !inst.Done && inst.Attack == attack {
			return c, true
		}
	}
	return 0, false
}

// HasActiveAttack reports whether the owner has any unresolved instance.
func (s *State) HasActiveAttack(owner ecs.EntityID) bool {
	for _, c := range s.ECS.Children(owner) {
		if inst, ok := s.Attacks.Get(c); ok && !inst.Done {
			return true
		}
	}
	return false
}

// FinishAttack marks an instance resolved and queues it (and any counter
// stance it raised) for cleanup. The stance stays attached until the destroy
// queue is flushed, so hits resolved later in the same tick are still
// negated.
func (s *State) FinishAttack(id ecs.EntityID) {
	inst, ok := s.Attacks.Get(id)
	if !ok || inst.Done {
		return
	}
	inst.Done = true
	s.ECS.MarkForDestruction(id)
	for _, c := range s.ECS.Children(inst.Owner) {
		if neg, ok := s.Negators.Get(c); ok && neg.Instance == id {
			s.ECS.MarkForDestruction(c)
		}
	}
}

// AttachNegator raises a counter stance on its owner.
func (s *State) AttachNegator(neg *NegatingDamage) ecs.EntityID {
	id := s.ECS.CreateChild(neg.Owner)
	s.Negators.Set(id, neg)
	return id
}

// Negator scans the owner's children for a counter stance.
func (s *State) Negator(owner ecs.EntityID) (ecs.EntityID, *NegatingDamage, bool) {
	for _, c := range s.ECS.Children(owner) {
		if neg, ok := s.Negators.Get(c); ok {
			return c, neg, true
		}
	}
	return 0, nil, false
}

// ConsumeNegator removes a counter stance immediately so a second hit in the
// same tick is not negated, and resolves the cast that raised it.
func (s *State) ConsumeNegator(id ecs.EntityID) {
	neg, ok := s.Negators.Get(id)
	if !ok {
		return
	}
	inst := neg.Instance
	s.ECS.DestroyNow(id)
	s.FinishAttack(inst)
}

// ApplyStun stuns an actor; a longer running stun is kept.
func (s *State) ApplyStun(target ecs.EntityID, source ecs.EntityID, d Timer) {
	if cur, ok := s.Stuns.Get(target); ok && cur.Timer.Remaining() >= d.Remaining() {
		return
	}
	s.Stuns.Set(target, &Stun{Timer: d, Source: source})
}

// IsStunned reports whether an actor has a running stun.
func (s *State) IsStunned(id ecs.EntityID) bool {
	st, ok := s.Stuns.Get(id)
	return ok && !st.Timer.Finished()
}

// AddProjectile registers a free-flying projectile.
func (s *State) AddProjectile(p *Projectile) ecs.EntityID {
	id := s.ECS.CreateEntity()
	s.Projectiles.Set(id, p)
	return id
}

// DespawnIslandEntities queues every enemy and projectile of a torn-down
// island for cleanup and returns the number of enemies.
func (s *State) DespawnIslandEntities(island uint64) int {
	n := 0
	s.Actors.Each(func(id ecs.EntityID, a *Actor) {
		if a.Island != island || a.Removed {
			return
		}
		a.Removed = true
		s.ECS.MarkForDestruction(id)
		if a.IsEnemy() {
			n++
		}
	})
	s.Projectiles.Each(func(id ecs.EntityID, p *Projectile) {
		if p.Island == island && !p.Done {
			p.Done = true
			s.ECS.MarkForDestruction(id)
		}
	})
	return n
}

func sign(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
