package system

import (
	"testing"

	"github.com/isleclash/server/internal/core/event"
	"github.com/isleclash/server/internal/grid"
)

func TestDaggerHitsFirstActorInLine(t *testing.T) {
	h := newHarness(t)
	p, _ := h.player(grid.V(0, 1, 0))
	near, _ := h.player(grid.V(2, 1, 0))
	far, _ := h.player(grid.V(3, 1, 0))

	if _, err := h.caster.Cast(p, h.attack("DaggerThrow"), grid.V(1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	// spawned at the 0.1 s midpoint, one tile per second
	h.tick(45)

	if near.HP != 92 || far.HP != 100 || p.HP != 100 {
		t.Fatalf("hp near=%d far=%d thrower=%d; want 92 100 100", near.HP, far.HP, p.HP)
	}
	if n := h.deps.World.Projectiles.Len(); n != 0 {
		t.Fatalf("%d projectiles left after the hit", n)
	}
}

func TestDaggerExpiresAtRange(t *testing.T) {
	h := newHarness(t)
	p, _ := h.player(grid.V(0, 1, 0))
	bystander, _ := h.player(grid.V(5, 1, 0))

	if _, err := h.caster.Cast(p, h.attack("DaggerThrow"), grid.V(1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	h.tick(10)
	if h.deps.World.Projectiles.Len() != 1 {
		t.Fatalf("projectile not in flight")
	}
	h.tick(70)
	if h.deps.World.Projectiles.Len() != 0 {
		t.Fatalf("projectile outlived its range")
	}
	if bystander.HP != 100 {
		t.Fatalf("hit beyond range: hp = %d", bystander.HP)
	}
}

func TestDaggerStopsAtTerrain(t *testing.T) {
	h := newHarness(t)
	g := h.grid()
	if err := g.AddOccupant(grid.V(1, 1, 0), grid.TerrainTile(grid.Rock)); err != nil {
		t.Fatal(err)
	}
	p, _ := h.player(grid.V(0, 1, 0))
	behind, _ := h.player(grid.V(2, 1, 0))

	if _, err := h.caster.Cast(p, h.attack("DaggerThrow"), grid.V(1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	h.tick(60)
	if behind.HP != 100 {
		t.Fatalf("dagger passed through rock: hp = %d", behind.HP)
	}
	if h.deps.World.Projectiles.Len() != 0 {
		t.Fatalf("blocked projectile still alive")
	}
}

func TestDaggerIntoCounterStunsThrower(t *testing.T) {
	h := newHarness(t)
	p, _ := h.player(grid.V(0, 1, 0))
	defender, _ := h.player(grid.V(2, 1, 0))
	stuns := countEvents[event.StunApplied](h.deps.Events)

	if _, err := h.caster.Cast(p, h.attack("DaggerThrow"), grid.V(1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	// the dagger reaches x=1.5 around tick 31; the stance spans ticks 29-32
	h.tick(28)
	if defender.HP != 100 {
		t.Fatalf("dagger arrived early: hp = %d", defender.HP)
	}
	if _, err := h.caster.Cast(defender, h.attack("Counter"), grid.V(-1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	h.tick(6)

	if defender.HP != 100 {
		t.Fatalf("dagger went through the counter: hp = %d", defender.HP)
	}
	if !h.deps.World.IsStunned(p.ID) || *stuns != 1 {
		t.Fatalf("thrower stunned = %v, stuns = %d", h.deps.World.IsStunned(p.ID), *stuns)
	}
	if h.deps.World.Projectiles.Len() != 0 {
		t.Fatalf("negated dagger still in flight")
	}
}
