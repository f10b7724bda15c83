package world

import (
	"errors"
	"testing"
	"time"

	"github.com/isleclash/server/internal/data"
	"github.com/isleclash/server/internal/grid"
	"github.com/isleclash/server/internal/path"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	islands := grid.NewIslands(grid.GeneratorFunc(func(uint64) grid.Layout {
		var l grid.Layout
		for x := int32(-3); x <= 3; x++ {
			for z := int32(-3); z <= 3; z++ {
				l.Terrain = append(l.Terrain, grid.TerrainPlacement{Pos: grid.Vec3{X: x, Y: 0, Z: z}, Kind: grid.Sand})
			}
		}
		return l
	}))
	if _, _, err := islands.GetOrCreate(1); err != nil {
		t.Fatal(err)
	}
	return NewState(islands)
}

func TestSpawnBuildsFullComponentSet(t *testing.T) {
	s := newTestState(t)
	a, err := s.SpawnPlayer(1, grid.Vec3{X: 0, Y: 1, Z: 0}, 77, "ann", 100)
	if err != nil {
		t.Fatal(err)
	}
	if a.HP != 100 || a.MaxHP != 100 || a.State != Idle || a.Cooldowns == nil {
		t.Fatalf("actor = %+v", a)
	}
	g, _ := s.Islands.Get(1)
	if id, ok := g.Target(a.Pos); !ok || id != a.ID || g.PlayerCount != 1 {
		t.Fatalf("player not on grid")
	}
	if p, ok := s.PlayerBySession(77); !ok || p != a {
		t.Fatalf("session index missing")
	}
}

func TestFailedSpawnLeavesNothing(t *testing.T) {
	s := newTestState(t)
	first, err := s.SpawnPlayer(1, grid.Vec3{X: 0, Y: 1, Z: 0}, 1, "a", 100)
	if err != nil {
		t.Fatal(err)
	}
	tmpl := &data.EnemyTemplate{Name: "crab", HP: 30, MoveIntervalMs: 700}
	_, err = s.SpawnEnemy(1, first.Pos, tmpl, path.Standard, 0)
	if !errors.Is(err, grid.ErrDoubleOccupancy) {
		t.Fatalf("err = %v", err)
	}
	if s.Actors.Len() != 1 || s.Enemies.Len() != 0 || s.ECS.Pool().Live() != 1 {
		t.Fatalf("partial enemy left behind")
	}
	if _, err := s.SpawnPlayer(9, grid.Vec3{}, 2, "b", 100); err == nil {
		t.Fatalf("spawn on an unloaded island succeeded")
	}
}

func TestRemoveIsOneShot(t *testing.T) {
	s := newTestState(t)
	a, _ := s.SpawnPlayer(1, grid.Vec3{X: 1, Y: 1, Z: 1}, 5, "a", 100)
	first, err := s.Remove(a)
	if !first || err != nil {
		t.Fatalf("first remove = %v, %v", first, err)
	}
	second, err := s.Remove(a)
	if second || err != nil {
		t.Fatalf("second remove = %v, %v", second, err)
	}
	g, _ := s.Islands.Get(1)
	if g.PlayerCount != 0 || !g.Tile(a.Pos).IsEmpty() {
		t.Fatalf("grid not freed: count=%d", g.PlayerCount)
	}
	if _, ok := s.Actor(a.ID); ok {
		t.Fatalf("removed actor still visible")
	}
	s.ECS.FlushDestroyQueue()
	if s.Actors.Len() != 0 {
		t.Fatalf("actor component survived cleanup")
	}
}

func TestMoveActorUpdatesPositionAndFacing(t *testing.T) {
	s := newTestState(t)
	a, _ := s.SpawnPlayer(1, grid.Vec3{X: 0, Y: 1, Z: 0}, 5, "a", 100)
	if err := s.MoveActor(a, grid.Vec3{X: 0, Y: 1, Z: -1}); err != nil {
		t.Fatal(err)
	}
	g, _ := s.Islands.Get(1)
	if p, _ := g.PositionOf(a.ID); p != a.Pos {
		t.Fatalf("grid %s, component %s", p, a.Pos)
	}
	if a.Facing != (grid.Vec3{Z: -1}) || !a.Moved {
		t.Fatalf("facing=%s moved=%v", a.Facing, a.Moved)
	}
}

func TestCounterStanceLifecycle(t *testing.T) {
	s := newTestState(t)
	a, _ := s.SpawnPlayer(1, grid.Vec3{X: 0, Y: 1, Z: 0}, 5, "a", 100)
	counter := data.DeriveAttackID("Counter")

	inst := s.AttachAttack(&AttackInstance{Owner: a.ID, Attack: counter, Kind: data.KindCounter, Timer: OnceTimer(200 * time.Millisecond)})
	negID := s.AttachNegator(&NegatingDamage{Owner: a.ID, Attack: counter, Instance: inst})

	if _, ok := s.ActiveAttack(a.ID, counter); !ok {
		t.Fatalf("instance not found")
	}
	got, _, ok := s.Negator(a.ID)
	if !ok || got != negID {
		t.Fatalf("negator not found")
	}

	s.ConsumeNegator(negID)
	if _, _, ok := s.Negator(a.ID); ok {
		t.Fatalf("negator survived consumption")
	}
	if _, ok := s.ActiveAttack(a.ID, counter); ok {
		t.Fatalf("counter cast not resolved with its stance")
	}
	if s.HasActiveAttack(a.ID) {
		t.Fatalf("owner still attacking")
	}
}

func TestStunKeepsLongest(t *testing.T) {
	s := newTestState(t)
	a, _ := s.SpawnPlayer(1, grid.Vec3{X: 0, Y: 1, Z: 0}, 5, "a", 100)
	s.ApplyStun(a.ID, 0, OnceTimer(2*time.Second))
	s.ApplyStun(a.ID, 0, OnceTimer(time.Second))
	st, _ := s.Stuns.Get(a.ID)
	if st.Timer.Duration != 2*time.Second || !s.IsStunned(a.ID) {
		t.Fatalf("stun = %+v", st)
	}
}

func TestFinishedStanceLastsUntilFlush(t *testing.T) {
	s := newTestState(t)
	a, _ := s.SpawnPlayer(1, grid.Vec3{X: 0, Y: 1, Z: 0}, 5, "a", 100)
	counter := data.DeriveAttackID("Counter")

	inst := s.AttachAttack(&AttackInstance{Owner: a.ID, Attack: counter, Kind: data.KindCounter, Timer: OnceTimer(200 * time.Millisecond)})
	negID := s.AttachNegator(&NegatingDamage{Owner: a.ID, Attack: counter, Instance: inst})

	s.FinishAttack(inst)
	if got, _, ok := s.Negator(a.ID); !ok || got != negID {
		t.Fatalf("stance removed before the destroy queue flush")
	}
	if s.HasActiveAttack(a.ID) {
		t.Fatalf("finished cast still active")
	}

	s.ECS.FlushDestroyQueue()
	if _, _, ok := s.Negator(a.ID); ok {
		t.Fatalf("stance survived the flush")
	}
}
