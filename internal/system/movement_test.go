package system

import (
	"testing"

	"github.com/isleclash/server/internal/grid"
)

func TestResolveStep(t *testing.T) {
	g := grid.NewGrid()
	for x := int32(0); x <= 6; x++ {
		if err := g.AddOccupant(grid.V(x, 0, 0), grid.TerrainTile(grid.Sand)); err != nil {
			t.Fatal(err)
		}
	}
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(g.AddOccupant(grid.V(2, 1, 0), grid.TerrainTile(grid.Rock))) // one-high step
	must(g.AddOccupant(grid.V(4, 1, 0), grid.TerrainTile(grid.Rock))) // wall, two high
	must(g.AddOccupant(grid.V(4, 2, 0), grid.TerrainTile(grid.Rock)))
	must(g.AddOccupant(grid.V(6, 1, 0), grid.TerrainTile(grid.Sand))) // ledge for dropping
	must(g.SpawnActor(grid.V(1, 1, 1), grid.TileEnemy, 99))

	tests := []struct {
		name string
		from grid.Vec3
		step grid.Vec3
		want grid.Vec3
		ok   bool
	}{
		{"walk", grid.V(0, 1, 0), grid.V(1, 0, 0), grid.V(1, 1, 0), true},
		{"climb", grid.V(1, 1, 0), grid.V(1, 0, 0), grid.V(2, 2, 0), true},
		{"wall", grid.V(3, 1, 0), grid.V(1, 0, 0), grid.V(3, 1, 0), false},
		{"drop", grid.V(2, 2, 0), grid.V(1, 0, 0), grid.V(3, 1, 0), true},
		{"off the edge", grid.V(0, 1, 0), grid.V(-1, 0, 0), grid.V(0, 1, 0), false},
		{"diagonal", grid.V(0, 1, 0), grid.V(1, 0, 1), grid.V(0, 1, 0), false},
		{"vertical", grid.V(0, 1, 0), grid.V(0, 1, 0), grid.V(0, 1, 0), false},
		{"occupied", grid.V(1, 1, 0), grid.V(0, 0, 1), grid.V(1, 1, 0), false},
		{"onto ledge", grid.V(5, 1, 0), grid.V(1, 0, 0), grid.V(6, 2, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveStep(g, tt.from, tt.step)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("ResolveStep(%s, %s) = %s, %v; want %s, %v", tt.from, tt.step, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMoveBlockedWhileAttacking(t *testing.T) {
	h := newHarness(t)
	p, sess := h.player(grid.V(0, 1, 0))
	if _, err := h.caster.Cast(p, h.attack("BaseAttack"), grid.V(1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	h.deps.Intents.PushMove(MoveRequest{SessionID: sess.ID, Seq: 1, Step: grid.V(0, 0, 1)})
	h.tick(1)
	if p.Pos != grid.V(0, 1, 0) {
		t.Fatalf("moved while attacking: %s", p.Pos)
	}

	h.tick(4)
	h.deps.Intents.PushMove(MoveRequest{SessionID: sess.ID, Seq: 2, Step: grid.V(0, 0, 1)})
	h.tick(1)
	if p.Pos != grid.V(0, 1, 1) {
		t.Fatalf("move after the swing: %s", p.Pos)
	}
}
