package data

import (
	"reflect"
	"testing"

	"github.com/isleclash/server/internal/grid"
)

func TestLayoutIsDeterministicPerIsland(t *testing.T) {
	tbl := DefaultIslandTable()
	a := tbl.Generate(42)
	b := tbl.Generate(42)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same island id produced different layouts")
	}
	c := tbl.Generate(43)
	if reflect.DeepEqual(a.Spawns, c.Spawns) {
		t.Fatalf("different ids produced identical spawns")
	}
}

func TestLayoutShape(t *testing.T) {
	it := DefaultIslandTable().Template(1)
	l := it.Layout(1)

	if l.LeavePosition != (grid.Vec3{X: it.Radius + it.PierLength}) {
		t.Fatalf("leave position = %s", l.LeavePosition)
	}
	if len(l.Spawns) != it.Enemies {
		t.Fatalf("spawns = %d, want %d", len(l.Spawns), it.Enemies)
	}

	g := grid.NewGrid()
	for _, tp := range l.Terrain {
		if err := g.AddOccupant(tp.Pos, grid.TerrainTile(tp.Kind)); err != nil {
			t.Fatal(err)
		}
	}
	if k := g.Tile(l.LeavePosition); k.Kind != grid.TileTerrain || k.Terrain != grid.Boardwalk {
		t.Fatalf("leave tile = %+v", k)
	}
	seen := map[grid.Vec3]bool{}
	for _, s := range l.Spawns {
		if !g.CanMove(s.Pos) {
			t.Fatalf("spawn %s is not walkable", s.Pos)
		}
		if seen[s.Pos] {
			t.Fatalf("two spawns share %s", s.Pos)
		}
		seen[s.Pos] = true
	}
}
