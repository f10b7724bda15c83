package grid

import "testing"

func plate(calls *int) Generator {
	return GeneratorFunc(func(id uint64) Layout {
		*calls++
		var l Layout
		for x := int32(-2); x <= 2; x++ {
			l.Terrain = append(l.Terrain, TerrainPlacement{Pos: Vec3{x, 0, 0}, Kind: Sand})
		}
		l.LeavePosition = Vec3{0, 0, 0}
		l.Spawns = []EnemySpawn{{Pos: Vec3{2, 1, 0}, Template: "crab"}}
		return l
	})
}

func TestGetOrCreateGeneratesOnce(t *testing.T) {
	calls := 0
	r := NewIslands(plate(&calls))

	if _, ok := r.Get(7); ok {
		t.Fatalf("Get created an island")
	}
	g, created, err := r.GetOrCreate(7)
	if err != nil || !created {
		t.Fatalf("GetOrCreate = %v, %v", created, err)
	}
	if g.Tile(Vec3{-2, 0, 0}).Kind != TileTerrain {
		t.Fatalf("terrain not ingested")
	}
	if len(g.Spawns) != 1 || g.LeavePosition != (Vec3{}) {
		t.Fatalf("layout not carried: %+v", g.Spawns)
	}
	g2, created, _ := r.GetOrCreate(7)
	if created || g2 != g || calls != 1 {
		t.Fatalf("second GetOrCreate regenerated (calls=%d)", calls)
	}
}

func TestRetainSweepsEmptyIslands(t *testing.T) {
	calls := 0
	r := NewIslands(plate(&calls))
	for _, id := range []uint64{3, 1, 2} {
		g, _, _ := r.GetOrCreate(id)
		if id == 2 {
			g.PlayerCount = 1
		}
	}
	removed := r.Retain(func(_ uint64, g *Grid) bool { return g.PlayerCount > 0 })
	if len(removed) != 2 || removed[0] != 1 || removed[1] != 3 {
		t.Fatalf("removed = %v", removed)
	}
	if ids := r.IDs(); len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("remaining = %v", ids)
	}
	if _, ok := r.Get(1); ok {
		t.Fatalf("torn down island still reachable")
	}
}
