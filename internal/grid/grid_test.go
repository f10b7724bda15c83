package grid

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/isleclash/server/internal/core/ecs"
)

func TestChunkRoundTripIncludingNegatives(t *testing.T) {
	for x := int32(-40); x <= 40; x++ {
		for _, yz := range []int32{-33, -17, -16, -15, -1, 0, 1, 15, 16, 17, 33} {
			p := Vec3{x, yz, -yz}
			chunk, local := WorldToChunk(p), WorldToLocal(p)
			for _, l := range []int32{local.X, local.Y, local.Z} {
				if l < 0 || l >= ChunkSize {
					t.Fatalf("local %s of %s out of range", local, p)
				}
			}
			if got := ChunkToWorld(chunk, local); got != p {
				t.Fatalf("round trip %s -> (%s,%s) -> %s", p, chunk, local, got)
			}
		}
	}
	if c := WorldToChunk(Vec3{-1, -16, -17}); c != (Vec3{-1, -1, -2}) {
		t.Fatalf("WorldToChunk(-1,-16,-17) = %s", c)
	}
}

func TestAddThenRemoveRestoresEmpty(t *testing.T) {
	g := NewGrid()
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		p := Vec3{rng.Int31n(200) - 100, rng.Int31n(200) - 100, rng.Int31n(200) - 100}
		tiles := []Tile{TerrainTile(Rock), PlayerTile(ecs.EntityID(i + 1)), EnemyTile(ecs.EntityID(i + 1))}
		tile := tiles[i%len(tiles)]
		if err := g.AddOccupant(p, tile); err != nil {
			t.Fatalf("add %s: %v", p, err)
		}
		if got := g.Tile(p); got != tile {
			t.Fatalf("tile at %s = %+v, want %+v", p, got, tile)
		}
		g.RemoveOccupant(p)
		if got := g.Tile(p); got != (Tile{}) {
			t.Fatalf("tile at %s = %+v after remove", p, got)
		}
	}
	if g.OccupantCount() != 0 {
		t.Fatalf("back-references left: %d", g.OccupantCount())
	}
}

func TestMissingChunkReadsEmpty(t *testing.T) {
	g := NewGrid()
	if !g.Tile(Vec3{1000, -1000, 5}).IsEmpty() {
		t.Fatalf("absent chunk is not empty")
	}
	g.RemoveOccupant(Vec3{3, 3, 3})
	if g.ChunkCount() != 0 {
		t.Fatalf("read or remove created a chunk")
	}
}

func TestCanMove(t *testing.T) {
	g := NewGrid()
	must(t, g.AddOccupant(Vec3{0, -1, 0}, TerrainTile(Sand)))
	must(t, g.AddOccupant(Vec3{1, -1, 0}, TerrainTile(Sand)))
	must(t, g.AddOccupant(Vec3{2, -1, 0}, TerrainTile(Sand)))
	must(t, g.AddOccupant(Vec3{1, 0, 0}, PlayerTile(5)))
	must(t, g.AddOccupant(Vec3{2, 0, 0}, EnemyTile(6)))

	cases := []struct {
		p    Vec3
		want bool
	}{
		{Vec3{0, 0, 0}, true},   // empty on sand
		{Vec3{1, 0, 0}, true},   // player cell counts as walkable
		{Vec3{2, 0, 0}, false},  // enemy blocks
		{Vec3{3, 0, 0}, false},  // nothing below
		{Vec3{0, -1, 0}, false}, // terrain itself
	}
	for _, c := range cases {
		if got := g.CanMove(c.p); got != c.want {
			t.Errorf("CanMove(%s) = %v, want %v", c.p, got, c.want)
		}
	}
}

func TestTargetIgnoresTerrain(t *testing.T) {
	g := NewGrid()
	must(t, g.AddOccupant(Vec3{0, 0, 0}, TerrainTile(PalmTree)))
	must(t, g.AddOccupant(Vec3{1, 0, 0}, EnemyTile(9)))
	if _, ok := g.Target(Vec3{0, 0, 0}); ok {
		t.Fatalf("terrain reported as a target")
	}
	if id, ok := g.Target(Vec3{1, 0, 0}); !ok || id != 9 {
		t.Fatalf("Target = %d,%v", id, ok)
	}
	if _, ok := g.Target(Vec3{2, 0, 0}); ok {
		t.Fatalf("empty reported as a target")
	}
}

func TestDoubleOccupancyIsRejected(t *testing.T) {
	g := NewGrid()
	must(t, g.SpawnActor(Vec3{0, 0, 0}, TilePlayer, 1))
	err := g.SpawnActor(Vec3{0, 0, 0}, TileEnemy, 2)
	if !errors.Is(err, ErrDoubleOccupancy) {
		t.Fatalf("err = %v, want ErrDoubleOccupancy", err)
	}
	if g.EnemyCount != 0 || g.PlayerCount != 1 {
		t.Fatalf("counters moved on failed spawn: p=%d e=%d", g.PlayerCount, g.EnemyCount)
	}
	if err := g.SpawnActor(Vec3{5, 0, 0}, TilePlayer, 1); !errors.Is(err, ErrDuplicateOccupant) {
		t.Fatalf("err = %v, want ErrDuplicateOccupant", err)
	}
}

func TestMoveActorKeepsBackReference(t *testing.T) {
	g := NewGrid()
	must(t, g.SpawnActor(Vec3{0, 0, 0}, TileEnemy, 3))
	must(t, g.SpawnActor(Vec3{2, 0, 0}, TilePlayer, 4))

	must(t, g.MoveActor(3, Vec3{1, 0, 0}))
	if p, _ := g.PositionOf(3); p != (Vec3{1, 0, 0}) {
		t.Fatalf("PositionOf = %s", p)
	}
	if !g.Tile(Vec3{0, 0, 0}).IsEmpty() {
		t.Fatalf("old cell not freed")
	}

	if err := g.MoveActor(3, Vec3{2, 0, 0}); !errors.Is(err, ErrDoubleOccupancy) {
		t.Fatalf("err = %v", err)
	}
	if id, ok := g.Target(Vec3{1, 0, 0}); !ok || id != 3 {
		t.Fatalf("failed move did not restore the actor")
	}
	must(t, g.CheckOccupant(3))

	p, err := g.DespawnActor(3)
	must(t, err)
	if p != (Vec3{1, 0, 0}) || g.EnemyCount != 0 {
		t.Fatalf("despawn at %s, enemies=%d", p, g.EnemyCount)
	}
	if _, err := g.DespawnActor(3); !errors.Is(err, ErrMissingBackReference) {
		t.Fatalf("second despawn err = %v", err)
	}
}

func TestTopTiles(t *testing.T) {
	g := NewGrid()
	must(t, g.AddOccupant(Vec3{0, 0, 0}, TerrainTile(Sand)))
	must(t, g.AddOccupant(Vec3{1, 0, 0}, TerrainTile(Sand)))
	must(t, g.AddOccupant(Vec3{1, 1, 0}, TerrainTile(PalmTree)))
	must(t, g.AddOccupant(Vec3{-1, 15, 0}, TerrainTile(Invisible)))

	got := g.TopTiles()
	want := []Vec3{{0, 1, 0}, {1, 2, 0}}
	if len(got) != len(want) {
		t.Fatalf("TopTiles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("TopTiles = %v, want %v", got, want)
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
