package grid

import (
	"errors"
	"fmt"
	"slices"

	"github.com/isleclash/server/internal/core/ecs"
)

var (
	// ErrDoubleOccupancy: an actor tile was written over a different actor.
	ErrDoubleOccupancy = errors.New("grid: cell already occupied by another actor")
	// ErrDuplicateOccupant: an actor was placed while still present elsewhere.
	ErrDuplicateOccupant = errors.New("grid: actor already placed at another cell")
	// ErrMissingBackReference: the id → cell index disagrees with the cell.
	ErrMissingBackReference = errors.New("grid: occupant back-reference missing or stale")
)

// Grid is the chunked occupancy store of one island. Chunks are created on
// first write and the grid has no bounds. Game loop only, no locks.
type Grid struct {
	chunks    map[Vec3]*Chunk
	occupants map[ecs.EntityID]Vec3

	PlayerCount   int
	EnemyCount    int
	LeavePosition Vec3

	// Spawns is the enemy placement handed over by the generator.
	Spawns []EnemySpawn
}

func NewGrid() *Grid {
	return &Grid{
		chunks:    make(map[Vec3]*Chunk),
		occupants: make(map[ecs.EntityID]Vec3),
	}
}

// Tile returns the tile at p, or the default Empty tile when the chunk does
// not exist yet.
func (g *Grid) Tile(p Vec3) Tile {
	c, ok := g.chunks[WorldToChunk(p)]
	if !ok {
		return Tile{}
	}
	return c.get(WorldToLocal(p))
}

// AddOccupant writes t at p. Terrain may overwrite terrain; an actor tile may
// only land on a cell that holds no other actor.
func (g *Grid) AddOccupant(p Vec3, t Tile) error {
	cur := g.Tile(p)
	if cur.Kind.IsActor() && cur.Occupant != t.Occupant {
		return fmt.Errorf("add %s at %s: %w (held by %d)", t.Kind, p, ErrDoubleOccupancy, cur.Occupant)
	}
	if t.Kind.IsActor() {
		if at, ok := g.occupants[t.Occupant]; ok && at != p {
			return fmt.Errorf("add %d at %s: %w (at %s)", t.Occupant, p, ErrDuplicateOccupant, at)
		}
	}

	key := WorldToChunk(p)
	c, ok := g.chunks[key]
	if !ok {
		if t.IsEmpty() {
			return nil
		}
		c = &Chunk{}
		g.chunks[key] = c
	}
	c.set(WorldToLocal(p), t)
	if t.Kind.IsActor() {
		g.occupants[t.Occupant] = p
	}
	return nil
}

// RemoveOccupant resets p to Empty. A missing chunk is a no-op.
func (g *Grid) RemoveOccupant(p Vec3) {
	c, ok := g.chunks[WorldToChunk(p)]
	if !ok {
		return
	}
	local := WorldToLocal(p)
	if cur := c.get(local); cur.Kind.IsActor() {
		if at, ok := g.occupants[cur.Occupant]; ok && at == p {
			delete(g.occupants, cur.Occupant)
		}
	}
	c.set(local, Tile{})
}

// CanMove: walkable iff the tile below is terrain and p is empty or a player.
func (g *Grid) CanMove(p Vec3) bool {
	if g.Tile(p.Add(Down)).Kind != TileTerrain {
		return false
	}
	k := g.Tile(p).Kind
	return k == TileEmpty || k == TilePlayer
}

// Target returns the actor at p. Terrain is not a target.
func (g *Grid) Target(p Vec3) (ecs.EntityID, bool) {
	t := g.Tile(p)
	if !t.Kind.IsActor() {
		return 0, false
	}
	return t.Occupant, true
}

// SpawnActor places an actor and bumps the matching counter.
func (g *Grid) SpawnActor(p Vec3, kind TileKind, id ecs.EntityID) error {
	if !kind.IsActor() {
		return fmt.Errorf("spawn %s at %s: not an actor kind", kind, p)
	}
	if err := g.AddOccupant(p, ActorTile(kind, id)); err != nil {
		return err
	}
	g.bump(kind, 1)
	return nil
}

// DespawnActor frees the actor's cell and decrements its counter. Returns the
// freed position.
func (g *Grid) DespawnActor(id ecs.EntityID) (Vec3, error) {
	p, t, err := g.locate(id)
	if err != nil {
		return Vec3{}, err
	}
	g.RemoveOccupant(p)
	g.bump(t.Kind, -1)
	return p, nil
}

// MoveActor relocates an actor with the remove-then-add protocol. On failure
// the actor is put back where it was.
func (g *Grid) MoveActor(id ecs.EntityID, to Vec3) error {
	from, t, err := g.locate(id)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}
	g.RemoveOccupant(from)
	if err := g.AddOccupant(to, t); err != nil {
		if rerr := g.AddOccupant(from, t); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	return nil
}

// PositionOf returns the cell an actor occupies.
func (g *Grid) PositionOf(id ecs.EntityID) (Vec3, bool) {
	p, ok := g.occupants[id]
	return p, ok
}

// Occupants returns the ids of every actor on the grid in ascending order.
func (g *Grid) Occupants() []ecs.EntityID {
	ids := make([]ecs.EntityID, 0, len(g.occupants))
	for id := range g.occupants {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (g *Grid) OccupantCount() int { return len(g.occupants) }
func (g *Grid) ChunkCount() int    { return len(g.chunks) }

// TopTiles lists every empty cell resting directly on terrain, ordered by
// Y, Z, X. Invisible terrain (walls, pier supports) does not count.
func (g *Grid) TopTiles() []Vec3 {
	var out []Vec3
	for key, c := range g.chunks {
		if c.used == 0 {
			continue
		}
		for i := range c.tiles {
			t := c.tiles[i]
			if t.Kind != TileTerrain || t.Terrain == Invisible {
				continue
			}
			local := Vec3{int32(i % ChunkSize), int32((i / ChunkSize) % ChunkSize), int32(i / (ChunkSize * ChunkSize))}
			above := ChunkToWorld(key, local).Add(Up)
			if g.Tile(above).IsEmpty() {
				out = append(out, above)
			}
		}
	}
	slices.SortFunc(out, func(a, b Vec3) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return out
}

// CheckOccupant verifies that id's back-reference and its cell agree.
func (g *Grid) CheckOccupant(id ecs.EntityID) error {
	_, _, err := g.locate(id)
	return err
}

func (g *Grid) locate(id ecs.EntityID) (Vec3, Tile, error) {
	p, ok := g.occupants[id]
	if !ok {
		return Vec3{}, Tile{}, fmt.Errorf("locate %d: %w", id, ErrMissingBackReference)
	}
	t := g.Tile(p)
	if !t.Kind.IsActor() || t.Occupant != id {
		return Vec3{}, Tile{}, fmt.Errorf("locate %d at %s: %w", id, p, ErrMissingBackReference)
	}
	return p, t, nil
}

func (g *Grid) bump(kind TileKind, d int) {
	switch kind {
	case TilePlayer:
		g.PlayerCount += d
	case TileEnemy:
		g.EnemyCount += d
	}
}
