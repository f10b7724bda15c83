package grid

import (
	"fmt"
	"slices"
)

// TerrainPlacement is one block handed over by world generation.
type TerrainPlacement struct {
	Pos  Vec3
	Kind TerrainKind
}

// EnemySpawn places one enemy of the named template.
type EnemySpawn struct {
	Pos      Vec3
	Template string
}

// Layout is everything world generation produces for an island.
type Layout struct {
	Terrain       []TerrainPlacement
	LeavePosition Vec3
	Spawns        []EnemySpawn
}

// Generator builds the layout of a new island. Implementations must be
// deterministic per island id.
type Generator interface {
	Generate(islandID uint64) Layout
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(islandID uint64) Layout

func (f GeneratorFunc) Generate(islandID uint64) Layout { return f(islandID) }

// Islands owns one Grid per island id. Islands are created on explicit
// arrival only; lookups never create.
type Islands struct {
	grids map[uint64]*Grid
	gen   Generator
}

func NewIslands(gen Generator) *Islands {
	return &Islands{
		grids: make(map[uint64]*Grid),
		gen:   gen,
	}
}

// GetOrCreate returns the island's grid, generating it on first use.
// created is true when this call built it.
func (r *Islands) GetOrCreate(id uint64) (g *Grid, created bool, err error) {
	if g, ok := r.grids[id]; ok {
		return g, false, nil
	}
	layout := r.gen.Generate(id)
	g = NewGrid()
	for _, tp := range layout.Terrain {
		if err := g.AddOccupant(tp.Pos, TerrainTile(tp.Kind)); err != nil {
			return nil, false, fmt.Errorf("island %d terrain: %w", id, err)
		}
	}
	g.LeavePosition = layout.LeavePosition
	g.Spawns = slices.Clone(layout.Spawns)
	r.grids[id] = g
	return g, true, nil
}

// Get looks up an island without creating it.
func (r *Islands) Get(id uint64) (*Grid, bool) {
	g, ok := r.grids[id]
	return g, ok
}

// Retain removes every island for which keep returns false and returns the
// removed ids in ascending order.
func (r *Islands) Retain(keep func(id uint64, g *Grid) bool) []uint64 {
	var removed []uint64
	for id, g := range r.grids {
		if !keep(id, g) {
			removed = append(removed, id)
		}
	}
	slices.Sort(removed)
	for _, id := range removed {
		delete(r.grids, id)
	}
	return removed
}

// IDs returns the live island ids in ascending order.
func (r *Islands) IDs() []uint64 {
	ids := make([]uint64, 0, len(r.grids))
	for id := range r.grids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (r *Islands) Len() int { return len(r.grids) }
