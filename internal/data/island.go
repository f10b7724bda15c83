package data

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/isleclash/server/internal/grid"
	"gopkg.in/yaml.v3"
)

// IslandTemplate describes the shape of an atoll-style island: a sand disc at
// y=0, a boardwalk pier along +X whose tip is the leave position, scattered
// palm trees, and enemy spawns.
type IslandTemplate struct {
	Name       string   `yaml:"name"`
	Radius     int32    `yaml:"radius"`
	PierLength int32    `yaml:"pier_length"`
	Palms      int      `yaml:"palms"`
	Enemies    int      `yaml:"enemies"`
	EnemyTypes []string `yaml:"enemy_types"`
	Rocks      int      `yaml:"rocks"`
}

type islandListFile struct {
	Islands []IslandTemplate `yaml:"islands"`
}

// IslandTable picks a template per island id and lays it out. It implements
// grid.Generator.
type IslandTable struct {
	templates []IslandTemplate
}

func (t *IslandTable) Count() int { return len(t.templates) }

// Template returns the template used for an island id.
func (t *IslandTable) Template(islandID uint64) *IslandTemplate {
	return &t.templates[islandID%uint64(len(t.templates))]
}

// DefaultIslandTable returns the single built-in atoll.
func DefaultIslandTable() *IslandTable {
	return &IslandTable{templates: []IslandTemplate{
		{Name: "atoll", Radius: 6, PierLength: 4, Palms: 4, Enemies: 4, EnemyTypes: []string{"crab"}, Rocks: 2},
	}}
}

// LoadIslandTable loads island templates from YAML.
func LoadIslandTable(path string, enemies *EnemyTable) (*IslandTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read islands: %w", err)
	}
	var f islandListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse islands: %w", err)
	}
	if len(f.Islands) == 0 {
		return nil, fmt.Errorf("parse islands: no templates")
	}
	for _, it := range f.Islands {
		if it.Radius < 2 || it.PierLength < 1 {
			return nil, fmt.Errorf("island %q: radius >= 2 and pier_length >= 1 required", it.Name)
		}
		if it.Enemies > 0 && len(it.EnemyTypes) == 0 {
			return nil, fmt.Errorf("island %q: enemies without enemy_types", it.Name)
		}
		for _, name := range it.EnemyTypes {
			if enemies.Get(name) == nil {
				return nil, fmt.Errorf("island %q: unknown enemy %q", it.Name, name)
			}
		}
	}
	return &IslandTable{templates: f.Islands}, nil
}

// Generate lays out the island. The RNG is seeded with the island id so the
// same id always produces the same island.
func (t *IslandTable) Generate(islandID uint64) grid.Layout {
	return t.Template(islandID).Layout(islandID)
}

// Layout builds the terrain and spawns for one island id.
func (it *IslandTemplate) Layout(islandID uint64) grid.Layout {
	rng := rand.New(rand.NewSource(int64(islandID)))
	var l grid.Layout

	r := it.Radius
	var top []grid.Vec3 // standing cells on the disc
	for x := -r; x <= r; x++ {
		for z := -r; z <= r; z++ {
			if x*x+z*z > r*r {
				continue
			}
			l.Terrain = append(l.Terrain, grid.TerrainPlacement{Pos: grid.Vec3{X: x, Y: 0, Z: z}, Kind: grid.Sand})
			top = append(top, grid.Vec3{X: x, Y: 1, Z: z})
		}
	}
	for i := int32(1); i <= it.PierLength; i++ {
		p := grid.Vec3{X: r + i, Y: 0, Z: 0}
		l.Terrain = append(l.Terrain, grid.TerrainPlacement{Pos: p, Kind: grid.Boardwalk})
		l.LeavePosition = p
	}

	// keep the pier approach clear
	free := top[:0:0]
	for _, p := range top {
		if p.Z == 0 && p.X >= r-1 {
			continue
		}
		free = append(free, p)
	}
	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })

	next := 0
	take := func() (grid.Vec3, bool) {
		if next >= len(free) {
			return grid.Vec3{}, false
		}
		p := free[next]
		next++
		return p, true
	}
	for i := 0; i < it.Palms; i++ {
		if p, ok := take(); ok {
			l.Terrain = append(l.Terrain, grid.TerrainPlacement{Pos: p, Kind: grid.PalmTree})
		}
	}
	for i := 0; i < it.Rocks; i++ {
		if p, ok := take(); ok {
			l.Terrain = append(l.Terrain, grid.TerrainPlacement{Pos: p, Kind: grid.Rock})
		}
	}
	for i := 0; i < it.Enemies; i++ {
		p, ok := take()
		if !ok {
			break
		}
		l.Spawns = append(l.Spawns, grid.EnemySpawn{Pos: p, Template: it.EnemyTypes[rng.Intn(len(it.EnemyTypes))]})
	}
	return l
}
