package grid

import "github.com/isleclash/server/internal/core/ecs"

// TileKind is what occupies a cell.
type TileKind uint8

const (
	TileEmpty TileKind = iota
	TileTerrain
	TilePlayer
	TileEnemy
)

func (k TileKind) String() string {
	switch k {
	case TileEmpty:
		return "empty"
	case TileTerrain:
		return "terrain"
	case TilePlayer:
		return "player"
	case TileEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// IsActor reports whether the kind is a combat target (player or enemy).
func (k TileKind) IsActor() bool { return k == TilePlayer || k == TileEnemy }

// TerrainKind selects the block type of a terrain tile. Values are part of the
// wire format and must not be reordered.
type TerrainKind uint8

const (
	Sand TerrainKind = iota
	Boardwalk
	PalmTree
	Invisible
	Rock
)

var terrainNames = map[string]TerrainKind{
	"sand":      Sand,
	"boardwalk": Boardwalk,
	"palm_tree": PalmTree,
	"invisible": Invisible,
	"rock":      Rock,
}

// ParseTerrain maps a data-file name to a TerrainKind.
func ParseTerrain(name string) (TerrainKind, bool) {
	k, ok := terrainNames[name]
	return k, ok
}

// Tile is a single grid cell. The zero Tile is Empty with the sentinel occupant.
type Tile struct {
	Kind     TileKind
	Terrain  TerrainKind
	Occupant ecs.EntityID
}

func TerrainTile(k TerrainKind) Tile             { return Tile{Kind: TileTerrain, Terrain: k} }
func PlayerTile(id ecs.EntityID) Tile            { return Tile{Kind: TilePlayer, Occupant: id} }
func EnemyTile(id ecs.EntityID) Tile             { return Tile{Kind: TileEnemy, Occupant: id} }
func ActorTile(k TileKind, id ecs.EntityID) Tile { return Tile{Kind: k, Occupant: id} }

func (t Tile) IsEmpty() bool { return t.Kind == TileEmpty }
