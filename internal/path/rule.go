package path

import (
	"fmt"
	"slices"

	"github.com/isleclash/server/internal/grid"
)

// Heuristic estimates the remaining step count between two cells.
type Heuristic func(a, b grid.Vec3) int32

// MovementRule is a named traversal policy. Rules are values shared by many
// actors; nothing mutates them after startup.
type MovementRule struct {
	Name      string
	Offsets   []grid.Vec3
	CanClimb  bool
	CanDrop   bool
	Heuristic Heuristic
}

var (
	StandardOffsets = []grid.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 0, 1}, {0, 0, -1}}
	DiagonalOffsets = []grid.Vec3{{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1}}
	OmniOffsets     = append(slices.Clone(StandardOffsets), DiagonalOffsets...)
	// AdjacentOffsets are the six face neighbours; used for strikes, not walking.
	AdjacentOffsets = append(slices.Clone(StandardOffsets), grid.Vec3{0, 1, 0}, grid.Vec3{0, -1, 0})
	KnightOffsets   = []grid.Vec3{
		{2, 0, 1}, {2, 0, -1}, {-2, 0, 1}, {-2, 0, -1},
		{1, 0, 2}, {1, 0, -2}, {-1, 0, 2}, {-1, 0, -2},
	}
)

var offsetSets = map[string][]grid.Vec3{
	"standard": StandardOffsets,
	"diagonal": DiagonalOffsets,
	"omni":     OmniOffsets,
	"knight":   KnightOffsets,
	"adjacent": AdjacentOffsets,
}

// OffsetSet returns a copy of a named offset set.
func OffsetSet(name string) ([]grid.Vec3, bool) {
	s, ok := offsetSets[name]
	return slices.Clone(s), ok
}

// Manhattan is |dx|+|dy|+|dz|.
func Manhattan(a, b grid.Vec3) int32 { return a.Manhattan(b) }

// GroundManhattan is the Manhattan distance on the XZ plane, raised to |dy|
// when the height gap is larger. A climbing or dropping step changes X/Z and Y
// at once, so this stays admissible where 3D Manhattan would overestimate.
func GroundManhattan(a, b grid.Vec3) int32 {
	flat := abs(a.X-b.X) + abs(a.Z-b.Z)
	return max(flat, abs(a.Y-b.Y))
}

// KnightDistance: one knight hop covers at most 3 Manhattan units.
func KnightDistance(a, b grid.Vec3) int32 { return (Manhattan(a, b) + 2) / 3 }

// Chebyshev is max(|dx|,|dy|,|dz|).
func Chebyshev(a, b grid.Vec3) int32 {
	return max(abs(a.X-b.X), abs(a.Y-b.Y), abs(a.Z-b.Z))
}

var heuristics = map[string]Heuristic{
	"manhattan":        Manhattan,
	"ground_manhattan": GroundManhattan,
	"knight":           KnightDistance,
	"chebyshev":        Chebyshev,
}

// HeuristicByName resolves a data-file heuristic name.
func HeuristicByName(name string) (Heuristic, bool) {
	h, ok := heuristics[name]
	return h, ok
}

var (
	Standard = MovementRule{Name: "standard", Offsets: StandardOffsets, CanClimb: true, CanDrop: true, Heuristic: GroundManhattan}
	Knight   = MovementRule{Name: "knight", Offsets: KnightOffsets, Heuristic: KnightDistance}
	Rook     = MovementRule{Name: "rook", Offsets: StandardOffsets, Heuristic: Manhattan}
	Bishop   = MovementRule{Name: "bishop", Offsets: DiagonalOffsets, Heuristic: Chebyshev}
	Queen    = MovementRule{Name: "queen", Offsets: OmniOffsets, Heuristic: Chebyshev}
)

// RuleTable resolves movement rules by name.
type RuleTable struct {
	rules map[string]MovementRule
}

// NewRuleTable returns a table preloaded with the built-in rules.
func NewRuleTable() *RuleTable {
	t := &RuleTable{rules: make(map[string]MovementRule, 8)}
	for _, r := range []MovementRule{Standard, Knight, Rook, Bishop, Queen} {
		t.rules[r.Name] = r
	}
	return t
}

// Put adds or replaces a rule.
func (t *RuleTable) Put(r MovementRule) error {
	if r.Name == "" || len(r.Offsets) == 0 || r.Heuristic == nil {
		return fmt.Errorf("movement rule %q: name, offsets and heuristic are required", r.Name)
	}
	t.rules[r.Name] = r
	return nil
}

func (t *RuleTable) Get(name string) (MovementRule, bool) {
	r, ok := t.rules[name]
	return r, ok
}

func (t *RuleTable) Count() int { return len(t.rules) }

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
