package data

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/isleclash/server/internal/grid"
	"github.com/isleclash/server/internal/path"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// AttackID is the stable numeric id of an attack type, shared with clients.
type AttackID uint64

// ErrDuplicateAttack is returned when two attacks hash to the same id.
var ErrDuplicateAttack = errors.New("attack already registered")

// DeriveAttackID hashes the canonical form of an attack name: NFC normalised,
// case folded, then 64-bit BLAKE2b. "DaggerThrow" and "daggerthrow" collide on
// purpose.
func DeriveAttackID(name string) AttackID {
	// Caser is stateful, one per call
	canon := cases.Fold().String(norm.NFC.String(name))
	h, _ := blake2b.New(8, nil) // size 8 with no key never fails
	h.Write([]byte(canon))
	return AttackID(binary.LittleEndian.Uint64(h.Sum(nil)))
}

// AttackKind selects the runtime behaviour of an attack instance.
type AttackKind uint8

const (
	KindMelee       AttackKind = iota // single hit at pos+dir at the phase midpoint
	KindCounter                       // negating stance
	KindCleave                        // hits the whole line, then dashes
	KindProjectile                    // spawns a projectile at the midpoint
	KindEnemyStrike                   // windup then strike, enemy only
)

var kindNames = map[string]AttackKind{
	"melee":        KindMelee,
	"counter":      KindCounter,
	"cleave":       KindCleave,
	"projectile":   KindProjectile,
	"enemy_strike": KindEnemyStrike,
}

func (k AttackKind) String() string {
	for name, v := range kindNames {
		if v == k {
			return name
		}
	}
	return fmt.Sprintf("AttackKind(%d)", uint8(k))
}

// AttackSpec is the immutable definition of one attack type.
type AttackSpec struct {
	ID            AttackID
	Name          string
	Kind          AttackKind
	Offsets       []grid.Vec3 // allowed cast directions
	Cooldown      time.Duration
	Damage        uint32
	Windup        time.Duration // 0 = single-phase
	Active        time.Duration
	Interruptible bool
	Range         float64       // projectile range in tiles
	Speed         float64       // projectile tiles per second
	Stun          time.Duration // counter: stun put on the attacker (0 = server default)
}

// AllowsDirection reports whether dir is one of the attack's direction offsets.
func (s *AttackSpec) AllowsDirection(dir grid.Vec3) bool {
	return slices.Contains(s.Offsets, dir)
}

// AttackTable holds every registered attack by id. Filled once at startup.
type AttackTable struct {
	attacks map[AttackID]*AttackSpec
	byName  map[string]*AttackSpec
}

func NewAttackTable() *AttackTable {
	return &AttackTable{
		attacks: make(map[AttackID]*AttackSpec, 16),
		byName:  make(map[string]*AttackSpec, 16),
	}
}

// Register adds an attack; its ID is derived from Name when left zero.
func (t *AttackTable) Register(spec AttackSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("register attack: empty name")
	}
	if spec.ID == 0 {
		spec.ID = DeriveAttackID(spec.Name)
	}
	if prev, ok := t.attacks[spec.ID]; ok {
		return fmt.Errorf("register %q: %w (as %q)", spec.Name, ErrDuplicateAttack, prev.Name)
	}
	if len(spec.Offsets) == 0 {
		spec.Offsets = slices.Clone(path.StandardOffsets)
	}
	s := spec
	t.attacks[s.ID] = &s
	t.byName[s.Name] = &s
	return nil
}

// Get returns an attack by id, or nil if not found.
func (t *AttackTable) Get(id AttackID) *AttackSpec {
	return t.attacks[id]
}

// GetByName returns an attack by its exact name, or nil if not found.
func (t *AttackTable) GetByName(name string) *AttackSpec {
	return t.byName[name]
}

func (t *AttackTable) Count() int {
	return len(t.attacks)
}

// All returns every attack ordered by name.
func (t *AttackTable) All() []*AttackSpec {
	out := make([]*AttackSpec, 0, len(t.attacks))
	for _, s := range t.attacks {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *AttackSpec) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}

// DefaultAttackTable returns the built-in attack set.
func DefaultAttackTable() *AttackTable {
	t := NewAttackTable()
	for _, s := range []AttackSpec{
		{Name: "BaseAttack", Kind: KindMelee, Cooldown: 800 * time.Millisecond, Damage: 10, Active: 200 * time.Millisecond},
		{Name: "Counter", Kind: KindCounter, Cooldown: 800 * time.Millisecond, Damage: 10, Active: 200 * time.Millisecond},
		{Name: "CutThrough", Kind: KindCleave, Cooldown: 6 * time.Second, Damage: 20, Interruptible: true},
		{Name: "DaggerThrow", Kind: KindProjectile, Cooldown: 800 * time.Millisecond, Damage: 8, Active: 200 * time.Millisecond, Interruptible: true, Range: 3, Speed: 1},
		{Name: "EnemyStrike", Kind: KindEnemyStrike, Offsets: path.AdjacentOffsets, Cooldown: 1500 * time.Millisecond, Damage: 10, Windup: 500 * time.Millisecond, Active: 250 * time.Millisecond, Interruptible: true},
	} {
		if err := t.Register(s); err != nil {
			panic(err) // static table, a collision here is a programming error
		}
	}
	return t
}

// --- YAML loading ---

type attackEntry struct {
	Name          string  `yaml:"name"`
	Kind          string  `yaml:"kind"`
	Offsets       string  `yaml:"offsets"`
	CooldownMs    int     `yaml:"cooldown_ms"`
	Damage        uint32  `yaml:"damage"`
	WindupMs      int     `yaml:"windup_ms"`
	ActiveMs      int     `yaml:"active_ms"`
	Interruptible bool    `yaml:"interruptible"`
	Range         float64 `yaml:"range"`
	Speed         float64 `yaml:"speed"`
	StunMs        int     `yaml:"stun_ms"`
}

type attackListFile struct {
	Attacks []attackEntry `yaml:"attacks"`
}

// LoadAttackTable loads attack definitions from YAML.
func LoadAttackTable(path string) (*AttackTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attacks: %w", err)
	}
	return ParseAttackTable(raw)
}

// ParseAttackTable builds a table from YAML bytes.
func ParseAttackTable(raw []byte) (*AttackTable, error) {
	var f attackListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse attacks: %w", err)
	}
	t := NewAttackTable()
	for i := range f.Attacks {
		e := &f.Attacks[i]
		kind, ok := kindNames[e.Kind]
		if !ok {
			return nil, fmt.Errorf("attack %q: unknown kind %q", e.Name, e.Kind)
		}
		setName := e.Offsets
		if setName == "" {
			setName = "standard"
		}
		offsets, ok := path.OffsetSet(setName)
		if !ok {
			return nil, fmt.Errorf("attack %q: unknown offset set %q", e.Name, e.Offsets)
		}
		if kind == KindProjectile && (e.Range <= 0 || e.Speed <= 0) {
			return nil, fmt.Errorf("attack %q: projectile needs range and speed", e.Name)
		}
		err := t.Register(AttackSpec{
			Name:          e.Name,
			Kind:          kind,
			Offsets:       offsets,
			Cooldown:      time.Duration(e.CooldownMs) * time.Millisecond,
			Damage:        e.Damage,
			Windup:        time.Duration(e.WindupMs) * time.Millisecond,
			Active:        time.Duration(e.ActiveMs) * time.Millisecond,
			Interruptible: e.Interruptible,
			Range:         e.Range,
			Speed:         e.Speed,
			Stun:          time.Duration(e.StunMs) * time.Millisecond,
		})
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}
