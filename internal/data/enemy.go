package data

import (
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// EnemyTemplate holds static data for an enemy type loaded from YAML.
type EnemyTemplate struct {
	Name           string `yaml:"name"`
	HP             uint32 `yaml:"hp"`
	MoveRule       string `yaml:"move_rule"`
	Attack         string `yaml:"attack"`
	AggroRange     int32  `yaml:"aggro_range"`
	MoveIntervalMs int    `yaml:"move_interval_ms"`
}

// MoveInterval is the repeating move timer period.
func (e *EnemyTemplate) MoveInterval() time.Duration {
	return time.Duration(e.MoveIntervalMs) * time.Millisecond
}

type enemyListFile struct {
	Enemies []EnemyTemplate `yaml:"enemies"`
}

// EnemyTable holds all enemy templates indexed by name.
type EnemyTable struct {
	templates map[string]*EnemyTemplate
}

// Get returns a template by name, or nil if not found.
func (t *EnemyTable) Get(name string) *EnemyTemplate {
	return t.templates[name]
}

func (t *EnemyTable) Count() int {
	return len(t.templates)
}

// Names returns the template names in sorted order.
func (t *EnemyTable) Names() []string {
	out := make([]string, 0, len(t.templates))
	for n := range t.templates {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// DefaultEnemyTable returns the built-in templates.
func DefaultEnemyTable() *EnemyTable {
	return newEnemyTable([]EnemyTemplate{
		{Name: "crab", HP: 30, MoveRule: "standard", Attack: "EnemyStrike", AggroRange: 8, MoveIntervalMs: 700},
	})
}

func newEnemyTable(list []EnemyTemplate) *EnemyTable {
	t := &EnemyTable{templates: make(map[string]*EnemyTemplate, len(list))}
	for i := range list {
		e := list[i]
		t.templates[e.Name] = &e
	}
	return t
}

// LoadEnemyTable loads enemy templates from YAML and checks their references.
func LoadEnemyTable(path string, attacks *AttackTable, rules RuleLookup) (*EnemyTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read enemies: %w", err)
	}
	var f enemyListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse enemies: %w", err)
	}
	for i := range f.Enemies {
		e := &f.Enemies[i]
		if e.HP == 0 {
			return nil, fmt.Errorf("enemy %q: hp must be positive", e.Name)
		}
		if e.MoveIntervalMs <= 0 {
			e.MoveIntervalMs = 700
		}
		if e.Attack != "" && attacks.GetByName(e.Attack) == nil {
			return nil, fmt.Errorf("enemy %q: unknown attack %q", e.Name, e.Attack)
		}
		if _, ok := rules.Get(e.MoveRule); !ok {
			return nil, fmt.Errorf("enemy %q: unknown move rule %q", e.Name, e.MoveRule)
		}
	}
	return newEnemyTable(f.Enemies), nil
}
