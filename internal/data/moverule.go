package data

import (
	"fmt"
	"os"

	"github.com/isleclash/server/internal/path"
	"gopkg.in/yaml.v3"
)

// RuleLookup resolves movement rules by name.
type RuleLookup interface {
	Get(name string) (path.MovementRule, bool)
}

type ruleEntry struct {
	Name      string `yaml:"name"`
	Offsets   string `yaml:"offsets"`
	CanClimb  bool   `yaml:"can_climb"`
	CanDrop   bool   `yaml:"can_drop"`
	Heuristic string `yaml:"heuristic"`
}

type ruleListFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

// LoadRuleTable returns the built-in rules extended (or overridden) by the
// rules in the YAML file.
func LoadRuleTable(file string) (*path.RuleTable, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read move rules: %w", err)
	}
	var f ruleListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse move rules: %w", err)
	}
	t := path.NewRuleTable()
	for _, e := range f.Rules {
		offsets, ok := path.OffsetSet(e.Offsets)
		if !ok {
			return nil, fmt.Errorf("move rule %q: unknown offset set %q", e.Name, e.Offsets)
		}
		h, ok := path.HeuristicByName(e.Heuristic)
		if !ok {
			return nil, fmt.Errorf("move rule %q: unknown heuristic %q", e.Name, e.Heuristic)
		}
		if err := t.Put(path.MovementRule{
			Name:      e.Name,
			Offsets:   offsets,
			CanClimb:  e.CanClimb,
			CanDrop:   e.CanDrop,
			Heuristic: h,
		}); err != nil {
			return nil, err
		}
	}
	return t, nil
}
