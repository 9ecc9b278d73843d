package data

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gridfall/server/internal/component"
)

// AbilityInfo holds a single ability template.
type AbilityInfo struct {
	Name       string
	Power      int    // base effect value before mitigation
	ManaCost   int    // 0 = free
	Element    string // "physical" or "magic"
	Projectile bool   // true = travels across tiles before resolving
	Speed      int    // tiles per tick while in flight
	Range      int    // max cast distance in tiles
}

// AbilityTable holds all abilities indexed by lowercase name.
type AbilityTable struct {
	byName map[string]*AbilityInfo
}

// Get returns an ability by name (case-insensitive), or nil if not found.
func (t *AbilityTable) Get(name string) *AbilityInfo {
	return t.byName[strings.ToLower(name)]
}

// Count returns total loaded abilities.
func (t *AbilityTable) Count() int {
	return len(t.byName)
}

// All returns all ability infos.
func (t *AbilityTable) All() []*AbilityInfo {
	result := make([]*AbilityInfo, 0, len(t.byName))
	for _, a := range t.byName {
		result = append(result, a)
	}
	return result
}

// --- YAML loading ---

type abilityEntry struct {
	Name       string `yaml:"name"`
	Power      int    `yaml:"power"`
	ManaCost   int    `yaml:"mana_cost"`
	Element    string `yaml:"element"`
	Projectile int    `yaml:"projectile"`
	Speed      int    `yaml:"speed"`
	Range      int    `yaml:"range"`
}

type abilityListFile struct {
	Abilities []abilityEntry `yaml:"abilities"`
}

// LoadAbilityTable loads ability definitions from YAML.
func LoadAbilityTable(path string) (*AbilityTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read abilities: %w", err)
	}
	var f abilityListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse abilities: %w", err)
	}
	infos := make([]AbilityInfo, 0, len(f.Abilities))
	for _, e := range f.Abilities {
		infos = append(infos, AbilityInfo{
			Name:       e.Name,
			Power:      e.Power,
			ManaCost:   e.ManaCost,
			Element:    e.Element,
			Projectile: e.Projectile != 0,
			Speed:      e.Speed,
			Range:      e.Range,
		})
	}
	return NewAbilityTable(infos...)
}

// NewAbilityTable builds a table from in-memory definitions. Names must be
// unique (case-insensitive); elements must be known.
func NewAbilityTable(infos ...AbilityInfo) (*AbilityTable, error) {
	t := &AbilityTable{byName: make(map[string]*AbilityInfo, len(infos))}
	for i := range infos {
		a := infos[i]
		key := strings.ToLower(a.Name)
		if key == "" {
			return nil, fmt.Errorf("ability %d has no name", i)
		}
		if _, ok := t.byName[key]; ok {
			return nil, fmt.Errorf("duplicate ability %q", a.Name)
		}
		switch a.Element {
		case component.ElementPhysical, component.ElementMagic:
		default:
			return nil, fmt.Errorf("ability %q has unknown element %q", a.Name, a.Element)
		}
		t.byName[key] = &a
	}
	return t, nil
}

// DefaultAbilityTable returns the built-in ability set used when no data file
// is present.
func DefaultAbilityTable() *AbilityTable {
	t, err := NewAbilityTable(
		AbilityInfo{Name: "firebolt", Power: 100, ManaCost: 12, Element: component.ElementMagic, Projectile: true, Speed: 3, Range: 12},
		AbilityInfo{Name: "spark", Power: 40, ManaCost: 5, Element: component.ElementMagic, Range: 8},
		AbilityInfo{Name: "strike", Power: 25, Element: component.ElementPhysical, Range: 1},
	)
	if err != nil {
		panic(err) // built-in table is static
	}
	return t
}
