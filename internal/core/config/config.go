package config

import (
	"fmt"

	"github.com/questforge/questforge/internal/core/character"
	"github.com/questforge/questforge/internal/core/engine"
)

// GameConfig describes a full game setup loadable from JSON or YAML: engine
// tuning, the item catalog, and character definitions referencing it.
type GameConfig struct {
	Engine     engine.Config     `json:"engine" yaml:"engine"`
	SaveDir    string            `json:"save_dir,omitempty" yaml:"save_dir,omitempty"`
	StartScene string            `json:"start_scene,omitempty" yaml:"start_scene,omitempty"`
	Items      []character.Item  `json:"items,omitempty" yaml:"items,omitempty"`
	Characters []CharacterConfig `json:"characters,omitempty" yaml:"characters,omitempty"`
}

// CharacterConfig is a declarative character definition. Zero stat fields
// fall back to the character baseline.
type CharacterConfig struct {
	ID         string                `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string                `json:"name" yaml:"name"`
	Attributes *character.Attributes `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	MaxHealth  int                   `json:"max_health,omitempty" yaml:"max_health,omitempty"`
	MaxMana    int                   `json:"max_mana,omitempty" yaml:"max_mana,omitempty"`
	Attack     int                   `json:"attack,omitempty" yaml:"attack,omitempty"`
	Defense    int                   `json:"defense,omitempty" yaml:"defense,omitempty"`
	Tags       []string              `json:"tags,omitempty" yaml:"tags,omitempty"`
	// Equipment maps slot name to an item from the catalog.
	Equipment map[string]string `json:"equipment,omitempty" yaml:"equipment,omitempty"`
}

// Validate checks internal consistency: item and character names, slot names,
// equipment references into the catalog.
func (c *GameConfig) Validate() error {
	items := make(map[string]struct{}, len(c.Items))
	for i, item := range c.Items {
		if item.Name == "" {
			return fmt.Errorf("item %d: name is required", i)
		}
		if _, dup := items[item.Name]; dup {
			return fmt.Errorf("item %q: duplicate name", item.Name)
		}
		items[item.Name] = struct{}{}
	}
	seen := make(map[string]struct{}, len(c.Characters))
	for i, cc := range c.Characters {
		if cc.Name == "" {
			return fmt.Errorf("character %d: name is required", i)
		}
		if cc.ID != "" {
			if _, dup := seen[cc.ID]; dup {
				return fmt.Errorf("character %q: duplicate id %q", cc.Name, cc.ID)
			}
			seen[cc.ID] = struct{}{}
		}
		for slot, itemName := range cc.Equipment {
			if !character.Slot(slot).IsValid() {
				return fmt.Errorf("character %q: unknown slot %q", cc.Name, slot)
			}
			if _, ok := items[itemName]; !ok {
				return fmt.Errorf("character %q: equipment references unknown item %q", cc.Name, itemName)
			}
		}
	}
	return nil
}
