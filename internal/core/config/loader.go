package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/questforge/questforge/internal/core/character"
	"github.com/questforge/questforge/internal/core/events/bus"
)

// LoadJSON decodes and validates a GameConfig from a JSON reader.
func LoadJSON(r io.Reader) (*GameConfig, error) {
	var c GameConfig
	dec := json.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadYAML decodes and validates a GameConfig from a YAML reader.
func LoadYAML(r io.Reader) (*GameConfig, error) {
	var c GameConfig
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile picks the decoder from the file extension (.json, .yaml, .yml).
func LoadFile(path string) (*GameConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	switch ext := filepath.Ext(path); ext {
	case ".json":
		return LoadJSON(f)
	case ".yaml", ".yml":
		return LoadYAML(f)
	default:
		return nil, fmt.Errorf("config: unsupported extension %q", ext)
	}
}

// BuildCharacters instantiates every character definition, applying stats,
// tags and catalog equipment. The events bus is handed to each character for
// its lifecycle topics.
func (c *GameConfig) BuildCharacters(events bus.Bus) ([]*character.Character, error) {
	catalog := make(map[string]*character.Item, len(c.Items))
	for i := range c.Items {
		catalog[c.Items[i].Name] = &c.Items[i]
	}
	out := make([]*character.Character, 0, len(c.Characters))
	for _, cc := range c.Characters {
		ch := character.New(cc.ID, cc.Name, events)
		if cc.Attributes != nil {
			ch.Attributes = *cc.Attributes
		}
		if cc.MaxHealth > 0 {
			ch.MaxHealth = cc.MaxHealth
			ch.Health = cc.MaxHealth
		}
		if cc.MaxMana > 0 {
			ch.MaxMana = cc.MaxMana
			ch.Mana = cc.MaxMana
		}
		if cc.Attack > 0 {
			ch.Attack = cc.Attack
		}
		if cc.Defense > 0 {
			ch.Defense = cc.Defense
		}
		for _, tag := range cc.Tags {
			ch.AddTag(tag)
		}
		for slot, itemName := range cc.Equipment {
			item, ok := catalog[itemName]
			if !ok {
				return nil, fmt.Errorf("character %q: unknown item %q", cc.Name, itemName)
			}
			if _, err := ch.Equip(item, character.Slot(slot)); err != nil {
				return nil, fmt.Errorf("character %q: %w", cc.Name, err)
			}
		}
		out = append(out, ch)
	}
	return out, nil
}
