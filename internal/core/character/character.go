package character

import (
	"errors"

	"github.com/questforge/questforge/internal/core/entity"
	"github.com/questforge/questforge/internal/core/events/bus"
)

// Topics published by characters.
const (
	TopicDied                = "character:died"
	TopicLevelUp             = "character:levelUp"
	TopicStatusEffectApplied = "character:statusEffectApplied"
)

// ExperiencePerLevel is the flat experience cost of each level.
const ExperiencePerLevel = 100

// ErrInvalidSlot is returned when equipping into a slot that does not exist.
var ErrInvalidSlot = errors.New("character: invalid equipment slot")

// DiedEvent is the payload of TopicDied.
type DiedEvent struct {
	Character *Character
}

// LevelUpEvent is the payload of TopicLevelUp.
type LevelUpEvent struct {
	Character *Character
	NewLevel  int
}

// StatusEffectEvent is the payload of TopicStatusEffectApplied.
type StatusEffectEvent struct {
	Character *Character
	Effect    StatusEffect
}

// Attributes are the six base attributes.
type Attributes struct {
	Strength     int `json:"strength" yaml:"strength"`
	Dexterity    int `json:"dexterity" yaml:"dexterity"`
	Constitution int `json:"constitution" yaml:"constitution"`
	Intelligence int `json:"intelligence" yaml:"intelligence"`
	Wisdom       int `json:"wisdom" yaml:"wisdom"`
	Charisma     int `json:"charisma" yaml:"charisma"`
}

// StatusEffect is a timed modifier. Duration counts down in simulation
// seconds; the effect is dropped once it reaches zero.
type StatusEffect struct {
	Name      string
	Duration  float64
	Magnitude float64
}

// Character is an entity with stats, equipment, status effects and the combat
// progression state machine. Events (death, level-up, status application) go
// out on the bus the character was constructed with, never a global.
//
// Invariants: Health stays within [0, MaxHealth]; Alive is false exactly when
// Health is zero; Level is always floor(Experience/100)+1.
type Character struct {
	*entity.Entity

	Name string

	Level      int
	Experience int

	Health    int
	MaxHealth int
	Mana      int
	MaxMana   int

	Attributes Attributes

	Attack        int
	Defense       int
	AttackSpeed   float64
	MovementSpeed float64

	Alive    bool
	InCombat bool

	equipment map[Slot]*Item
	Inventory *Inventory

	effects []StatusEffect

	events bus.Bus
}

// New creates a level-1 character with baseline stats. The id follows entity
// semantics (empty means generated).
func New(id, name string, events bus.Bus) *Character {
	return &Character{
		Entity:     entity.New(id),
		Name:       name,
		Level:      1,
		Health:     100,
		MaxHealth:  100,
		Mana:       50,
		MaxMana:    50,
		Attributes: Attributes{Strength: 10, Dexterity: 10, Constitution: 10, Intelligence: 10, Wisdom: 10, Charisma: 10},
		Attack:     10,
		Defense:    5,

		AttackSpeed:   1.0,
		MovementSpeed: 2.0,
		Alive:         true,
		equipment:     make(map[Slot]*Item),
		Inventory:     NewInventory(DefaultInventoryCapacity),
		events:        events,
	}
}

// LevelForExperience is the pure progression function.
func LevelForExperience(experience int) int {
	if experience < 0 {
		experience = 0
	}
	return experience/ExperiencePerLevel + 1
}

// TakeDamage reduces health, clamping at zero. The death transition publishes
// TopicDied exactly once; further zero-effect damage on a dead character keeps
// health clamped without re-publishing.
func (c *Character) TakeDamage(amount int) {
	if amount < 0 {
		amount = 0
	}
	c.Health -= amount
	if c.Health > 0 {
		return
	}
	c.Health = 0
	if c.Alive {
		c.Alive = false
		c.publish(TopicDied, DiedEvent{Character: c})
	}
}

// Heal restores health up to MaxHealth. Healing a dead character is a no-op;
// there is no resurrection path.
func (c *Character) Heal(amount int) {
	if !c.Alive || amount <= 0 {
		return
	}
	c.Health = min(c.Health+amount, c.MaxHealth)
}

// AddExperience accumulates experience and, when the recomputed level exceeds
// the current one, performs a single level-up straight to the final level with
// one TopicLevelUp event (no intermediate events).
func (c *Character) AddExperience(amount int) {
	if amount <= 0 {
		return
	}
	c.Experience += amount
	if newLevel := LevelForExperience(c.Experience); newLevel > c.Level {
		c.levelUp(newLevel)
	}
}

// levelUp grows the maxima by 10 health and 5 mana per level gained, then
// fully restores both pools. The full restore is deliberate.
func (c *Character) levelUp(newLevel int) {
	delta := newLevel - c.Level
	c.MaxHealth += 10 * delta
	c.MaxMana += 5 * delta
	c.Level = newLevel
	c.Health = c.MaxHealth
	c.Mana = c.MaxMana
	c.publish(TopicLevelUp, LevelUpEvent{Character: c, NewLevel: newLevel})
}

// Equip places item into slot and returns whatever occupied it before, or nil.
// The bumped item is the caller's to stash; it is not returned to the
// inventory automatically.
func (c *Character) Equip(item *Item, slot Slot) (*Item, error) {
	if !slot.IsValid() {
		return nil, ErrInvalidSlot
	}
	prev := c.equipment[slot]
	c.equipment[slot] = item
	return prev, nil
}

// Unequip empties the slot and returns the removed item, or nil.
func (c *Character) Unequip(slot Slot) *Item {
	prev := c.equipment[slot]
	delete(c.equipment, slot)
	return prev
}

// Equipped returns the item in slot.
func (c *Character) Equipped(slot Slot) (*Item, bool) {
	item, ok := c.equipment[slot]
	return item, ok && item != nil
}

// AddStatusEffect appends the effect and announces it.
func (c *Character) AddStatusEffect(effect StatusEffect) {
	c.effects = append(c.effects, effect)
	c.publish(TopicStatusEffectApplied, StatusEffectEvent{Character: c, Effect: effect})
}

// StatusEffects returns the active effects in application order.
func (c *Character) StatusEffects() []StatusEffect {
	out := make([]StatusEffect, len(c.effects))
	copy(out, c.effects)
	return out
}

// HasStatusEffect reports whether an effect with the given name is active.
func (c *Character) HasStatusEffect(name string) bool {
	for _, e := range c.effects {
		if e.Name == name {
			return true
		}
	}
	return false
}

// Update runs the base component update, then ticks status effect durations
// down by delta and drops the expired ones.
func (c *Character) Update(delta float64) {
	c.Entity.Update(delta)
	if len(c.effects) == 0 {
		return
	}
	kept := c.effects[:0]
	for i := range c.effects {
		c.effects[i].Duration -= delta
		if c.effects[i].Duration > 0 {
			kept = append(kept, c.effects[i])
		}
	}
	c.effects = kept
}

// TotalAttack is base attack plus the main-hand weapon's attack bonus.
func (c *Character) TotalAttack() int {
	total := c.Attack
	if weapon, ok := c.Equipped(SlotMainHand); ok {
		total += weapon.AttackBonus
	}
	return total
}

// TotalDefense is base defense plus every equipped item's defense bonus.
func (c *Character) TotalDefense() int {
	total := c.Defense
	for _, slot := range Slots() {
		if item, ok := c.Equipped(slot); ok {
			total += item.DefenseBonus
		}
	}
	return total
}

func (c *Character) publish(topic string, data any) {
	if c.events != nil {
		c.events.Publish(topic, data)
	}
}
