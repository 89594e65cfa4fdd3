package character

// Slot identifies one of the seven fixed equipment slots.
type Slot string

const (
	SlotMainHand  Slot = "mainHand"
	SlotOffHand   Slot = "offHand"
	SlotHead      Slot = "head"
	SlotChest     Slot = "chest"
	SlotLegs      Slot = "legs"
	SlotFeet      Slot = "feet"
	SlotAccessory Slot = "accessory"
)

// Slots lists every equipment slot in a stable order.
func Slots() []Slot {
	return []Slot{SlotMainHand, SlotOffHand, SlotHead, SlotChest, SlotLegs, SlotFeet, SlotAccessory}
}

// IsValid reports whether s is one of the seven slots.
func (s Slot) IsValid() bool {
	switch s {
	case SlotMainHand, SlotOffHand, SlotHead, SlotChest, SlotLegs, SlotFeet, SlotAccessory:
		return true
	}
	return false
}

// Item describes an equippable or carryable object. Bonuses default to zero,
// so plain trade goods and quest items are just items with no bonuses.
type Item struct {
	Name         string `json:"name" yaml:"name"`
	Slot         Slot   `json:"slot,omitempty" yaml:"slot,omitempty"`
	AttackBonus  int    `json:"attack_bonus,omitempty" yaml:"attack_bonus,omitempty"`
	DefenseBonus int    `json:"defense_bonus,omitempty" yaml:"defense_bonus,omitempty"`
	Stackable    bool   `json:"stackable,omitempty" yaml:"stackable,omitempty"`
	Value        int    `json:"value,omitempty" yaml:"value,omitempty"`
}
