package character

// Stack is a quantity of one item kind occupying a single inventory slot.
type Stack struct {
	Item     *Item
	Quantity int
}

// Inventory is plain list-based bookkeeping: stackable items merge into an
// existing stack, everything else takes a fresh slot up to capacity. It has no
// consistency concerns beyond the capacity bound.
type Inventory struct {
	capacity int
	gold     int
	stacks   []Stack
}

const DefaultInventoryCapacity = 20

func NewInventory(capacity int) *Inventory {
	if capacity <= 0 {
		capacity = DefaultInventoryCapacity
	}
	return &Inventory{capacity: capacity}
}

func (inv *Inventory) Capacity() int { return inv.capacity }

// Add places qty of item into the inventory. Returns false (leaving the
// inventory untouched) when a fresh slot would be needed and none is free.
func (inv *Inventory) Add(item *Item, qty int) bool {
	if item == nil || qty <= 0 {
		return false
	}
	if item.Stackable {
		for i := range inv.stacks {
			if inv.stacks[i].Item.Name == item.Name {
				inv.stacks[i].Quantity += qty
				return true
			}
		}
	}
	if len(inv.stacks) >= inv.capacity {
		return false
	}
	inv.stacks = append(inv.stacks, Stack{Item: item, Quantity: qty})
	return true
}

// Remove takes qty of the named item out. Returns false when fewer than qty
// are held; partial removal never happens.
func (inv *Inventory) Remove(name string, qty int) bool {
	if qty <= 0 || inv.Count(name) < qty {
		return false
	}
	for i := 0; i < len(inv.stacks) && qty > 0; {
		s := &inv.stacks[i]
		if s.Item.Name != name {
			i++
			continue
		}
		take := min(qty, s.Quantity)
		s.Quantity -= take
		qty -= take
		if s.Quantity == 0 {
			inv.stacks = append(inv.stacks[:i], inv.stacks[i+1:]...)
			continue
		}
		i++
	}
	return true
}

// Count returns the total quantity held across all stacks of the named item.
func (inv *Inventory) Count(name string) int {
	total := 0
	for _, s := range inv.stacks {
		if s.Item.Name == name {
			total += s.Quantity
		}
	}
	return total
}

// Find returns the first held item with the given name.
func (inv *Inventory) Find(name string) (*Item, bool) {
	for _, s := range inv.stacks {
		if s.Item.Name == name {
			return s.Item, true
		}
	}
	return nil, false
}

// Stacks returns a copy of the occupied slots in insertion order.
func (inv *Inventory) Stacks() []Stack {
	out := make([]Stack, len(inv.stacks))
	copy(out, inv.stacks)
	return out
}

func (inv *Inventory) Gold() int { return inv.gold }

func (inv *Inventory) AddGold(amount int) {
	if amount > 0 {
		inv.gold += amount
	}
}

// SpendGold returns false when the balance is insufficient.
func (inv *Inventory) SpendGold(amount int) bool {
	if amount < 0 || amount > inv.gold {
		return false
	}
	inv.gold -= amount
	return true
}
