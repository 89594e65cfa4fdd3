package entity

// Component is an attachable behavior unit owned by exactly one entity.
// Update is required; the optional lifecycle hooks are expressed as capability
// interfaces (Initializer, LateUpdater, Destroyer) the entity checks at
// runtime, so a component only pays for the hooks it declares.
type Component interface {
	// Enabled gates participation in Update/LateUpdate. Disabled components
	// are skipped by the per-frame passes but still receive Destroy.
	Enabled() bool
	SetEnabled(enabled bool)
	// Update advances the component by delta simulation seconds.
	Update(delta float64)
}

// Initializer is implemented by components that need a synchronous hook when
// they are attached to an entity. It runs after the owner back-reference is
// bound.
type Initializer interface {
	Init()
}

// LateUpdater is implemented by components that want a second pass after every
// component's Update has run for the frame.
type LateUpdater interface {
	LateUpdate(delta float64)
}

// Destroyer is implemented by components holding resources that must be
// released when the component is removed or its entity is destroyed.
type Destroyer interface {
	Destroy()
}

// ownerBinder is satisfied by BaseComponent; AddComponent uses it to set the
// back-reference before Init runs.
type ownerBinder interface {
	bindOwner(*Entity)
}

// BaseComponent carries the enabled flag and the owner back-reference.
// Embed it in concrete components; the zero value is enabled and unowned.
type BaseComponent struct {
	owner    *Entity
	disabled bool
}

func (c *BaseComponent) bindOwner(e *Entity) { c.owner = e }

// Owner returns the entity this component is attached to, or nil before
// attachment.
func (c *BaseComponent) Owner() *Entity { return c.owner }

func (c *BaseComponent) Enabled() bool { return !c.disabled }

func (c *BaseComponent) SetEnabled(enabled bool) { c.disabled = !enabled }
