package entity

import (
	"github.com/google/uuid"

	"github.com/questforge/questforge/internal/core/events/bus"
)

// Runtime is the subset of the engine an entity can reach through its
// back-reference. Kept as an interface to avoid a dependency cycle; the
// engine's lifetime is independent of the entities it registers.
type Runtime interface {
	Events() bus.Bus
}

// GameObject is the shape the engine registry and scenes hold: the base
// *Entity or any specialization embedding it (a character overrides Update to
// tick its status effects, for example).
type GameObject interface {
	ID() string
	IsActive() bool
	Update(delta float64)
	LateUpdate(delta float64)
	Destroy()
	Attach(r Runtime)
}

// Entity is a positioned game object composed of named components and tags.
//
// Component iteration order for Update/LateUpdate is the insertion order of
// the component names, so behavior added first runs first. Entities are not
// safe for concurrent use; all mutation happens on the simulation goroutine.
type Entity struct {
	id string

	X, Y    float64
	Active  bool
	Visible bool

	runtime Runtime

	names      []string
	components map[string]Component

	tags map[string]struct{}
}

// New creates an entity with the given identifier. Identifiers are opaque and
// caller-assigned; an empty id is replaced with a generated uuid.
func New(id string) *Entity {
	if id == "" {
		id = uuid.NewString()
	}
	return &Entity{
		id:         id,
		Active:     true,
		Visible:    true,
		components: make(map[string]Component),
		tags:       make(map[string]struct{}),
	}
}

var _ GameObject = (*Entity)(nil)

func (e *Entity) ID() string { return e.id }

// IsActive reports the Active flag; inactive entities are skipped by the
// per-frame passes.
func (e *Entity) IsActive() bool { return e.Active }

// Attach binds the engine back-reference. Called by the engine on AddEntity.
func (e *Entity) Attach(r Runtime) { e.runtime = r }

// Runtime returns the engine back-reference, or nil when unregistered.
func (e *Entity) Runtime() Runtime { return e.runtime }

// SetPosition moves the entity.
func (e *Entity) SetPosition(x, y float64) {
	e.X, e.Y = x, y
}

// AddComponent stores c under name, binds its owner reference and runs its
// Init hook if it declares one. A component already stored at the same name is
// overwritten without its Destroy hook running; releasing it first is the
// caller's responsibility. Returns c for chaining.
func (e *Entity) AddComponent(name string, c Component) Component {
	if _, exists := e.components[name]; !exists {
		e.names = append(e.names, name)
	}
	e.components[name] = c
	if b, ok := c.(ownerBinder); ok {
		b.bindOwner(e)
	}
	if init, ok := c.(Initializer); ok {
		init.Init()
	}
	return c
}

// RemoveComponent runs the component's Destroy hook if it declares one and
// removes the mapping. No-op when the name is absent.
func (e *Entity) RemoveComponent(name string) {
	c, ok := e.components[name]
	if !ok {
		return
	}
	if d, ok := c.(Destroyer); ok {
		d.Destroy()
	}
	delete(e.components, name)
	for i, n := range e.names {
		if n == name {
			e.names = append(e.names[:i:i], e.names[i+1:]...)
			break
		}
	}
}

func (e *Entity) GetComponent(name string) (Component, bool) {
	c, ok := e.components[name]
	return c, ok
}

func (e *Entity) HasComponent(name string) bool {
	_, ok := e.components[name]
	return ok
}

// ComponentNames returns the component names in update order.
func (e *Entity) ComponentNames() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Update runs Update on every enabled component in insertion order.
func (e *Entity) Update(delta float64) {
	for _, name := range e.names {
		c := e.components[name]
		if c == nil || !c.Enabled() {
			continue
		}
		c.Update(delta)
	}
}

// LateUpdate runs LateUpdate on every enabled component declaring the hook,
// in the same order as Update.
func (e *Entity) LateUpdate(delta float64) {
	for _, name := range e.names {
		c := e.components[name]
		if c == nil || !c.Enabled() {
			continue
		}
		if lu, ok := c.(LateUpdater); ok {
			lu.LateUpdate(delta)
		}
	}
}

// Destroy runs the Destroy hook of every owned component, enabled or not.
// The component mapping is left intact and the engine registry is untouched;
// de-registration is the caller's separate responsibility.
func (e *Entity) Destroy() {
	for _, name := range e.names {
		if d, ok := e.components[name].(Destroyer); ok {
			d.Destroy()
		}
	}
}

func (e *Entity) AddTag(tag string) {
	e.tags[tag] = struct{}{}
}

func (e *Entity) RemoveTag(tag string) {
	delete(e.tags, tag)
}

func (e *Entity) HasTag(tag string) bool {
	_, ok := e.tags[tag]
	return ok
}

// Tags returns the entity's tags in unspecified order.
func (e *Entity) Tags() []string {
	out := make([]string, 0, len(e.tags))
	for tag := range e.tags {
		out = append(out, tag)
	}
	return out
}
