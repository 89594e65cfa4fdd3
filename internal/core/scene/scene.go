package scene

import (
	"github.com/questforge/questforge/internal/core/entity"
	"github.com/questforge/questforge/internal/core/events/bus"
)

// Registrar is the slice of the engine a scene needs: entity registration and
// the event bus. The scene's entity list is bookkeeping only; the engine's
// flat registry stays the owner of record.
type Registrar interface {
	AddEntity(e entity.GameObject) error
	RemoveEntity(id string) entity.GameObject
	Events() bus.Bus
}

// Scene is a named, loadable collection of entities with its own
// update/render lifecycle. Behavior is attached through the optional hook
// funcs; a scene with no hooks is just an entity grouping.
//
// An entity added to the scene is also registered with the engine. Removing it
// from one side does not remove it from the other.
type Scene struct {
	name   string
	reg    Registrar
	ids    map[string]struct{}
	ents   []entity.GameObject
	loaded bool

	OnLoad   func(s *Scene)
	OnUnload func(s *Scene)
	OnUpdate func(s *Scene, delta float64)
	OnRender func(s *Scene)
}

func New(name string, reg Registrar) *Scene {
	return &Scene{
		name: name,
		reg:  reg,
		ids:  make(map[string]struct{}),
	}
}

func (s *Scene) Name() string { return s.name }

func (s *Scene) Loaded() bool { return s.loaded }

// Events exposes the engine bus for scene hooks.
func (s *Scene) Events() bus.Bus {
	if s.reg == nil {
		return nil
	}
	return s.reg.Events()
}

// AddEntity appends e to the scene list and registers it with the engine.
// When the engine rejects the registration (capacity), the scene list is left
// untouched and the error is returned.
func (s *Scene) AddEntity(e entity.GameObject) error {
	if s.reg != nil {
		if err := s.reg.AddEntity(e); err != nil {
			return err
		}
	}
	s.ids[e.ID()] = struct{}{}
	s.ents = append(s.ents, e)
	return nil
}

// RemoveEntity drops the entity from the scene list only; the engine registry
// keeps it. Returns false when the scene does not hold the id.
func (s *Scene) RemoveEntity(id string) bool {
	if _, ok := s.ids[id]; !ok {
		return false
	}
	delete(s.ids, id)
	for i, e := range s.ents {
		if e.ID() == id {
			s.ents = append(s.ents[:i:i], s.ents[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether the scene holds the entity id. The engine uses it
// to keep scene entities out of the flat per-frame update pass.
func (s *Scene) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Entities returns the scene's entity list in insertion order.
func (s *Scene) Entities() []entity.GameObject {
	out := make([]entity.GameObject, len(s.ents))
	copy(out, s.ents)
	return out
}

// Load marks the scene active and runs its OnLoad hook. Idempotent.
func (s *Scene) Load() {
	if s.loaded {
		return
	}
	s.loaded = true
	if s.OnLoad != nil {
		s.OnLoad(s)
	}
}

// Unload marks the scene inactive and runs its OnUnload hook. Idempotent.
func (s *Scene) Unload() {
	if !s.loaded {
		return
	}
	s.loaded = false
	if s.OnUnload != nil {
		s.OnUnload(s)
	}
}

// Update advances every active scene entity in insertion order, then runs the
// OnUpdate hook.
func (s *Scene) Update(delta float64) {
	for _, e := range s.ents {
		if e.IsActive() {
			e.Update(delta)
		}
	}
	if s.OnUpdate != nil {
		s.OnUpdate(s, delta)
	}
}

// Render runs the OnRender hook. Rendering proper is a delegated concern.
func (s *Scene) Render() {
	if s.OnRender != nil {
		s.OnRender(s)
	}
}
