package scene

import (
	"errors"
	"testing"

	"github.com/questforge/questforge/internal/core/entity"
	"github.com/questforge/questforge/internal/core/events/bus"
)

// fakeRegistrar records registrations and can be told to reject them.
type fakeRegistrar struct {
	added   []string
	removed []string
	reject  error
}

func (f *fakeRegistrar) AddEntity(e entity.GameObject) error {
	if f.reject != nil {
		return f.reject
	}
	f.added = append(f.added, e.ID())
	return nil
}

func (f *fakeRegistrar) RemoveEntity(id string) entity.GameObject {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeRegistrar) Events() bus.Bus { return nil }

type tick struct {
	entity.BaseComponent
	n int
}

func (c *tick) Update(delta float64) { c.n++ }

func TestAddEntityAlsoRegistersWithEngine(t *testing.T) {
	reg := &fakeRegistrar{}
	s := New("town", reg)
	e := entity.New("npc")
	if err := s.AddEntity(e); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(reg.added) != 1 || reg.added[0] != "npc" {
		t.Fatalf("engine registrations = %v", reg.added)
	}
	if !s.Contains("npc") || len(s.Entities()) != 1 {
		t.Fatal("scene bookkeeping missing the entity")
	}
}

func TestRejectedRegistrationLeavesSceneUntouched(t *testing.T) {
	limit := errors.New("full")
	s := New("town", &fakeRegistrar{reject: limit})
	if err := s.AddEntity(entity.New("npc")); !errors.Is(err, limit) {
		t.Fatalf("expected the engine error, got %v", err)
	}
	if s.Contains("npc") || len(s.Entities()) != 0 {
		t.Fatal("rejected entity leaked into the scene list")
	}
}

func TestRemoveEntitySceneListOnly(t *testing.T) {
	reg := &fakeRegistrar{}
	s := New("town", reg)
	_ = s.AddEntity(entity.New("npc"))
	if !s.RemoveEntity("npc") {
		t.Fatal("remove reported failure")
	}
	if s.Contains("npc") {
		t.Fatal("entity still in scene")
	}
	if len(reg.removed) != 0 {
		t.Fatal("scene removal must not touch the engine registry")
	}
	if s.RemoveEntity("npc") {
		t.Fatal("second removal should report false")
	}
}

func TestLoadUnloadIdempotentWithHooks(t *testing.T) {
	s := New("town", &fakeRegistrar{})
	loads, unloads := 0, 0
	s.OnLoad = func(*Scene) { loads++ }
	s.OnUnload = func(*Scene) { unloads++ }
	s.Load()
	s.Load()
	if !s.Loaded() || loads != 1 {
		t.Fatalf("loaded=%v loads=%d", s.Loaded(), loads)
	}
	s.Unload()
	s.Unload()
	if s.Loaded() || unloads != 1 {
		t.Fatalf("loaded=%v unloads=%d", s.Loaded(), unloads)
	}
}

func TestUpdateSkipsInactiveAndRunsHook(t *testing.T) {
	s := New("town", &fakeRegistrar{})
	active := entity.New("a")
	ac := &tick{}
	active.AddComponent("tick", ac)
	idle := entity.New("b")
	ic := &tick{}
	idle.AddComponent("tick", ic)
	idle.Active = false
	_ = s.AddEntity(active)
	_ = s.AddEntity(idle)

	var hookDelta float64
	s.OnUpdate = func(_ *Scene, delta float64) { hookDelta = delta }
	s.Update(0.25)

	if ac.n != 1 || ic.n != 0 {
		t.Fatalf("updates = %d/%d, want 1/0", ac.n, ic.n)
	}
	if hookDelta != 0.25 {
		t.Fatalf("hook delta = %v", hookDelta)
	}
}

func TestRenderHook(t *testing.T) {
	s := New("town", &fakeRegistrar{})
	rendered := false
	s.OnRender = func(*Scene) { rendered = true }
	s.Render()
	if !rendered {
		t.Fatal("render hook not invoked")
	}
}
