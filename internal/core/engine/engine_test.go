package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/questforge/questforge/internal/core/entity"
	"github.com/questforge/questforge/internal/core/events/bus"
	"github.com/questforge/questforge/internal/core/observability/log"
	"github.com/questforge/questforge/internal/core/scene"
)

type counter struct {
	entity.BaseComponent
	updates int
	lates   int
}

func (c *counter) Update(delta float64)     { c.updates++ }
func (c *counter) LateUpdate(delta float64) { c.lates++ }

// rig wires an engine to a manual scheduler and clock.
type rig struct {
	e     *Engine
	sched *ManualScheduler
	clock *ManualClock
}

func newRig(t *testing.T, cfg Config) *rig {
	t.Helper()
	sched := &ManualScheduler{}
	clock := NewManualClock(time.Unix(0, 0))
	e := New(cfg,
		WithLogger(log.Nop()),
		WithScheduler(sched),
		WithClock(clock),
	)
	return &rig{e: e, sched: sched, clock: clock}
}

// step advances the clock and runs one frame.
func (r *rig) step(d time.Duration) {
	r.clock.Advance(d)
	if !r.sched.Step() {
		panic("no frame scheduled")
	}
}

func TestDeltaIsClampedAfterStall(t *testing.T) {
	r := newRig(t, Config{})
	var deltas []float64
	r.e.Events().Subscribe(TopicUpdate, func(ev bus.Event) error {
		deltas = append(deltas, ev.Data.(UpdateEvent).Delta)
		return nil
	})
	r.e.Start()
	r.step(16 * time.Millisecond)
	r.step(5 * time.Second) // stall: must absorb, not simulate 5s
	if len(deltas) != 2 {
		t.Fatalf("expected 2 update events, got %d", len(deltas))
	}
	if deltas[0] > 0.1 || deltas[1] != 0.1 {
		t.Fatalf("deltas = %v, second must clamp to 0.1", deltas)
	}
	if got := r.e.GameTime(); got > 0.2 {
		t.Fatalf("gameTime advanced by unclamped delta: %v", got)
	}
}

func TestPauseSuspendsUpdateNotRender(t *testing.T) {
	r := newRig(t, Config{})
	updates, renders := 0, 0
	r.e.Events().Subscribe(TopicUpdate, func(bus.Event) error { updates++; return nil })
	r.e.Events().Subscribe(TopicRender, func(bus.Event) error { renders++; return nil })
	r.e.Start()
	r.step(16 * time.Millisecond)
	r.e.Pause()
	r.step(16 * time.Millisecond)
	r.step(16 * time.Millisecond)
	if updates != 1 {
		t.Fatalf("updates while paused: got %d events, want 1", updates)
	}
	if renders != 3 {
		t.Fatalf("render must continue while paused: got %d, want 3", renders)
	}
	r.e.Resume()
	r.step(16 * time.Millisecond)
	if updates != 2 {
		t.Fatalf("updates after resume = %d, want 2", updates)
	}
}

func TestStopHaltsAtNextFrameBoundary(t *testing.T) {
	r := newRig(t, Config{})
	frames := 0
	r.e.Events().Subscribe(TopicRender, func(bus.Event) error { frames++; return nil })
	r.e.Start()
	r.step(16 * time.Millisecond)
	r.e.Stop()
	// the already-scheduled frame runs its check and bails out
	r.clock.Advance(16 * time.Millisecond)
	if !r.sched.Step() {
		t.Fatal("a frame should have been scheduled before Stop")
	}
	if frames != 1 {
		t.Fatalf("frames after stop = %d, want 1", frames)
	}
	if r.sched.Pending() != 0 {
		t.Fatal("stopped engine kept rescheduling")
	}
}

func TestStartPublishesInitOnce(t *testing.T) {
	r := newRig(t, Config{})
	inits, starts := 0, 0
	r.e.Events().Subscribe(TopicInit, func(bus.Event) error { inits++; return nil })
	r.e.Events().Subscribe(TopicStart, func(bus.Event) error { starts++; return nil })
	r.e.Start()
	r.e.Stop()
	r.e.Start()
	if inits != 1 {
		t.Fatalf("init events = %d, want 1", inits)
	}
	if starts != 2 {
		t.Fatalf("start events = %d, want 2", starts)
	}
}

func TestEntityLimit(t *testing.T) {
	r := newRig(t, Config{MaxEntities: 2})
	if err := r.e.AddEntity(entity.New("a")); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if err := r.e.AddEntity(entity.New("b")); err != nil {
		t.Fatalf("add b: %v", err)
	}
	if err := r.e.AddEntity(entity.New("c")); !errors.Is(err, ErrEntityLimit) {
		t.Fatalf("expected ErrEntityLimit, got %v", err)
	}
	if r.e.EntityCount() != 2 {
		t.Fatalf("count = %d", r.e.EntityCount())
	}
	r.e.RemoveEntity("a")
	if err := r.e.AddEntity(entity.New("c")); err != nil {
		t.Fatalf("add after removal: %v", err)
	}
}

func TestDuplicateEntityRejected(t *testing.T) {
	r := newRig(t, Config{})
	_ = r.e.AddEntity(entity.New("hero"))
	if err := r.e.AddEntity(entity.New("hero")); !errors.Is(err, ErrDuplicateEntity) {
		t.Fatalf("expected ErrDuplicateEntity, got %v", err)
	}
}

func TestAddRemovePublishEvents(t *testing.T) {
	r := newRig(t, Config{})
	var added, removed []string
	r.e.Events().Subscribe(TopicEntityAdded, func(ev bus.Event) error {
		added = append(added, ev.Data.(EntityEvent).Entity.ID())
		return nil
	})
	r.e.Events().Subscribe(TopicEntityRemoved, func(ev bus.Event) error {
		removed = append(removed, ev.Data.(EntityEvent).Entity.ID())
		return nil
	})
	ent := entity.New("hero")
	_ = r.e.AddEntity(ent)
	if ent.Runtime() == nil {
		t.Fatal("runtime back-reference not bound")
	}
	r.e.RemoveEntity("hero")
	if len(added) != 1 || added[0] != "hero" || len(removed) != 1 || removed[0] != "hero" {
		t.Fatalf("added=%v removed=%v", added, removed)
	}
	if r.e.RemoveEntity("hero") != nil {
		t.Fatal("removing an unknown id must return nil")
	}
}

func TestLoadSceneUnknown(t *testing.T) {
	r := newRig(t, Config{})
	if err := r.e.LoadScene("nowhere"); !errors.Is(err, ErrSceneNotFound) {
		t.Fatalf("expected ErrSceneNotFound, got %v", err)
	}
	if r.e.CurrentScene() != nil {
		t.Fatal("failed load must not change the current scene")
	}
}

func TestLoadSceneUnloadsPrevious(t *testing.T) {
	r := newRig(t, Config{})
	var order []string
	town := r.e.CreateScene("town")
	dungeon := r.e.CreateScene("dungeon")
	town2, _ := r.e.GetScene("town")
	if town2 != town {
		t.Fatal("CreateScene must return the registered scene")
	}
	town.OnUnload = func(*scene.Scene) { order = append(order, "unload:town") }
	dungeon.OnLoad = func(*scene.Scene) { order = append(order, "load:dungeon") }
	var loadedNames []string
	r.e.Events().Subscribe(TopicSceneLoaded, func(ev bus.Event) error {
		loadedNames = append(loadedNames, ev.Data.(SceneLoadedEvent).SceneName)
		return nil
	})
	if err := r.e.LoadScene("town"); err != nil {
		t.Fatalf("load town: %v", err)
	}
	if err := r.e.LoadScene("dungeon"); err != nil {
		t.Fatalf("load dungeon: %v", err)
	}
	if len(order) != 2 || order[0] != "unload:town" || order[1] != "load:dungeon" {
		t.Fatalf("lifecycle order = %v", order)
	}
	if len(loadedNames) != 2 || loadedNames[1] != "dungeon" {
		t.Fatalf("sceneLoaded events = %v", loadedNames)
	}
}

func TestSceneEntityUpdatesOncePerFrame(t *testing.T) {
	r := newRig(t, Config{})
	s := r.e.CreateScene("arena")

	inScene := entity.New("in-scene")
	shared := &counter{}
	inScene.AddComponent("counter", shared)
	if err := s.AddEntity(inScene); err != nil {
		t.Fatalf("scene add: %v", err)
	}

	flat := entity.New("flat-only")
	flatCounter := &counter{}
	flat.AddComponent("counter", flatCounter)
	_ = r.e.AddEntity(flat)

	if err := r.e.LoadScene("arena"); err != nil {
		t.Fatalf("load: %v", err)
	}
	r.e.Start()
	r.step(16 * time.Millisecond)

	if shared.updates != 1 {
		t.Fatalf("scene entity updated %d times in one frame, want 1", shared.updates)
	}
	if flatCounter.updates != 1 {
		t.Fatalf("flat entity updated %d times, want 1", flatCounter.updates)
	}
	if shared.lates != 1 || flatCounter.lates != 1 {
		t.Fatalf("lateUpdate counts = %d/%d, want 1/1", shared.lates, flatCounter.lates)
	}
}

func TestInactiveEntitySkipped(t *testing.T) {
	r := newRig(t, Config{})
	ent := entity.New("ghost")
	c := &counter{}
	ent.AddComponent("counter", c)
	ent.Active = false
	_ = r.e.AddEntity(ent)
	r.e.Start()
	r.step(16 * time.Millisecond)
	if c.updates != 0 {
		t.Fatalf("inactive entity updated %d times", c.updates)
	}
}

func TestEntitySpawnedMidFrameJoinsNextFrame(t *testing.T) {
	r := newRig(t, Config{})
	late := entity.New("late")
	lateCounter := &counter{}
	late.AddComponent("counter", lateCounter)

	spawned := false
	r.e.Events().Subscribe(TopicUpdate, func(bus.Event) error {
		if !spawned {
			spawned = true
			_ = r.e.AddEntity(late)
		}
		return nil
	})
	r.e.Start()
	r.step(16 * time.Millisecond)
	if lateCounter.updates != 0 {
		t.Fatal("entity spawned mid-frame must not update in the same frame")
	}
	r.step(16 * time.Millisecond)
	if lateCounter.updates != 1 {
		t.Fatalf("spawned entity updates = %d, want 1", lateCounter.updates)
	}
}

func TestEntitySpawnedBySceneHookJoinsNextFrame(t *testing.T) {
	r := newRig(t, Config{})
	late := entity.New("late")
	lateCounter := &counter{}
	late.AddComponent("counter", lateCounter)

	s := r.e.CreateScene("arena")
	spawned := false
	s.OnUpdate = func(s *scene.Scene, delta float64) {
		if !spawned {
			spawned = true
			_ = s.AddEntity(late)
		}
	}
	if err := r.e.LoadScene("arena"); err != nil {
		t.Fatal(err)
	}
	r.e.Start()
	r.step(16 * time.Millisecond)
	if lateCounter.updates != 0 {
		t.Fatal("entity spawned by a scene hook must not update in the same frame")
	}
	r.step(16 * time.Millisecond)
	if lateCounter.updates != 1 {
		t.Fatalf("spawned entity updates = %d, want 1", lateCounter.updates)
	}
}

func TestFPS(t *testing.T) {
	r := newRig(t, Config{})
	if r.e.FPS() != 0 {
		t.Fatalf("FPS before first frame = %d, want 0", r.e.FPS())
	}
	r.e.Start()
	r.step(20 * time.Millisecond)
	if got := r.e.FPS(); got != 50 {
		t.Fatalf("FPS = %d, want 50", got)
	}
	if r.e.FrameCount() != 1 {
		t.Fatalf("frameCount = %d", r.e.FrameCount())
	}
}

func TestManySmallFramesAccumulateGameTime(t *testing.T) {
	r := newRig(t, Config{})
	r.e.Start()
	for i := 0; i < 10; i++ {
		r.step(10 * time.Millisecond)
	}
	got := r.e.GameTime()
	if got < 0.0999 || got > 0.1001 {
		t.Fatalf("gameTime = %v, want ~0.1", got)
	}
}

func ExampleEngine_FPS() {
	sched := &ManualScheduler{}
	clock := NewManualClock(time.Unix(0, 0))
	e := New(Config{}, WithLogger(log.Nop()), WithScheduler(sched), WithClock(clock))
	e.Start()
	clock.Advance(16 * time.Millisecond)
	sched.Step()
	fmt.Println(e.FPS())
	// Output: 63
}
