package engine

import (
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/questforge/questforge/internal/core/entity"
	"github.com/questforge/questforge/internal/core/events/bus"
	"github.com/questforge/questforge/internal/core/observability/log"
	"github.com/questforge/questforge/internal/core/scene"
	"github.com/questforge/questforge/internal/services/audio"
	"github.com/questforge/questforge/internal/services/data"
	"github.com/questforge/questforge/internal/services/input"
)

// Topics published by the engine.
const (
	TopicInit          = "engine:init"
	TopicStart         = "engine:start"
	TopicStop          = "engine:stop"
	TopicPause         = "engine:pause"
	TopicResume        = "engine:resume"
	TopicUpdate        = "engine:update"
	TopicRender        = "engine:render"
	TopicSceneLoaded   = "engine:sceneLoaded"
	TopicEntityAdded   = "entity:added"
	TopicEntityRemoved = "entity:removed"
)

// UpdateEvent is the payload of TopicUpdate.
type UpdateEvent struct {
	Delta    float64
	GameTime float64
}

// SceneLoadedEvent is the payload of TopicSceneLoaded.
type SceneLoadedEvent struct {
	SceneName string
}

// EntityEvent is the payload of TopicEntityAdded and TopicEntityRemoved.
type EntityEvent struct {
	Entity entity.GameObject
}

var (
	// ErrEntityLimit is returned when AddEntity would exceed MaxEntities.
	ErrEntityLimit = errors.New("engine: entity limit reached")
	// ErrDuplicateEntity is returned when an id is already registered.
	ErrDuplicateEntity = errors.New("engine: duplicate entity id")
	// ErrSceneNotFound is returned by LoadScene for an unregistered name.
	ErrSceneNotFound = errors.New("engine: scene not found")
)

// Config tunes the runtime loop.
type Config struct {
	// MaxEntities bounds the flat registry; additions past it are rejected.
	MaxEntities int `json:"max_entities" yaml:"max_entities"`
	// MaxDelta clamps a frame's simulation step, absorbing host stalls
	// (tab backgrounding) without one catastrophic step.
	MaxDelta float64 `json:"max_delta" yaml:"max_delta"`
	// MaxEventDepth bounds reentrant publishing on the engine bus.
	MaxEventDepth int `json:"max_event_depth" yaml:"max_event_depth"`
	// TargetFPS is the cadence of the default timer scheduler.
	TargetFPS int `json:"target_fps" yaml:"target_fps"`
}

// DefaultConfig returns the baseline tuning.
func DefaultConfig() Config {
	return Config{
		MaxEntities:   1000,
		MaxDelta:      0.1,
		MaxEventDepth: bus.DefaultMaxDepth,
		TargetFPS:     60,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxEntities <= 0 {
		c.MaxEntities = def.MaxEntities
	}
	if c.MaxDelta <= 0 {
		c.MaxDelta = def.MaxDelta
	}
	if c.MaxEventDepth <= 0 {
		c.MaxEventDepth = def.MaxEventDepth
	}
	if c.TargetFPS <= 0 {
		c.TargetFPS = def.TargetFPS
	}
	return c
}

// Engine owns the frame clock, the entity and scene registries and the active
// scene, and orchestrates update, lateUpdate and render each frame.
//
// Threading: registry and scene mutations must happen on the simulation
// goroutine (inside frame callbacks or before Start). Start, Stop, Pause and
// Resume are safe from any goroutine; other goroutines observe the simulation
// through bus events, which carry copies.
type Engine struct {
	cfg    Config
	logger log.Log
	events bus.Bus

	scheduler Scheduler
	clock     Clock

	input input.Provider
	audio audio.Provider
	data  data.Provider

	// flat registry; ids preserves registration order so per-frame
	// iteration is stable
	ids      []string
	entities map[string]entity.GameObject

	scenes  map[string]*scene.Scene
	current *scene.Scene

	running     atomic.Bool
	paused      atomic.Bool
	initialized bool

	lastFrame  time.Time
	deltaTime  float64
	gameTime   float64
	frameCount uint64
}

var (
	_ entity.Runtime  = (*Engine)(nil)
	_ scene.Registrar = (*Engine)(nil)
)

// Option customizes engine construction.
type Option func(*Engine)

func WithLogger(l log.Log) Option       { return func(e *Engine) { e.logger = l } }
func WithBus(b bus.Bus) Option          { return func(e *Engine) { e.events = b } }
func WithScheduler(s Scheduler) Option  { return func(e *Engine) { e.scheduler = s } }
func WithClock(c Clock) Option          { return func(e *Engine) { e.clock = c } }
func WithInput(p input.Provider) Option { return func(e *Engine) { e.input = p } }
func WithAudio(p audio.Provider) Option { return func(e *Engine) { e.audio = p } }
func WithData(p data.Provider) Option   { return func(e *Engine) { e.data = p } }

// New builds an engine. Collaborators are injected, never process globals, so
// engines in tests do not share state.
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg.withDefaults(),
		entities: make(map[string]entity.GameObject),
		scenes:   make(map[string]*scene.Scene),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.Provide()
	}
	if e.events == nil {
		e.events = bus.NewWithDepth(e.logger, e.cfg.MaxEventDepth)
	}
	if e.scheduler == nil {
		e.scheduler = NewTimerScheduler(e.cfg.TargetFPS)
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	return e
}

// Events returns the engine bus.
func (e *Engine) Events() bus.Bus { return e.events }

// Input returns the injected input provider, or nil.
func (e *Engine) Input() input.Provider { return e.input }

// Audio returns the injected audio provider, or nil.
func (e *Engine) Audio() audio.Provider { return e.audio }

// Data returns the injected persistence provider, or nil.
func (e *Engine) Data() data.Provider { return e.data }

// AddEntity registers an entity in the flat registry, enforcing the
// configured maximum. The entity's engine back-reference is bound and
// entity:added is published.
func (e *Engine) AddEntity(ent entity.GameObject) error {
	if ent == nil {
		return errors.New("engine: nil entity")
	}
	if _, exists := e.entities[ent.ID()]; exists {
		e.logger.Warn("entity rejected: duplicate id", log.String("id", ent.ID()))
		return ErrDuplicateEntity
	}
	if len(e.entities) >= e.cfg.MaxEntities {
		e.logger.Warn("entity rejected: limit reached",
			log.String("id", ent.ID()),
			log.Int("limit", e.cfg.MaxEntities))
		return ErrEntityLimit
	}
	e.entities[ent.ID()] = ent
	e.ids = append(e.ids, ent.ID())
	ent.Attach(e)
	e.events.Publish(TopicEntityAdded, EntityEvent{Entity: ent})
	return nil
}

// RemoveEntity drops the entity from the registry and publishes
// entity:removed. The entity is not destroyed; that cascade stays with the
// caller. Returns nil when the id is unknown.
func (e *Engine) RemoveEntity(id string) entity.GameObject {
	ent, ok := e.entities[id]
	if !ok {
		return nil
	}
	delete(e.entities, id)
	for i, known := range e.ids {
		if known == id {
			e.ids = append(e.ids[:i:i], e.ids[i+1:]...)
			break
		}
	}
	e.events.Publish(TopicEntityRemoved, EntityEvent{Entity: ent})
	return ent
}

func (e *Engine) GetEntity(id string) (entity.GameObject, bool) {
	ent, ok := e.entities[id]
	return ent, ok
}

func (e *Engine) EntityCount() int { return len(e.entities) }

// tagged is satisfied by *entity.Entity and anything embedding it.
type tagged interface {
	HasTag(tag string) bool
}

// FindByTag returns registered entities carrying the tag, in registration
// order.
func (e *Engine) FindByTag(tag string) []entity.GameObject {
	var out []entity.GameObject
	for _, id := range e.ids {
		if ent := e.entities[id]; ent != nil {
			if tg, ok := ent.(tagged); ok && tg.HasTag(tag) {
				out = append(out, ent)
			}
		}
	}
	return out
}

// CreateScene registers and returns a scene. An already-registered name
// returns the existing scene unchanged.
func (e *Engine) CreateScene(name string) *scene.Scene {
	if s, ok := e.scenes[name]; ok {
		return s
	}
	s := scene.New(name, e)
	e.scenes[name] = s
	return s
}

func (e *Engine) GetScene(name string) (*scene.Scene, bool) {
	s, ok := e.scenes[name]
	return s, ok
}

// CurrentScene returns the active scene, or nil.
func (e *Engine) CurrentScene() *scene.Scene { return e.current }

// LoadScene activates a registered scene, unloading the previous one first,
// and publishes engine:sceneLoaded. An unknown name degrades to a warning and
// ErrSceneNotFound; the current scene stays active.
func (e *Engine) LoadScene(name string) error {
	s, ok := e.scenes[name]
	if !ok {
		e.logger.Warn("scene not found", log.String("scene", name))
		return ErrSceneNotFound
	}
	if e.current != nil {
		e.current.Unload()
	}
	e.current = s
	s.Load()
	e.events.Publish(TopicSceneLoaded, SceneLoadedEvent{SceneName: name})
	e.logger.Info("scene loaded", log.String("scene", name))
	return nil
}

// Start enters the running state and schedules the first frame. The first
// Start of an engine's lifetime also publishes engine:init.
func (e *Engine) Start() {
	if !e.running.CompareAndSwap(false, true) {
		return
	}
	if !e.initialized {
		e.initialized = true
		e.events.Publish(TopicInit, nil)
	}
	e.lastFrame = e.clock.Now()
	e.events.Publish(TopicStart, nil)
	e.logger.Info("engine started",
		log.Int("max_entities", e.cfg.MaxEntities),
		log.Float64("max_delta", e.cfg.MaxDelta))
	e.scheduler.RequestFrame(e.frame)
}

// Stop leaves the running state. The flag is checked at the top of the next
// scheduled frame; a frame already in flight completes.
func (e *Engine) Stop() {
	if !e.running.CompareAndSwap(true, false) {
		return
	}
	e.events.Publish(TopicStop, nil)
	e.logger.Info("engine stopped",
		log.Uint64("frames", e.frameCount),
		log.Float64("game_time", e.gameTime))
}

// Pause suspends update and lateUpdate. Rendering and frame scheduling
// continue.
func (e *Engine) Pause() {
	if e.paused.CompareAndSwap(false, true) {
		e.events.Publish(TopicPause, nil)
	}
}

// Resume lifts a pause.
func (e *Engine) Resume() {
	if e.paused.CompareAndSwap(true, false) {
		e.events.Publish(TopicResume, nil)
	}
}

func (e *Engine) IsRunning() bool { return e.running.Load() }
func (e *Engine) IsPaused() bool  { return e.paused.Load() }

// DeltaTime is the clamped simulation step of the last frame, in seconds.
func (e *Engine) DeltaTime() float64 { return e.deltaTime }

// GameTime is cumulative simulated time across all frames.
func (e *Engine) GameTime() float64 { return e.gameTime }

func (e *Engine) FrameCount() uint64 { return e.frameCount }

// FPS estimates the frame rate from the last frame's delta.
func (e *Engine) FPS() int {
	if e.deltaTime <= 0 {
		return 0
	}
	return int(math.Round(1 / e.deltaTime))
}

// frame is one loop iteration: poll input, update, lateUpdate, render,
// advance counters, reschedule.
func (e *Engine) frame() {
	if !e.running.Load() {
		return
	}

	now := e.clock.Now()
	elapsed := now.Sub(e.lastFrame).Seconds()
	e.lastFrame = now
	delta := math.Min(math.Max(elapsed, 0), e.cfg.MaxDelta)
	e.deltaTime = delta

	if p, ok := e.input.(input.Poller); ok {
		p.Poll()
	}

	if !e.paused.Load() {
		// Snapshot the id order before any callback runs: entities spawned by
		// an update listener or scene hook join next frame, entities removed
		// mid-frame drop out of the map lookup.
		ids := e.ids

		e.events.Publish(TopicUpdate, UpdateEvent{Delta: delta, GameTime: e.gameTime})

		cur := e.current
		if cur != nil && cur.Loaded() {
			cur.Update(delta)
		}

		// Scene entities were already advanced by the scene pass above;
		// skipping them here keeps one update per entity per frame.
		for _, id := range ids {
			ent := e.entities[id]
			if ent == nil || !ent.IsActive() {
				continue
			}
			if cur != nil && cur.Loaded() && cur.Contains(id) {
				continue
			}
			ent.Update(delta)
		}

		for _, id := range ids {
			ent := e.entities[id]
			if ent == nil || !ent.IsActive() {
				continue
			}
			ent.LateUpdate(delta)
		}
	}

	// render is never suspended by pause
	e.events.Publish(TopicRender, nil)
	if cur := e.current; cur != nil && cur.Loaded() {
		cur.Render()
	}

	e.frameCount++
	e.gameTime += delta

	e.scheduler.RequestFrame(e.frame)
}
