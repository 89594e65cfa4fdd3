package input

import "sync"

// Touch is one active touch point.
type Touch struct {
	ID int
	X  float64
	Y  float64
}

// Provider is the input surface game code reads. The engine polls it once per
// frame; input never pushes into the core between frame boundaries.
type Provider interface {
	IsKeyPressed(key string) bool
	PointerPosition() (x, y float64)
	IsPointerDown() bool
	ActiveTouches() []Touch
}

// Poller is implemented by providers that latch a snapshot at the frame
// boundary. The engine calls Poll at the top of each frame when the provider
// supports it.
type Poller interface {
	Poll()
}

type snapshot struct {
	keys        map[string]bool
	pointerX    float64
	pointerY    float64
	pointerDown bool
	touches     []Touch
}

// State buffers host input events and exposes a per-frame snapshot. The host
// (window system, terminal, test) pushes into the pending buffer from any
// goroutine; Poll latches it for the frame so reads stay stable mid-frame.
type State struct {
	mu      sync.Mutex
	pending snapshot
	current snapshot
}

var (
	_ Provider = (*State)(nil)
	_ Poller   = (*State)(nil)
)

func NewState() *State {
	return &State{
		pending: snapshot{keys: make(map[string]bool)},
		current: snapshot{keys: make(map[string]bool)},
	}
}

// SetKey records a key transition from the host.
func (s *State) SetKey(key string, down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if down {
		s.pending.keys[key] = true
	} else {
		delete(s.pending.keys, key)
	}
}

// SetPointer records the pointer position and button state from the host.
func (s *State) SetPointer(x, y float64, down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.pointerX, s.pending.pointerY = x, y
	s.pending.pointerDown = down
}

// SetTouches replaces the active touch list from the host.
func (s *State) SetTouches(touches []Touch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.touches = append(s.pending.touches[:0], touches...)
}

// Poll latches the pending host state as the snapshot for the coming frame.
func (s *State) Poll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make(map[string]bool, len(s.pending.keys))
	for k, v := range s.pending.keys {
		keys[k] = v
	}
	s.current = snapshot{
		keys:        keys,
		pointerX:    s.pending.pointerX,
		pointerY:    s.pending.pointerY,
		pointerDown: s.pending.pointerDown,
		touches:     append([]Touch(nil), s.pending.touches...),
	}
}

func (s *State) IsKeyPressed(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.keys[key]
}

func (s *State) PointerPosition() (x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.pointerX, s.current.pointerY
}

func (s *State) IsPointerDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.pointerDown
}

func (s *State) ActiveTouches() []Touch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Touch(nil), s.current.touches...)
}
