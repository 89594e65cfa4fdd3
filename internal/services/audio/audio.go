package audio

import (
	"sync"

	"github.com/questforge/questforge/internal/core/observability/log"
)

// Provider is the fire-and-forget audio surface. The core consumes no return
// values; a backend failure degrades to a logged warning inside the provider.
type Provider interface {
	PlaySound(name string, loop bool)
	StopSound(name string)
	SetVolume(v float64)
	SetMusicVolume(v float64)
}

// Console is a backend-less Provider that tracks playback state and logs what
// a real backend would do. It stands in wherever no audio device exists
// (tests, headless demos, CI).
type Console struct {
	mu          sync.Mutex
	logger      log.Log
	volume      float64
	musicVolume float64
	playing     map[string]bool
}

var _ Provider = (*Console)(nil)

func NewConsole(logger log.Log) *Console {
	if logger == nil {
		logger = log.Provide()
	}
	return &Console{
		logger:      logger,
		volume:      1,
		musicVolume: 1,
		playing:     make(map[string]bool),
	}
}

func (c *Console) PlaySound(name string, loop bool) {
	c.mu.Lock()
	c.playing[name] = true
	c.mu.Unlock()
	c.logger.Debug("play sound", log.String("name", name), log.Bool("loop", loop))
}

func (c *Console) StopSound(name string) {
	c.mu.Lock()
	delete(c.playing, name)
	c.mu.Unlock()
	c.logger.Debug("stop sound", log.String("name", name))
}

func (c *Console) SetVolume(v float64) {
	c.mu.Lock()
	c.volume = clamp01(v)
	c.mu.Unlock()
}

func (c *Console) SetMusicVolume(v float64) {
	c.mu.Lock()
	c.musicVolume = clamp01(v)
	c.mu.Unlock()
}

// IsPlaying reports whether a sound was started and not yet stopped.
func (c *Console) IsPlaying(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing[name]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
