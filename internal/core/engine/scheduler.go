package engine

import "time"

// TimerScheduler drives frames off the process timer at a fixed cadence. It
// is the host primitive for headless and server-side runs.
type TimerScheduler struct {
	interval time.Duration
}

var _ Scheduler = (*TimerScheduler)(nil)

// NewTimerScheduler targets the given frames per second (0 means 60).
func NewTimerScheduler(fps int) *TimerScheduler {
	if fps <= 0 {
		fps = 60
	}
	return &TimerScheduler{interval: time.Second / time.Duration(fps)}
}

func (t *TimerScheduler) RequestFrame(fn func()) {
	time.AfterFunc(t.interval, fn)
}

// ManualScheduler queues frame requests for explicit stepping. Tests use it
// to run the loop deterministically on the test goroutine.
type ManualScheduler struct {
	pending []func()
}

var _ Scheduler = (*ManualScheduler)(nil)

func (m *ManualScheduler) RequestFrame(fn func()) {
	m.pending = append(m.pending, fn)
}

// Step runs the oldest pending frame callback. Returns false when none is
// queued.
func (m *ManualScheduler) Step() bool {
	if len(m.pending) == 0 {
		return false
	}
	fn := m.pending[0]
	m.pending = m.pending[1:]
	fn()
	return true
}

// Pending reports queued frame requests.
func (m *ManualScheduler) Pending() int { return len(m.pending) }

// SystemClock reads the real wall clock.
type SystemClock struct{}

var _ Clock = SystemClock{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a settable clock for tests.
type ManualClock struct {
	t time.Time
}

var _ Clock = (*ManualClock)(nil)

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{t: start}
}

func (c *ManualClock) Now() time.Time { return c.t }

// Advance moves the clock forward.
func (c *ManualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
