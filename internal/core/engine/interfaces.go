package engine

import "time"

// Scheduler abstracts the host's "run again next frame" primitive
// (requestAnimationFrame in a browser host, a timer elsewhere) so the loop is
// testable without a display or timer subsystem. Implementations must invoke
// fn at most once per request; requests never nest within one callback.
type Scheduler interface {
	RequestFrame(fn func())
}

// Clock supplies wall-clock time for frame deltas. Injected so tests can
// drive stalls and backgrounding without sleeping.
type Clock interface {
	Now() time.Time
}
