package bus

import "time"

// Bus is the in-process pub/sub surface wiring the engine, characters, scenes
// and external collaborators (audio, persistence, debug viewers) together.
//
// Key characteristics:
//   - Topic-based fan-out: listeners subscribe by topic name.
//   - Synchronous delivery: Publish invokes listeners on the caller goroutine
//     and returns only after every listener subscribed at publish time has run
//     once, in subscription order.
//   - Per-listener fault isolation: a panic or returned error inside a listener
//     is recovered/logged at the publish boundary; sibling listeners still run
//     and the publisher is never affected. Combat, leveling and scene-transition
//     listeners must not be able to destabilize the frame loop.
//   - Reentrancy: a listener may publish further events, which are delivered in
//     full (recursively) before the outer Publish returns. Nesting is bounded;
//     past the limit the event is dropped and an error is logged instead of
//     overflowing the stack.
//
// Notes:
//   - Delivery iterates a snapshot: a listener cancelled during an in-progress
//     pass still receives that event; one subscribed during the pass does not.
//   - All methods are safe for concurrent use, though the engine publishes only
//     from the simulation goroutine.
type Bus interface {
	// Subscribe registers a listener for a topic and returns a handle that can
	// be used to cancel it later.
	Subscribe(topic string, h Handler) Subscription
	// SubscribeOnce registers a listener that is cancelled automatically after
	// its first delivery, across any number of publishes.
	SubscribeOnce(topic string, h Handler) Subscription
	// Unsubscribe cancels the given Subscription. Safe to call with nil.
	Unsubscribe(sub Subscription)
	// Publish delivers data synchronously to all active listeners of the topic.
	Publish(topic string, data any)
	// Clear removes all listeners of the named topics, or of every topic when
	// called with no arguments.
	Clear(topics ...string)
	// ListenerCount reports the number of active listeners on a topic.
	ListenerCount(topic string) int
}

// Event is the envelope handed to listeners.
type Event struct {
	Topic string
	Data  any
	Time  time.Time
}

// Handler is a listener callback. A returned error is logged and isolated; it
// never propagates to the publisher.
type Handler func(e Event) error

// Subscription represents a registered listener bound to a topic.
// Use Cancel or Bus.Unsubscribe to stop receiving events.
type Subscription interface {
	// ID is a unique identifier for this subscription.
	ID() string
	// Topic returns the topic this subscription listens to.
	Topic() string
	// IsActive reports whether this subscription is still registered.
	IsActive() bool
	// Cancel de-registers the listener from the bus. Multiple calls are safe.
	Cancel()
}
