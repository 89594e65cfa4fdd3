package bus

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/questforge/questforge/internal/core/observability/log"
)

// DefaultMaxDepth bounds synchronous publish reentrancy (a listener publishing
// from inside a delivery). Past this depth the event is dropped and logged.
const DefaultMaxDepth = 16

// subscription implements Subscription.
type subscription struct {
	id     string
	topic  string
	h      Handler
	once   bool
	fired  atomic.Bool
	active atomic.Bool
	cancel func()
}

func (s *subscription) ID() string     { return s.id }
func (s *subscription) Topic() string  { return s.topic }
func (s *subscription) IsActive() bool { return s.active.Load() }
func (s *subscription) Cancel() {
	if s.active.CompareAndSwap(true, false) && s.cancel != nil {
		s.cancel()
	}
}

// memoryBus is the in-memory implementation of Bus.
type memoryBus struct {
	mu sync.Mutex
	// listeners: topic -> subscriptions in subscription order
	listeners map[string][]*subscription
	logger    log.Log
	depth     atomic.Int32
	maxDepth  int32
}

var _ Bus = (*memoryBus)(nil)

// New creates a Bus with the default reentrancy bound.
func New(logger log.Log) Bus {
	return NewWithDepth(logger, DefaultMaxDepth)
}

// NewWithDepth creates a Bus with an explicit reentrancy bound.
func NewWithDepth(logger log.Log, maxDepth int) Bus {
	if logger == nil {
		logger = log.Provide()
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &memoryBus{
		listeners: make(map[string][]*subscription),
		logger:    logger,
		maxDepth:  int32(maxDepth),
	}
}

func (b *memoryBus) Subscribe(topic string, h Handler) Subscription {
	return b.subscribe(topic, h, false)
}

func (b *memoryBus) SubscribeOnce(topic string, h Handler) Subscription {
	return b.subscribe(topic, h, true)
}

func (b *memoryBus) subscribe(topic string, h Handler, once bool) Subscription {
	s := &subscription{id: uuid.NewString(), topic: topic, h: h, once: once}
	s.active.Store(true)
	s.cancel = func() { b.remove(topic, s.id) }

	b.mu.Lock()
	b.listeners[topic] = append(b.listeners[topic], s)
	b.mu.Unlock()
	return s
}

func (b *memoryBus) Unsubscribe(sub Subscription) {
	if sub == nil {
		return
	}
	sub.Cancel()
}

func (b *memoryBus) Publish(topic string, data any) {
	depth := b.depth.Add(1)
	defer b.depth.Add(-1)
	if depth > b.maxDepth {
		b.logger.Error("event dropped: publish depth exceeded",
			log.String("topic", topic),
			log.Int("depth", int(depth)))
		return
	}

	e := Event{Topic: topic, Data: data, Time: time.Now()}

	// Snapshot under lock; invoke outside so listeners can freely subscribe,
	// cancel and publish. A listener cancelled mid-pass already made the
	// snapshot and still runs; active is only consulted for once-guards.
	b.mu.Lock()
	subs := make([]*subscription, len(b.listeners[topic]))
	copy(subs, b.listeners[topic])
	b.mu.Unlock()

	for _, s := range subs {
		if s.once {
			// exactly-once across nested publishes of the same event topic
			if !s.fired.CompareAndSwap(false, true) {
				continue
			}
		}
		b.invoke(s, e)
		if s.once {
			s.Cancel()
		}
	}
}

// invoke runs one listener with panic and error isolation.
func (b *memoryBus) invoke(s *subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event listener panicked",
				log.String("topic", e.Topic),
				log.String("subscription", s.id),
				log.Error(fmt.Errorf("%v", r)))
		}
	}()
	if err := s.h(e); err != nil {
		b.logger.Warn("event listener failed",
			log.String("topic", e.Topic),
			log.String("subscription", s.id),
			log.Error(err))
	}
}

func (b *memoryBus) Clear(topics ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(topics) == 0 {
		for _, subs := range b.listeners {
			for _, s := range subs {
				s.active.Store(false)
			}
		}
		b.listeners = make(map[string][]*subscription)
		return
	}
	for _, topic := range topics {
		for _, s := range b.listeners[topic] {
			s.active.Store(false)
		}
		delete(b.listeners, topic)
	}
}

func (b *memoryBus) ListenerCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[topic])
}

func (b *memoryBus) remove(topic, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.listeners[topic]
	for i, s := range subs {
		if s.id == id {
			b.listeners[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}
