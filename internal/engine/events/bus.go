package events

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Observer receives events on the bus's dispatcher goroutine.
type Observer func(Event)

// Bus fans events out to observers without ever blocking the publisher.
// Events published while the queue is full are dropped and counted.
type Bus struct {
	logger *zap.Logger
	queue  chan Event

	mu        sync.RWMutex // guards closed and observers
	closed    bool
	observers []Observer

	dropped atomic.Uint64
	done    chan struct{}
}

// NewBus starts a bus with a queue of the given capacity.
func NewBus(logger *zap.Logger, capacity int) *Bus {
	if capacity < 1 {
		capacity = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bus{
		logger: logger.Named("events"),
		queue:  make(chan Event, capacity),
		done:   make(chan struct{}),
	}
	go b.dispatch()
	return b
}

// Subscribe registers an observer for every later event.
func (b *Bus) Subscribe(o Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, o)
}

// Publish enqueues e. It returns false if e was dropped.
func (b *Bus) Publish(e Event) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return false
	}
	select {
	case b.queue <- e:
		return true
	default:
		if n := b.dropped.Add(1); n == 1 || n%100 == 0 {
			b.logger.Warn("Event queue full, dropping", zap.Stringer("kind", e.Kind()), zap.Uint64("dropped", n))
		}
		return false
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close stops accepting events, delivers what is queued and waits for the
// dispatcher to exit. Safe to call more than once.
func (b *Bus) Close() {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.queue)
	}
	b.mu.Unlock()
	<-b.done
}

func (b *Bus) dispatch() {
	defer close(b.done)
	for e := range b.queue {
		b.mu.RLock()
		observers := make([]Observer, len(b.observers))
		copy(observers, b.observers)
		b.mu.RUnlock()

		for _, o := range observers {
			b.deliver(o, e)
		}
	}
}

func (b *Bus) deliver(o Observer, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Observer panicked", zap.Stringer("kind", e.Kind()), zap.Any("panic", r))
		}
	}()
	o(e)
}
