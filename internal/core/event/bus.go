package event

import (
	"reflect"
	"sync"
)

// Bus is a synchronous typed event bus owned by the engine. Emit delivers to
// every handler of the event's type before returning. Handlers run on the
// emitting goroutine and may emit further events; they must not call Shutdown.
type Bus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]any
	closed   bool
	inflight sync.WaitGroup
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[reflect.Type][]any),
	}
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Emit delivers event to the handlers subscribed to T. The handler list is
// copied first, so subscriptions made during delivery apply to later events.
// Emits after Shutdown are dropped.
func Emit[T any](b *Bus, event T) {
	t := reflect.TypeOf((*T)(nil)).Elem()

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	handlers := append([]any(nil), b.handlers[t]...)
	b.inflight.Add(1)
	b.mu.RUnlock()
	defer b.inflight.Done()

	for _, h := range handlers {
		// Subscribe and Emit key on the same type, so the assertion holds.
		h.(func(T))(event)
	}
}

// Shutdown stops delivery, drops every handler and waits for deliveries
// already in progress to finish.
func (b *Bus) Shutdown() {
	b.mu.Lock()
	b.closed = true
	clear(b.handlers)
	b.mu.Unlock()
	b.inflight.Wait()
}
