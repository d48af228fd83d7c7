package events

import (
	"fmt"
	"log"
	"sync"
)

// Type categorizes an event on the bus.
type Type string

const (
	UserInput         Type = "user_input"
	AssistantResponse Type = "assistant_response"
	SystemAlert       Type = "system_alert"
	StateChange       Type = "state_change"
	ActionCompleted   Type = "action_completed"
	ContextChange     Type = "context_change"
)

// Handler receives the payload published with an event. Handlers run
// synchronously on the publisher's goroutine.
type Handler func(payload any)

// Bus is a process-wide publish/subscribe channel. Events are transient:
// dispatched immediately, never stored.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Type][]Handler
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[Type][]Handler)}
}

func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	b.subscribers[t] = append(b.subscribers[t], h)
	b.mu.Unlock()
}

// Publish invokes every subscriber in registration order. A subscriber that
// panics is logged and skipped; it cannot block delivery to the rest or
// crash the publisher. Publishing with zero subscribers is a no-op.
func (b *Bus) Publish(t Type, payload any) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.subscribers[t]))
	copy(handlers, b.subscribers[t])
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(t, h, payload)
	}
}

func (b *Bus) dispatch(t Type, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("EventBus subscriber error on %s: %v", t, fmt.Sprint(r))
		}
	}()
	h(payload)
}
