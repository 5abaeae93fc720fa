// Package bus provides an internal event bus for component communication
package bus

import (
	"sync"
	"time"
)

// EventType identifies different event types
type EventType string

// Event types for Anty
const (
	// Controller events
	EventTypeStateChanged    EventType = "avatar.state_changed"
	EventTypeEmotionStarted  EventType = "avatar.emotion_started"
	EventTypeEmotionComplete EventType = "avatar.emotion_completed"
	EventTypeSequenceChanged EventType = "avatar.sequence_changed"
	EventTypeQueueDropped    EventType = "avatar.queue_dropped"
	EventTypeEmotionRejected EventType = "avatar.emotion_rejected"

	// Character lifecycle events
	EventTypeSizeChanged  EventType = "character.size_changed"
	EventTypeSuperMode    EventType = "character.super_mode"
	EventTypeDestroyed    EventType = "character.destroyed"
	EventTypeConfigReload EventType = "config.reloaded"
)

// Event represents a bus event
type Event struct {
	Type EventType      `json:"type"`
	Time time.Time      `json:"time"`
	Data map[string]any `json:"data,omitempty"`
}

// NewEvent stamps an event with the current time.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{Type: t, Time: time.Now(), Data: data}
}

// Handler is a function that handles events
type Handler func(Event)

type subscription struct {
	id uint64
	h  Handler
}

// EventBus is a simple pub/sub event bus
type EventBus struct {
	mu       sync.RWMutex
	seq      uint64
	handlers map[EventType][]subscription
	all      []subscription
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]subscription),
	}
}

// Subscribe adds a handler for an event type and returns a func that removes
// it.
func (b *EventBus) Subscribe(eventType EventType, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	id := b.seq
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, h: handler})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.handlers[eventType] = remove(b.handlers[eventType], id)
	}
}

// SubscribeMultiple adds a handler for multiple event types
func (b *EventBus) SubscribeMultiple(eventTypes []EventType, handler Handler) (unsubscribe func()) {
	var subs []func()
	for _, et := range eventTypes {
		subs = append(subs, b.Subscribe(et, handler))
	}
	return func() {
		for _, unsub := range subs {
			unsub()
		}
	}
}

// SubscribeAll adds a handler that receives every event
func (b *EventBus) SubscribeAll(handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	id := b.seq
	b.all = append(b.all, subscription{id: id, h: handler})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.all = remove(b.all, id)
	}
}

func remove(subs []subscription, id uint64) []subscription {
	for i, s := range subs {
		if s.id == id {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}

func (b *EventBus) handlersFor(t EventType) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Handler, 0, len(b.handlers[t])+len(b.all))
	for _, s := range b.handlers[t] {
		out = append(out, s.h)
	}
	for _, s := range b.all {
		out = append(out, s.h)
	}
	return out
}

// Publish sends an event to all subscribed handlers
func (b *EventBus) Publish(event Event) {
	for _, handler := range b.handlersFor(event.Type) {
		// Call handlers in goroutines to avoid blocking the render loop
		go handler(event)
	}
}

// PublishSync sends an event and waits for all handlers to complete
func (b *EventBus) PublishSync(event Event) {
	var wg sync.WaitGroup
	for _, handler := range b.handlersFor(event.Type) {
		wg.Add(1)
		go func(h Handler) {
			defer wg.Done()
			h(event)
		}(handler)
	}
	wg.Wait()
}

// Clear removes all handlers
func (b *EventBus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[EventType][]subscription)
	b.all = nil
}
