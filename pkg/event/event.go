// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Simulation event types
const (
	AgentSpawned       Type = "agent_spawned"
	AgentDespawned     Type = "agent_despawned"
	WaypointReached    Type = "waypoint_reached"
	SimulationStarted  Type = "simulation_started"
	SimulationStopped  Type = "simulation_stopped"
	CorruptionDetected Type = "corruption_detected"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler. Cancel removes it.
type Subscription struct {
	ID     uint64
	Cancel func()
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})

	var once sync.Once
	return &Subscription{
		ID: id,
		Cancel: func() {
			once.Do(func() { b.unsubscribe(eventType, id) })
		},
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			// Copy so a concurrent Publish iterating the old slice is unaffected.
			next := make([]subscriber, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.handlers, eventType)
			} else {
				b.handlers[eventType] = next
			}
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// Specific event implementations

// AgentEvent is published when an agent joins or leaves the simulation
type AgentEvent struct {
	BaseEvent
	AgentID uint64
	Name    string
}

// NewAgentEvent creates a new agent event
func NewAgentEvent(eventType Type, source interface{}, agentID uint64, name string) *AgentEvent {
	return &AgentEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		AgentID: agentID,
		Name:    name,
	}
}

// WaypointEvent is published when an agent reaches a waypoint and its
// route advances
type WaypointEvent struct {
	BaseEvent
	AgentID uint64
	Tick    uint64
	// Reached is the index of the waypoint just reached, Next the index
	// now being sought.
	Reached int
	Next    int
}

// NewWaypointEvent creates a new waypoint event
func NewWaypointEvent(source interface{}, agentID, tick uint64, reached, next int) *WaypointEvent {
	return &WaypointEvent{
		BaseEvent: BaseEvent{
			EventType: WaypointReached,
			Source:    source,
		},
		AgentID: agentID,
		Tick:    tick,
		Reached: reached,
		Next:    next,
	}
}

// SimulationEvent marks simulation lifecycle changes
type SimulationEvent struct {
	BaseEvent
	Tick uint64
}

// NewSimulationEvent creates a new simulation event
func NewSimulationEvent(eventType Type, source interface{}, tick uint64) *SimulationEvent {
	return &SimulationEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Tick: tick,
	}
}

// CorruptionEvent reports an agent whose state became non-finite
type CorruptionEvent struct {
	BaseEvent
	AgentID uint64
	Tick    uint64
}

// NewCorruptionEvent creates a new corruption event
func NewCorruptionEvent(source interface{}, agentID, tick uint64) *CorruptionEvent {
	return &CorruptionEvent{
		BaseEvent: BaseEvent{
			EventType: CorruptionDetected,
			Source:    source,
		},
		AgentID: agentID,
		Tick:    tick,
	}
}
