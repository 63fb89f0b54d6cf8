package rules

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType indicates the category of a session event.
type EventType string

const (
	// Session lifecycle
	EventPlayerRegistered EventType = "PLAYER_REGISTERED"
	EventPlayerLeft       EventType = "PLAYER_LEFT"
	EventGameStarted      EventType = "GAME_STARTED"
	EventTurnStarted      EventType = "TURN_STARTED"
	EventGameOver         EventType = "GAME_OVER"
	EventSessionStalled   EventType = "SESSION_STALLED"

	// Card play
	EventCardPlayed  EventType = "CARD_PLAYED"
	EventHandChanged EventType = "HAND_CHANGED" // private to the hand owner

	// Player state
	EventDamaged     EventType = "DAMAGED"
	EventHealed      EventType = "HEALED"
	EventArmorGained EventType = "ARMOR_GAINED"
	EventManaGained  EventType = "MANA_GAINED"
	EventDied        EventType = "DIED"
	EventRespawned   EventType = "RESPAWNED"
)

// Event is a committed state change observers may react to.
type Event struct {
	Type      EventType `json:"type"`
	ID        string    `json:"id"`
	PlayerID  string    `json:"player_id,omitempty"` // player the event is about (caster for CARD_PLAYED)
	TargetID  string    `json:"target_id,omitempty"`
	CardID    string    `json:"card_id,omitempty"`
	Amount    int       `json:"amount,omitempty"`
	Side      string    `json:"side,omitempty"`
	Role      string    `json:"role,omitempty"`
	Hand      []string  `json:"hand,omitempty"`
	Recipient string    `json:"-"` // empty means broadcast
	Timestamp time.Time `json:"timestamp"`
}

// Private reports whether the event must only reach Recipient.
func (e Event) Private() bool {
	return e.Recipient != ""
}

// VisibleTo reports whether playerID may observe the event.
func (e Event) VisibleTo(playerID string) bool {
	return e.Recipient == "" || e.Recipient == playerID
}

// NewEvent creates an event about playerID.
func NewEvent(eventType EventType, playerID string) Event {
	return Event{
		Type:      eventType,
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		Timestamp: time.Now(),
	}
}

// NewEventWithAmount creates an event about playerID carrying an amount.
func NewEventWithAmount(eventType EventType, playerID string, amount int) Event {
	evt := NewEvent(eventType, playerID)
	evt.Amount = amount
	return evt
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	order          []int
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
// Listeners are called in subscription order.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	bus.order = append(bus.order, handle)
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle,
// whether it was registered with Subscribe or SubscribeTyped.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if _, ok := bus.listeners[handle]; ok {
		delete(bus.listeners, handle)
		for i, h := range bus.order {
			if h == handle {
				bus.order = append(bus.order[:i], bus.order[i+1:]...)
				break
			}
		}
		return
	}
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
// Listeners must not subscribe or unsubscribe from inside a callback.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, handle := range bus.order {
		bus.listeners[handle](event)
	}
	for _, listener := range bus.typedListeners[event.Type] {
		listener.Callback(event)
	}
}

// PublishBatch publishes events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}
