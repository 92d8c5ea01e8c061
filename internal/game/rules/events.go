package rules

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType indicates the category of a game event.
type EventType string

const (
	// Game/turn events
	EventGameStarted   EventType = "GAME_STARTED"
	EventTurnStarted   EventType = "TURN_STARTED"
	EventDiceRolled    EventType = "DICE_ROLLED"
	EventDoublesRolled EventType = "DOUBLES_ROLLED"
	EventTurnCompleted EventType = "TURN_COMPLETED"
	EventGameOver      EventType = "GAME_OVER"

	// Movement events
	EventMoved                EventType = "MOVED"
	EventPassedGo             EventType = "PASSED_GO"
	EventLanded               EventType = "LANDED"
	EventLandingDepthExceeded EventType = "LANDING_DEPTH_EXCEEDED"

	// Property events
	EventPurchaseOffered   EventType = "PURCHASE_OFFERED"
	EventPropertyPurchased EventType = "PROPERTY_PURCHASED"
	EventPurchaseDeclined  EventType = "PURCHASE_DECLINED"
	EventRentPaid          EventType = "RENT_PAID"
	EventMortgaged         EventType = "MORTGAGED"
	EventUnmortgaged       EventType = "UNMORTGAGED"
	EventPropertySold      EventType = "PROPERTY_SOLD"

	// Money events
	EventTaxPaid         EventType = "TAX_PAID"
	EventMoneyPaid       EventType = "MONEY_PAID"
	EventMoneyReceived   EventType = "MONEY_RECEIVED"
	EventRepairsAssessed EventType = "REPAIRS_ASSESSED"
	EventPlayerBankrupt  EventType = "PLAYER_BANKRUPT"

	// Card events
	EventCardDrawn      EventType = "CARD_DRAWN"
	EventCardKept       EventType = "CARD_KEPT"
	EventCardReturned   EventType = "CARD_RETURNED"
	EventDeckReshuffled EventType = "DECK_RESHUFFLED"
	EventDeckExhausted  EventType = "DECK_EXHAUSTED"

	// Jail events
	EventSentToJail       EventType = "SENT_TO_JAIL"
	EventReleasedFromJail EventType = "RELEASED_FROM_JAIL"
	EventBailPaid         EventType = "BAIL_PAID"
	EventJailCardUsed     EventType = "JAIL_CARD_USED"
	EventJailRollFailed   EventType = "JAIL_ROLL_FAILED"

	// Trade events
	EventTradeProposed EventType = "TRADE_PROPOSED"
	EventTradeAccepted EventType = "TRADE_ACCEPTED"
	EventTradeRejected EventType = "TRADE_REJECTED"
)

// Event is a single notification published by the engine.
type Event struct {
	Type        EventType
	ID          string            // Unique event ID
	GameID      string            // Game that produced the event
	PlayerID    string            // Acting player, empty for game-wide events
	TargetID    string            // Space, card or counterparty involved
	Amount      int               // Money moved, dice total, or position
	Description string            // Human-readable description
	Timestamp   time.Time         // When the event occurred
	Metadata    map[string]string // Additional metadata
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

type handleListener struct {
	handle   int
	listener Listener
}

// EventBus provides a synchronous publish/subscribe implementation with type
// filtering. Listeners run in subscription order.
type EventBus struct {
	mu             sync.RWMutex
	listeners      []handleListener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners = append(bus.listeners, handleListener{handle: handle, listener: listener})
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
	listener := TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	}
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], listener)
	return handle
}

// Unsubscribe removes the listener identified by the provided handle,
// whether it was registered with Subscribe or SubscribeTyped.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, l := range bus.listeners {
		if l.handle == handle {
			bus.listeners = append(bus.listeners[:i], bus.listeners[i+1:]...)
			return
		}
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
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	listeners := append([]handleListener(nil), bus.listeners...)
	typed := append([]TypedListener(nil), bus.typedListeners[event.Type]...)
	bus.mu.RUnlock()

	for _, l := range listeners {
		l.listener(event)
	}
	for _, listener := range typed {
		listener.Callback(event)
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, playerID, description string) Event {
	return Event{
		Type:        eventType,
		ID:          uuid.NewString(),
		PlayerID:    playerID,
		Description: description,
		Timestamp:   time.Now(),
		Metadata:    make(map[string]string),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, playerID, description string, amount int) Event {
	evt := NewEvent(eventType, playerID, description)
	evt.Amount = amount
	return evt
}
