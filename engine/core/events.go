package core

// Event represents an engine event
type Event struct {
	Type    EventType
	Tick    uint64
	Payload interface{}
}

type EventType uint16

const (
	EvtEntitySpawned EventType = iota
	EvtEntityDestroyed
	EvtOriginShifted
	EvtSlotUnloaded
	EvtSlotLoaded
	EvtSlotGenerated
	EvtPersistFailed
)

// EventBus dispatches events to listeners. Events are advisory: nothing in
// the engine depends on a listener being registered.
type EventBus struct {
	listeners map[EventType][]EventHandler
	queue     []Event
}

type EventHandler func(e Event)

func NewEventBus() *EventBus {
	return &EventBus{
		listeners: make(map[EventType][]EventHandler),
	}
}

// On registers a handler for an event type
func (eb *EventBus) On(t EventType, h EventHandler) {
	eb.listeners[t] = append(eb.listeners[t], h)
}

// Emit queues an event for dispatch. A nil bus drops the event.
func (eb *EventBus) Emit(e Event) {
	if eb == nil {
		return
	}
	eb.queue = append(eb.queue, e)
}

// Pending returns the number of queued events
func (eb *EventBus) Pending() int {
	return len(eb.queue)
}

// Dispatch processes all queued events
func (eb *EventBus) Dispatch() {
	for _, e := range eb.queue {
		if handlers, ok := eb.listeners[e.Type]; ok {
			for _, h := range handlers {
				h(e)
			}
		}
	}
	eb.queue = eb.queue[:0]
}
