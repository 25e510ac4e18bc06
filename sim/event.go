package sim

// VTimeInSec is simulated time, in seconds.
type VTimeInSec float64

// An Event is something that happens at a future time.
type Event interface {
	// Time returns when the event happens.
	Time() VTimeInSec

	// Handler returns the handler that processes the event.
	Handler() Handler

	// IsSecondary reports whether the event runs after all same-time
	// primary events.
	IsSecondary() bool
}

// EventBase carries the common fields of an event, for embedding.
type EventBase struct {
	ID        string
	time      VTimeInSec
	handler   Handler
	secondary bool
}

// NewEventBase creates an EventBase with a fresh ID.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	return &EventBase{
		ID:      GetIDGenerator().Generate(),
		time:    t,
		handler: handler,
	}
}

// Time returns when the event happens.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler that processes the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary reports whether the event is secondary.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// A Handler processes events. An event is scheduled by and handled within a
// single handler.
type Handler interface {
	Handle(e Event) error
}
