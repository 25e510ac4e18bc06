package sim

import (
	"sync"
)

// TickEvent drives one state update of a ticking component.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a TickEvent for the handler at the given time.
func MakeTickEvent(handler Handler, time VTimeInSec) TickEvent {
	evt := TickEvent{}
	evt.ID = GetIDGenerator().Generate()
	evt.handler = handler
	evt.time = time

	return evt
}

// A Ticker updates state one cycle at a time. Tick returns true when the
// cycle made progress.
type Ticker interface {
	Tick() bool
}

// TickScheduler schedules tick events, at most one per cycle.
type TickScheduler struct {
	mu        sync.Mutex
	handler   Handler
	Freq      Freq
	Engine    Engine
	secondary bool

	nextTickTime VTimeInSec
}

// NewTickScheduler creates a scheduler for primary tick events.
func NewTickScheduler(
	handler Handler,
	engine Engine,
	freq Freq,
) *TickScheduler {
	return &TickScheduler{
		handler: handler,
		Engine:  engine,
		Freq:    freq,
		// Negative so that the first tick always schedules.
		nextTickTime: -1,
	}
}

// NewSecondaryTickScheduler creates a scheduler whose ticks run after all
// primary events of the same instant.
func NewSecondaryTickScheduler(
	handler Handler,
	engine Engine,
	freq Freq,
) *TickScheduler {
	s := NewTickScheduler(handler, engine, freq)
	s.secondary = true

	return s
}

// TickNow schedules a tick at the current time.
func (t *TickScheduler) TickNow() {
	t.scheduleTickAt(t.Freq.ThisTick(t.CurrentTime()))
}

// TickLater schedules a tick at the next cycle.
func (t *TickScheduler) TickLater() {
	t.scheduleTickAt(t.Freq.NextTick(t.CurrentTime()))
}

func (t *TickScheduler) scheduleTickAt(time VTimeInSec) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.nextTickTime >= time {
		return
	}

	t.nextTickTime = time
	tick := MakeTickEvent(t.handler, time)
	tick.secondary = t.secondary

	t.Engine.Schedule(tick)
}

// CurrentTime returns the engine's current time.
func (t *TickScheduler) CurrentTime() VTimeInSec {
	return t.Engine.CurrentTime()
}

// TickingComponent updates its state cycle by cycle. Embedders only provide
// the Tick function.
type TickingComponent struct {
	*ComponentBase
	*TickScheduler

	ticker Ticker
}

// NotifyPortFree restarts ticking.
func (c *TickingComponent) NotifyPortFree(_ Port) {
	c.TickLater()
}

// NotifyRecv restarts ticking.
func (c *TickingComponent) NotifyRecv(_ Port) {
	c.TickLater()
}

// Handle runs one tick and keeps ticking while progress is made.
func (c *TickingComponent) Handle(_ Event) error {
	if c.ticker.Tick() {
		c.TickLater()
	}

	return nil
}

// NewTickingComponent creates a component driven by primary tick events.
func NewTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	tc := new(TickingComponent)
	tc.TickScheduler = NewTickScheduler(tc, engine, freq)
	tc.ComponentBase = NewComponentBase(name)
	tc.ticker = ticker

	return tc
}

// NewSecondaryTickingComponent creates a component driven by secondary tick
// events, suitable for connections that must run after the components they
// serve.
func NewSecondaryTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	tc := new(TickingComponent)
	tc.TickScheduler = NewSecondaryTickScheduler(tc, engine, freq)
	tc.ComponentBase = NewComponentBase(name)
	tc.ticker = ticker

	return tc
}
