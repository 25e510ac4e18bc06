package sim

// TimeTeller reports the current simulated time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler schedules future events.
type EventScheduler interface {
	Schedule(e Event)
}

// A SimulationEndHandler runs after the simulation ends.
type SimulationEndHandler interface {
	Handle(now VTimeInSec)
}

// An Engine drives the discrete-event simulation.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run processes events until no more are scheduled.
	Run() error

	// Pause stops event processing until Continue is called.
	Pause()

	// Continue resumes a paused simulation.
	Continue()

	// RegisterSimulationEndHandler registers a handler to run when the
	// simulation finishes.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished invokes all registered SimulationEndHandlers.
	Finished()
}

// HookPosBeforeEvent fires before an event is handled.
var HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent fires after an event is handled.
var HookPosAfterEvent = &HookPos{Name: "AfterEvent"}
