package sim

import (
	"log"
	"reflect"
	"sync"
)

// A SerialEngine runs events one at a time in time order.
type SerialEngine struct {
	HookableBase

	nowMu          sync.RWMutex
	now            VTimeInSec
	queue          EventQueue
	secondaryQueue EventQueue

	paused   bool
	pausedMu sync.Mutex
	runMu    sync.Mutex

	singleRunMu sync.Mutex

	endHandlers []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine.
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{
		queue:          NewEventQueue(),
		secondaryQueue: NewEventQueue(),
	}
}

// Schedule registers an event to happen in the future.
func (e *SerialEngine) Schedule(evt Event) {
	if evt.Time() < e.readNow() {
		log.Panic("scheduling an event earlier than current time")
	}

	if evt.IsSecondary() {
		e.secondaryQueue.Push(evt)
		return
	}

	e.queue.Push(evt)
}

func (e *SerialEngine) readNow() VTimeInSec {
	e.nowMu.RLock()
	defer e.nowMu.RUnlock()

	return e.now
}

func (e *SerialEngine) writeNow(t VTimeInSec) {
	e.nowMu.Lock()
	e.now = t
	e.nowMu.Unlock()
}

// Run triggers all scheduled events until both queues drain.
func (e *SerialEngine) Run() error {
	e.singleRunMu.Lock()
	defer e.singleRunMu.Unlock()

	for {
		if e.queue.Len() == 0 && e.secondaryQueue.Len() == 0 {
			return nil
		}

		e.runMu.Lock()
		e.runEvent(e.nextEvent())
		e.runMu.Unlock()
	}
}

func (e *SerialEngine) runEvent(evt Event) {
	now := e.readNow()
	if evt.Time() < now {
		log.Panicf(
			"cannot run event in the past, evt %s @ %.10f, now %.10f",
			reflect.TypeOf(evt), evt.Time(), now,
		)
	}

	e.writeNow(evt.Time())

	hookCtx := HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(hookCtx)

	_ = evt.Handler().Handle(evt)

	hookCtx.Pos = HookPosAfterEvent
	e.InvokeHook(hookCtx)
}

// nextEvent picks the earlier of the two queue heads. Primary events win time
// ties so that secondary events always see the completed primary work of the
// same instant.
func (e *SerialEngine) nextEvent() Event {
	if e.queue.Len() == 0 {
		return e.secondaryQueue.Pop()
	}

	if e.secondaryQueue.Len() == 0 {
		return e.queue.Pop()
	}

	if e.queue.Peek().Time() <= e.secondaryQueue.Peek().Time() {
		return e.queue.Pop()
	}

	return e.secondaryQueue.Pop()
}

// Pause stops the engine from triggering more events until Continue.
func (e *SerialEngine) Pause() {
	e.pausedMu.Lock()
	defer e.pausedMu.Unlock()

	if e.paused {
		return
	}

	e.runMu.Lock()
	e.paused = true
}

// Continue resumes event triggering after a Pause.
func (e *SerialEngine) Continue() {
	e.pausedMu.Lock()
	defer e.pausedMu.Unlock()

	if !e.paused {
		return
	}

	e.runMu.Unlock()
	e.paused = false
}

// CurrentTime returns the time of the event currently being triggered.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	return e.readNow()
}

// RegisterSimulationEndHandler registers a handler to run when the simulation
// finishes.
func (e *SerialEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.endHandlers = append(e.endHandlers, handler)
}

// Finished invokes the registered simulation-end handlers.
func (e *SerialEngine) Finished() {
	now := e.readNow()
	for _, h := range e.endHandlers {
		h.Handle(now)
	}
}
