package sim

import (
	"container/heap"
	"sync"
)

// EventQueue is a time-ordered queue of events.
type EventQueue interface {
	Push(evt Event)
	Pop() Event
	Len() int
	Peek() Event
}

// EventQueueImpl is a thread-safe min-heap of events keyed by event time.
type EventQueueImpl struct {
	mu     sync.Mutex
	events eventMinHeap
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueueImpl {
	q := &EventQueueImpl{
		events: make(eventMinHeap, 0),
	}

	heap.Init(&q.events)

	return q
}

// Push inserts an event into the queue.
func (q *EventQueueImpl) Push(evt Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	heap.Push(&q.events, evt)
}

// Pop removes and returns the earliest event.
func (q *EventQueueImpl) Pop() Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	return heap.Pop(&q.events).(Event)
}

// Len returns the number of queued events.
func (q *EventQueueImpl) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.events.Len()
}

// Peek returns the earliest event without removing it.
func (q *EventQueueImpl) Peek() Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.events[0]
}

type eventMinHeap []Event

func (h eventMinHeap) Len() int           { return len(h) }
func (h eventMinHeap) Less(i, j int) bool { return h[i].Time() < h[j].Time() }
func (h eventMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *eventMinHeap) Push(x interface{}) {
	*h = append(*h, x.(Event))
}

func (h *eventMinHeap) Pop() interface{} {
	old := *h
	n := len(old)
	evt := old[n-1]
	*h = old[:n-1]

	return evt
}
