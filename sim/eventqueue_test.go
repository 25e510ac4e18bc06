package sim

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type queueTestEvent struct {
	*EventBase
}

var _ = Describe("EventQueueImpl", func() {
	var queue *EventQueueImpl

	BeforeEach(func() {
		queue = NewEventQueue()
	})

	It("should pop in order", func() {
		numEvents := 100
		for i := 0; i < numEvents; i++ {
			event := queueTestEvent{
				NewEventBase(VTimeInSec(rand.Float64()/1e8), nil),
			}
			queue.Push(event)
		}

		now := VTimeInSec(-1)
		for i := 0; i < numEvents; i++ {
			event := queue.Pop()
			Expect(event.Time() > now).To(BeTrue())
			now = event.Time()
		}
	})

	It("should peek the earliest event", func() {
		early := queueTestEvent{NewEventBase(1, nil)}
		late := queueTestEvent{NewEventBase(2, nil)}

		queue.Push(late)
		queue.Push(early)

		Expect(queue.Peek()).To(Equal(early))
		Expect(queue.Len()).To(Equal(2))
	})
})
