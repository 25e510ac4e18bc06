package sim

import (
	"log"
)

// BufferedSender queues outbound messages and drains them one per tick.
//
// Components push into it whenever they produce a message and call Tick from
// their own tick function to perform the actual sending. This decouples
// message generation from port backpressure.
type BufferedSender interface {
	// CanSend reports whether the buffer can hold count more messages.
	CanSend(count int) bool

	// Send enqueues a message. The message goes out on a later Tick.
	Send(msg Msg)

	// Clear drops all queued messages.
	Clear()

	// Tick tries to send one message and reports whether it did.
	Tick() bool
}

// NewBufferedSender creates a BufferedSender that drains into the port.
func NewBufferedSender(port Port, buffer Buffer) BufferedSender {
	return &bufferedSenderImpl{
		port:   port,
		buffer: buffer,
	}
}

type bufferedSenderImpl struct {
	port   Port
	buffer Buffer
}

func (s *bufferedSenderImpl) CanSend(count int) bool {
	if count > s.buffer.Capacity() {
		log.Panic("trying to send number of messages exceeding capacity")
	}

	return count+s.buffer.Size() <= s.buffer.Capacity()
}

func (s *bufferedSenderImpl) Send(msg Msg) {
	s.buffer.Push(msg)
}

func (s *bufferedSenderImpl) Clear() {
	s.buffer.Clear()
}

func (s *bufferedSenderImpl) Tick() bool {
	item := s.buffer.Peek()
	if item == nil {
		return false
	}

	if err := s.port.Send(item.(Msg)); err != nil {
		return false
	}

	s.buffer.Pop()

	return true
}
