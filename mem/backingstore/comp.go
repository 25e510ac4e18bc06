// Package backingstore provides a fixed-latency memory controller that
// serves as the storage behind the shared cache.
package backingstore

import (
	"log"

	"github.com/sarchlab/cohesim/mem"
	"github.com/sarchlab/cohesim/sim"
	"github.com/sarchlab/cohesim/tracing"
)

// A Comp is a memory controller that responds to every request after a fixed
// number of cycles. It never drops a request and it never times out.
type Comp struct {
	*sim.TickingComponent

	topPort sim.Port

	Storage *mem.Storage
	Latency int
}

// Tick converts incoming requests into respond events.
func (c *Comp) Tick() bool {
	msg := c.topPort.RetrieveIncoming()
	if msg == nil {
		return false
	}

	tracing.TraceReqReceive(msg, c)

	now := c.CurrentTime()
	respondTime := c.Freq.NCyclesLater(c.Latency, now)

	switch msg := msg.(type) {
	case *mem.ReadReq:
		c.Engine.Schedule(newReadRespondEvent(respondTime, c, msg))
	case *mem.WriteReq:
		c.Engine.Schedule(newWriteRespondEvent(respondTime, c, msg))
	default:
		log.Panicf("cannot handle message %T", msg)
	}

	return true
}

// Handle defines how the backing store handles events.
func (c *Comp) Handle(e sim.Event) error {
	switch e := e.(type) {
	case *readRespondEvent:
		return c.handleReadRespondEvent(e)
	case *writeRespondEvent:
		return c.handleWriteRespondEvent(e)
	default:
		return c.TickingComponent.Handle(e)
	}
}

func (c *Comp) handleReadRespondEvent(e *readRespondEvent) error {
	req := e.req

	data, err := c.Storage.Read(req.Address, req.AccessByteSize)
	if err != nil {
		log.Panic(err)
	}

	rsp := mem.DataReadyRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		WithData(data).
		Build()

	sendErr := c.topPort.Send(rsp)
	if sendErr != nil {
		retryTime := c.Freq.NextTick(e.Time())
		c.Engine.Schedule(newReadRespondEvent(retryTime, c, req))

		return nil
	}

	tracing.TraceReqComplete(req, c)
	c.TickLater()

	return nil
}

func (c *Comp) handleWriteRespondEvent(e *writeRespondEvent) error {
	req := e.req

	rsp := mem.WriteDoneRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		Build()

	sendErr := c.topPort.Send(rsp)
	if sendErr != nil {
		retryTime := c.Freq.NextTick(e.Time())
		c.Engine.Schedule(newWriteRespondEvent(retryTime, c, req))

		return nil
	}

	if req.DirtyMask == nil {
		err := c.Storage.Write(req.Address, req.Data)
		if err != nil {
			log.Panic(err)
		}
	} else {
		existing, err := c.Storage.Read(req.Address, uint64(len(req.Data)))
		if err != nil {
			log.Panic(err)
		}

		merged := mem.MergeMasked(existing, req.Data, req.DirtyMask)

		err = c.Storage.Write(req.Address, merged)
		if err != nil {
			log.Panic(err)
		}
	}

	tracing.TraceReqComplete(req, c)
	c.TickLater()

	return nil
}

type readRespondEvent struct {
	*sim.EventBase

	req *mem.ReadReq
}

func newReadRespondEvent(
	time sim.VTimeInSec,
	handler sim.Handler,
	req *mem.ReadReq,
) *readRespondEvent {
	return &readRespondEvent{
		EventBase: sim.NewEventBase(time, handler),
		req:       req,
	}
}

type writeRespondEvent struct {
	*sim.EventBase

	req *mem.WriteReq
}

func newWriteRespondEvent(
	time sim.VTimeInSec,
	handler sim.Handler,
	req *mem.WriteReq,
) *writeRespondEvent {
	return &writeRespondEvent{
		EventBase: sim.NewEventBase(time, handler),
		req:       req,
	}
}
