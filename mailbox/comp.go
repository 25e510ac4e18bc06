// Package mailbox provides per-core bounded message FIFOs. Full and empty
// conditions are reported as status flags, never as failures.
package mailbox

import (
	"log"

	"github.com/sarchlab/cohesim/sim"
)

// A Comp holds one bounded FIFO per core. Requests are served in arrival
// order; every request gets exactly one response.
type Comp struct {
	*sim.TickingComponent

	topPort   sim.Port
	topSender sim.BufferedSender

	fifos    [][]uint32
	capacity int
}

// Tick updates the internal state of the mailbox.
func (c *Comp) Tick() bool {
	madeProgress := false

	madeProgress = c.topSender.Tick() || madeProgress
	madeProgress = c.parseTop() || madeProgress

	return madeProgress
}

func (c *Comp) parseTop() bool {
	item := c.topPort.PeekIncoming()
	if item == nil {
		return false
	}

	if !c.topSender.CanSend(1) {
		return false
	}

	switch req := item.(type) {
	case *SendReq:
		c.doSend(req)
	case *RecvReq:
		c.doRecv(req)
	default:
		log.Panicf("cannot handle message %T", item)
	}

	c.topPort.RetrieveIncoming()

	return true
}

func (c *Comp) doSend(req *SendReq) {
	status := StatusOK

	fifo := c.fifos[req.DestCore]
	if len(fifo) >= c.capacity {
		status = StatusFull
	} else {
		c.fifos[req.DestCore] = append(fifo, req.Payload)
	}

	rsp := OpRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		WithStatus(status).
		Build()
	c.topSender.Send(rsp)
}

func (c *Comp) doRecv(req *RecvReq) {
	status := StatusOK
	payload := uint32(0)

	fifo := c.fifos[req.CoreID]
	if len(fifo) == 0 {
		status = StatusEmpty
	} else {
		payload = fifo[0]
		c.fifos[req.CoreID] = fifo[1:]
	}

	rsp := OpRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		WithStatus(status).
		WithPayload(payload).
		Build()
	c.topSender.Send(rsp)
}

// Full reports whether a core's mailbox cannot accept more words.
func (c *Comp) Full(coreID int) bool {
	return len(c.fifos[coreID]) >= c.capacity
}

// Empty reports whether a core's mailbox has nothing to pop.
func (c *Comp) Empty(coreID int) bool {
	return len(c.fifos[coreID]) == 0
}

// NewComp creates a mailbox with one FIFO of the given capacity per core.
func NewComp(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	numCores, capacity int,
) *Comp {
	c := &Comp{
		fifos:    make([][]uint32, numCores),
		capacity: capacity,
	}
	c.TickingComponent = sim.NewTickingComponent(name, engine, freq, c)

	c.topPort = sim.NewPort(c, 4, 4, name+".TopPort")
	c.AddPort("Top", c.topPort)
	c.topSender = sim.NewBufferedSender(
		c.topPort, sim.NewBuffer(name+".SenderBuffer", 4))

	return c
}
