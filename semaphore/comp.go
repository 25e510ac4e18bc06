// Package semaphore provides a block of counting semaphores with hardware
// style wait bitsets. Waiters are granted in index order on release.
package semaphore

import (
	"log"

	"github.com/sarchlab/cohesim/sim"
)

type sem struct {
	count   int
	owner   int
	waiters uint32
}

// A Comp is the semaphore block. Each semaphore tracks a single owning core
// while locked; on release the lowest-indexed waiter is granted directly,
// without going back through acquire.
type Comp struct {
	*sim.TickingComponent

	topPort   sim.Port
	topSender sim.BufferedSender

	sems        []sem
	coreRemotes []sim.RemotePort
}

// RegisterCore records the port of a core, so that deferred grants can be
// addressed to it.
func (c *Comp) RegisterCore(coreID int, port sim.RemotePort) {
	c.coreRemotes[coreID] = port
}

// Owner returns the core that holds the semaphore, or -1 when unowned.
func (c *Comp) Owner(semID int) int {
	return c.sems[semID].owner
}

// Tick updates the internal state of the semaphore block.
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

	// A release can produce both an ack and a grant.
	if !c.topSender.CanSend(2) {
		return false
	}

	switch req := item.(type) {
	case *AcquireReq:
		c.doAcquire(req)
	case *ReleaseReq:
		c.doRelease(req)
	default:
		log.Panicf("cannot handle message %T", item)
	}

	c.topPort.RetrieveIncoming()

	return true
}

func (c *Comp) doAcquire(req *AcquireReq) {
	s := &c.sems[req.SemID]
	status := StatusGranted

	if s.count > 0 {
		s.count--
		s.owner = req.CoreID
	} else {
		s.waiters |= 1 << uint(req.CoreID)
		status = StatusWait
	}

	rsp := OpRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		WithSemID(req.SemID).
		WithStatus(status).
		Build()
	c.topSender.Send(rsp)
}

func (c *Comp) doRelease(req *ReleaseReq) {
	s := &c.sems[req.SemID]

	if s.owner != req.CoreID {
		rsp := OpRspBuilder{}.
			WithSrc(c.topPort.AsRemote()).
			WithDst(req.Src).
			WithRspTo(req.ID).
			WithSemID(req.SemID).
			WithStatus(StatusIgnored).
			Build()
		c.topSender.Send(rsp)

		return
	}

	if s.waiters != 0 {
		// Ownership transfers to the lowest-indexed waiter; the count
		// never becomes visible to other acquirers in between.
		waiter := lowestSetBit(s.waiters)
		s.waiters &^= 1 << uint(waiter)
		s.owner = waiter

		grant := GrantRspBuilder{}.
			WithSrc(c.topPort.AsRemote()).
			WithDst(c.coreRemotes[waiter]).
			WithSemID(req.SemID).
			WithCoreID(waiter).
			Build()
		c.topSender.Send(grant)
	} else {
		s.count++
		s.owner = -1
	}

	rsp := OpRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		WithSemID(req.SemID).
		WithStatus(StatusGranted).
		Build()
	c.topSender.Send(rsp)
}

func lowestSetBit(bits uint32) int {
	for i := 0; i < 32; i++ {
		if bits&(1<<uint(i)) != 0 {
			return i
		}
	}

	return -1
}

// NewComp creates a semaphore block with numSems counting semaphores, each
// starting at the given initial count.
func NewComp(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	numSems, numCores, initialCount int,
) *Comp {
	c := &Comp{
		sems:        make([]sem, numSems),
		coreRemotes: make([]sim.RemotePort, numCores),
	}
	for i := range c.sems {
		c.sems[i] = sem{count: initialCount, owner: -1}
	}

	c.TickingComponent = sim.NewTickingComponent(name, engine, freq, c)

	c.topPort = sim.NewPort(c, 4, 4, name+".TopPort")
	c.AddPort("Top", c.topPort)
	c.topSender = sim.NewBufferedSender(
		c.topPort, sim.NewBuffer(name+".SenderBuffer", 8))

	return c
}
