package coherence

import (
	"log"

	"github.com/sarchlab/cohesim/mem"
	"github.com/sarchlab/cohesim/sim"
	"github.com/sarchlab/cohesim/tracing"
)

type ctrlState int

const (
	ctrlStateIdle ctrlState = iota
	ctrlStateWaitAcks
	ctrlStateWaitEngine
)

// A pendingTransaction is the single in-flight request latched by the
// controller. There is exactly one live instance system wide.
type pendingTransaction struct {
	req          mem.AccessReq
	coreID       int
	index        int
	isWrite      bool
	sharerExists bool
	reqToEngine  mem.AccessReq
	waitCycles   int
}

// A Comp is the coherence controller. It accepts one core request at a
// time, consults the directory, invalidates remote sharers before a write
// to shared data, accesses the shared cache engine, updates the directory,
// and responds to the requesting core.
//
// Arbitration is fixed priority: the lowest-numbered core with a pending
// request wins. Under sustained load from core 0 this starves higher
// numbered cores.
type Comp struct {
	*sim.TickingComponent

	corePorts  []sim.Port
	snoopPort  sim.Port
	bottomPort sim.Port

	coreSenders  []sim.BufferedSender
	snoopSender  sim.BufferedSender
	bottomSender sim.BufferedSender

	directory   *Directory
	coreRemotes []sim.RemotePort
	lowModule   sim.RemotePort

	numCores  int
	blockSize int

	// watchdogCycles, when positive, is the number of stalled cycles
	// after which the controller reports a wedged transaction. It never
	// unblocks anything on its own.
	watchdogCycles int

	state       ctrlState
	trans       *pendingTransaction
	pendingAcks int
}

// Directory exposes the coherence directory for inspection.
func (c *Comp) Directory() *Directory {
	return c.directory
}

// CorePort returns the port that the given core sends its requests to.
func (c *Comp) CorePort(coreID int) sim.Port {
	return c.corePorts[coreID]
}

// SetLowModule sets the top port of the shared cache engine below.
func (c *Comp) SetLowModule(port sim.RemotePort) {
	c.lowModule = port
}

// RegisterCore records the port of a core, so that snoops can be addressed
// to it. Cores must be registered before the simulation starts.
func (c *Comp) RegisterCore(coreID int, port sim.RemotePort) {
	c.coreRemotes[coreID] = port
}

// Tick updates the internal state of the controller.
func (c *Comp) Tick() bool {
	madeProgress := false

	madeProgress = c.snoopSender.Tick() || madeProgress
	madeProgress = c.bottomSender.Tick() || madeProgress
	for _, sender := range c.coreSenders {
		madeProgress = sender.Tick() || madeProgress
	}

	switch c.state {
	case ctrlStateIdle:
		madeProgress = c.arbitrate() || madeProgress
	case ctrlStateWaitAcks:
		madeProgress = c.collectAcks() || madeProgress
	case ctrlStateWaitEngine:
		madeProgress = c.parseEngineRsp() || madeProgress
	}

	c.tickWatchdog(madeProgress)

	return madeProgress
}

// arbitrate scans the core ports in core id order and latches the first
// pending request.
func (c *Comp) arbitrate() bool {
	for coreID, port := range c.corePorts {
		item := port.PeekIncoming()
		if item == nil {
			continue
		}

		req, ok := item.(mem.AccessReq)
		if !ok {
			log.Panicf("cannot handle message %T", item)
		}

		return c.latch(coreID, port, req)
	}

	return false
}

func (c *Comp) latch(coreID int, port sim.Port, req mem.AccessReq) bool {
	if req.GetAddress()%uint64(c.blockSize) != 0 {
		log.Panic("core access must be block aligned")
	}

	index := c.directory.Index(req.GetAddress())
	entry := c.directory.Entry(index)
	tagMatch := entry.Valid && entry.Tag == req.GetAddress()
	_, isWrite := req.(*mem.WriteReq)
	sharers := c.directory.Sharers(index, coreID)

	trans := &pendingTransaction{
		req:          req,
		coreID:       coreID,
		index:        index,
		isWrite:      isWrite,
		sharerExists: len(sharers) > 0,
	}

	if isWrite && tagMatch && len(sharers) > 0 {
		if !c.snoopSender.CanSend(len(sharers)) {
			return false
		}

		c.broadcastSnoops(req.GetAddress(), sharers)
	} else {
		if !c.bottomSender.CanSend(1) {
			return false
		}

		c.issueEngineAccess(trans)
	}

	c.trans = trans
	port.RetrieveIncoming()

	tracing.TraceReqReceive(req, c)

	return true
}

func (c *Comp) broadcastSnoops(addr uint64, sharers []int) {
	for _, sharer := range sharers {
		snoop := SnoopInvalidateReqBuilder{}.
			WithSrc(c.snoopPort.AsRemote()).
			WithDst(c.coreRemotes[sharer]).
			WithAddress(addr).
			WithCoreID(sharer).
			Build()
		c.snoopSender.Send(snoop)
	}

	c.pendingAcks = len(sharers)
	c.state = ctrlStateWaitAcks
}

// collectAcks drains snoop acknowledgments. The transaction proceeds to the
// engine only after every addressed core has acknowledged.
func (c *Comp) collectAcks() bool {
	madeProgress := false

	for c.pendingAcks > 0 {
		item := c.snoopPort.PeekIncoming()
		if item == nil {
			break
		}

		if _, ok := item.(*SnoopAckRsp); !ok {
			log.Panicf("cannot handle message %T", item)
		}

		c.snoopPort.RetrieveIncoming()
		c.pendingAcks--
		madeProgress = true
	}

	if c.pendingAcks > 0 {
		return madeProgress
	}

	if !c.bottomSender.CanSend(1) {
		return madeProgress
	}

	tracing.AddTaskStep(
		tracing.MsgIDAtReceiver(c.trans.req, c), c, "snoop-complete")
	c.issueEngineAccess(c.trans)

	return true
}

func (c *Comp) issueEngineAccess(trans *pendingTransaction) {
	if trans.isWrite {
		write := trans.req.(*mem.WriteReq)
		mask := write.DirtyMask

		toEngine := mem.WriteReqBuilder{}.
			WithSrc(c.bottomPort.AsRemote()).
			WithDst(c.lowModule).
			WithAddress(write.Address).
			WithData(write.Data).
			WithDirtyMask(mask).
			WithCoreID(trans.coreID).
			Build()
		c.bottomSender.Send(toEngine)
		trans.reqToEngine = toEngine
	} else {
		read := trans.req.(*mem.ReadReq)

		toEngine := mem.ReadReqBuilder{}.
			WithSrc(c.bottomPort.AsRemote()).
			WithDst(c.lowModule).
			WithAddress(read.Address).
			WithByteSize(uint64(c.blockSize)).
			WithCoreID(trans.coreID).
			Build()
		c.bottomSender.Send(toEngine)
		trans.reqToEngine = toEngine
	}

	c.state = ctrlStateWaitEngine
}

// parseEngineRsp consumes the engine's completion, applies the directory
// update, and responds to the originating core exactly once.
func (c *Comp) parseEngineRsp() bool {
	item := c.bottomPort.PeekIncoming()
	if item == nil {
		return false
	}

	trans := c.trans
	sender := c.coreSenders[trans.coreID]
	if !sender.CanSend(1) {
		return false
	}

	switch rsp := item.(type) {
	case *mem.DataReadyRsp:
		c.rspMustMatch(rsp.RespondTo)

		rspToCore := mem.DataReadyRspBuilder{}.
			WithSrc(c.corePorts[trans.coreID].AsRemote()).
			WithDst(trans.req.Meta().Src).
			WithRspTo(trans.req.Meta().ID).
			WithData(rsp.Data).
			Build()
		sender.Send(rspToCore)
	case *mem.WriteDoneRsp:
		c.rspMustMatch(rsp.RespondTo)

		rspToCore := mem.WriteDoneRspBuilder{}.
			WithSrc(c.corePorts[trans.coreID].AsRemote()).
			WithDst(trans.req.Meta().Src).
			WithRspTo(trans.req.Meta().ID).
			Build()
		sender.Send(rspToCore)
	default:
		log.Panicf("cannot handle message %T", item)
	}

	c.directory.Update(
		trans.index,
		trans.req.GetAddress(),
		trans.coreID,
		trans.isWrite,
		trans.sharerExists,
	)

	c.bottomPort.RetrieveIncoming()

	tracing.TraceReqComplete(trans.req, c)

	c.trans = nil
	c.state = ctrlStateIdle

	return true
}

func (c *Comp) rspMustMatch(respondTo string) {
	if respondTo != c.trans.reqToEngine.Meta().ID {
		log.Panic("response does not match the outstanding engine access")
	}
}

func (c *Comp) tickWatchdog(madeProgress bool) {
	if c.trans == nil || madeProgress {
		if c.trans != nil {
			c.trans.waitCycles = 0
		}

		return
	}

	c.trans.waitCycles++
	if c.watchdogCycles > 0 && c.trans.waitCycles == c.watchdogCycles {
		log.Printf(
			"%s: request %s from core %d stalled for %d cycles",
			c.Name(), c.trans.req.Meta().ID,
			c.trans.coreID, c.trans.waitCycles)
	}
}
