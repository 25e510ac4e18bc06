// Package sharedcache provides a set-associative write-back, write-allocate
// cache that serves as the last level before the backing store.
package sharedcache

import (
	"log"

	"github.com/sarchlab/cohesim/mem"
	"github.com/sarchlab/cohesim/sim"
	"github.com/sarchlab/cohesim/tracing"
)

type engineState int

const (
	engineStateIdle engineState = iota
	engineStateWriteBack
	engineStateReadFill
)

type transaction struct {
	read  *mem.ReadReq
	write *mem.WriteReq

	victim      *Block
	reqToBottom mem.AccessReq
}

func (t *transaction) req() mem.AccessReq {
	if t.read != nil {
		return t.read
	}

	return t.write
}

// A Comp is the shared cache engine. It accepts one access at a time from
// its top port and resolves misses through the backing store connected to
// its bottom port.
//
// The state machine is Idle -> Access -> (hit ? Complete :
// [WriteBack if the victim is dirty] -> ReadFill -> Update -> Complete).
// There is no timeout on the backing store handshake: if the backing store
// never responds, the engine stays in its wait state forever.
type Comp struct {
	*sim.TickingComponent

	topPort    sim.Port
	bottomPort sim.Port

	topSender    sim.BufferedSender
	bottomSender sim.BufferedSender

	tags         TagArray
	victimFinder VictimFinder
	storage      *mem.Storage

	numSets   int
	numWays   int
	blockSize int
	lowModule sim.RemotePort

	state engineState
	trans *transaction
}

// SetLowModule sets the port of the backing store that the engine fetches
// from and writes back to.
func (c *Comp) SetLowModule(port sim.RemotePort) {
	c.lowModule = port
}

// Tick updates the internal states of the cache engine.
func (c *Comp) Tick() bool {
	madeProgress := false

	madeProgress = c.topSender.Tick() || madeProgress
	madeProgress = c.bottomSender.Tick() || madeProgress
	madeProgress = c.parseBottom() || madeProgress
	madeProgress = c.parseTop() || madeProgress

	return madeProgress
}

func (c *Comp) parseTop() bool {
	if c.trans != nil {
		return false
	}

	item := c.topPort.PeekIncoming()
	if item == nil {
		return false
	}

	switch req := item.(type) {
	case *mem.ReadReq:
		return c.handleRead(req)
	case *mem.WriteReq:
		return c.handleWrite(req)
	default:
		log.Panicf("cannot handle message %T", item)
	}

	return false
}

func (c *Comp) handleRead(req *mem.ReadReq) bool {
	c.reqMustBeBlockAligned(req)

	block := c.tags.Lookup(req.Address)
	if block != nil {
		return c.readHit(req, block)
	}

	return c.startMiss(&transaction{read: req})
}

func (c *Comp) handleWrite(req *mem.WriteReq) bool {
	c.reqMustBeBlockAligned(req)

	block := c.tags.Lookup(req.Address)
	if block != nil {
		return c.writeHit(req, block)
	}

	return c.startMiss(&transaction{write: req})
}

func (c *Comp) readHit(req *mem.ReadReq, block *Block) bool {
	if !c.topSender.CanSend(1) {
		return false
	}

	data, err := c.storage.Read(block.CacheAddress, uint64(c.blockSize))
	if err != nil {
		log.Panic(err)
	}

	rsp := mem.DataReadyRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		WithData(data).
		Build()
	c.topSender.Send(rsp)

	c.tags.Visit(block)
	c.topPort.RetrieveIncoming()

	tracing.TraceReqReceive(req, c)
	tracing.AddTaskStep(tracing.MsgIDAtReceiver(req, c), c, "read-hit")
	tracing.TraceReqComplete(req, c)

	return true
}

func (c *Comp) writeHit(req *mem.WriteReq, block *Block) bool {
	if !c.topSender.CanSend(1) {
		return false
	}

	existing, err := c.storage.Read(block.CacheAddress, uint64(c.blockSize))
	if err != nil {
		log.Panic(err)
	}

	merged := mem.MergeMasked(existing, req.Data, req.DirtyMask)

	err = c.storage.Write(block.CacheAddress, merged)
	if err != nil {
		log.Panic(err)
	}

	block.IsDirty = true
	c.tags.Visit(block)

	rsp := mem.WriteDoneRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		Build()
	c.topSender.Send(rsp)

	c.topPort.RetrieveIncoming()

	tracing.TraceReqReceive(req, c)
	tracing.AddTaskStep(tracing.MsgIDAtReceiver(req, c), c, "write-hit")
	tracing.TraceReqComplete(req, c)

	return true
}

func (c *Comp) startMiss(trans *transaction) bool {
	if !c.bottomSender.CanSend(1) {
		return false
	}

	req := trans.req()
	set, _ := c.tags.GetSet(req.GetAddress())
	trans.victim = c.victimFinder.FindVictim(set)

	c.trans = trans
	c.topPort.RetrieveIncoming()

	tracing.TraceReqReceive(req, c)

	if trans.victim.IsValid && trans.victim.IsDirty {
		c.issueWriteBack(trans)
		tracing.AddTaskStep(
			tracing.MsgIDAtReceiver(req, c), c, "dirty-eviction")

		return true
	}

	c.issueReadFill(trans)

	return true
}

func (c *Comp) issueWriteBack(trans *transaction) {
	victim := trans.victim

	data, err := c.storage.Read(victim.CacheAddress, uint64(c.blockSize))
	if err != nil {
		log.Panic(err)
	}

	wb := mem.WriteReqBuilder{}.
		WithSrc(c.bottomPort.AsRemote()).
		WithDst(c.lowModule).
		WithAddress(victim.Tag).
		WithData(data).
		Build()
	c.bottomSender.Send(wb)

	trans.reqToBottom = wb
	c.state = engineStateWriteBack
}

func (c *Comp) issueReadFill(trans *transaction) {
	fill := mem.ReadReqBuilder{}.
		WithSrc(c.bottomPort.AsRemote()).
		WithDst(c.lowModule).
		WithAddress(trans.req().GetAddress()).
		WithByteSize(uint64(c.blockSize)).
		Build()
	c.bottomSender.Send(fill)

	trans.reqToBottom = fill
	c.state = engineStateReadFill
}

func (c *Comp) parseBottom() bool {
	if c.trans == nil {
		return false
	}

	item := c.bottomPort.PeekIncoming()
	if item == nil {
		return false
	}

	switch rsp := item.(type) {
	case *mem.WriteDoneRsp:
		return c.finishWriteBack(rsp)
	case *mem.DataReadyRsp:
		return c.finishReadFill(rsp)
	default:
		log.Panicf("cannot handle message %T", item)
	}

	return false
}

func (c *Comp) finishWriteBack(rsp *mem.WriteDoneRsp) bool {
	if c.state != engineStateWriteBack {
		log.Panic("write done response while not writing back")
	}

	if rsp.RespondTo != c.trans.reqToBottom.Meta().ID {
		log.Panic("response does not match the outstanding write back")
	}

	if !c.bottomSender.CanSend(1) {
		return false
	}

	c.issueReadFill(c.trans)
	c.bottomPort.RetrieveIncoming()

	return true
}

func (c *Comp) finishReadFill(rsp *mem.DataReadyRsp) bool {
	if c.state != engineStateReadFill {
		log.Panic("data ready response while not filling")
	}

	if rsp.RespondTo != c.trans.reqToBottom.Meta().ID {
		log.Panic("response does not match the outstanding fill")
	}

	if !c.topSender.CanSend(1) {
		return false
	}

	trans := c.trans
	victim := trans.victim
	req := trans.req()

	data := rsp.Data

	// A write miss is write-allocate: the caller's bytes are merged over
	// the fetched block, never over the stale victim contents.
	if trans.write != nil {
		data = mem.MergeMasked(data, trans.write.Data, trans.write.DirtyMask)
	}

	err := c.storage.Write(victim.CacheAddress, data)
	if err != nil {
		log.Panic(err)
	}

	victim.Tag = req.GetAddress()
	victim.IsValid = true
	victim.IsDirty = trans.write != nil
	c.tags.Visit(victim)

	if trans.read != nil {
		rspToTop := mem.DataReadyRspBuilder{}.
			WithSrc(c.topPort.AsRemote()).
			WithDst(trans.read.Src).
			WithRspTo(trans.read.ID).
			WithData(data).
			Build()
		c.topSender.Send(rspToTop)
	} else {
		rspToTop := mem.WriteDoneRspBuilder{}.
			WithSrc(c.topPort.AsRemote()).
			WithDst(trans.write.Src).
			WithRspTo(trans.write.ID).
			Build()
		c.topSender.Send(rspToTop)
	}

	c.bottomPort.RetrieveIncoming()

	tracing.AddTaskStep(tracing.MsgIDAtReceiver(req, c), c, "fill")
	tracing.TraceReqComplete(req, c)

	c.trans = nil
	c.state = engineStateIdle

	return true
}

func (c *Comp) reqMustBeBlockAligned(req mem.AccessReq) {
	if req.GetAddress()%uint64(c.blockSize) != 0 {
		log.Panic("cache engine access must be block aligned")
	}

	if req.GetByteSize() != uint64(c.blockSize) {
		log.Panic("cache engine access must be one block wide")
	}
}
