// Package coreagent provides a stand-in for a processor core. It replays a
// scripted sequence of block accesses against the coherence controller and
// acknowledges every snoop it receives.
package coreagent

import (
	"log"

	"github.com/sarchlab/cohesim/coherence"
	"github.com/sarchlab/cohesim/mem"
	"github.com/sarchlab/cohesim/sim"
	"github.com/sarchlab/cohesim/tracing"
)

// An Access is one scripted block access.
type Access struct {
	IsWrite   bool
	Address   uint64
	Data      []byte
	DirtyMask []bool
}

// A ReadResult records the data a completed read returned.
type ReadResult struct {
	Address uint64
	Data    []byte
}

// A Comp is a core agent. It keeps at most one request outstanding, which
// matches the one-outstanding-request-per-core contract of the controller.
type Comp struct {
	*sim.TickingComponent

	topPort   sim.Port
	lowModule sim.RemotePort

	CoreID int

	accesses   []Access
	pendingReq mem.AccessReq

	ReadResults       []ReadResult
	WritesDone        int
	InvalidationsSeen []uint64
}

// SetLowModule sets the controller port that the agent sends requests to.
func (c *Comp) SetLowModule(port sim.RemotePort) {
	c.lowModule = port
}

// TopPort returns the port of the agent, so that it can be registered with
// the controller as a snoop target.
func (c *Comp) TopPort() sim.Port {
	return c.topPort
}

// Read schedules a block read.
func (c *Comp) Read(addr uint64) {
	c.accesses = append(c.accesses, Access{Address: addr})
}

// Write schedules a block write. A nil mask writes the whole block.
func (c *Comp) Write(addr uint64, data []byte, mask []bool) {
	c.accesses = append(c.accesses, Access{
		IsWrite:   true,
		Address:   addr,
		Data:      data,
		DirtyMask: mask,
	})
}

// Done reports whether every scripted access has completed.
func (c *Comp) Done() bool {
	return len(c.accesses) == 0 && c.pendingReq == nil
}

// Tick updates the internal state of the agent.
func (c *Comp) Tick() bool {
	madeProgress := false

	madeProgress = c.parseIncoming() || madeProgress
	madeProgress = c.issueNext() || madeProgress

	return madeProgress
}

func (c *Comp) parseIncoming() bool {
	item := c.topPort.PeekIncoming()
	if item == nil {
		return false
	}

	switch msg := item.(type) {
	case *coherence.SnoopInvalidateReq:
		return c.ackSnoop(msg)
	case *mem.DataReadyRsp:
		return c.completeRead(msg)
	case *mem.WriteDoneRsp:
		return c.completeWrite(msg)
	default:
		log.Panicf("cannot handle message %T", item)
	}

	return false
}

func (c *Comp) ackSnoop(snoop *coherence.SnoopInvalidateReq) bool {
	ack := coherence.SnoopAckRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(snoop.Src).
		WithRspTo(snoop.ID).
		WithCoreID(c.CoreID).
		Build()

	err := c.topPort.Send(ack)
	if err != nil {
		return false
	}

	c.InvalidationsSeen = append(c.InvalidationsSeen, snoop.Address)
	c.topPort.RetrieveIncoming()

	return true
}

func (c *Comp) completeRead(rsp *mem.DataReadyRsp) bool {
	c.reqMustBePending(rsp.RespondTo)

	read := c.pendingReq.(*mem.ReadReq)
	c.ReadResults = append(c.ReadResults, ReadResult{
		Address: read.Address,
		Data:    rsp.Data,
	})

	tracing.TraceReqFinalize(rsp, c)

	c.pendingReq = nil
	c.topPort.RetrieveIncoming()

	return true
}

func (c *Comp) completeWrite(rsp *mem.WriteDoneRsp) bool {
	c.reqMustBePending(rsp.RespondTo)

	c.WritesDone++

	tracing.TraceReqFinalize(rsp, c)

	c.pendingReq = nil
	c.topPort.RetrieveIncoming()

	return true
}

func (c *Comp) reqMustBePending(respondTo string) {
	if c.pendingReq == nil || respondTo != c.pendingReq.Meta().ID {
		log.Panic("response does not match the outstanding request")
	}
}

func (c *Comp) issueNext() bool {
	if c.pendingReq != nil || len(c.accesses) == 0 {
		return false
	}

	if !c.topPort.CanSend() {
		return false
	}

	access := c.accesses[0]

	var req mem.AccessReq
	if access.IsWrite {
		req = mem.WriteReqBuilder{}.
			WithSrc(c.topPort.AsRemote()).
			WithDst(c.lowModule).
			WithAddress(access.Address).
			WithData(access.Data).
			WithDirtyMask(access.DirtyMask).
			WithCoreID(c.CoreID).
			Build()
	} else {
		req = mem.ReadReqBuilder{}.
			WithSrc(c.topPort.AsRemote()).
			WithDst(c.lowModule).
			WithAddress(access.Address).
			WithByteSize(mem.BlockSize).
			WithCoreID(c.CoreID).
			Build()
	}

	err := c.topPort.Send(req)
	if err != nil {
		return false
	}

	tracing.TraceReqInitiate(req, c, "")

	c.accesses = c.accesses[1:]
	c.pendingReq = req

	return true
}

// NewComp creates a core agent.
func NewComp(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	coreID int,
) *Comp {
	c := &Comp{CoreID: coreID}
	c.TickingComponent = sim.NewTickingComponent(name, engine, freq, c)

	c.topPort = sim.NewPort(c, 4, 4, name+".TopPort")
	c.AddPort("Top", c.topPort)

	return c
}
