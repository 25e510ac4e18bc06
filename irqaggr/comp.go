// Package irqaggr provides the interrupt aggregator: a priority, threshold,
// and claim/complete register file. Source 0 is reserved to mean "no
// interrupt"; a claim that finds nothing returns it.
package irqaggr

import (
	"log"

	"github.com/sarchlab/cohesim/sim"
)

// A Comp is the interrupt aggregator. Register writes are fire-and-forget;
// claims return the winning source in a response.
type Comp struct {
	*sim.TickingComponent

	topPort   sim.Port
	topSender sim.BufferedSender

	priorities []int
	thresholds []int
	pending    []bool
	inService  []bool
}

// Pending reports whether a source is raised and not yet claimed.
func (c *Comp) Pending(source int) bool {
	return c.pending[source]
}

// Tick updates the internal state of the aggregator.
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

	switch req := item.(type) {
	case *RegWriteReq:
		c.doRegWrite(req)
	case *ClaimReq:
		if !c.topSender.CanSend(1) {
			return false
		}
		c.doClaim(req)
	default:
		log.Panicf("cannot handle message %T", item)
	}

	c.topPort.RetrieveIncoming()

	return true
}

func (c *Comp) doRegWrite(req *RegWriteReq) {
	switch req.Op {
	case RegPriority:
		if c.sourceKnown(req.Source) {
			c.priorities[req.Source] = req.Value
		}
	case RegThreshold:
		c.thresholds[req.CoreID] = req.Value
	case RegRaise:
		if c.sourceKnown(req.Source) && !c.inService[req.Source] {
			c.pending[req.Source] = true
		}
	case RegComplete:
		// Completing a source that was never claimed is ignored.
		if c.sourceKnown(req.Source) {
			c.inService[req.Source] = false
		}
	}
}

// doClaim picks the pending source with the highest priority above the
// claiming core's threshold. Ties go to the lower source number.
func (c *Comp) doClaim(req *ClaimReq) {
	best := 0
	bestPriority := c.thresholds[req.CoreID]

	for source := 1; source < len(c.pending); source++ {
		if !c.pending[source] {
			continue
		}

		if c.priorities[source] > bestPriority {
			best = source
			bestPriority = c.priorities[source]
		}
	}

	if best != 0 {
		c.pending[best] = false
		c.inService[best] = true
	}

	rsp := ClaimRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		WithSource(best).
		Build()
	c.topSender.Send(rsp)
}

func (c *Comp) sourceKnown(source int) bool {
	return source > 0 && source < len(c.pending)
}

// NewComp creates an interrupt aggregator with numSources sources (source 0
// reserved) and one threshold register per core.
func NewComp(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	numSources, numCores int,
) *Comp {
	c := &Comp{
		priorities: make([]int, numSources),
		thresholds: make([]int, numCores),
		pending:    make([]bool, numSources),
		inService:  make([]bool, numSources),
	}
	c.TickingComponent = sim.NewTickingComponent(name, engine, freq, c)

	c.topPort = sim.NewPort(c, 4, 4, name+".TopPort")
	c.AddPort("Top", c.topPort)
	c.topSender = sim.NewBufferedSender(
		c.topPort, sim.NewBuffer(name+".SenderBuffer", 4))

	return c
}
