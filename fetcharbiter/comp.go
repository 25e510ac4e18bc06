// Package fetcharbiter provides the instruction-fetch arbiter. It round
// robins fetch requests from the cores, serves boot-code addresses from a
// boot ROM, and forwards everything else to the shared cache path.
package fetcharbiter

import (
	"fmt"
	"log"

	"github.com/sarchlab/cohesim/mem"
	"github.com/sarchlab/cohesim/sim"
)

type outstandingFetch struct {
	req         *FetchReq
	reqToBottom *mem.ReadReq
}

// A Comp is the fetch arbiter. One fetch is in flight at a time; the round
// robin pointer advances after every grant so that no core is starved.
type Comp struct {
	*sim.TickingComponent

	corePorts  []sim.Port
	bottomPort sim.Port

	coreSenders  []sim.BufferedSender
	bottomSender sim.BufferedSender

	bootStorage *mem.Storage
	bootBase    uint64
	bootSize    uint64

	lowModule sim.RemotePort
	blockSize int

	nextCore    int
	outstanding *outstandingFetch
}

// CorePort returns the port that the given core fetches through.
func (c *Comp) CorePort(coreID int) sim.Port {
	return c.corePorts[coreID]
}

// Tick updates the internal state of the arbiter.
func (c *Comp) Tick() bool {
	madeProgress := false

	madeProgress = c.bottomSender.Tick() || madeProgress
	for _, sender := range c.coreSenders {
		madeProgress = sender.Tick() || madeProgress
	}
	madeProgress = c.parseBottom() || madeProgress
	madeProgress = c.arbitrate() || madeProgress

	return madeProgress
}

// arbitrate grants one core per pass, starting from the core after the
// previous winner.
func (c *Comp) arbitrate() bool {
	if c.outstanding != nil {
		return false
	}

	numCores := len(c.corePorts)
	for i := 0; i < numCores; i++ {
		coreID := (c.nextCore + i) % numCores
		port := c.corePorts[coreID]

		item := port.PeekIncoming()
		if item == nil {
			continue
		}

		req, ok := item.(*FetchReq)
		if !ok {
			log.Panicf("cannot handle message %T", item)
		}

		if !c.serve(coreID, req) {
			return false
		}

		port.RetrieveIncoming()
		c.nextCore = (coreID + 1) % numCores

		return true
	}

	return false
}

func (c *Comp) serve(coreID int, req *FetchReq) bool {
	if c.inBootRange(req.Address) {
		return c.serveFromBootROM(coreID, req)
	}

	return c.forwardToCache(req)
}

func (c *Comp) inBootRange(addr uint64) bool {
	return addr >= c.bootBase && addr < c.bootBase+c.bootSize
}

func (c *Comp) serveFromBootROM(coreID int, req *FetchReq) bool {
	sender := c.coreSenders[coreID]
	if !sender.CanSend(1) {
		return false
	}

	data, err := c.bootStorage.Read(
		req.Address-c.bootBase, uint64(c.blockSize))
	if err != nil {
		log.Panic(err)
	}

	rsp := FetchRspBuilder{}.
		WithSrc(c.corePorts[coreID].AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		WithData(data).
		Build()
	sender.Send(rsp)

	return true
}

func (c *Comp) forwardToCache(req *FetchReq) bool {
	if !c.bottomSender.CanSend(1) {
		return false
	}

	read := mem.ReadReqBuilder{}.
		WithSrc(c.bottomPort.AsRemote()).
		WithDst(c.lowModule).
		WithAddress(req.Address).
		WithByteSize(uint64(c.blockSize)).
		WithCoreID(req.CoreID).
		Build()
	c.bottomSender.Send(read)

	c.outstanding = &outstandingFetch{req: req, reqToBottom: read}

	return true
}

func (c *Comp) parseBottom() bool {
	if c.outstanding == nil {
		return false
	}

	item := c.bottomPort.PeekIncoming()
	if item == nil {
		return false
	}

	rsp, ok := item.(*mem.DataReadyRsp)
	if !ok {
		log.Panicf("cannot handle message %T", item)
	}

	if rsp.RespondTo != c.outstanding.reqToBottom.ID {
		log.Panic("response does not match the outstanding fetch")
	}

	req := c.outstanding.req
	sender := c.coreSenders[req.CoreID]
	if !sender.CanSend(1) {
		return false
	}

	rspToCore := FetchRspBuilder{}.
		WithSrc(c.corePorts[req.CoreID].AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		WithData(rsp.Data).
		Build()
	sender.Send(rspToCore)

	c.bottomPort.RetrieveIncoming()
	c.outstanding = nil

	return true
}

// A Builder can build fetch arbiters.
type Builder struct {
	engine    sim.Engine
	freq      sim.Freq
	numCores  int
	blockSize int
	bootBase  uint64
	bootSize  uint64
	bootImage []byte
	lowModule sim.RemotePort
}

// MakeBuilder returns a Builder with default parameters. The default boot
// range is the first 64KB of the address space.
func MakeBuilder() Builder {
	return Builder{
		freq:      1 * sim.GHz,
		numCores:  4,
		blockSize: mem.BlockSize,
		bootSize:  64 * mem.KB,
	}
}

// WithEngine sets the event driven simulation engine to use.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency that the arbiter works at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithNumCores sets the number of cores that the arbiter serves.
func (b Builder) WithNumCores(numCores int) Builder {
	b.numCores = numCores
	return b
}

// WithBlockSize sets the size of an instruction block in bytes.
func (b Builder) WithBlockSize(blockSize int) Builder {
	b.blockSize = blockSize
	return b
}

// WithBootRange sets the address range served by the boot ROM.
func (b Builder) WithBootRange(base, size uint64) Builder {
	b.bootBase = base
	b.bootSize = size
	return b
}

// WithBootImage preloads the boot ROM contents.
func (b Builder) WithBootImage(image []byte) Builder {
	b.bootImage = image
	return b
}

// WithLowModule sets the shared cache port that non-boot fetches go to.
func (b Builder) WithLowModule(lowModule sim.RemotePort) Builder {
	b.lowModule = lowModule
	return b
}

// Build returns a new fetch arbiter.
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		blockSize: b.blockSize,
		bootBase:  b.bootBase,
		bootSize:  b.bootSize,
		lowModule: b.lowModule,
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.bootStorage = mem.NewStorage(b.bootSize)
	if b.bootImage != nil {
		err := c.bootStorage.Write(0, b.bootImage)
		if err != nil {
			log.Panic(err)
		}
	}

	for i := 0; i < b.numCores; i++ {
		portName := fmt.Sprintf("%s.Core%dPort", name, i)
		port := sim.NewPort(c, 4, 4, portName)
		c.corePorts = append(c.corePorts, port)
		c.AddPort(fmt.Sprintf("Core%d", i), port)

		c.coreSenders = append(c.coreSenders, sim.NewBufferedSender(
			port, sim.NewBuffer(portName+".SenderBuffer", 4)))
	}

	c.bottomPort = sim.NewPort(c, 4, 4, name+".BottomPort")
	c.AddPort("Bottom", c.bottomPort)
	c.bottomSender = sim.NewBufferedSender(
		c.bottomPort, sim.NewBuffer(name+".BottomSenderBuffer", 4))

	return c
}
