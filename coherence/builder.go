package coherence

import (
	"fmt"

	"github.com/sarchlab/cohesim/mem"
	"github.com/sarchlab/cohesim/sim"
)

// A Builder can build coherence controllers.
type Builder struct {
	engine         sim.Engine
	freq           sim.Freq
	numCores       int
	numSets        int
	blockSize      int
	watchdogCycles int
	lowModule      sim.RemotePort
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:      1 * sim.GHz,
		numCores:  4,
		numSets:   16,
		blockSize: mem.BlockSize,
	}
}

// WithEngine sets the event driven simulation engine to use.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency that the controller works at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithNumCores sets the number of cores that the controller arbitrates.
func (b Builder) WithNumCores(numCores int) Builder {
	b.numCores = numCores
	return b
}

// WithNumSets sets the number of directory entries. It must equal the
// number of sets of the shared cache below.
func (b Builder) WithNumSets(numSets int) Builder {
	b.numSets = numSets
	return b
}

// WithBlockSize sets the size of a cache block in bytes.
func (b Builder) WithBlockSize(blockSize int) Builder {
	b.blockSize = blockSize
	return b
}

// WithWatchdogCycles makes the controller report a transaction that has
// made no progress for the given number of cycles. Zero disables the
// report.
func (b Builder) WithWatchdogCycles(cycles int) Builder {
	b.watchdogCycles = cycles
	return b
}

// WithLowModule sets the top port of the shared cache engine below.
func (b Builder) WithLowModule(lowModule sim.RemotePort) Builder {
	b.lowModule = lowModule
	return b
}

// Build returns a new coherence controller.
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		numCores:       b.numCores,
		blockSize:      b.blockSize,
		watchdogCycles: b.watchdogCycles,
		lowModule:      b.lowModule,
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.directory = NewDirectory(b.numSets, b.numCores, b.blockSize)
	c.coreRemotes = make([]sim.RemotePort, b.numCores)

	for i := 0; i < b.numCores; i++ {
		portName := fmt.Sprintf("%s.Core%dPort", name, i)
		port := sim.NewPort(c, 4, 4, portName)
		c.corePorts = append(c.corePorts, port)
		c.AddPort(fmt.Sprintf("Core%d", i), port)

		c.coreSenders = append(c.coreSenders, sim.NewBufferedSender(
			port, sim.NewBuffer(portName+".SenderBuffer", 4)))
	}

	c.snoopPort = sim.NewPort(c, b.numCores, b.numCores, name+".SnoopPort")
	c.AddPort("Snoop", c.snoopPort)
	c.snoopSender = sim.NewBufferedSender(
		c.snoopPort, sim.NewBuffer(name+".SnoopSenderBuffer", b.numCores))

	c.bottomPort = sim.NewPort(c, 4, 4, name+".BottomPort")
	c.AddPort("Bottom", c.bottomPort)
	c.bottomSender = sim.NewBufferedSender(
		c.bottomPort, sim.NewBuffer(name+".BottomSenderBuffer", 4))

	return c
}
