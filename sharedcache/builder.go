package sharedcache

import (
	"github.com/sarchlab/cohesim/mem"
	"github.com/sarchlab/cohesim/sim"
)

// A Builder can build shared cache engines.
type Builder struct {
	engine       sim.Engine
	freq         sim.Freq
	numSets      int
	numWays      int
	blockSize    int
	victimFinder VictimFinder
	lowModule    sim.RemotePort
}

// MakeBuilder returns a Builder with default parameters. The default
// geometry is a 4-way, 16-set cache with 32-byte blocks, replaced by the
// LFSR victim finder.
func MakeBuilder() Builder {
	return Builder{
		freq:      1 * sim.GHz,
		numSets:   16,
		numWays:   4,
		blockSize: mem.BlockSize,
	}
}

// WithEngine sets the event driven simulation engine to use.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency that the cache works at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithNumSets sets the number of sets in the cache.
func (b Builder) WithNumSets(numSets int) Builder {
	b.numSets = numSets
	return b
}

// WithNumWays sets the associativity of the cache.
func (b Builder) WithNumWays(numWays int) Builder {
	b.numWays = numWays
	return b
}

// WithBlockSize sets the size of a cache block in bytes.
func (b Builder) WithBlockSize(blockSize int) Builder {
	b.blockSize = blockSize
	return b
}

// WithVictimFinder sets the replacement policy of the cache.
func (b Builder) WithVictimFinder(victimFinder VictimFinder) Builder {
	b.victimFinder = victimFinder
	return b
}

// WithLowModule sets the port of the backing store below the cache.
func (b Builder) WithLowModule(lowModule sim.RemotePort) Builder {
	b.lowModule = lowModule
	return b
}

// Build returns a new cache engine.
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		numSets:      b.numSets,
		numWays:      b.numWays,
		blockSize:    b.blockSize,
		victimFinder: b.victimFinder,
		lowModule:    b.lowModule,
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	if c.victimFinder == nil {
		c.victimFinder = NewLFSRVictimFinder(DefaultLFSRSeed)
	}

	c.tags = NewTagArray(b.numSets, b.numWays, b.blockSize)
	c.storage = mem.NewStorage(
		uint64(b.numSets) * uint64(b.numWays) * uint64(b.blockSize))

	c.topPort = sim.NewPort(c, 4, 4, name+".TopPort")
	c.AddPort("Top", c.topPort)
	c.bottomPort = sim.NewPort(c, 4, 4, name+".BottomPort")
	c.AddPort("Bottom", c.bottomPort)

	c.topSender = sim.NewBufferedSender(
		c.topPort, sim.NewBuffer(name+".TopSenderBuffer", 4))
	c.bottomSender = sim.NewBufferedSender(
		c.bottomPort, sim.NewBuffer(name+".BottomSenderBuffer", 4))

	return c
}
