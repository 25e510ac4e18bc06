package backingstore

import (
	"github.com/sarchlab/cohesim/mem"
	"github.com/sarchlab/cohesim/sim"
)

// Builder can build backing store components.
type Builder struct {
	engine     sim.Engine
	freq       sim.Freq
	latency    int
	capacity   uint64
	storage    *mem.Storage
	topBufSize int
}

// MakeBuilder returns a new Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:       1 * sim.GHz,
		latency:    100,
		capacity:   4 * mem.MB,
		topBufSize: 16,
	}
}

// WithEngine sets the engine that the backing store uses.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency that the backing store works at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithLatency sets the number of cycles before a request is responded.
func (b Builder) WithLatency(latency int) Builder {
	b.latency = latency
	return b
}

// WithNewStorage creates a new storage of the given capacity for the
// backing store to build.
func (b Builder) WithNewStorage(capacity uint64) Builder {
	b.capacity = capacity
	b.storage = nil
	return b
}

// WithStorage sets an externally created storage, allowing several
// components to share the same data.
func (b Builder) WithStorage(storage *mem.Storage) Builder {
	b.storage = storage
	return b
}

// WithTopBufSize sets the size of the incoming buffer of the top port.
func (b Builder) WithTopBufSize(size int) Builder {
	b.topBufSize = size
	return b
}

// Build creates a new backing store component.
func (b Builder) Build(name string) *Comp {
	c := new(Comp)
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.Latency = b.latency

	c.Storage = b.storage
	if c.Storage == nil {
		c.Storage = mem.NewStorage(b.capacity)
	}

	c.topPort = sim.NewPort(c, b.topBufSize, b.topBufSize, name+".TopPort")
	c.AddPort("Top", c.topPort)

	return c
}
