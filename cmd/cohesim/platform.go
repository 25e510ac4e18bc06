package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/cohesim/coherence"
	"github.com/sarchlab/cohesim/config"
	"github.com/sarchlab/cohesim/coreagent"
	"github.com/sarchlab/cohesim/fetcharbiter"
	"github.com/sarchlab/cohesim/irqaggr"
	"github.com/sarchlab/cohesim/mailbox"
	"github.com/sarchlab/cohesim/mem"
	"github.com/sarchlab/cohesim/mem/backingstore"
	"github.com/sarchlab/cohesim/semaphore"
	"github.com/sarchlab/cohesim/sharedcache"
	"github.com/sarchlab/cohesim/sim"
	"github.com/sarchlab/cohesim/simulation"
	"github.com/sarchlab/cohesim/tracing"
)

// platform holds all the components of a built system.
type platform struct {
	cfg config.Platform
	sim *simulation.Simulation

	ctrl    *coherence.Comp
	cache   *sharedcache.Comp
	store   *backingstore.Comp
	arbiter *fetcharbiter.Comp
	mbox    *mailbox.Comp
	sems    *semaphore.Comp
	irq     *irqaggr.Comp
	agents  []*coreagent.Comp
}

func buildPlatform(cfg config.Platform) *platform {
	simBuilder := simulation.MakeBuilder()
	if !cfg.Monitor.Enabled {
		simBuilder = simBuilder.WithoutMonitoring()
	} else if cfg.Monitor.Port > 0 {
		simBuilder = simBuilder.WithMonitorPort(cfg.Monitor.Port)
	}
	if cfg.Output != "" {
		simBuilder = simBuilder.WithOutputFileName(cfg.Output)
	}

	s := simBuilder.Build()
	engine := s.GetEngine()
	freq := sim.Freq(cfg.FreqGHz) * sim.GHz

	p := &platform{cfg: cfg, sim: s}

	p.store = backingstore.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithLatency(cfg.Memory.Latency).
		WithNewStorage(cfg.Memory.CapacityMB * mem.MB).
		Build("BackingStore")

	p.cache = sharedcache.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithNumSets(cfg.Cache.NumSets).
		WithNumWays(cfg.Cache.NumWays).
		WithBlockSize(cfg.Cache.BlockSize).
		WithVictimFinder(victimFinder(cfg.Cache)).
		WithLowModule(p.store.GetPortByName("Top").AsRemote()).
		Build("Cache")

	p.ctrl = coherence.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithNumCores(cfg.NumCores).
		WithNumSets(cfg.Cache.NumSets).
		WithBlockSize(cfg.Cache.BlockSize).
		WithWatchdogCycles(cfg.Controller.WatchdogCycles).
		WithLowModule(p.cache.GetPortByName("Top").AsRemote()).
		Build("Ctrl")

	p.arbiter = fetcharbiter.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithNumCores(cfg.NumCores).
		WithBlockSize(cfg.Cache.BlockSize).
		WithBootRange(cfg.Boot.Base, cfg.Boot.Size).
		WithLowModule(p.cache.GetPortByName("Top").AsRemote()).
		Build("FetchArbiter")

	p.mbox = mailbox.NewComp(
		"Mailbox", engine, freq, cfg.NumCores, cfg.Mailbox.Capacity)
	p.sems = semaphore.NewComp(
		"Semaphore", engine, freq,
		cfg.Semaphore.NumSems, cfg.NumCores, cfg.Semaphore.InitialCount)
	p.irq = irqaggr.NewComp(
		"IRQAggregator", engine, freq, cfg.IRQ.NumSources, cfg.NumCores)

	conn := sim.NewDirectConnection("Conn", engine, freq)
	conn.PlugIn(p.store.GetPortByName("Top"))
	conn.PlugIn(p.cache.GetPortByName("Top"))
	conn.PlugIn(p.cache.GetPortByName("Bottom"))
	conn.PlugIn(p.ctrl.GetPortByName("Bottom"))
	conn.PlugIn(p.ctrl.GetPortByName("Snoop"))
	conn.PlugIn(p.arbiter.GetPortByName("Bottom"))
	conn.PlugIn(p.mbox.GetPortByName("Top"))
	conn.PlugIn(p.sems.GetPortByName("Top"))
	conn.PlugIn(p.irq.GetPortByName("Top"))

	for i := 0; i < cfg.NumCores; i++ {
		agent := coreagent.NewComp(
			fmt.Sprintf("Core%d", i), engine, freq, i)
		agent.SetLowModule(p.ctrl.CorePort(i).AsRemote())
		p.ctrl.RegisterCore(i, agent.TopPort().AsRemote())
		p.sems.RegisterCore(i, agent.TopPort().AsRemote())

		conn.PlugIn(p.ctrl.CorePort(i))
		conn.PlugIn(p.arbiter.CorePort(i))
		conn.PlugIn(agent.TopPort())

		p.agents = append(p.agents, agent)
	}

	for _, c := range []sim.Component{
		p.store, p.cache, p.ctrl, p.arbiter, p.mbox, p.sems, p.irq,
	} {
		s.RegisterComponent(c)
	}
	for _, agent := range p.agents {
		s.RegisterComponent(agent)
	}

	if cfg.TraceOn {
		for _, d := range []tracing.NamedHookable{
			p.store, p.cache, p.ctrl,
		} {
			tracing.CollectTrace(d, s.GetVisTracer())
		}
	}

	return p
}

func victimFinder(c config.Cache) sharedcache.VictimFinder {
	if c.Policy == "lru" {
		return sharedcache.NewLRUVictimFinder()
	}

	return sharedcache.NewLFSRVictimFinder(c.LFSRSeed)
}

// scheduleWorkload queues a simple sharing pattern. Every core writes its
// own block past the boot range, reads it back, and then reads the block
// of the next core so that lines become shared and snoops fire.
func (p *platform) scheduleWorkload() {
	blockSize := uint64(p.cfg.Cache.BlockSize)
	base := p.cfg.Boot.Base + p.cfg.Boot.Size
	n := len(p.agents)

	for i, agent := range p.agents {
		addr := base + uint64(i)*blockSize

		data := make([]byte, blockSize)
		for j := range data {
			data[j] = byte(i + 1)
		}

		agent.Write(addr, data, nil)
		agent.Read(addr)
	}

	for i, agent := range p.agents {
		neighbor := base + uint64((i+1)%n)*blockSize
		agent.Read(neighbor)
	}

	for _, agent := range p.agents {
		agent.TickLater()
	}
}

func (p *platform) reportResults() {
	engine := p.sim.GetEngine()

	for _, agent := range p.agents {
		logrus.WithFields(logrus.Fields{
			"core":          agent.CoreID,
			"reads":         len(agent.ReadResults),
			"writes":        agent.WritesDone,
			"invalidations": len(agent.InvalidationsSeen),
			"done":          agent.Done(),
		}).Info("core finished")
	}

	logrus.WithField("time", engine.CurrentTime()).Info("simulation complete")
}
