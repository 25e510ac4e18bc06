// Package config loads the YAML description of a platform to simulate.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Cache describes the shared cache geometry and replacement policy.
type Cache struct {
	NumSets   int    `yaml:"sets"`
	NumWays   int    `yaml:"ways"`
	BlockSize int    `yaml:"block_size"`
	Policy    string `yaml:"policy"`
	LFSRSeed  uint32 `yaml:"lfsr_seed"`
}

// Memory describes the backing store behind the shared cache.
type Memory struct {
	Latency    int    `yaml:"latency"`
	CapacityMB uint64 `yaml:"capacity_mb"`
}

// Boot describes the address range served by the boot ROM.
type Boot struct {
	Base uint64 `yaml:"base"`
	Size uint64 `yaml:"size"`
}

// Controller describes the coherence controller parameters.
type Controller struct {
	WatchdogCycles int `yaml:"watchdog_cycles"`
}

// Mailbox describes the inter-core mailbox block.
type Mailbox struct {
	Capacity int `yaml:"capacity"`
}

// Semaphore describes the counting semaphore block. Each semaphore tracks a
// single owner register, so with an initial count above one only the most
// recently granted core can release; earlier holders' releases are ignored.
type Semaphore struct {
	NumSems      int `yaml:"count"`
	InitialCount int `yaml:"initial"`
}

// IRQ describes the interrupt aggregator block.
type IRQ struct {
	NumSources int `yaml:"sources"`
}

// Monitor describes the HTTP monitoring server.
type Monitor struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Platform is the top-level description of a system to simulate.
type Platform struct {
	Name       string     `yaml:"name"`
	NumCores   int        `yaml:"cores"`
	FreqGHz    float64    `yaml:"freq_ghz"`
	Cache      Cache      `yaml:"cache"`
	Memory     Memory     `yaml:"memory"`
	Boot       Boot       `yaml:"boot"`
	Controller Controller `yaml:"controller"`
	Mailbox    Mailbox    `yaml:"mailbox"`
	Semaphore  Semaphore  `yaml:"semaphore"`
	IRQ        IRQ        `yaml:"irq"`
	Monitor    Monitor    `yaml:"monitor"`
	TraceOn    bool       `yaml:"trace"`
	Output     string     `yaml:"output"`
}

// Default returns a platform description with all fields set to the values
// used when a configuration file does not override them.
func Default() Platform {
	return Platform{
		Name:     "cohesim",
		NumCores: 4,
		FreqGHz:  1,
		Cache: Cache{
			NumSets:   16,
			NumWays:   4,
			BlockSize: 32,
			Policy:    "lfsr",
		},
		Memory: Memory{
			Latency:    100,
			CapacityMB: 4,
		},
		Boot: Boot{
			Base: 0,
			Size: 64 * 1024,
		},
		Mailbox: Mailbox{
			Capacity: 4,
		},
		Semaphore: Semaphore{
			NumSems:      8,
			InitialCount: 1,
		},
		IRQ: IRQ{
			NumSources: 16,
		},
		Monitor: Monitor{
			Enabled: true,
		},
	}
}

// Load reads a platform description from a YAML file. Fields that the file
// does not mention keep their default values.
func Load(path string) (Platform, error) {
	p := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("config %s: %w", path, err)
	}

	return p, nil
}

// Validate checks that the platform description can be built.
func (p Platform) Validate() error {
	if p.NumCores < 1 {
		return fmt.Errorf("cores must be at least 1, got %d", p.NumCores)
	}

	if p.FreqGHz <= 0 {
		return fmt.Errorf("freq_ghz must be positive, got %g", p.FreqGHz)
	}

	if err := p.Cache.validate(); err != nil {
		return err
	}

	if p.Memory.Latency < 1 {
		return fmt.Errorf("memory latency must be at least 1 cycle, got %d",
			p.Memory.Latency)
	}

	if p.Memory.CapacityMB < 1 {
		return fmt.Errorf("memory capacity must be at least 1 MB, got %d",
			p.Memory.CapacityMB)
	}

	if p.Boot.Size%uint64(p.Cache.BlockSize) != 0 {
		return fmt.Errorf("boot size %d is not a multiple of the block size",
			p.Boot.Size)
	}

	if p.Mailbox.Capacity < 1 {
		return fmt.Errorf("mailbox capacity must be at least 1, got %d",
			p.Mailbox.Capacity)
	}

	if p.Semaphore.NumSems < 1 || p.Semaphore.InitialCount < 0 {
		return fmt.Errorf("invalid semaphore configuration")
	}

	if p.IRQ.NumSources < 2 {
		return fmt.Errorf("irq sources must be at least 2, got %d",
			p.IRQ.NumSources)
	}

	return nil
}

func (c Cache) validate() error {
	if c.NumSets < 1 || c.NumSets&(c.NumSets-1) != 0 {
		return fmt.Errorf("cache sets must be a power of two, got %d",
			c.NumSets)
	}

	if c.NumWays < 1 {
		return fmt.Errorf("cache ways must be at least 1, got %d", c.NumWays)
	}

	if c.BlockSize < 1 || c.BlockSize&(c.BlockSize-1) != 0 {
		return fmt.Errorf("cache block size must be a power of two, got %d",
			c.BlockSize)
	}

	switch c.Policy {
	case "lfsr", "lru":
	default:
		return fmt.Errorf("unknown replacement policy %q", c.Policy)
	}

	return nil
}
