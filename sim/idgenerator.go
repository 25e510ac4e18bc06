package sim

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator generates IDs for messages and events.
type IDGenerator interface {
	Generate() string
}

var (
	idGenMu           sync.Mutex
	idGenInstantiated bool
	idGen             IDGenerator
)

// UseSequentialIDGenerator selects deterministic, sequential IDs. It must be
// called before any ID is generated.
func UseSequentialIDGenerator() {
	setIDGenerator(&sequentialIDGenerator{})
}

// UseParallelIDGenerator selects globally unique IDs that are safe to
// generate from multiple goroutines, at the cost of determinism. It must be
// called before any ID is generated.
func UseParallelIDGenerator() {
	setIDGenerator(parallelIDGenerator{})
}

func setIDGenerator(g IDGenerator) {
	idGenMu.Lock()
	defer idGenMu.Unlock()

	if idGenInstantiated {
		log.Panic("cannot change id generator type after using it")
	}

	idGen = g
	idGenInstantiated = true
}

// GetIDGenerator returns the generator in use, defaulting to sequential.
func GetIDGenerator() IDGenerator {
	if idGenInstantiated {
		return idGen
	}

	idGenMu.Lock()
	defer idGenMu.Unlock()

	if !idGenInstantiated {
		idGen = &sequentialIDGenerator{}
		idGenInstantiated = true
	}

	return idGen
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&g.nextID, 1), 10)
}

type parallelIDGenerator struct{}

func (parallelIDGenerator) Generate() string {
	return xid.New().String()
}
