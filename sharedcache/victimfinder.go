package sharedcache

// A VictimFinder decides which block should be evicted on a miss.
type VictimFinder interface {
	FindVictim(set *Set) *Block
}

// LFSRVictimFinder picks the victim way with a deterministic pseudo-random
// generator. The generator only advances when every way of the set is
// occupied, so the victim sequence is reproducible from the seed.
type LFSRVictimFinder struct {
	lfsr *LFSR
}

// NewLFSRVictimFinder returns a victim finder driven by a 32-bit LFSR.
func NewLFSRVictimFinder(seed uint32) *LFSRVictimFinder {
	return &LFSRVictimFinder{lfsr: NewLFSR(seed)}
}

// FindVictim returns an invalid block if one exists, otherwise a
// pseudo-randomly selected way.
func (f *LFSRVictimFinder) FindVictim(set *Set) *Block {
	for _, block := range set.Blocks {
		if !block.IsValid {
			return block
		}
	}

	wayID := int(f.lfsr.Next() % uint32(len(set.Blocks)))

	return set.Blocks[wayID]
}

// LRUVictimFinder evicts the least recently used block.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor
func NewLRUVictimFinder() *LRUVictimFinder {
	return new(LRUVictimFinder)
}

// FindVictim returns the least recently used block in a set
func (f *LRUVictimFinder) FindVictim(set *Set) *Block {
	for _, block := range set.LRUQueue {
		if !block.IsValid {
			return block
		}
	}

	return set.LRUQueue[0]
}
