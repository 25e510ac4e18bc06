package sharedcache

// A Block of the cache is the information that is associated with a cache
// line. The data itself lives in a storage at CacheAddress.
type Block struct {
	Tag          uint64
	SetID        int
	WayID        int
	CacheAddress uint64
	IsValid      bool
	IsDirty      bool
}

// A Set is a list of ways where a certain piece of memory can be stored at.
type Set struct {
	Blocks   []*Block
	LRUQueue []*Block
}

// A TagArray keeps the tag, valid, and dirty bits of every way of the cache.
type TagArray interface {
	Lookup(reqAddr uint64) *Block
	GetSet(reqAddr uint64) (set *Set, setID int)
	Visit(block *Block)
	Reset()
}

// NewTagArray creates a TagArray with the given geometry.
func NewTagArray(numSets, numWays, blockSize int) TagArray {
	t := &tagArrayImpl{
		numSets:   numSets,
		numWays:   numWays,
		blockSize: blockSize,
	}

	t.Reset()

	return t
}

type tagArrayImpl struct {
	numSets   int
	numWays   int
	blockSize int
	sets      []Set
}

// GetSet returns the set that a certain address should be stored at
func (t *tagArrayImpl) GetSet(reqAddr uint64) (set *Set, setID int) {
	setID = int(reqAddr / uint64(t.blockSize) % uint64(t.numSets))
	set = &t.sets[setID]

	return
}

// Lookup finds the block that stores reqAddr. If the address is resident in
// the cache, return the block information. Otherwise, return nil. Ways
// within a set must carry distinct tags, so at most one way can hit.
func (t *tagArrayImpl) Lookup(reqAddr uint64) *Block {
	set, _ := t.GetSet(reqAddr)
	for _, block := range set.Blocks {
		if block.IsValid && block.Tag == reqAddr {
			return block
		}
	}

	return nil
}

// Visit moves the block to the end of the set's LRU queue.
func (t *tagArrayImpl) Visit(block *Block) {
	set := &t.sets[block.SetID]
	newLRUQueue := make([]*Block, 0, len(set.LRUQueue))

	for _, b := range set.LRUQueue {
		if b != block {
			newLRUQueue = append(newLRUQueue, b)
		}
	}

	set.LRUQueue = append(newLRUQueue, block)
}

// Reset marks all the blocks in the tag array invalid
func (t *tagArrayImpl) Reset() {
	t.sets = make([]Set, t.numSets)
	for i := 0; i < t.numSets; i++ {
		for j := 0; j < t.numWays; j++ {
			block := &Block{
				SetID: i,
				WayID: j,
				CacheAddress: uint64(i*t.numWays+j) *
					uint64(t.blockSize),
			}

			t.sets[i].Blocks = append(t.sets[i].Blocks, block)
			t.sets[i].LRUQueue = append(t.sets[i].LRUQueue, block)
		}
	}
}
