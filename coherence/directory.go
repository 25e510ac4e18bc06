// Package coherence implements a directory-based MESI coherence controller
// that serializes per-core accesses to a shared cache.
package coherence

// MESIState is the coherence state of one core for one directory entry.
type MESIState int

// The four MESI states. Invalid is the reset state.
const (
	StateInvalid MESIState = iota
	StateShared
	StateExclusive
	StateModified
)

func (s MESIState) String() string {
	switch s {
	case StateInvalid:
		return "I"
	case StateShared:
		return "S"
	case StateExclusive:
		return "E"
	case StateModified:
		return "M"
	}

	return "?"
}

// A DirectoryEntry records, for one set index, the coherence state of each
// core for the line currently resident at that index. Entries are keyed by
// index only, so two addresses that map to the same index alias: filling one
// overwrites the tag of the other while the per-core states persist.
type DirectoryEntry struct {
	Tag        uint64
	Valid      bool
	Dirty      bool
	CoreStates []MESIState
}

// A Directory holds one entry per set index. It is a pure data structure,
// mutated only through Update.
type Directory struct {
	numSets   int
	numCores  int
	blockSize int
	entries   []DirectoryEntry
}

// NewDirectory creates a directory with all cores Invalid everywhere.
func NewDirectory(numSets, numCores, blockSize int) *Directory {
	d := &Directory{
		numSets:   numSets,
		numCores:  numCores,
		blockSize: blockSize,
	}
	d.Reset()

	return d
}

// Index returns the set index that an address maps to.
func (d *Directory) Index(addr uint64) int {
	return int(addr / uint64(d.blockSize) % uint64(d.numSets))
}

// Entry returns the directory entry at the given index.
func (d *Directory) Entry(index int) *DirectoryEntry {
	return &d.entries[index]
}

// Sharers returns the ids of the cores, other than the given one, that hold
// a non-Invalid state at the index.
func (d *Directory) Sharers(index, excludeCore int) []int {
	var sharers []int

	for coreID, state := range d.entries[index].CoreStates {
		if coreID == excludeCore {
			continue
		}

		if state != StateInvalid {
			sharers = append(sharers, coreID)
		}
	}

	return sharers
}

// Update applies one access to the directory entry at the index.
//
// A write puts the requesting core in Modified and forces every other
// non-Invalid core to Invalid. A read puts the core in Exclusive if its
// prior state was Invalid and no other core holds the entry, otherwise in
// Shared, downgrading any remote owner to Shared. The tag is always
// refreshed to the request's address, discarding whatever address the
// entry described before.
func (d *Directory) Update(
	index int,
	tag uint64,
	coreID int,
	isWrite bool,
	sharerExists bool,
) {
	entry := &d.entries[index]

	if isWrite {
		entry.CoreStates[coreID] = StateModified
		for other := range entry.CoreStates {
			if other == coreID {
				continue
			}

			if entry.CoreStates[other] != StateInvalid {
				entry.CoreStates[other] = StateInvalid
			}
		}

		entry.Dirty = true
	} else {
		if entry.CoreStates[coreID] == StateInvalid && !sharerExists {
			entry.CoreStates[coreID] = StateExclusive
		} else {
			entry.CoreStates[coreID] = StateShared

			// A read downgrades an owner, so that Modified and
			// Exclusive stay exclusive.
			for other := range entry.CoreStates {
				if other == coreID {
					continue
				}

				if entry.CoreStates[other] == StateModified ||
					entry.CoreStates[other] == StateExclusive {
					entry.CoreStates[other] = StateShared
				}
			}
		}
	}

	entry.Tag = tag
	entry.Valid = true
}

// Reset invalidates every entry for every core.
func (d *Directory) Reset() {
	d.entries = make([]DirectoryEntry, d.numSets)
	for i := range d.entries {
		d.entries[i].CoreStates = make([]MESIState, d.numCores)
	}
}
