package sharedcache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LFSR Victim Finder", func() {
	var (
		finder *LFSRVictimFinder
		set    *Set
	)

	BeforeEach(func() {
		finder = NewLFSRVictimFinder(DefaultLFSRSeed)
		set = &Set{}
		for i := 0; i < 4; i++ {
			set.Blocks = append(set.Blocks, &Block{WayID: i})
		}
	})

	It("should prefer an invalid way", func() {
		set.Blocks[0].IsValid = true
		set.Blocks[1].IsValid = true
		set.Blocks[3].IsValid = true

		victim := finder.FindVictim(set)

		Expect(victim).To(BeIdenticalTo(set.Blocks[2]))
	})

	It("should not advance the generator while invalid ways remain", func() {
		reference := NewLFSR(DefaultLFSRSeed)

		finder.FindVictim(set)
		finder.FindVictim(set)

		for _, b := range set.Blocks {
			b.IsValid = true
		}

		victim := finder.FindVictim(set)
		expectedWay := int(reference.Next() % 4)

		Expect(victim.WayID).To(Equal(expectedWay))
	})

	It("should be reproducible from the seed", func() {
		for _, b := range set.Blocks {
			b.IsValid = true
		}

		other := NewLFSRVictimFinder(DefaultLFSRSeed)

		for i := 0; i < 100; i++ {
			Expect(finder.FindVictim(set).WayID).
				To(Equal(other.FindVictim(set).WayID))
		}
	})
})

var _ = Describe("LRU Victim Finder", func() {
	It("should evict the least recently used way", func() {
		tags := NewTagArray(1, 4, 64)
		set, _ := tags.GetSet(0)
		for _, b := range set.Blocks {
			b.IsValid = true
		}

		tags.Visit(set.Blocks[0])
		tags.Visit(set.Blocks[2])

		finder := NewLRUVictimFinder()

		Expect(finder.FindVictim(set)).To(BeIdenticalTo(set.Blocks[1]))
	})
})
