package sharedcache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/cohesim/mem"
	"github.com/sarchlab/cohesim/sim"
)

var _ = Describe("Cache Engine", func() {
	var (
		mockCtrl     *gomock.Controller
		engine       *sim.MockEngine
		topPort      *sim.MockPort
		bottomPort   *sim.MockPort
		topSender    *sim.MockBufferedSender
		bottomSender *sim.MockBufferedSender
		c            *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = sim.NewMockEngine(mockCtrl)
		topPort = sim.NewMockPort(mockCtrl)
		bottomPort = sim.NewMockPort(mockCtrl)
		topSender = sim.NewMockBufferedSender(mockCtrl)
		bottomSender = sim.NewMockBufferedSender(mockCtrl)

		c = &Comp{
			numSets:      2,
			numWays:      1,
			blockSize:    mem.BlockSize,
			victimFinder: NewLFSRVictimFinder(DefaultLFSRSeed),
			lowModule:    "BackingStore.Top",
		}
		c.TickingComponent = sim.NewTickingComponent(
			"Cache", engine, 1*sim.GHz, c)
		c.tags = NewTagArray(c.numSets, c.numWays, c.blockSize)
		c.storage = mem.NewStorage(
			uint64(c.numSets) * uint64(c.numWays) * uint64(c.blockSize))
		c.topPort = topPort
		c.bottomPort = bottomPort
		c.topSender = topSender
		c.bottomSender = bottomSender

		topPort.EXPECT().AsRemote().
			Return(sim.RemotePort("Cache.Top")).AnyTimes()
		bottomPort.EXPECT().AsRemote().
			Return(sim.RemotePort("Cache.Bottom")).AnyTimes()
		topSender.EXPECT().Tick().Return(false).AnyTimes()
		bottomSender.EXPECT().Tick().Return(false).AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	installBlock := func(addr uint64, data []byte, dirty bool) *Block {
		set, _ := c.tags.GetSet(addr)
		block := set.Blocks[0]
		block.Tag = addr
		block.IsValid = true
		block.IsDirty = dirty
		err := c.storage.Write(block.CacheAddress, data)
		Expect(err).To(BeNil())
		return block
	}

	blockOf := func(b byte) []byte {
		data := make([]byte, mem.BlockSize)
		for i := range data {
			data[i] = b
		}
		return data
	}

	Context("read hit", func() {
		It("should respond with the resident data", func() {
			installBlock(0x40, blockOf(0xaa), false)

			read := mem.ReadReqBuilder{}.
				WithSrc("Ctrl.Bottom").
				WithDst("Cache.Top").
				WithAddress(0x40).
				WithByteSize(mem.BlockSize).
				Build()

			topPort.EXPECT().PeekIncoming().Return(read)
			topPort.EXPECT().RetrieveIncoming()
			topSender.EXPECT().CanSend(1).Return(true)
			topSender.EXPECT().Send(gomock.Any()).Do(func(msg sim.Msg) {
				rsp := msg.(*mem.DataReadyRsp)
				Expect(rsp.RespondTo).To(Equal(read.ID))
				Expect(rsp.Data).To(Equal(blockOf(0xaa)))
			})

			madeProgress := c.Tick()

			Expect(madeProgress).To(BeTrue())
			Expect(c.trans).To(BeNil())
		})

		It("should stall if the response buffer is full", func() {
			installBlock(0x40, blockOf(0xaa), false)

			read := mem.ReadReqBuilder{}.
				WithSrc("Ctrl.Bottom").
				WithDst("Cache.Top").
				WithAddress(0x40).
				WithByteSize(mem.BlockSize).
				Build()

			topPort.EXPECT().PeekIncoming().Return(read)
			topSender.EXPECT().CanSend(1).Return(false)

			madeProgress := c.Tick()

			Expect(madeProgress).To(BeFalse())
		})
	})

	Context("write hit", func() {
		It("should merge only the masked bytes", func() {
			block := installBlock(0x40, blockOf(0x11), false)

			mask := make([]bool, mem.BlockSize)
			for i := 0; i < 4; i++ {
				mask[i] = true
			}
			write := mem.WriteReqBuilder{}.
				WithSrc("Ctrl.Bottom").
				WithDst("Cache.Top").
				WithAddress(0x40).
				WithData(blockOf(0x22)).
				WithDirtyMask(mask).
				Build()

			topPort.EXPECT().PeekIncoming().Return(write)
			topPort.EXPECT().RetrieveIncoming()
			topSender.EXPECT().CanSend(1).Return(true)
			topSender.EXPECT().Send(gomock.Any())

			madeProgress := c.Tick()

			Expect(madeProgress).To(BeTrue())
			Expect(block.IsDirty).To(BeTrue())

			stored, err := c.storage.Read(
				block.CacheAddress, mem.BlockSize)
			Expect(err).To(BeNil())
			Expect(stored[:4]).To(Equal([]byte{0x22, 0x22, 0x22, 0x22}))
			Expect(stored[4:]).To(Equal(blockOf(0x11)[4:]))
		})
	})

	Context("read miss", func() {
		It("should fetch the block from the backing store", func() {
			read := mem.ReadReqBuilder{}.
				WithSrc("Ctrl.Bottom").
				WithDst("Cache.Top").
				WithAddress(0x40).
				WithByteSize(mem.BlockSize).
				Build()

			topPort.EXPECT().PeekIncoming().Return(read)
			topPort.EXPECT().PeekIncoming().Return(nil).AnyTimes()
			topPort.EXPECT().RetrieveIncoming()
			bottomSender.EXPECT().CanSend(1).Return(true)

			var fill *mem.ReadReq
			bottomSender.EXPECT().Send(gomock.Any()).Do(func(msg sim.Msg) {
				fill = msg.(*mem.ReadReq)
				Expect(fill.Address).To(Equal(uint64(0x40)))
				Expect(fill.Dst).To(Equal(sim.RemotePort("BackingStore.Top")))
			})

			madeProgress := c.Tick()

			Expect(madeProgress).To(BeTrue())
			Expect(c.trans).NotTo(BeNil())
			Expect(c.state).To(Equal(engineStateReadFill))

			dataReady := mem.DataReadyRspBuilder{}.
				WithSrc("BackingStore.Top").
				WithDst("Cache.Bottom").
				WithRspTo(fill.ID).
				WithData(blockOf(0x33)).
				Build()

			bottomPort.EXPECT().PeekIncoming().Return(dataReady)
			bottomPort.EXPECT().RetrieveIncoming()
			topSender.EXPECT().CanSend(1).Return(true)
			topSender.EXPECT().Send(gomock.Any()).Do(func(msg sim.Msg) {
				rsp := msg.(*mem.DataReadyRsp)
				Expect(rsp.RespondTo).To(Equal(read.ID))
				Expect(rsp.Data).To(Equal(blockOf(0x33)))
			})

			madeProgress = c.Tick()

			Expect(madeProgress).To(BeTrue())
			Expect(c.trans).To(BeNil())
			Expect(c.tags.Lookup(0x40)).NotTo(BeNil())
			Expect(c.tags.Lookup(0x40).IsDirty).To(BeFalse())
		})
	})

	Context("write miss with dirty victim", func() {
		It("should write the victim back before filling", func() {
			// 0x40 and 0xc0 map to the same set of the 2-set,
			// direct-mapped geometry.
			victim := installBlock(0x40, blockOf(0x55), true)

			mask := make([]bool, mem.BlockSize)
			for i := range mask {
				mask[i] = true
			}
			write := mem.WriteReqBuilder{}.
				WithSrc("Ctrl.Bottom").
				WithDst("Cache.Top").
				WithAddress(0xc0).
				WithData(blockOf(0x66)).
				WithDirtyMask(mask).
				Build()

			topPort.EXPECT().PeekIncoming().Return(write)
			topPort.EXPECT().PeekIncoming().Return(nil).AnyTimes()
			topPort.EXPECT().RetrieveIncoming()
			bottomSender.EXPECT().CanSend(1).Return(true)

			var writeBack *mem.WriteReq
			bottomSender.EXPECT().Send(gomock.Any()).Do(func(msg sim.Msg) {
				writeBack = msg.(*mem.WriteReq)
				Expect(writeBack.Address).To(Equal(uint64(0x40)))
				Expect(writeBack.Data).To(Equal(blockOf(0x55)))
			})

			c.Tick()

			Expect(c.state).To(Equal(engineStateWriteBack))
			Expect(c.trans.victim).To(BeIdenticalTo(victim))

			writeDone := mem.WriteDoneRspBuilder{}.
				WithSrc("BackingStore.Top").
				WithDst("Cache.Bottom").
				WithRspTo(writeBack.ID).
				Build()

			bottomPort.EXPECT().PeekIncoming().Return(writeDone)
			bottomPort.EXPECT().RetrieveIncoming()
			bottomSender.EXPECT().CanSend(1).Return(true)

			var fill *mem.ReadReq
			bottomSender.EXPECT().Send(gomock.Any()).Do(func(msg sim.Msg) {
				fill = msg.(*mem.ReadReq)
				Expect(fill.Address).To(Equal(uint64(0xc0)))
			})

			c.Tick()

			Expect(c.state).To(Equal(engineStateReadFill))

			dataReady := mem.DataReadyRspBuilder{}.
				WithSrc("BackingStore.Top").
				WithDst("Cache.Bottom").
				WithRspTo(fill.ID).
				WithData(blockOf(0x77)).
				Build()

			bottomPort.EXPECT().PeekIncoming().Return(dataReady)
			bottomPort.EXPECT().RetrieveIncoming()
			topSender.EXPECT().CanSend(1).Return(true)
			topSender.EXPECT().Send(gomock.Any()).Do(func(msg sim.Msg) {
				rsp := msg.(*mem.WriteDoneRsp)
				Expect(rsp.RespondTo).To(Equal(write.ID))
			})

			c.Tick()

			block := c.tags.Lookup(0xc0)
			Expect(block).NotTo(BeNil())
			Expect(block.IsDirty).To(BeTrue())

			stored, err := c.storage.Read(block.CacheAddress, mem.BlockSize)
			Expect(err).To(BeNil())
			Expect(stored).To(Equal(blockOf(0x66)))

			Expect(c.tags.Lookup(0x40)).To(BeNil())
		})
	})
})
