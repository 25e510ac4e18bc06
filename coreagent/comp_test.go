package coreagent

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/cohesim/coherence"
	"github.com/sarchlab/cohesim/mem"
	"github.com/sarchlab/cohesim/sim"
)

var _ = Describe("Core Agent", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *sim.MockEngine
		topPort  *sim.MockPort
		agent    *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = sim.NewMockEngine(mockCtrl)
		topPort = sim.NewMockPort(mockCtrl)

		agent = NewComp("Core0", engine, 1*sim.GHz, 0)
		agent.topPort = topPort
		agent.SetLowModule("Ctrl.Core0Port")

		topPort.EXPECT().AsRemote().
			Return(sim.RemotePort("Core0.TopPort")).AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should issue a scripted read", func() {
		agent.Read(0x1000)

		topPort.EXPECT().PeekIncoming().Return(nil)
		topPort.EXPECT().CanSend().Return(true)
		topPort.EXPECT().Send(gomock.Any()).
			Do(func(req *mem.ReadReq) {
				Expect(req.Address).To(Equal(uint64(0x1000)))
				Expect(req.Dst).To(Equal(sim.RemotePort("Ctrl.Core0Port")))
				Expect(req.AccessByteSize).To(Equal(uint64(mem.BlockSize)))
			}).
			Return(nil)

		madeProgress := agent.Tick()

		Expect(madeProgress).To(BeTrue())
		Expect(agent.Done()).To(BeFalse())
	})

	It("should keep only one request outstanding", func() {
		agent.Read(0x1000)
		agent.Read(0x2000)

		topPort.EXPECT().PeekIncoming().Return(nil).AnyTimes()
		topPort.EXPECT().CanSend().Return(true)
		topPort.EXPECT().Send(gomock.Any()).Return(nil)

		agent.Tick()

		// The second access stays queued until the first one completes.
		madeProgress := agent.Tick()
		Expect(madeProgress).To(BeFalse())
	})

	It("should record read results", func() {
		read := mem.ReadReqBuilder{}.
			WithSrc("Core0.TopPort").
			WithDst("Ctrl.Core0Port").
			WithAddress(0x1000).
			WithByteSize(mem.BlockSize).
			Build()
		agent.pendingReq = read

		rsp := mem.DataReadyRspBuilder{}.
			WithSrc("Ctrl.Core0Port").
			WithDst("Core0.TopPort").
			WithRspTo(read.ID).
			WithData([]byte{5, 6, 7, 8}).
			Build()

		topPort.EXPECT().PeekIncoming().Return(rsp)
		topPort.EXPECT().RetrieveIncoming().Return(rsp)

		madeProgress := agent.Tick()

		Expect(madeProgress).To(BeTrue())
		Expect(agent.ReadResults).To(HaveLen(1))
		Expect(agent.ReadResults[0].Address).To(Equal(uint64(0x1000)))
		Expect(agent.ReadResults[0].Data).To(Equal([]byte{5, 6, 7, 8}))
		Expect(agent.Done()).To(BeTrue())
	})

	It("should acknowledge snoops", func() {
		snoop := coherence.SnoopInvalidateReqBuilder{}.
			WithSrc("Ctrl.SnoopPort").
			WithDst("Core0.TopPort").
			WithAddress(0x1000).
			WithCoreID(1).
			Build()

		topPort.EXPECT().PeekIncoming().Return(snoop)
		topPort.EXPECT().Send(gomock.Any()).
			Do(func(ack *coherence.SnoopAckRsp) {
				Expect(ack.RespondTo).To(Equal(snoop.ID))
				Expect(ack.CoreID).To(Equal(0))
				Expect(ack.Dst).To(Equal(sim.RemotePort("Ctrl.SnoopPort")))
			}).
			Return(nil)
		topPort.EXPECT().RetrieveIncoming().Return(snoop)

		madeProgress := agent.Tick()

		Expect(madeProgress).To(BeTrue())
		Expect(agent.InvalidationsSeen).To(ContainElement(uint64(0x1000)))
	})

	It("should retry a snoop ack when the port is busy", func() {
		snoop := coherence.SnoopInvalidateReqBuilder{}.
			WithSrc("Ctrl.SnoopPort").
			WithDst("Core0.TopPort").
			WithAddress(0x1000).
			WithCoreID(1).
			Build()

		topPort.EXPECT().PeekIncoming().Return(snoop)
		topPort.EXPECT().Send(gomock.Any()).Return(sim.NewSendError())

		madeProgress := agent.Tick()

		Expect(madeProgress).To(BeFalse())
		Expect(agent.InvalidationsSeen).To(BeEmpty())
	})
})
