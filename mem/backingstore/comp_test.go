package backingstore

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/cohesim/mem"
	"github.com/sarchlab/cohesim/sim"
)

var _ = Describe("Backing Store", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *sim.MockEngine
		topPort  *sim.MockPort
		comp     *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = sim.NewMockEngine(mockCtrl)
		topPort = sim.NewMockPort(mockCtrl)

		comp = MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithLatency(8).
			WithNewStorage(1 * mem.MB).
			Build("BackingStore")
		comp.topPort = topPort

		topPort.EXPECT().AsRemote().
			Return(sim.RemotePort("BackingStore.TopPort")).AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should schedule a respond event for a read", func() {
		read := mem.ReadReqBuilder{}.
			WithDst("BackingStore.TopPort").
			WithAddress(0x100).
			WithByteSize(32).
			Build()

		topPort.EXPECT().RetrieveIncoming().Return(read)
		engine.EXPECT().CurrentTime().Return(sim.VTimeInSec(10)).AnyTimes()
		engine.EXPECT().Schedule(gomock.Any()).
			Do(func(e sim.Event) {
				Expect(e).To(BeAssignableToTypeOf(&readRespondEvent{}))
				Expect(float64(e.Time())).To(
					BeNumerically("~", 10+8e-9, 1e-12))
			})

		madeProgress := comp.Tick()

		Expect(madeProgress).To(BeTrue())
	})

	It("should respond a read with the stored data", func() {
		data := []byte{1, 2, 3, 4}
		comp.Storage.Write(0x100, data)

		read := mem.ReadReqBuilder{}.
			WithSrc("Cache.BottomPort").
			WithDst("BackingStore.TopPort").
			WithAddress(0x100).
			WithByteSize(4).
			Build()
		evt := newReadRespondEvent(10, comp, read)

		topPort.EXPECT().Send(gomock.Any()).
			Do(func(rsp *mem.DataReadyRsp) {
				Expect(rsp.RespondTo).To(Equal(read.ID))
				Expect(rsp.Data).To(Equal(data))
			}).
			Return(nil)
		engine.EXPECT().CurrentTime().Return(sim.VTimeInSec(10)).AnyTimes()
		engine.EXPECT().Schedule(gomock.Any()).AnyTimes()

		err := comp.Handle(evt)

		Expect(err).ToNot(HaveOccurred())
	})

	It("should retry a read response when the port is busy", func() {
		read := mem.ReadReqBuilder{}.
			WithSrc("Cache.BottomPort").
			WithDst("BackingStore.TopPort").
			WithAddress(0x100).
			WithByteSize(4).
			Build()
		evt := newReadRespondEvent(10, comp, read)

		topPort.EXPECT().Send(gomock.Any()).Return(sim.NewSendError())
		engine.EXPECT().Schedule(gomock.Any()).
			Do(func(e sim.Event) {
				Expect(e).To(BeAssignableToTypeOf(&readRespondEvent{}))
				Expect(e.Time()).To(BeNumerically(">", sim.VTimeInSec(10)))
			})

		err := comp.Handle(evt)

		Expect(err).ToNot(HaveOccurred())
	})

	It("should merge masked bytes on write", func() {
		comp.Storage.Write(0x40, []byte{1, 1, 1, 1})

		write := mem.WriteReqBuilder{}.
			WithSrc("Cache.BottomPort").
			WithDst("BackingStore.TopPort").
			WithAddress(0x40).
			WithData([]byte{2, 2, 2, 2}).
			WithDirtyMask([]bool{true, false, false, true}).
			Build()
		evt := newWriteRespondEvent(10, comp, write)

		topPort.EXPECT().Send(gomock.Any()).
			Do(func(rsp *mem.WriteDoneRsp) {
				Expect(rsp.RespondTo).To(Equal(write.ID))
			}).
			Return(nil)
		engine.EXPECT().CurrentTime().Return(sim.VTimeInSec(10)).AnyTimes()
		engine.EXPECT().Schedule(gomock.Any()).AnyTimes()

		err := comp.Handle(evt)

		Expect(err).ToNot(HaveOccurred())

		stored, _ := comp.Storage.Read(0x40, 4)
		Expect(stored).To(Equal([]byte{2, 1, 1, 2}))
	})
})
