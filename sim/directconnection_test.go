package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

type connTestMsg struct {
	MsgMeta
}

func (m *connTestMsg) Meta() *MsgMeta {
	return &m.MsgMeta
}

func (m *connTestMsg) Clone() Msg {
	clone := *m
	return &clone
}

var _ = Describe("DirectConnection", func() {
	var (
		mockCtrl   *gomock.Controller
		engine     *MockEngine
		port1      *MockPort
		port2      *MockPort
		connection *DirectConnection
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewMockEngine(mockCtrl)
		port1 = NewMockPort(mockCtrl)
		port2 = NewMockPort(mockCtrl)

		connection = NewDirectConnection("Conn", engine, 1*GHz)

		port1.EXPECT().AsRemote().Return(RemotePort("Port1")).AnyTimes()
		port2.EXPECT().AsRemote().Return(RemotePort("Port2")).AnyTimes()

		port1.EXPECT().SetConnection(connection)
		port2.EXPECT().SetConnection(connection)
		connection.PlugIn(port1)
		connection.PlugIn(port2)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should forward messages to the destination port", func() {
		msg := &connTestMsg{MsgMeta{Src: "Port1", Dst: "Port2"}}

		port1.EXPECT().PeekOutgoing().Return(msg)
		port1.EXPECT().PeekOutgoing().Return(nil)
		port1.EXPECT().RetrieveOutgoing().Return(msg)
		port2.EXPECT().Deliver(msg).Return(nil)
		port2.EXPECT().PeekOutgoing().Return(nil)

		madeProgress := connection.Tick()

		Expect(madeProgress).To(BeTrue())
	})

	It("should stop forwarding when the destination rejects", func() {
		msg := &connTestMsg{MsgMeta{Src: "Port1", Dst: "Port2"}}

		port1.EXPECT().PeekOutgoing().Return(msg)
		port2.EXPECT().Deliver(msg).Return(NewSendError())
		port2.EXPECT().PeekOutgoing().Return(nil)

		madeProgress := connection.Tick()

		Expect(madeProgress).To(BeFalse())
	})

	It("should panic when the destination is not plugged in", func() {
		msg := &connTestMsg{MsgMeta{Src: "Port1", Dst: "Port3"}}

		port1.EXPECT().PeekOutgoing().Return(msg).AnyTimes()
		port2.EXPECT().PeekOutgoing().Return(nil).AnyTimes()

		Expect(func() { connection.Tick() }).To(Panic())
	})
})
