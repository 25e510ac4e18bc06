package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Buffer", func() {
	var buf Buffer

	BeforeEach(func() {
		buf = NewBuffer("Buf", 2)
	})

	It("should push and pop in FIFO order", func() {
		Expect(buf.Capacity()).To(Equal(2))

		buf.Push("a")
		buf.Push("b")
		Expect(buf.Size()).To(Equal(2))

		Expect(buf.Peek()).To(Equal("a"))
		Expect(buf.Pop()).To(Equal("a"))
		Expect(buf.Pop()).To(Equal("b"))
		Expect(buf.Pop()).To(BeNil())
	})

	It("should reject pushes beyond capacity", func() {
		buf.Push(1)
		Expect(buf.CanPush()).To(BeTrue())

		buf.Push(2)
		Expect(buf.CanPush()).To(BeFalse())
		Expect(func() { buf.Push(3) }).To(Panic())
	})

	It("should return nil when peeking an empty buffer", func() {
		Expect(buf.Peek()).To(BeNil())
	})

	It("should clear", func() {
		buf.Push(2)
		buf.Clear()

		Expect(buf.Size()).To(Equal(0))
		Expect(buf.Peek()).To(BeNil())
	})
})
