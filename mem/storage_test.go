package mem_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cohesim/mem"
)

var _ = Describe("Storage", func() {
	It("should read and write in a single unit", func() {
		storage := mem.NewStorage(4096)
		storage.Write(0, []byte{1, 2, 3, 4})

		res, _ := storage.Read(0, 2)
		Expect(res).To(Equal([]byte{1, 2}))

		res, _ = storage.Read(1, 2)
		Expect(res).To(Equal([]byte{2, 3}))
	})

	It("should read and write across units", func() {
		storage := mem.NewStorage(8192)
		storage.Write(4094, []byte{1, 2, 3, 4})

		res, _ := storage.Read(4094, 4)
		Expect(res).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("should read zeros from untouched addresses", func() {
		storage := mem.NewStorage(4096)

		res, err := storage.Read(128, 4)
		Expect(err).ToNot(HaveOccurred())
		Expect(res).To(Equal([]byte{0, 0, 0, 0}))
	})

	It("should return an error when accessing over the capacity", func() {
		storage := mem.NewStorage(4096)

		err := storage.Write(4095, []byte{1, 2})
		Expect(err).To(HaveOccurred())

		_, err = storage.Read(4095, 2)
		Expect(err).To(HaveOccurred())
	})
})
