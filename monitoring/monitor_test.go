package monitoring

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Monitor", func() {
	var monitor *Monitor

	BeforeEach(func() {
		monitor = NewMonitor()
	})

	It("should create progress bars", func() {
		bar := monitor.CreateProgressBar("filling memory", 100)

		Expect(bar.Name).To(Equal("filling memory"))
		Expect(bar.Total).To(Equal(uint64(100)))
		Expect(monitor.progressBars).To(ContainElement(bar))
	})

	It("should complete progress bars", func() {
		bar1 := monitor.CreateProgressBar("bar1", 10)
		bar2 := monitor.CreateProgressBar("bar2", 10)

		monitor.CompleteProgressBar(bar1)

		Expect(monitor.progressBars).NotTo(ContainElement(bar1))
		Expect(monitor.progressBars).To(ContainElement(bar2))
	})

	It("should track progress", func() {
		bar := monitor.CreateProgressBar("bar", 10)

		bar.IncrementInProgress(4)
		bar.MoveInProgressToFinished(3)
		bar.IncrementFinished(1)

		Expect(bar.InProgress).To(Equal(uint64(1)))
		Expect(bar.Finished).To(Equal(uint64(4)))
	})
})
