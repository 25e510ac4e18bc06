package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cohesim/sim"
)

type testTimeTeller struct {
	currentTime sim.VTimeInSec
}

func (t *testTimeTeller) CurrentTime() sim.VTimeInSec {
	return t.currentTime
}

// fakeRecorder collects inserted entries so that tests can inspect them
// without touching a real database.
type fakeRecorder struct {
	tables  []string
	entries []any
}

func (r *fakeRecorder) CreateTable(tableName string, _ any) {
	r.tables = append(r.tables, tableName)
}

func (r *fakeRecorder) InsertData(_ string, entry any) {
	r.entries = append(r.entries, entry)
}

func (r *fakeRecorder) ListTables() []string {
	return r.tables
}

func (r *fakeRecorder) Flush() {}

var _ = Describe("DBTracer", func() {
	var (
		timeTeller *testTimeTeller
		recorder   *fakeRecorder
		tracer     *DBTracer
	)

	BeforeEach(func() {
		timeTeller = &testTimeTeller{}
		recorder = &fakeRecorder{}
		tracer = NewDBTracer(timeTeller, recorder)
	})

	It("should create the trace table on construction", func() {
		Expect(recorder.tables).To(ContainElement("trace"))
	})

	It("should record a completed task", func() {
		timeTeller.currentTime = 1.0
		tracer.StartTask(Task{
			ID:   "task1",
			Kind: "req_in",
			What: "*mem.ReadReq",
		})

		timeTeller.currentTime = 2.0
		tracer.EndTask(Task{ID: "task1"})

		Expect(recorder.entries).To(HaveLen(1))

		entry := recorder.entries[0].(taskTableEntry)
		Expect(entry.ID).To(Equal("task1"))
		Expect(entry.StartTime).To(Equal(1.0))
		Expect(entry.EndTime).To(Equal(2.0))
	})

	It("should ignore the end of an unknown task", func() {
		tracer.EndTask(Task{ID: "never-started"})

		Expect(recorder.entries).To(BeEmpty())
	})

	It("should reject tasks without an ID", func() {
		Expect(func() {
			tracer.StartTask(Task{Kind: "req_in", What: "something"})
		}).To(Panic())
	})
})
