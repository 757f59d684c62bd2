package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/sim"
	"go.uber.org/mock/gomock"
)

type sampleDomain struct {
	sim.HookableBase
	name string
}

func (d *sampleDomain) Name() string {
	return d.name
}

var _ = Describe("Task API", func() {
	var (
		domain *sampleDomain
		tracer *StepCountTracer
	)

	BeforeEach(func() {
		domain = &sampleDomain{name: "MMU"}
		tracer = NewStepCountTracer(func(t Task) bool {
			return t.Kind == "translation"
		})
		CollectTrace(domain, tracer)
	})

	It("should not collect the same tracer twice", func() {
		Expect(func() { CollectTrace(domain, tracer) }).To(Panic())
	})

	It("should count steps and tasks with steps", func() {
		StartTask("1", "", domain, "translation", "translate", nil)
		AddTaskStep("1", domain, "tlb-miss", "")
		AddTaskStep("1", domain, "page-fault", "")
		AddTaskStep("1", domain, "page-fault", "")
		EndTask("1", domain)

		StartTask("2", "", domain, "translation", "translate", nil)
		AddTaskStep("2", domain, "tlb-hit", "")
		EndTask("2", domain)

		Expect(tracer.GetStepNames()).To(Equal(
			[]string{"tlb-miss", "page-fault", "tlb-hit"}))
		Expect(tracer.GetStepCount("page-fault")).To(Equal(uint64(2)))
		Expect(tracer.GetTaskCount("page-fault")).To(Equal(uint64(1)))
		Expect(tracer.GetTaskCount("tlb-hit")).To(Equal(uint64(1)))
	})

	It("should ignore filtered tasks", func() {
		StartTask("1", "", domain, "access", "write", nil)
		AddTaskStep("1", domain, "page-fault", "")
		EndTask("1", domain)

		Expect(tracer.GetStepCount("page-fault")).To(BeZero())
	})

	It("should require task fields", func() {
		Expect(func() {
			StartTask("", "", domain, "translation", "translate", nil)
		}).To(Panic())
		Expect(func() {
			StartTask("1", "", domain, "", "translate", nil)
		}).To(Panic())
	})

	It("should skip all work when nothing is hooked", func() {
		bare := &sampleDomain{name: "Bare"}

		Expect(func() {
			StartTask("", "", bare, "", "", nil)
		}).NotTo(Panic())
	})
})

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		recorder   *MockDataRecorder
		timeTeller *MockTimeTeller
		domain     *sampleDomain
		tracer     *DBTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		recorder = NewMockDataRecorder(mockCtrl)
		timeTeller = NewMockTimeTeller(mockCtrl)
		domain = &sampleDomain{name: "MMU"}

		recorder.EXPECT().CreateTable("trace", gomock.Any())
		recorder.EXPECT().CreateTable("trace_steps", gomock.Any())
		tracer = NewDBTracer(timeTeller, recorder)
		CollectTrace(domain, tracer)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record steps and finished tasks", func() {
		gomock.InOrder(
			timeTeller.EXPECT().CurrentTick().Return(uint64(3)),
			timeTeller.EXPECT().CurrentTick().Return(uint64(4)),
			recorder.EXPECT().InsertData("trace_steps", stepTableEntry{
				TaskID: "1",
				Tick:   4,
				What:   "evict-dirty",
				Detail: "ppn=2",
			}),
			timeTeller.EXPECT().CurrentTick().Return(uint64(5)),
			recorder.EXPECT().InsertData("trace", taskTableEntry{
				ID:        "1",
				Kind:      "translation",
				What:      "translate",
				Location:  "MMU",
				StartTick: 3,
				EndTick:   5,
			}),
		)

		StartTask("1", "", domain, "translation", "translate", nil)
		AddTaskStep("1", domain, "evict-dirty", "ppn=2")
		EndTask("1", domain)
	})

	It("should ignore unknown tasks", func() {
		AddTaskStep("9", domain, "evict-dirty", "")
		EndTask("9", domain)
	})

	It("should flush on terminate", func() {
		recorder.EXPECT().Flush()

		tracer.Terminate()
	})
})
