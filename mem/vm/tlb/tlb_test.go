package tlb

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb/internal"
	"go.uber.org/mock/gomock"
)

var _ = Describe("TLB", func() {
	var (
		mockCtrl *gomock.Controller
		cfg      vm.Config
		set      *MockSet
		tlb      *Comp
		vAddr    uint64
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		cfg = vm.DefaultConfig()
		set = NewMockSet(mockCtrl)

		tlb = MakeBuilder().WithConfig(cfg).Build("TLB")
		tlb.sets[5] = set

		vAddr = 0xabc<<16 | 5<<12 | 0x10
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should build the configured number of sets", func() {
		Expect(tlb.sets).To(HaveLen(16))
		Expect(tlb.Name()).To(Equal("TLB"))
	})

	It("should look up the set selected by the index bits", func() {
		set.EXPECT().Lookup(uint64(0xabc)).Return(2, uint64(7), true)

		ppn, found := tlb.Lookup(vAddr)

		Expect(found).To(BeTrue())
		Expect(ppn).To(Equal(uint64(7)))
	})

	It("should report a miss", func() {
		set.EXPECT().Lookup(uint64(0xabc)).Return(0, uint64(0), false)

		_, found := tlb.Lookup(vAddr)

		Expect(found).To(BeFalse())
	})

	It("should insert into the set selected by the index bits", func() {
		set.EXPECT().Insert(uint64(0xabc), uint64(3)).Return(0)

		Expect(tlb.Insert(vAddr, 3)).To(BeTrue())
	})

	It("should invalidate a page", func() {
		set.EXPECT().Invalidate(uint64(0xabc)).Return(true)

		Expect(tlb.Invalidate(vAddr)).To(BeTrue())
	})

	It("should flush every set", func() {
		set.EXPECT().Flush()

		tlb.Flush()
	})

	It("should report valid lines", func() {
		set.EXPECT().Lines().
			Return([]internal.Line{{}, {Valid: true, Tag: 0xabc, PPN: 3}}).
			Times(2)

		Expect(tlb.NumValidLines()).To(Equal(1))
		Expect(tlb.ValidLines()).To(Equal([]LineState{
			{Set: 5, Way: 1, Tag: 0xabc, PPN: 3, Valid: true},
		}))
	})
})

var _ = Describe("TLB with real sets", func() {
	var (
		cfg vm.Config
		tlb *Comp
	)

	BeforeEach(func() {
		cfg = vm.DefaultConfig()
		tlb = MakeBuilder().
			WithConfig(cfg).
			WithNumSetsLog2(2).
			WithNumWays(2).
			WithRandSeed(7).
			Build("TLB")
	})

	It("should use the builder geometry", func() {
		Expect(tlb.sets).To(HaveLen(4))
		Expect(tlb.cfg.TLBTagBits).To(Equal(uint64(34)))
	})

	It("should return an inserted frame", func() {
		tlb.Insert(0x1000, 9)

		ppn, found := tlb.Lookup(0x1fff)

		Expect(found).To(BeTrue())
		Expect(ppn).To(Equal(uint64(9)))
	})

	It("should not confuse pages that share a set", func() {
		tlb.Insert(0x1000, 9)

		_, found := tlb.Lookup(0x5000)

		Expect(found).To(BeFalse())
	})

	It("should keep at most lines-per-set pages of one set", func() {
		for i := uint64(0); i < 8; i++ {
			tlb.Insert((i*4+1)<<12, i)
		}

		Expect(tlb.NumValidLines()).To(Equal(2))
	})

	It("should drop invalidated and flushed pages", func() {
		tlb.Insert(0x1000, 9)
		tlb.Insert(0x2000, 8)

		Expect(tlb.Invalidate(0x1000)).To(BeTrue())
		Expect(tlb.Invalidate(0x1000)).To(BeFalse())
		_, found := tlb.Lookup(0x1000)
		Expect(found).To(BeFalse())

		tlb.Flush()
		Expect(tlb.NumValidLines()).To(Equal(0))
	})

	It("should panic on an invalid name", func() {
		Expect(func() { MakeBuilder().Build("") }).To(Panic())
	})
})
