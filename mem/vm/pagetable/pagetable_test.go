package pagetable_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/pagetable"
)

func growAll(pt *pagetable.PageTable, addr vm.Address) pagetable.WalkResult {
	res := pt.Walk(addr)
	for !res.Complete() {
		_, err := pt.Grow(res.Tables[res.Depth-1], addr.Level(res.Depth))
		Expect(err).NotTo(HaveOccurred())

		res = pt.Walk(addr)
	}

	return res
}

var _ = Describe("PageTable", func() {
	var (
		cfg  vm.Config
		pt   *pagetable.PageTable
		addr vm.Address
	)

	BeforeEach(func() {
		cfg = vm.DefaultConfig()
		pt = pagetable.NewPageTable(cfg)
		addr = cfg.Decompose(1<<39 | 2<<30 | 3<<21 | 4<<12 | 0x10)
	})

	It("should start with only the root table", func() {
		Expect(pt.NumTables()).To(Equal(1))
		Expect(pt.Level(pt.Root())).To(Equal(1))
	})

	It("should stop the walk at the first absent entry", func() {
		res := pt.Walk(addr)

		Expect(res.Complete()).To(BeFalse())
		Expect(res.Depth).To(Equal(1))
		Expect(res.Tables[0]).To(Equal(pt.Root()))
		Expect(pt.PresentLevels(addr)).To(Equal(0))
	})

	It("should grow zero-filled tables level by level", func() {
		id, err := pt.Grow(pt.Root(), addr.Level(1))
		Expect(err).NotTo(HaveOccurred())
		Expect(pt.Level(id)).To(Equal(2))
		Expect(pt.Entry(pt.Root(), addr.Level(1))).
			To(Equal(pagetable.Entry{Present: true, Next: id}))
		Expect(pt.Entry(id, addr.Level(2))).To(Equal(pagetable.Entry{}))

		res := pt.Walk(addr)
		Expect(res.Depth).To(Equal(2))
		Expect(res.Tables[1]).To(Equal(id))
	})

	It("should reach the leaf after growing three levels", func() {
		res := growAll(pt, addr)

		Expect(pt.NumTables()).To(Equal(4))
		Expect(pt.Level(res.Leaf.Table)).To(Equal(4))
		Expect(res.Leaf.Index).To(Equal(4))
		Expect(*pt.Leaf(res.Leaf)).To(Equal(pagetable.LeafEntry{}))
		Expect(pt.PresentLevels(addr)).To(Equal(3))

		pt.Leaf(res.Leaf).Present = true
		Expect(pt.PresentLevels(addr)).To(Equal(4))
	})

	It("should share tables between neighbouring pages", func() {
		growAll(pt, addr)
		neighbour := cfg.Decompose(addr.Value + cfg.PageSize())

		res := growAll(pt, neighbour)

		Expect(pt.NumTables()).To(Equal(4))
		Expect(res.Leaf.Index).To(Equal(5))
	})

	It("should keep leaf entries in place while the arena grows", func() {
		res := growAll(pt, addr)
		leaf := pt.Leaf(res.Leaf)
		leaf.PPN = 7

		for i := uint64(0); i < 20; i++ {
			growAll(pt, cfg.Decompose(i<<39))
		}

		Expect(pt.Leaf(res.Leaf)).To(BeIdenticalTo(leaf))
		Expect(pt.Leaf(res.Leaf).PPN).To(Equal(uint64(7)))
	})

	It("should fail when the table limit is reached", func() {
		pt.LimitTables(2)

		_, err := pt.Grow(pt.Root(), addr.Level(1))
		Expect(err).NotTo(HaveOccurred())

		res := pt.Walk(addr)
		_, err = pt.Grow(res.Tables[1], addr.Level(2))
		Expect(err).To(MatchError(vm.ErrTableExhausted))
	})

	It("should panic when growing a present entry", func() {
		_, err := pt.Grow(pt.Root(), addr.Level(1))
		Expect(err).NotTo(HaveOccurred())

		Expect(func() { pt.Grow(pt.Root(), addr.Level(1)) }).To(Panic())
	})

	It("should panic when accessing leaves of intermediate tables", func() {
		Expect(func() { pt.Leaf(pagetable.LeafRef{Table: pt.Root()}) }).To(Panic())
		Expect(func() { pt.Level(pagetable.TableID(9)) }).To(Panic())
	})

	It("should visit present leaves", func() {
		res := growAll(pt, addr)
		pt.Leaf(res.Leaf).Present = true

		visited := []pagetable.LeafRef{}
		pt.ForEachPresentLeaf(func(
			ref pagetable.LeafRef,
			_ *pagetable.LeafEntry,
		) {
			visited = append(visited, ref)
		})

		Expect(visited).To(ConsistOf(res.Leaf))
	})
})
