package mmu

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/frametable"
	"github.com/sarchlab/vmsim/mem/vm/swap"
)

var _ = Describe("MMU under random accesses", func() {
	replay := func(c *Comp, numPages int, numAccesses int) {
		rng := rand.New(rand.NewSource(7))
		expected := make(map[uint64]uint64)

		for i := 0; i < numAccesses; i++ {
			vAddr := page(rng.Intn(numPages)) + uint64(rng.Intn(512))*8

			if rng.Intn(3) == 0 {
				value := uint64(i + 1)
				writeWord(c, vAddr, value)
				expected[vAddr] = value
			} else {
				Expect(readWord(c, vAddr)).To(Equal(expected[vAddr]))
			}

			pAddr := translate(c, vAddr)
			Expect(translate(c, vAddr)).To(Equal(pAddr))

			mappingsMustBeConsistent(c)
		}
	}

	It("should keep the data with an in-memory swap store", func() {
		c := MakeBuilder().WithNumFrames(4).Build("MMU")

		replay(c, 10, 400)

		stats := c.Stats()
		Expect(stats.DirtyEvictions).NotTo(BeZero())
		Expect(stats.SwapIns).NotTo(BeZero())
	})

	It("should keep the data with a file swap store", func() {
		store, err := swap.NewFileStore(
			GinkgoT().TempDir(), vm.DefaultConfig().WordsPerPage())
		Expect(err).NotTo(HaveOccurred())

		c := MakeBuilder().
			WithNumFrames(3).
			WithSwapStore(store).
			Build("MMU")

		replay(c, 6, 150)
	})

	It("should keep the data with the largest-stamp policy", func() {
		c := MakeBuilder().
			WithNumFrames(4).
			WithVictimFinder(frametable.NewMaxTimeVictimFinder()).
			WithRandSeed(42).
			Build("MMU")

		replay(c, 10, 300)
	})

	It("should keep the data without a TLB", func() {
		c := MakeBuilder().
			WithNumFrames(2).
			WithTLB(false).
			Build("MMU")

		replay(c, 5, 200)
	})
})
