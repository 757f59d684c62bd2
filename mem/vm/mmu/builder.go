package mmu

import (
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/frametable"
	"github.com/sarchlab/vmsim/mem/vm/pagetable"
	"github.com/sarchlab/vmsim/mem/vm/swap"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
	"github.com/sarchlab/vmsim/memory"
	"github.com/sarchlab/vmsim/sim"
)

// A Builder can build MMU components.
type Builder struct {
	cfg          vm.Config
	tlbEnabled   bool
	seed         int64
	swapStore    swap.Store
	victimFinder frametable.VictimFinder
	addressSpace *pagetable.PageTable
	maxTables    int
}

// MakeBuilder creates a new builder with the default address layout and a TLB.
func MakeBuilder() Builder {
	return Builder{
		cfg:        vm.DefaultConfig(),
		tlbEnabled: true,
		seed:       1,
	}
}

// WithConfig sets the address layout and the frame capacity.
func (b Builder) WithConfig(cfg vm.Config) Builder {
	b.cfg = cfg
	return b
}

// WithNumFrames sets the number of physical frames.
func (b Builder) WithNumFrames(n int) Builder {
	b.cfg.NumFrames = n
	return b
}

// WithTLB enables or disables the TLB. Without a TLB, every translation walks
// the page table.
func (b Builder) WithTLB(enabled bool) Builder {
	b.tlbEnabled = enabled
	return b
}

// WithRandSeed sets the seed of the TLB replacement.
func (b Builder) WithRandSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithSwapStore sets the store that keeps evicted pages. An in-memory store is
// used if not set.
func (b Builder) WithSwapStore(s swap.Store) Builder {
	b.swapStore = s
	return b
}

// WithVictimFinder sets the eviction policy. LRU is used if not set.
func (b Builder) WithVictimFinder(f frametable.VictimFinder) Builder {
	b.victimFinder = f
	return b
}

// WithAddressSpace sets the page table installed when the MMU is built. An
// empty one is created if not set.
func (b Builder) WithAddressSpace(pt *pagetable.PageTable) Builder {
	b.addressSpace = pt
	return b
}

// WithMaxTables caps the number of tables in each address space created by
// the MMU, root included. Zero means no limit.
func (b Builder) WithMaxTables(n int) Builder {
	b.maxTables = n
	return b
}

// Build returns a newly created MMU component.
func (b Builder) Build(name string) *Comp {
	sim.NameMustBeValid(name)
	b.cfg.MustBeValid()

	c := &Comp{
		name:         name,
		cfg:          b.cfg,
		frames:       frametable.New(b.cfg.NumFrames),
		memory:       memory.NewStorage(b.cfg.PageSize(), b.cfg.NumFrames),
		swap:         b.swapStore,
		victimFinder: b.victimFinder,
		maxTables:    b.maxTables,
	}

	if c.swap == nil {
		c.swap = swap.NewMemStore(b.cfg.WordsPerPage())
	}

	if c.victimFinder == nil {
		c.victimFinder = frametable.NewLRUVictimFinder()
	}

	if b.tlbEnabled {
		c.tlb = tlb.MakeBuilder().
			WithConfig(b.cfg).
			WithRandSeed(b.seed).
			Build(name + ".TLB")
	}

	space := b.addressSpace
	if space == nil {
		space = c.NewAddressSpace()
	}

	c.SwitchAddressSpace(space)

	return c
}
