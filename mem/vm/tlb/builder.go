package tlb

import (
	"math/rand"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb/internal"
	"github.com/sarchlab/vmsim/sim"
)

// A Builder can build TLBs.
type Builder struct {
	cfg  vm.Config
	seed int64
}

// MakeBuilder returns a Builder with the default address layout.
func MakeBuilder() Builder {
	return Builder{
		cfg:  vm.DefaultConfig(),
		seed: 1,
	}
}

// WithConfig sets the address layout. The TLB uses the set index, tag, and
// lines per set fields.
func (b Builder) WithConfig(cfg vm.Config) Builder {
	b.cfg = cfg
	return b
}

// WithNumSetsLog2 sets the number of sets as a power of 2. The tag takes the
// rest of the virtual page number.
func (b Builder) WithNumSetsLog2(n uint64) Builder {
	total := b.cfg.TLBIndexBits + b.cfg.TLBTagBits
	if n > total {
		panic("TLB index is wider than the virtual page number")
	}

	b.cfg.TLBIndexBits = n
	b.cfg.TLBTagBits = total - n

	return b
}

// WithNumWays sets the number of lines in each set.
func (b Builder) WithNumWays(n int) Builder {
	b.cfg.TLBLinesPerSet = n
	return b
}

// WithRandSeed sets the seed of the random replacement.
func (b Builder) WithRandSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// Build creates a TLB.
func (b Builder) Build(name string) *Comp {
	sim.NameMustBeValid(name)

	if b.cfg.TLBLinesPerSet <= 0 {
		panic("TLB must have at least one line per set")
	}

	rng := rand.New(rand.NewSource(b.seed))

	c := &Comp{
		name: name,
		cfg:  b.cfg,
		sets: make([]internal.Set, b.cfg.NumSets()),
	}

	for i := range c.sets {
		c.sets[i] = internal.NewSet(b.cfg.TLBLinesPerSet, rng)
	}

	return c
}
