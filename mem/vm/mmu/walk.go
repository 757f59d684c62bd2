package mmu

import (
	"fmt"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/pagetable"
	"github.com/sarchlab/vmsim/tracing"
)

// walk returns the leaf entry of the address. A missing intermediate entry is
// resolved by growing a zero-filled table under it, after which the walk
// resumes.
func (c *Comp) walk(
	taskID string,
	addr vm.Address,
) (pagetable.LeafRef, error) {
	for {
		res := c.space.Walk(addr)
		if res.Complete() {
			return res.Leaf, nil
		}

		parent := res.Tables[res.Depth-1]

		_, err := c.space.Grow(parent, addr.Level(res.Depth))
		if err != nil {
			return pagetable.LeafRef{}, err
		}

		c.stats.TablesCreated++
		tracing.AddTaskStep(taskID, c, "table-alloc",
			fmt.Sprintf("level=%d", res.Depth+1))
	}
}
