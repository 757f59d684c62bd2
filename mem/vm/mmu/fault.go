package mmu

import (
	"fmt"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/frametable"
	"github.com/sarchlab/vmsim/mem/vm/pagetable"
	"github.com/sarchlab/vmsim/mem/vm/swap"
	"github.com/sarchlab/vmsim/tracing"
)

// handleFault binds the not-present leaf of the address to a frame. A free
// frame is used if there is one. Otherwise a clean frame is evicted, and only
// when all frames are dirty, a dirty one is written back and evicted.
func (c *Comp) handleFault(
	taskID string,
	addr vm.Address,
	ref pagetable.LeafRef,
) error {
	c.stats.PageFaults++
	tracing.AddTaskStep(taskID, c, "page-fault",
		fmt.Sprintf("vpn=0x%x", addr.PageNumber))

	leaf := c.space.Leaf(ref)
	if !leaf.HasDiskAddr {
		leaf.DiskAddr = c.nextDiskAddr
		leaf.HasDiskAddr = true
		c.nextDiskAddr++
	}

	ppn, err := c.claimFrame(taskID)
	if err != nil {
		return err
	}

	err = c.loadPage(taskID, ppn, leaf)
	if err != nil {
		c.frames.Release(ppn)
		return err
	}

	owner := frametable.Owner{
		Space: c.space,
		Leaf:  ref,
		VPN:   addr.PageNumber,
	}
	c.frames.Bind(ppn, owner, leaf.DiskAddr, c.tick)

	leaf.Present = true
	leaf.PPN = ppn
	leaf.Dirty = false

	return nil
}

func (c *Comp) claimFrame(taskID string) (uint64, error) {
	ppn, ok := c.frames.FindFree()
	if ok {
		c.stats.FreeFrames++
		tracing.AddTaskStep(taskID, c, "free-frame", fmt.Sprintf("ppn=%d", ppn))

		return ppn, nil
	}

	ppn, ok = c.victimFinder.FindVictim(c.frames, frametable.Clean)
	if ok {
		c.stats.CleanEvictions++
		tracing.AddTaskStep(taskID, c, "evict-clean",
			fmt.Sprintf("ppn=%d", ppn))
		c.evict(ppn)

		return ppn, nil
	}

	ppn, ok = c.victimFinder.FindVictim(c.frames, frametable.Any)
	if !ok {
		panic("no frame can be evicted")
	}

	tracing.AddTaskStep(taskID, c, "evict-dirty", fmt.Sprintf("ppn=%d", ppn))

	err := c.writeBack(taskID, ppn)
	if err != nil {
		return 0, err
	}

	c.stats.DirtyEvictions++
	c.evict(ppn)

	return ppn, nil
}

// writeBack saves the content of a frame to the swap slot of its owner.
func (c *Comp) writeBack(taskID string, ppn uint64) error {
	f := c.frames.Frame(ppn)

	words, err := c.memory.ReadFrame(ppn)
	if err != nil {
		panic(err)
	}

	err = c.swap.Store(f.DiskAddr, swap.Page(words))
	if err != nil {
		return fmt.Errorf("%w: swapping out frame %d to disk address %d: %w",
			vm.ErrBackingStore, ppn, f.DiskAddr, err)
	}

	c.stats.SwapOuts++
	tracing.AddTaskStep(taskID, c, "swap-out",
		fmt.Sprintf("daddr=%d", f.DiskAddr))

	f.Owner.Space.Leaf(f.Owner.Leaf).Swapped = true

	return nil
}

// evict unmaps the page held by a frame. The frame keeps its stale owner until
// it is bound again.
func (c *Comp) evict(ppn uint64) {
	f := c.frames.Frame(ppn)
	owner := f.Owner

	victim := owner.Space.Leaf(owner.Leaf)
	victim.Present = false
	victim.Dirty = false
	victim.DiskAddr = f.DiskAddr

	if c.tlb != nil && owner.Space == c.space {
		c.tlb.Invalidate(c.cfg.PageBase(owner.VPN))
	}
}

// loadPage fills a frame with the image of the page. Pages that were never
// written back read as zeros.
func (c *Comp) loadPage(
	taskID string,
	ppn uint64,
	leaf *pagetable.LeafEntry,
) error {
	if !leaf.Swapped {
		err := c.memory.ZeroFrame(ppn)
		if err != nil {
			panic(err)
		}

		return nil
	}

	page, err := c.swap.Load(leaf.DiskAddr)
	if err != nil {
		return fmt.Errorf("%w: swapping in disk address %d: %w",
			vm.ErrBackingStore, leaf.DiskAddr, err)
	}

	err = c.memory.WriteFrame(ppn, page)
	if err != nil {
		return fmt.Errorf("%w: swapping in disk address %d: %w",
			vm.ErrBackingStore, leaf.DiskAddr, err)
	}

	c.stats.SwapIns++
	tracing.AddTaskStep(taskID, c, "swap-in",
		fmt.Sprintf("daddr=%d", leaf.DiskAddr))

	return nil
}
