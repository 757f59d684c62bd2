// Package mmu implements the memory management unit that translates virtual
// addresses into physical addresses.
package mmu

import (
	"fmt"
	"sync"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/frametable"
	"github.com/sarchlab/vmsim/mem/vm/pagetable"
	"github.com/sarchlab/vmsim/mem/vm/swap"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
	"github.com/sarchlab/vmsim/memory"
	"github.com/sarchlab/vmsim/sim"
	"github.com/sarchlab/vmsim/tracing"
)

// Stats counts the work done by an MMU.
type Stats struct {
	Translations   uint64 `json:"translations"`
	TLBHits        uint64 `json:"tlb_hits"`
	TLBMisses      uint64 `json:"tlb_misses"`
	PageFaults     uint64 `json:"page_faults"`
	FreeFrames     uint64 `json:"free_frames"`
	CleanEvictions uint64 `json:"clean_evictions"`
	DirtyEvictions uint64 `json:"dirty_evictions"`
	SwapIns        uint64 `json:"swap_ins"`
	SwapOuts       uint64 `json:"swap_outs"`
	TablesCreated  uint64 `json:"tables_created"`
}

// Comp is the MMU. It owns the TLB, the frame table, the physical memory and
// the swap store, and translates against the installed address space.
//
// Translations are not meant to be issued concurrently. The lock only keeps
// Snapshot consistent when it is called from another goroutine.
type Comp struct {
	sim.HookableBase

	name string
	cfg  vm.Config

	space        *pagetable.PageTable
	frames       *frametable.FrameTable
	tlb          *tlb.Comp
	memory       *memory.Storage
	swap         swap.Store
	victimFinder frametable.VictimFinder
	maxTables    int

	tick         uint64
	nextDiskAddr uint64
	stats        Stats

	lock sync.Mutex
}

// Name returns the name of the MMU.
func (c *Comp) Name() string {
	return c.name
}

// Config returns the address layout of the MMU.
func (c *Comp) Config() vm.Config {
	return c.cfg
}

// CurrentTick returns the number of translations issued so far. Frame recency
// stamps are taken from this clock.
func (c *Comp) CurrentTick() uint64 {
	return c.tick
}

// Stats returns the counters collected so far.
func (c *Comp) Stats() Stats {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.stats
}

// AddressSpace returns the installed page table.
func (c *Comp) AddressSpace() *pagetable.PageTable {
	return c.space
}

// FrameTable returns the frame table.
func (c *Comp) FrameTable() *frametable.FrameTable {
	return c.frames
}

// TLB returns the TLB. It is nil if the MMU is built without one.
func (c *Comp) TLB() *tlb.Comp {
	return c.tlb
}

// Memory returns the physical memory.
func (c *Comp) Memory() *memory.Storage {
	return c.memory
}

// NewAddressSpace creates an empty page table that fits the MMU.
func (c *Comp) NewAddressSpace() *pagetable.PageTable {
	pt := pagetable.NewPageTable(c.cfg)
	pt.LimitTables(c.maxTables)

	return pt
}

// SwitchAddressSpace installs a page table as the translation root and drops
// all the cached translations.
func (c *Comp) SwitchAddressSpace(pt *pagetable.PageTable) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if pt != nil {
		layoutMustMatch(c.cfg, pt.Config())
	}

	c.space = pt

	if c.tlb != nil {
		c.tlb.Flush()
	}
}

func layoutMustMatch(mmuCfg, ptCfg vm.Config) {
	if mmuCfg.Log2PageSize != ptCfg.Log2PageSize ||
		mmuCfg.LevelBits != ptCfg.LevelBits {
		panic("page table layout does not match the MMU")
	}
}

// Translate returns the physical address of a virtual address. Missing
// mappings are resolved before it returns. An error is returned only when
// the mapping cannot be created.
func (c *Comp) Translate(vAddr uint64) (uint64, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.translate(vAddr)
}

func (c *Comp) translate(vAddr uint64) (uint64, error) {
	if c.space == nil {
		return 0, vm.ErrNoAddressSpace
	}

	c.tick++
	c.stats.Translations++

	taskID := sim.GetIDGenerator().Generate()
	tracing.StartTask(taskID, "", c, "translation", "translate", vAddr)
	defer tracing.EndTask(taskID, c)

	addr := c.cfg.Decompose(vAddr)

	if c.tlb != nil {
		ppn, found := c.tlb.Lookup(vAddr)
		if found {
			c.stats.TLBHits++
			tracing.AddTaskStep(taskID, c, "tlb-hit", "")
			c.frames.Touch(ppn, c.tick)

			return c.cfg.PhysicalAddress(ppn, addr.Offset), nil
		}

		c.stats.TLBMisses++
		tracing.AddTaskStep(taskID, c, "tlb-miss", "")
	}

	ref, err := c.walk(taskID, addr)
	if err != nil {
		return 0, err
	}

	leaf := c.space.Leaf(ref)
	if !leaf.Present {
		err = c.handleFault(taskID, addr, ref)
		if err != nil {
			return 0, err
		}
	}

	c.frames.Touch(leaf.PPN, c.tick)

	if c.tlb != nil {
		c.tlb.Insert(vAddr, leaf.PPN)
	}

	return c.cfg.PhysicalAddress(leaf.PPN, addr.Offset), nil
}

func (c *Comp) accessMustFitInPage(vAddr, length uint64) error {
	offset := c.cfg.Offset(vAddr)
	if length > c.cfg.PageSize()-offset {
		return fmt.Errorf("%w: 0x%x+%d", vm.ErrCrossPage, vAddr, length)
	}

	return nil
}

// Read translates the virtual address and returns length bytes of physical
// memory from there.
func (c *Comp) Read(vAddr uint64, length uint64) ([]byte, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.accessMustFitInPage(vAddr, length); err != nil {
		return nil, err
	}

	pAddr, err := c.translate(vAddr)
	if err != nil {
		return nil, err
	}

	return c.memory.Read(pAddr, length)
}

// Write translates the virtual address and stores data there. The page is
// marked dirty, so that it is written back to swap before it is evicted.
func (c *Comp) Write(vAddr uint64, data []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.accessMustFitInPage(vAddr, uint64(len(data))); err != nil {
		return err
	}

	pAddr, err := c.translate(vAddr)
	if err != nil {
		return err
	}

	err = c.memory.Write(pAddr, data)
	if err != nil {
		return err
	}

	ppn := c.cfg.FrameNumber(pAddr)
	owner := c.frames.Frame(ppn).Owner
	owner.Space.Leaf(owner.Leaf).Dirty = true
	c.frames.MarkDirty(ppn)

	return nil
}
