// Package pagetable implements a four-level radix page table. Tables live in
// an arena owned by the PageTable and are referred to by TableID handles.
// Tables are created on first touch and are never freed or moved.
package pagetable

import (
	"fmt"

	"github.com/sarchlab/vmsim/mem/vm"
)

// TableID identifies a table in the arena of a PageTable.
type TableID uint32

// An Entry is a level 1 to 3 entry, pointing at the next level table.
type Entry struct {
	Present bool
	Next    TableID
}

// A LeafEntry is a level 4 entry, binding a virtual page to a frame.
type LeafEntry struct {
	Present bool
	PPN     uint64
	Dirty   bool

	// DiskAddr is the swap slot assigned to this page. It is meaningful once
	// HasDiskAddr is set.
	DiskAddr    uint64
	HasDiskAddr bool

	// Swapped is set when the swap slot holds an image of this page.
	Swapped bool
}

// A LeafRef names one leaf entry.
type LeafRef struct {
	Table TableID
	Index int
}

type table struct {
	level   int
	entries []Entry
	leaves  []LeafEntry
}

// A WalkResult describes how far a walk went.
type WalkResult struct {
	// Tables holds the table consulted at each level. Only the first Depth
	// elements are meaningful.
	Tables [vm.NumLevels]TableID

	// Depth is the deepest level that has a table on the path. If Depth is
	// less than vm.NumLevels, the entry at that level is not present.
	Depth int

	// Leaf is the leaf entry of the address if the walk is complete.
	Leaf LeafRef
}

// Complete tells if the walk reached the leaf table.
func (r WalkResult) Complete() bool {
	return r.Depth == vm.NumLevels
}

// A PageTable is the address space of one process, rooted at a level 1 table.
type PageTable struct {
	cfg       vm.Config
	tables    []table
	maxTables int
}

// NewPageTable creates a page table with an empty root table.
func NewPageTable(cfg vm.Config) *PageTable {
	pt := &PageTable{cfg: cfg}
	pt.tables = append(pt.tables, pt.newTable(1))

	return pt
}

// LimitTables caps the number of tables, root included. Zero means no limit.
func (pt *PageTable) LimitTables(n int) {
	pt.maxTables = n
}

// Root returns the level 1 table.
func (pt *PageTable) Root() TableID {
	return 0
}

// NumTables returns the number of tables allocated, root included.
func (pt *PageTable) NumTables() int {
	return len(pt.tables)
}

// Config returns the address layout of the page table.
func (pt *PageTable) Config() vm.Config {
	return pt.cfg
}

func (pt *PageTable) newTable(level int) table {
	t := table{level: level}
	n := pt.cfg.EntriesPerTable(level)

	if level == vm.NumLevels {
		t.leaves = make([]LeafEntry, n)
	} else {
		t.entries = make([]Entry, n)
	}

	return t
}

func (pt *PageTable) tableMustExist(id TableID) *table {
	if int(id) >= len(pt.tables) {
		panic(fmt.Sprintf("table %d does not exist", id))
	}

	return &pt.tables[id]
}

// Level returns the level of a table.
func (pt *PageTable) Level(id TableID) int {
	return pt.tableMustExist(id).level
}

// Entry returns an intermediate entry.
func (pt *PageTable) Entry(id TableID, index uint64) Entry {
	t := pt.tableMustExist(id)
	if t.level == vm.NumLevels {
		panic("leaf table has no intermediate entries")
	}

	return t.entries[index]
}

// Leaf returns the leaf entry named by the reference. The entry stays at the
// same location for the life of the page table.
func (pt *PageTable) Leaf(ref LeafRef) *LeafEntry {
	t := pt.tableMustExist(ref.Table)
	if t.level != vm.NumLevels {
		panic("not a leaf table")
	}

	return &t.leaves[ref.Index]
}

// Walk follows the address from the root for as long as the entries are
// present. It never changes the page table.
func (pt *PageTable) Walk(addr vm.Address) WalkResult {
	var res WalkResult

	id := pt.Root()
	for level := 1; level < vm.NumLevels; level++ {
		res.Tables[level-1] = id
		res.Depth = level

		entry := pt.tables[id].entries[addr.Level(level)]
		if !entry.Present {
			return res
		}

		id = entry.Next
	}

	res.Tables[vm.NumLevels-1] = id
	res.Depth = vm.NumLevels
	res.Leaf = LeafRef{Table: id, Index: int(addr.Level(vm.NumLevels))}

	return res
}

// Grow allocates a zero-filled table for the absent entry at the index of the
// parent table and links it. It fails with vm.ErrTableExhausted when the table
// limit is reached.
func (pt *PageTable) Grow(parent TableID, index uint64) (TableID, error) {
	p := pt.tableMustExist(parent)
	if p.level == vm.NumLevels {
		panic("cannot grow below a leaf table")
	}

	if p.entries[index].Present {
		panic("entry is already present")
	}

	if pt.maxTables > 0 && len(pt.tables) >= pt.maxTables {
		return 0, fmt.Errorf("%w: %d tables allocated",
			vm.ErrTableExhausted, len(pt.tables))
	}

	child := pt.newTable(p.level + 1)
	id := TableID(len(pt.tables))
	pt.tables = append(pt.tables, child)

	// p may be stale after the append.
	pt.tables[parent].entries[index] = Entry{Present: true, Next: id}

	return id, nil
}

// PresentLevels returns the number of consecutive levels, from level 1, whose
// entry on the path of the address is present. A fully mapped address returns
// vm.NumLevels.
func (pt *PageTable) PresentLevels(addr vm.Address) int {
	res := pt.Walk(addr)
	if !res.Complete() {
		return res.Depth - 1
	}

	if pt.Leaf(res.Leaf).Present {
		return vm.NumLevels
	}

	return vm.NumLevels - 1
}

// ForEachPresentLeaf visits every present leaf entry.
func (pt *PageTable) ForEachPresentLeaf(fn func(ref LeafRef, leaf *LeafEntry)) {
	for i := range pt.tables {
		t := &pt.tables[i]
		if t.level != vm.NumLevels {
			continue
		}

		for j := range t.leaves {
			if t.leaves[j].Present {
				fn(LeafRef{Table: TableID(i), Index: j}, &t.leaves[j])
			}
		}
	}
}
