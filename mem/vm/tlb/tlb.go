// Package tlb provides a set-associative translation lookaside buffer.
//
// The TLB is a cache only. Whoever changes a mapping must call Invalidate or
// Flush, otherwise later lookups may return the old frame.
package tlb

import (
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb/internal"
)

// Comp is a TLB that maps virtual page numbers to frame numbers.
type Comp struct {
	name string
	cfg  vm.Config
	sets []internal.Set
}

// Name returns the name of the TLB.
func (c *Comp) Name() string {
	return c.name
}

// Lookup returns the frame cached for the page of the virtual address.
func (c *Comp) Lookup(vAddr uint64) (ppn uint64, found bool) {
	set := c.sets[c.cfg.TLBIndex(vAddr)]
	_, ppn, found = set.Lookup(c.cfg.TLBTag(vAddr))

	return ppn, found
}

// Insert caches the frame of the page of the virtual address. It always
// succeeds, replacing a random line if the set is full.
func (c *Comp) Insert(vAddr uint64, ppn uint64) bool {
	set := c.sets[c.cfg.TLBIndex(vAddr)]
	set.Insert(c.cfg.TLBTag(vAddr), ppn)

	return true
}

// Invalidate drops the cached frame of the page of the virtual address. It
// returns false if the page was not cached.
func (c *Comp) Invalidate(vAddr uint64) bool {
	set := c.sets[c.cfg.TLBIndex(vAddr)]
	return set.Invalidate(c.cfg.TLBTag(vAddr))
}

// Flush drops all the lines.
func (c *Comp) Flush() {
	for _, s := range c.sets {
		s.Flush()
	}
}

// NumValidLines returns the number of valid lines in the TLB.
func (c *Comp) NumValidLines() int {
	n := 0
	for _, s := range c.sets {
		for _, l := range s.Lines() {
			if l.Valid {
				n++
			}
		}
	}

	return n
}

// LineState is the exported view of one TLB line.
type LineState struct {
	Set   int    `json:"set"`
	Way   int    `json:"way"`
	Tag   uint64 `json:"tag"`
	PPN   uint64 `json:"ppn"`
	Valid bool   `json:"valid"`
}

// ValidLines lists the valid lines, set by set.
func (c *Comp) ValidLines() []LineState {
	var lines []LineState

	for setID, s := range c.sets {
		for way, l := range s.Lines() {
			if !l.Valid {
				continue
			}

			lines = append(lines, LineState{
				Set:   setID,
				Way:   way,
				Tag:   l.Tag,
				PPN:   l.PPN,
				Valid: true,
			})
		}
	}

	return lines
}
