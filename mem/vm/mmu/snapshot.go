package mmu

import "github.com/sarchlab/vmsim/mem/vm/tlb"

// FrameState is the exported view of one frame.
type FrameState struct {
	PPN       uint64 `json:"ppn"`
	Allocated bool   `json:"allocated"`
	Dirty     bool   `json:"dirty"`
	Time      uint64 `json:"time"`
	VPN       uint64 `json:"vpn"`
	DiskAddr  uint64 `json:"disk_addr"`
}

// A Snapshot is a consistent copy of the state of an MMU.
type Snapshot struct {
	Name      string          `json:"name"`
	Tick      uint64          `json:"tick"`
	Stats     Stats           `json:"stats"`
	NumTables int             `json:"num_tables"`
	Frames    []FrameState    `json:"frames"`
	TLBLines  []tlb.LineState `json:"tlb_lines"`
}

// Snapshot copies the state of the MMU. It is safe to call while another
// goroutine translates.
func (c *Comp) Snapshot() Snapshot {
	c.lock.Lock()
	defer c.lock.Unlock()

	s := Snapshot{
		Name:  c.name,
		Tick:  c.tick,
		Stats: c.stats,
	}

	if c.space != nil {
		s.NumTables = c.space.NumTables()
	}

	for i, f := range c.frames.Snapshot() {
		state := FrameState{
			PPN:       uint64(i),
			Allocated: f.Allocated,
		}

		if f.Allocated {
			state.Dirty = f.Dirty
			state.Time = f.Time
			state.VPN = f.Owner.VPN
			state.DiskAddr = f.DiskAddr
		}

		s.Frames = append(s.Frames, state)
	}

	if c.tlb != nil {
		s.TLBLines = c.tlb.ValidLines()
	}

	return s
}
