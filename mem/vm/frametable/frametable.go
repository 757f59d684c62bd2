// Package frametable keeps the reverse map from physical frames to the page
// table entries that own them.
package frametable

import (
	"fmt"

	"github.com/sarchlab/vmsim/mem/vm/pagetable"
)

// An Owner names the leaf entry bound to a frame.
type Owner struct {
	Space *pagetable.PageTable
	Leaf  pagetable.LeafRef

	// VPN is the virtual page number mapped by the leaf entry.
	VPN uint64
}

// A Frame describes one physical frame.
type Frame struct {
	Allocated bool
	Dirty     bool

	// Time is the recency stamp of the frame. Binding a frame resets it to the
	// current tick and every access moves it forward.
	Time uint64

	Owner    Owner
	DiskAddr uint64
}

// A FrameTable describes every physical frame. It is sized once.
type FrameTable struct {
	frames       []Frame
	numAllocated int
}

// New creates a frame table with all frames free.
func New(numFrames int) *FrameTable {
	if numFrames <= 0 {
		panic("frame table must have at least one frame")
	}

	return &FrameTable{
		frames: make([]Frame, numFrames),
	}
}

// NumFrames returns the capacity of the frame table.
func (t *FrameTable) NumFrames() int {
	return len(t.frames)
}

// NumAllocated returns the number of frames that are bound to a page.
func (t *FrameTable) NumAllocated() int {
	return t.numAllocated
}

// Frame returns the entry of a frame.
func (t *FrameTable) Frame(ppn uint64) *Frame {
	if ppn >= uint64(len(t.frames)) {
		panic(fmt.Sprintf("frame %d does not exist", ppn))
	}

	return &t.frames[ppn]
}

// FindFree returns the lowest numbered free frame.
func (t *FrameTable) FindFree() (ppn uint64, ok bool) {
	if t.numAllocated == len(t.frames) {
		return 0, false
	}

	for i := range t.frames {
		if !t.frames[i].Allocated {
			return uint64(i), true
		}
	}

	panic("allocated frame count is out of sync")
}

// Bind marks a frame allocated and owned, clean, and stamped with now.
func (t *FrameTable) Bind(ppn uint64, owner Owner, dAddr uint64, now uint64) {
	f := t.Frame(ppn)
	if !f.Allocated {
		t.numAllocated++
	}

	*f = Frame{
		Allocated: true,
		Time:      now,
		Owner:     owner,
		DiskAddr:  dAddr,
	}
}

// Release marks a frame free and forgets its owner.
func (t *FrameTable) Release(ppn uint64) {
	f := t.Frame(ppn)
	if f.Allocated {
		t.numAllocated--
	}

	*f = Frame{}
}

// Touch records an access to the frame.
func (t *FrameTable) Touch(ppn uint64, now uint64) {
	t.Frame(ppn).Time = now
}

// MarkDirty records that the frame content differs from its swap image.
func (t *FrameTable) MarkDirty(ppn uint64) {
	t.Frame(ppn).Dirty = true
}

// Snapshot returns a copy of all the frame entries.
func (t *FrameTable) Snapshot() []Frame {
	frames := make([]Frame, len(t.frames))
	copy(frames, t.frames)

	return frames
}
