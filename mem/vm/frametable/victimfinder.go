package frametable

// A Filter selects the frames that a VictimFinder may pick.
type Filter func(f *Frame) bool

// Clean accepts allocated frames that do not need a writeback.
func Clean(f *Frame) bool {
	return f.Allocated && !f.Dirty
}

// Any accepts all allocated frames.
func Any(f *Frame) bool {
	return f.Allocated
}

// A VictimFinder decides which frame should be evicted.
type VictimFinder interface {
	FindVictim(t *FrameTable, filter Filter) (ppn uint64, ok bool)
}

// LRUVictimFinder evicts the least recently used frame. Ties go to the lowest
// frame number.
type LRUVictimFinder struct{}

// NewLRUVictimFinder returns a newly constructed LRU victim finder.
func NewLRUVictimFinder() *LRUVictimFinder {
	return &LRUVictimFinder{}
}

// FindVictim returns the accepted frame with the smallest recency stamp.
func (e *LRUVictimFinder) FindVictim(
	t *FrameTable,
	filter Filter,
) (ppn uint64, ok bool) {
	for i := range t.frames {
		f := &t.frames[i]
		if !filter(f) {
			continue
		}

		if !ok || f.Time < t.frames[ppn].Time {
			ppn, ok = uint64(i), true
		}
	}

	return ppn, ok
}

// MaxTimeVictimFinder evicts the frame with the largest recency stamp, that is
// the most recently used one. Ties go to the lowest frame number. It exists to
// reproduce traces of the reference simulator, which orders victims this way.
type MaxTimeVictimFinder struct{}

// NewMaxTimeVictimFinder returns a newly constructed MaxTimeVictimFinder.
func NewMaxTimeVictimFinder() *MaxTimeVictimFinder {
	return &MaxTimeVictimFinder{}
}

// FindVictim returns the accepted frame with the largest recency stamp.
func (e *MaxTimeVictimFinder) FindVictim(
	t *FrameTable,
	filter Filter,
) (ppn uint64, ok bool) {
	for i := range t.frames {
		f := &t.frames[i]
		if !filter(f) {
			continue
		}

		if !ok || f.Time > t.frames[ppn].Time {
			ppn, ok = uint64(i), true
		}
	}

	return ppn, ok
}
