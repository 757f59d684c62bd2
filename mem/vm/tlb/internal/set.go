// Package internal provides the definition required for defining TLB.
package internal

import "math/rand"

// A Line caches the frame of one virtual page.
type Line struct {
	Valid bool
	Tag   uint64
	PPN   uint64
}

// A Set holds a fixed number of lines.
type Set interface {
	Lookup(tag uint64) (wayID int, ppn uint64, found bool)
	Insert(tag uint64, ppn uint64) (wayID int)
	Invalidate(tag uint64) bool
	Flush()
	Lines() []Line
}

// NewSet creates a new TLB set that replaces a random line when full.
func NewSet(numWays int, rng *rand.Rand) Set {
	return &setImpl{
		lines: make([]Line, numWays),
		rng:   rng,
	}
}

type setImpl struct {
	lines []Line
	rng   *rand.Rand
}

func (s *setImpl) Lookup(tag uint64) (wayID int, ppn uint64, found bool) {
	for i, l := range s.lines {
		if l.Valid && l.Tag == tag {
			return i, l.PPN, true
		}
	}

	return 0, 0, false
}

func (s *setImpl) Insert(tag uint64, ppn uint64) (wayID int) {
	wayID, _, found := s.Lookup(tag)
	if !found {
		wayID = s.findVictim()
	}

	s.lines[wayID] = Line{Valid: true, Tag: tag, PPN: ppn}

	return wayID
}

func (s *setImpl) findVictim() int {
	for i, l := range s.lines {
		if !l.Valid {
			return i
		}
	}

	return s.rng.Intn(len(s.lines))
}

func (s *setImpl) Invalidate(tag uint64) bool {
	wayID, _, found := s.Lookup(tag)
	if !found {
		return false
	}

	s.lines[wayID] = Line{}

	return true
}

func (s *setImpl) Flush() {
	clear(s.lines)
}

func (s *setImpl) Lines() []Line {
	lines := make([]Line, len(s.lines))
	copy(lines, s.lines)

	return lines
}
