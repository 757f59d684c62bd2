// Package memory models the physical memory of the guest system.
package memory

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when an access goes beyond the storage capacity.
var ErrOutOfRange = errors.New(
	"accessing physical address beyond the storage capacity")

// A Storage keeps the data of the guest physical memory.
//
// The storage is managed in frames. For the frames that are not touched by
// Read and Write, no memory is allocated, and they read as zeros.
type Storage struct {
	frameSize uint64
	numFrames uint64
	data      map[uint64][]byte
}

// NewStorage creates a storage of numFrames frames of frameSize bytes each.
func NewStorage(frameSize uint64, numFrames int) *Storage {
	if frameSize == 0 || frameSize%8 != 0 {
		panic("frame size must be a positive multiple of 8")
	}

	return &Storage{
		frameSize: frameSize,
		numFrames: uint64(numFrames),
		data:      make(map[uint64][]byte),
	}
}

// Capacity returns the number of bytes the storage can hold.
func (s *Storage) Capacity() uint64 {
	return s.frameSize * s.numFrames
}

// FrameSize returns the number of bytes in a frame.
func (s *Storage) FrameSize() uint64 {
	return s.frameSize
}

func (s *Storage) mustBeInRange(address, length uint64) error {
	if address+length > s.Capacity() || address+length < address {
		return fmt.Errorf("%w: 0x%x+%d", ErrOutOfRange, address, length)
	}

	return nil
}

func (s *Storage) frame(ppn uint64) []byte {
	unit, ok := s.data[ppn]
	if !ok {
		unit = make([]byte, s.frameSize)
		s.data[ppn] = unit
	}

	return unit
}

// Read returns length bytes starting at the physical address.
func (s *Storage) Read(address uint64, length uint64) ([]byte, error) {
	if err := s.mustBeInRange(address, length); err != nil {
		return nil, err
	}

	res := make([]byte, length)
	done := uint64(0)
	for done < length {
		curr := address + done
		ppn, inFrame := curr/s.frameSize, curr%s.frameSize
		n := min(length-done, s.frameSize-inFrame)

		if unit, ok := s.data[ppn]; ok {
			copy(res[done:done+n], unit[inFrame:inFrame+n])
		}

		done += n
	}

	return res, nil
}

// Write stores data starting at the physical address.
func (s *Storage) Write(address uint64, data []byte) error {
	length := uint64(len(data))
	if err := s.mustBeInRange(address, length); err != nil {
		return err
	}

	done := uint64(0)
	for done < length {
		curr := address + done
		ppn, inFrame := curr/s.frameSize, curr%s.frameSize
		n := min(length-done, s.frameSize-inFrame)

		copy(s.frame(ppn)[inFrame:inFrame+n], data[done:done+n])

		done += n
	}

	return nil
}

// ReadFrame returns the content of a frame as little-endian words.
func (s *Storage) ReadFrame(ppn uint64) ([]uint64, error) {
	if ppn >= s.numFrames {
		return nil, fmt.Errorf("%w: frame %d", ErrOutOfRange, ppn)
	}

	words := make([]uint64, s.frameSize/8)

	unit, ok := s.data[ppn]
	if !ok {
		return words, nil
	}

	for i := range words {
		words[i] = binary.LittleEndian.Uint64(unit[i*8:])
	}

	return words, nil
}

// WriteFrame replaces the content of a frame with little-endian words.
func (s *Storage) WriteFrame(ppn uint64, words []uint64) error {
	if ppn >= s.numFrames {
		return fmt.Errorf("%w: frame %d", ErrOutOfRange, ppn)
	}

	if uint64(len(words))*8 != s.frameSize {
		return fmt.Errorf("frame image has %d words, want %d",
			len(words), s.frameSize/8)
	}

	unit := s.frame(ppn)
	for i, w := range words {
		binary.LittleEndian.PutUint64(unit[i*8:], w)
	}

	return nil
}

// ZeroFrame clears a frame.
func (s *Storage) ZeroFrame(ppn uint64) error {
	if ppn >= s.numFrames {
		return fmt.Errorf("%w: frame %d", ErrOutOfRange, ppn)
	}

	delete(s.data, ppn)

	return nil
}
