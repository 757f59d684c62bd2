// Package vm provides the models for address translations.
package vm

import (
	"fmt"
)

// NumLevels is the number of radix levels in a page table.
const NumLevels = 4

// WordSize is the number of bytes in a machine word. Page table entries and
// swap records are one word wide.
const WordSize = 8

// Config holds the constants that define the address layout. All of them are
// fixed when an MMU is built.
type Config struct {
	// Log2PageSize is the width of the page offset field.
	Log2PageSize uint64

	// LevelBits holds the index width of each level, from level 1 (most
	// significant) to level 4 (the leaf level).
	LevelBits [NumLevels]uint64

	// TLBIndexBits is the width of the TLB set index. The set index is taken
	// from the least significant bits of the virtual page number.
	TLBIndexBits uint64

	// TLBTagBits is the width of the TLB tag, taken from the virtual page
	// number bits above the set index.
	TLBTagBits uint64

	// TLBLinesPerSet is the associativity of the TLB.
	TLBLinesPerSet int

	// NumFrames is the number of physical frames.
	NumFrames int
}

// DefaultConfig returns a 48-bit virtual address layout with 4 KiB pages, a
// 16-set 8-way TLB, and 16 physical frames.
func DefaultConfig() Config {
	return Config{
		Log2PageSize:   12,
		LevelBits:      [NumLevels]uint64{9, 9, 9, 9},
		TLBIndexBits:   4,
		TLBTagBits:     32,
		TLBLinesPerSet: 8,
		NumFrames:      16,
	}
}

// Validate returns an error wrapping ErrInvalidConfig if the layout is not
// consistent.
func (c Config) Validate() error {
	if c.Log2PageSize < 3 || c.Log2PageSize >= 64 {
		return fmt.Errorf("%w: page offset width %d out of range",
			ErrInvalidConfig, c.Log2PageSize)
	}

	entryBits := c.Log2PageSize - 3
	for i, bits := range c.LevelBits {
		if bits != entryBits {
			return fmt.Errorf(
				"%w: level %d index width %d does not fill one page "+
					"of %d-byte entries (want %d)",
				ErrInvalidConfig, i+1, bits, WordSize, entryBits)
		}
	}

	if c.VirtualBits() > 64 {
		return fmt.Errorf("%w: virtual address width %d exceeds 64 bits",
			ErrInvalidConfig, c.VirtualBits())
	}

	if c.TLBIndexBits+c.TLBTagBits != c.pageNumberBits() {
		return fmt.Errorf(
			"%w: TLB index (%d) and tag (%d) widths must cover the %d-bit "+
				"virtual page number",
			ErrInvalidConfig, c.TLBIndexBits, c.TLBTagBits,
			c.pageNumberBits())
	}

	if c.TLBLinesPerSet <= 0 {
		return fmt.Errorf("%w: TLB must have at least one line per set",
			ErrInvalidConfig)
	}

	if c.NumFrames <= 0 {
		return fmt.Errorf("%w: frame capacity must be positive",
			ErrInvalidConfig)
	}

	return nil
}

// MustBeValid panics if the configuration is invalid.
func (c Config) MustBeValid() {
	if err := c.Validate(); err != nil {
		panic(err)
	}
}

// PageSize returns the number of bytes in a page.
func (c Config) PageSize() uint64 {
	return 1 << c.Log2PageSize
}

// WordsPerPage returns the number of words in a page.
func (c Config) WordsPerPage() int {
	return int(c.PageSize() / WordSize)
}

// EntriesPerTable returns the number of entries in a table of the given
// level. Levels are numbered from 1.
func (c Config) EntriesPerTable(level int) int {
	return 1 << c.LevelBits[level-1]
}

// NumSets returns the number of TLB sets.
func (c Config) NumSets() int {
	return 1 << c.TLBIndexBits
}

// VirtualBits returns the number of meaningful bits in a virtual address.
func (c Config) VirtualBits() uint64 {
	return c.Log2PageSize + c.pageNumberBits()
}

func (c Config) pageNumberBits() uint64 {
	var bits uint64
	for _, b := range c.LevelBits {
		bits += b
	}

	return bits
}
