// Package swap provides the backing stores that keep the images of pages
// evicted from physical memory.
package swap

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotNotFound is returned when loading a disk address that was never
	// stored.
	ErrSlotNotFound = errors.New("swap slot not found")

	// ErrPageSize is returned when a page image does not have the expected
	// number of words.
	ErrPageSize = errors.New("page image has wrong size")

	// ErrCorruptSlot is returned when a persisted slot cannot be decoded.
	ErrCorruptSlot = errors.New("swap slot is corrupted")
)

// A Page is the raw content of one page, as a fixed number of words.
type Page []uint64

// A Store is a durable map from logical disk addresses to page images.
type Store interface {
	// Store saves a page image, replacing what the slot held before.
	Store(dAddr uint64, page Page) error

	// Load returns the page image saved at the disk address. It returns an
	// error wrapping ErrSlotNotFound if nothing was stored there.
	Load(dAddr uint64) (Page, error)
}

func pageSizeMustMatch(page Page, wordsPerPage int) error {
	if len(page) != wordsPerPage {
		return fmt.Errorf("%w: got %d words, want %d",
			ErrPageSize, len(page), wordsPerPage)
	}

	return nil
}

func slotNotFound(dAddr uint64) error {
	return fmt.Errorf("%w: disk address %d", ErrSlotNotFound, dAddr)
}
