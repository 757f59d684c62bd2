package vm

import "errors"

var (
	// ErrInvalidConfig reports an inconsistent address layout or a zero
	// frame capacity.
	ErrInvalidConfig = errors.New("invalid vm configuration")

	// ErrBackingStore reports that the swap store could not serve a page.
	// It means the disk address bookkeeping is corrupted.
	ErrBackingStore = errors.New("backing store failure")

	// ErrTableExhausted reports that no more page tables can be allocated.
	ErrTableExhausted = errors.New("page table space exhausted")

	// ErrNoAddressSpace reports a translation without an installed root
	// table.
	ErrNoAddressSpace = errors.New("no address space installed")

	// ErrCrossPage reports an access that spans two pages.
	ErrCrossPage = errors.New("access crosses a page boundary")
)
