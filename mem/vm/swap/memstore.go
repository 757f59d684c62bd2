package swap

// MemStore keeps the swap slots in a map. The content does not survive the
// process.
type MemStore struct {
	wordsPerPage int
	slots        map[uint64]Page
}

// NewMemStore creates an empty MemStore for pages of the given size.
func NewMemStore(wordsPerPage int) *MemStore {
	return &MemStore{
		wordsPerPage: wordsPerPage,
		slots:        make(map[uint64]Page),
	}
}

// Store saves a copy of the page.
func (s *MemStore) Store(dAddr uint64, page Page) error {
	if err := pageSizeMustMatch(page, s.wordsPerPage); err != nil {
		return err
	}

	slot := make(Page, len(page))
	copy(slot, page)
	s.slots[dAddr] = slot

	return nil
}

// Load returns a copy of the stored page.
func (s *MemStore) Load(dAddr uint64) (Page, error) {
	slot, found := s.slots[dAddr]
	if !found {
		return nil, slotNotFound(dAddr)
	}

	page := make(Page, len(slot))
	copy(page, slot)

	return page, nil
}

// NumSlots returns the number of disk addresses that hold an image.
func (s *MemStore) NumSlots() int {
	return len(s.slots)
}
