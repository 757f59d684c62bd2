package swap

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileStore keeps one text file per slot in a directory. Slot files are named
// page-<disk address>.txt and hold one hexadecimal word per line.
type FileStore struct {
	dir          string
	wordsPerPage int
}

// NewFileStore creates a FileStore rooted at dir, creating the directory if
// needed.
func NewFileStore(dir string, wordsPerPage int) (*FileStore, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("creating swap directory: %w", err)
	}

	return &FileStore{
		dir:          dir,
		wordsPerPage: wordsPerPage,
	}, nil
}

// SlotPath returns the file that backs a disk address.
func (s *FileStore) SlotPath(dAddr uint64) string {
	return filepath.Join(s.dir, fmt.Sprintf("page-%d.txt", dAddr))
}

// Store writes the page into its slot file, truncating the old content.
func (s *FileStore) Store(dAddr uint64, page Page) error {
	if err := pageSizeMustMatch(page, s.wordsPerPage); err != nil {
		return err
	}

	f, err := os.Create(s.SlotPath(dAddr))
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	for _, word := range page {
		fmt.Fprintf(w, "0x%016x\n", word)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// Load reads a slot file back into a page.
func (s *FileStore) Load(dAddr uint64) (Page, error) {
	f, err := os.Open(s.SlotPath(dAddr))
	if errors.Is(err, os.ErrNotExist) {
		return nil, slotNotFound(dAddr)
	}

	if err != nil {
		return nil, err
	}
	defer f.Close()

	page := make(Page, 0, s.wordsPerPage)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word, err := parseWord(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("%w: disk address %d line %d: %v",
				ErrCorruptSlot, dAddr, len(page)+1, err)
		}

		page = append(page, word)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(page) != s.wordsPerPage {
		return nil, fmt.Errorf("%w: disk address %d has %d words",
			ErrCorruptSlot, dAddr, len(page))
	}

	return page, nil
}

// parseWord accepts both zero-padded and space-padded hexadecimal records.
func parseWord(line string) (uint64, error) {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "0x")
	line = strings.TrimSpace(line)

	return strconv.ParseUint(line, 16, 64)
}
