package swap

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the swap slots in a SQLite table. Each row holds one page
// as a little-endian blob.
type SQLiteStore struct {
	*sql.DB

	wordsPerPage int
}

// OpenSQLiteStore opens (or creates) a SQLite file as the swap store.
func OpenSQLiteStore(path string, wordsPerPage int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	s, err := NewSQLiteStore(db, wordsPerPage)
	if err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// NewSQLiteStore uses an existing database connection as the swap store.
func NewSQLiteStore(db *sql.DB, wordsPerPage int) (*SQLiteStore, error) {
	s := &SQLiteStore{
		DB:           db,
		wordsPerPage: wordsPerPage,
	}

	_, err := s.Exec(`CREATE TABLE IF NOT EXISTS swap_slots (
	disk_addr INTEGER PRIMARY KEY,
	data BLOB NOT NULL
);`)
	if err != nil {
		return nil, fmt.Errorf("creating swap table: %w", err)
	}

	return s, nil
}

// Store replaces the row of the disk address.
func (s *SQLiteStore) Store(dAddr uint64, page Page) error {
	if err := pageSizeMustMatch(page, s.wordsPerPage); err != nil {
		return err
	}

	data := make([]byte, len(page)*8)
	for i, word := range page {
		binary.LittleEndian.PutUint64(data[i*8:], word)
	}

	_, err := s.Exec(
		"INSERT OR REPLACE INTO swap_slots (disk_addr, data) VALUES (?, ?)",
		int64(dAddr), data)

	return err
}

// Load reads the row of the disk address.
func (s *SQLiteStore) Load(dAddr uint64) (Page, error) {
	var data []byte

	err := s.QueryRow(
		"SELECT data FROM swap_slots WHERE disk_addr = ?", int64(dAddr),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, slotNotFound(dAddr)
	}

	if err != nil {
		return nil, err
	}

	if len(data) != s.wordsPerPage*8 {
		return nil, fmt.Errorf("%w: disk address %d has %d bytes",
			ErrCorruptSlot, dAddr, len(data))
	}

	page := make(Page, s.wordsPerPage)
	for i := range page {
		page[i] = binary.LittleEndian.Uint64(data[i*8:])
	}

	return page, nil
}
