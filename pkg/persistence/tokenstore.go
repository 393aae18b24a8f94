package persistence

import (
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/relaygw/relay/pkg/tokenpool"
)

var tokenMagic = [4]byte{'G', 'T', 'K', '1'}

// tokenSnapshot is the JSON body wrapped by the magic+version header.
type tokenSnapshot struct {
	Records  []tokenpool.TokenRecord `json:"records"`
	Numerics []string                `json:"numerics"`
}

const tokenStoreDriver = "sqlite3"

// TokenStore persists tokenpool snapshots to a SQLite database file using
// the cgo mattn/go-sqlite3 driver, satisfying tokenpool.Store.
type TokenStore struct {
	path string
}

// NewTokenStore opens (creating if absent) the token store at path.
func NewTokenStore(path string) (*TokenStore, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createEmptyDB(tokenStoreDriver, path); err != nil {
			return nil, fmt.Errorf("persistence: init token store: %w", err)
		}
	}
	return &TokenStore{path: path}, nil
}

// Save writes records as a new snapshot, replacing any prior one.
func (s *TokenStore) Save(records []tokenpool.TokenRecord) error {
	return s.SaveWithNumerics(records, nil)
}

// SaveWithNumerics writes records plus the bound numeric-token index.
func (s *TokenStore) SaveWithNumerics(records []tokenpool.TokenRecord, numerics []string) error {
	blob, err := encodeSnapshot(tokenMagic, tokenSnapshot{Records: records, Numerics: numerics})
	if err != nil {
		return fmt.Errorf("persistence: encode token snapshot: %w", err)
	}
	return atomicWriteSnapshotDB(tokenStoreDriver, s.path, blob)
}

// Load reads the most recently saved snapshot, if any. A missing file or
// an empty store is not an error: it returns a zero-value, empty snapshot.
func (s *TokenStore) Load() ([]tokenpool.TokenRecord, []string, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, nil, nil
	}
	blob, err := readSnapshotDB(tokenStoreDriver, s.path)
	if err != nil {
		return nil, nil, err
	}
	if blob == nil {
		return nil, nil, nil
	}
	var snap tokenSnapshot
	if err := decodeSnapshot(tokenMagic, blob, &snap); err != nil {
		return nil, nil, err
	}
	return snap.Records, snap.Numerics, nil
}
