package persistence

import (
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/relaygw/relay/pkg/proxyregistry"
)

var proxyMagic = [4]byte{'G', 'P', 'X', '1'}

const proxyStoreDriver = "sqlite"

// proxySnapshot is the JSON body wrapped by the magic+version header.
type proxySnapshot struct {
	Entries []proxyregistry.Entry `json:"entries"`
	General string                `json:"general"`
}

// ProxyStore persists proxy-registry snapshots to a SQLite database file
// using the pure-Go modernc.org/sqlite driver.
type ProxyStore struct {
	path string
}

// NewProxyStore opens (creating if absent) the proxy store at path.
func NewProxyStore(path string) (*ProxyStore, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createEmptyDB(proxyStoreDriver, path); err != nil {
			return nil, fmt.Errorf("persistence: init proxy store: %w", err)
		}
	}
	return &ProxyStore{path: path}, nil
}

// Save writes entries and the general default as a new snapshot.
func (s *ProxyStore) Save(entries []proxyregistry.Entry, general string) error {
	blob, err := encodeSnapshot(proxyMagic, proxySnapshot{Entries: entries, General: general})
	if err != nil {
		return fmt.Errorf("persistence: encode proxy snapshot: %w", err)
	}
	return atomicWriteSnapshotDB(proxyStoreDriver, s.path, blob)
}

// Load reads the most recently saved snapshot, if any.
func (s *ProxyStore) Load() ([]proxyregistry.Entry, string, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, "", nil
	}
	blob, err := readSnapshotDB(proxyStoreDriver, s.path)
	if err != nil {
		return nil, "", err
	}
	if blob == nil {
		return nil, "", nil
	}
	var snap proxySnapshot
	if err := decodeSnapshot(proxyMagic, blob, &snap); err != nil {
		return nil, "", err
	}
	return snap.Entries, snap.General, nil
}
