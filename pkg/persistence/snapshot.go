package persistence

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
)

// snapshotVersion is the one version this build emits and understands.
const snapshotVersion uint16 = 1

// encodeSnapshot wraps the JSON-encoded body in the fixed magic+version
// header §6 requires.
func encodeSnapshot(magic [4]byte, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Write(magic[:])
	binary.Write(&buf, binary.BigEndian, snapshotVersion)
	buf.Write(payload)
	return buf.Bytes(), nil
}

// decodeSnapshot validates the magic/version header and unmarshals the
// remaining body into out.
func decodeSnapshot(magic [4]byte, data []byte, out any) error {
	if len(data) < 6 || !bytes.Equal(data[:4], magic[:]) {
		got := data
		if len(got) > 4 {
			got = got[:4]
		}
		return &BadMagicError{Got: got}
	}
	version := binary.BigEndian.Uint16(data[4:6])
	if version != snapshotVersion {
		return &UnknownVersionError{Version: version}
	}
	return json.Unmarshal(data[6:], out)
}

// atomicWriteFile writes data to path via a temp file in the same
// directory followed by a rename, guaranteeing readers never observe a
// partially written file (§6 "a temp-file-plus-rename pattern guarantees
// atomic replacement").
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// atomicWriteSnapshotDB writes blob as the single row of a fresh SQLite
// database built at a temp path, then renames that whole database file
// over path — the rename is what makes the swap atomic, not the SQLite
// transaction itself, since the reader below opens path directly.
func atomicWriteSnapshotDB(driverName, path string, blob []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*.db")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	os.Remove(tmpPath) // let sql.Open create it fresh

	db, err := sql.Open(driverName, tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshot (id INTEGER PRIMARY KEY CHECK (id = 0), blob BLOB NOT NULL)`); err != nil {
		db.Close()
		os.Remove(tmpPath)
		return err
	}
	if _, err := db.Exec(`INSERT INTO snapshot (id, blob) VALUES (0, ?) ON CONFLICT(id) DO UPDATE SET blob = excluded.blob`, blob); err != nil {
		db.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := db.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// createEmptyDB creates path as a fresh SQLite database containing the
// empty snapshot table, used the first time a store is opened.
func createEmptyDB(driverName, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS snapshot (id INTEGER PRIMARY KEY CHECK (id = 0), blob BLOB NOT NULL)`)
	return err
}

// readSnapshotDB returns the single stored blob, or nil if the table is
// empty.
func readSnapshotDB(driverName, path string) ([]byte, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	var blob []byte
	err = db.QueryRow(`SELECT blob FROM snapshot WHERE id = 0`).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}
