package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/relaygw/relay/pkg/proxyregistry"
	"github.com/relaygw/relay/pkg/tokenpool"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.db")
	store, err := NewTokenStore(path)
	if err != nil {
		t.Fatalf("NewTokenStore: %v", err)
	}

	records := []tokenpool.TokenRecord{
		{Alias: "a1", PrimaryToken: "tok-1", Status: tokenpool.Status{Enabled: true}},
		{Alias: "a2", PrimaryToken: "tok-2", Status: tokenpool.Status{Enabled: false}},
	}
	if err := store.SaveWithNumerics(records, []string{"123", "456"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := NewTokenStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, numerics, err := reopened.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[0].Alias != "a1" || got[1].PrimaryToken != "tok-2" {
		t.Fatalf("unexpected records: %+v", got)
	}
	if len(numerics) != 2 || numerics[0] != "123" {
		t.Fatalf("unexpected numerics: %+v", numerics)
	}
}

func TestTokenStoreLoadOnFreshStoreIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.db")
	store, err := NewTokenStore(path)
	if err != nil {
		t.Fatalf("NewTokenStore: %v", err)
	}
	records, numerics, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if records != nil || numerics != nil {
		t.Fatalf("expected empty snapshot, got %+v / %+v", records, numerics)
	}
}

func TestTokenStoreLoadMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.db")
	s, err := NewTokenStore(path)
	if err != nil {
		t.Fatalf("NewTokenStore: %v", err)
	}
	// NewTokenStore creates the file; remove it so Load sees a missing file.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	records, numerics, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if records != nil || numerics != nil {
		t.Fatalf("expected empty snapshot, got %+v / %+v", records, numerics)
	}
}

func TestProxyStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxies.db")
	store, err := NewProxyStore(path)
	if err != nil {
		t.Fatalf("NewProxyStore: %v", err)
	}

	entries := []proxyregistry.Entry{
		{Name: "p1", Kind: proxyregistry.KindHTTPURL, URL: "http://proxy.example:8080"},
		{Name: "p2", Kind: proxyregistry.KindSystem},
	}
	if err := store.Save(entries, "p1"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := NewProxyStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, general, err := reopened.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if general != "p1" {
		t.Fatalf("general = %q", general)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected entries: %+v", got)
	}
}

func TestDecodeSnapshotRejectsBadMagic(t *testing.T) {
	var out tokenSnapshot
	err := decodeSnapshot(tokenMagic, []byte("not-a-snapshot-at-all"), &out)
	if err == nil {
		t.Fatal("expected BadMagicError")
	}
	if _, ok := err.(*BadMagicError); !ok {
		t.Fatalf("expected *BadMagicError, got %T", err)
	}
}

func TestDecodeSnapshotRejectsUnknownVersion(t *testing.T) {
	blob, err := encodeSnapshot(tokenMagic, tokenSnapshot{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	blob[4] = 0xFF
	blob[5] = 0xFF
	var out tokenSnapshot
	err = decodeSnapshot(tokenMagic, blob, &out)
	if _, ok := err.(*UnknownVersionError); !ok {
		t.Fatalf("expected *UnknownVersionError, got %T (%v)", err, err)
	}
}
