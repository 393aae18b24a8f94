package config

import "testing"

func TestTextBlobGetSetRoundTrip(t *testing.T) {
	b := NewTextBlob("hello")
	text, hash := b.Get()
	if text != "hello" {
		t.Errorf("Get text = %q, want hello", text)
	}
	if hash == "" {
		t.Fatal("expected non-empty initial hash")
	}

	newHash, err := b.Set("world", hash)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if newHash == hash {
		t.Error("hash should change after Set")
	}

	gotText, gotHash := b.Get()
	if gotText != "world" || gotHash != newHash {
		t.Errorf("Get after Set = (%q, %q), want (world, %q)", gotText, gotHash, newHash)
	}
}

func TestTextBlobSetRejectsStaleHash(t *testing.T) {
	b := NewTextBlob("initial")

	if _, err := b.Set("changed", "not-the-real-hash"); err == nil {
		t.Fatal("expected error for mismatched hash")
	} else if _, ok := err.(*HashMismatchError); !ok {
		t.Errorf("got %T, want *HashMismatchError", err)
	}

	text, _ := b.Get()
	if text != "initial" {
		t.Error("blob text should be unchanged after a rejected Set")
	}
}

func TestTextBlobSetEmptyHashBypassesCheck(t *testing.T) {
	b := NewTextBlob("initial")
	if _, err := b.Set("forced", ""); err != nil {
		t.Fatalf("Set with empty ifMatchHash: %v", err)
	}
	text, _ := b.Get()
	if text != "forced" {
		t.Errorf("text = %q, want forced", text)
	}
}

func TestTextBlobWatchFiresOnSuccessfulSet(t *testing.T) {
	b := NewTextBlob("start")
	var gotText, gotHash string
	calls := 0
	b.Watch(func(text, hash string) {
		calls++
		gotText, gotHash = text, hash
	})

	_, hash := b.Get()
	newHash, err := b.Set("updated", hash)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if calls != 1 {
		t.Fatalf("watcher called %d times, want 1", calls)
	}
	if gotText != "updated" || gotHash != newHash {
		t.Errorf("watcher saw (%q, %q), want (updated, %q)", gotText, gotHash, newHash)
	}

	if _, err := b.Set("again", "stale"); err == nil {
		t.Fatal("expected rejected Set")
	}
	if calls != 1 {
		t.Error("watcher should not fire on a rejected Set")
	}
}
