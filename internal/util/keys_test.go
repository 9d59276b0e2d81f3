package util

import "testing"

func TestStorageKey(t *testing.T) {
	if got := StorageKey("orders", "42"); got != "amp:orders:42" {
		t.Fatalf("StorageKey = %q", got)
	}
	if got := StorageKey("a:b", ""); got != "amp:a:b:" {
		t.Fatalf("StorageKey = %q", got)
	}
}

func TestShortHash(t *testing.T) {
	h := ShortHash("amp:orders:42")
	if len(h) != 16 {
		t.Fatalf("len = %d, want 16", len(h))
	}
	if h != ShortHash("amp:orders:42") {
		t.Fatal("not deterministic")
	}
	if h == ShortHash("amp:orders:43") {
		t.Fatal("different keys hash the same")
	}
}
