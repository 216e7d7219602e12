package cache

import (
	"testing"
	"time"
)

func TestTableKey_StableAndOpaque(t *testing.T) {
	a := TableKey("appXYZ", "Leaderboard")
	b := TableKey("appXYZ", "Leaderboard")
	if a != b {
		t.Error("key not deterministic")
	}
	if a == TableKey("appOTHER", "Leaderboard") {
		t.Error("different bases must not collide")
	}
	for i := 0; i < len(a); i++ {
		if a[i] == '/' {
			t.Error("key must be filesystem-safe")
		}
	}
}

func TestMemory_RoundTrip(t *testing.T) {
	m := NewMemory(time.Minute, time.Minute)

	if _, ok := m.Get("missing"); ok {
		t.Error("unexpected hit")
	}
	if err := m.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	v, ok := m.Get("k")
	if !ok || string(v) != "v" {
		t.Errorf("got %q, %v", v, ok)
	}
	_ = m.Delete("k")
	if _, ok := m.Get("k"); ok {
		t.Error("delete did not remove key")
	}
}

func TestDisk_RoundTripAndExpiry(t *testing.T) {
	d := NewDisk(t.TempDir(), time.Minute)

	if err := d.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	v, ok := d.Get("k")
	if !ok || string(v) != "v" {
		t.Errorf("got %q, %v", v, ok)
	}

	// Entries written already expired are never served.
	if err := d.Set("old", []byte("v"), -time.Second); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.Get("old"); ok {
		t.Error("expired entry served")
	}
}

func TestLayered_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	l := NewLayered(time.Minute, dir, time.Minute)

	// Seed only the disk level.
	if err := NewDisk(dir, time.Minute).Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}

	v, ok := l.Get("k")
	if !ok || string(v) != "v" {
		t.Fatalf("layered miss: %q, %v", v, ok)
	}
	if _, ok := l.memory.Get("k"); !ok {
		t.Error("disk hit not promoted to memory")
	}
}
