package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSeenStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seen.json")

	store, err := NewFileSeenStore(path)
	if err != nil {
		t.Fatalf("NewFileSeenStore() error = %v", err)
	}

	ok, err := store.Contains(ctx, "abc123def45")
	if err != nil {
		t.Fatalf("Contains() error = %v", err)
	}
	if ok {
		t.Error("expected fresh store to not contain any ID")
	}

	if err := store.Add(ctx, "abc123def45"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := store.Add(ctx, "xyz987uvw65"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	ok, _ = store.Contains(ctx, "abc123def45")
	if !ok {
		t.Error("expected store to contain added ID")
	}

	// a second store over the same file sees the persisted IDs
	reopened, err := NewFileSeenStore(path)
	if err != nil {
		t.Fatalf("NewFileSeenStore() reopen error = %v", err)
	}
	for _, id := range []string{"abc123def45", "xyz987uvw65"} {
		ok, _ := reopened.Contains(ctx, id)
		if !ok {
			t.Errorf("reopened store missing %s", id)
		}
	}
	if got := reopened.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestFileSeenStoreDuplicateAdd(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seen.json")

	store, err := NewFileSeenStore(path)
	if err != nil {
		t.Fatalf("NewFileSeenStore() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := store.Add(ctx, "same-id-1234"); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	if got := store.Len(); got != 1 {
		t.Errorf("Len() = %d after duplicate adds, want 1", got)
	}
}

func TestFileSeenStoreMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "seen.json")

	store, err := NewFileSeenStore(path)
	if err != nil {
		t.Fatalf("NewFileSeenStore() error = %v", err)
	}
	if err := store.Add(context.Background(), "abc123def45"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected store file to exist: %v", err)
	}
}

func TestFileSeenStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileSeenStore(path); err == nil {
		t.Error("expected error for corrupt store file")
	}
}
