package testsupport

import (
	"context"
	"testing"

	"reckon/internal/archive"
	"reckon/internal/config"
)

// MustOpenStore opens an archive.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *archive.Store {
	t.Helper()

	store, err := archive.Open(cfg)
	if err != nil {
		t.Fatalf("archive.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustInsert persists a record for tests using the provided store.
func MustInsert(t testing.TB, store *archive.Store, record *archive.Record) *archive.Record {
	t.Helper()

	inserted, err := store.Insert(context.Background(), record)
	if err != nil {
		t.Fatalf("store.Insert: %v", err)
	}
	return inserted
}
