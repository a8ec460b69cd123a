package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "playpose.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return map[string]Backend{
		"sqlite": db,
		"memory": NewMemory(),
	}
}

func TestBackend_GetSet(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			kv := b.Namespace("player-1")

			if _, err := kv.Get(ctx, "playpose_v7"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			if err := kv.Set(ctx, "playpose_v7", []byte(`{"volume":"10"}`)); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := kv.Set(ctx, "playpose_v7", []byte(`{"volume":"20"}`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}

			got, err := kv.Get(ctx, "playpose_v7")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(got) != `{"volume":"20"}` {
				t.Errorf("expected last write to win, got %s", got)
			}
		})
	}
}

func TestBackend_NamespacesIsolated(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := b.Namespace("a").Set(ctx, "k", []byte("1")); err != nil {
				t.Fatalf("set: %v", err)
			}

			if _, err := b.Namespace("b").Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound in other namespace, got %v", err)
			}
		})
	}
}

func TestSQLite_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playpose.db")
	ctx := context.Background()

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Namespace("p").Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	got, err := db.Namespace("p").Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("expected v, got %q (%v)", got, err)
	}
}
