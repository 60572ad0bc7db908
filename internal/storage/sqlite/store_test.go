package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"taskboard/internal/storage"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "board.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"a":2}` {
		t.Fatalf("Get = %s", got)
	}

	keys, err := s.Keys(ctx)
	if err != nil || len(keys) != 1 || keys[0] != "k" {
		t.Fatalf("Keys = %v, %v", keys, err)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestJSONHelpers(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	type doc struct {
		Name string `json:"name"`
	}
	var out doc
	found, err := storage.LoadJSON(ctx, s, storage.KeyProjects, &out)
	if err != nil || found {
		t.Fatalf("LoadJSON on empty = %v, %v", found, err)
	}
	if err := storage.SaveJSON(ctx, s, storage.KeyProjects, doc{Name: "board"}); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	found, err = storage.LoadJSON(ctx, s, storage.KeyProjects, &out)
	if err != nil || !found || out.Name != "board" {
		t.Fatalf("LoadJSON = %+v, %v, %v", out, found, err)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("", nil); err == nil {
		t.Fatalf("expected error")
	}
}
