package fsdir

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pajamadot/storyforge/internal/cache"
)

func TestFetchPersistRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	if _, err := store.FetchText(ctx, "intro.storygraph.yaml"); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	const text = "version: 1\nnodes: {}\nedges: {}\n"
	if err := store.PersistText(ctx, "intro.storygraph.yaml", text); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	got, err := store.FetchText(ctx, "intro.storygraph.yaml")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got != text {
		t.Errorf("round trip mismatch: %q", got)
	}
}

func TestPersistLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.PersistText(ctx, "a.storygraph.yaml", "version: 1\n"); err != nil {
			t.Fatalf("persist failed: %v", err)
		}
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only the document file, got %v", names)
	}
}

func TestList(t *testing.T) {
	store, _ := New(t.TempDir())
	ctx := context.Background()
	_ = store.PersistText(ctx, "a.storygraph.yaml", "x")
	_ = store.PersistText(ctx, "b.character.yaml", "y")

	ids, err := store.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 ids, got %v", ids)
	}
}

func TestInvalidIDsRejected(t *testing.T) {
	store, _ := New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "../escape.yaml", "nested/doc.yaml", ".hidden"} {
		if err := store.PersistText(ctx, id, "x"); err == nil {
			t.Errorf("persist accepted invalid id %q", id)
		}
		if _, err := store.FetchText(ctx, id); err == nil || errors.Is(err, cache.ErrNotFound) {
			t.Errorf("fetch accepted invalid id %q", id)
		}
	}
}

func TestNewCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "docs", "nested")
	if _, err := New(root); err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("root not created: %v", err)
	}
}
