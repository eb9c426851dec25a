// Package fsdir stores serialized documents as files in a directory, one
// file per document id (e.g. "intro.storygraph.yaml").
package fsdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pajamadot/storyforge/internal/cache"
)

// Store persists document text under a root directory. It implements
// cache.Storage.
type Store struct {
	root string
}

// New creates the root directory if needed and returns a store over it.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	return &Store{root: root}, nil
}

// FetchText reads the document file for id. Returns cache.ErrNotFound
// when no file exists.
func (s *Store) FetchText(ctx context.Context, id string) (string, error) {
	path, err := s.path(id)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", cache.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

// PersistText writes the document file for id atomically: the text lands
// in a temp file first and is renamed into place, so readers never see a
// half-written document.
func (s *Store) PersistText(ctx context.Context, id, text string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.root, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// List returns the document ids (file names) present in the store.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list document dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ids = append(ids, e.Name())
	}
	return ids, nil
}

// path rejects ids that would escape the root directory.
func (s *Store) path(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("invalid document id: %q", id)
	}
	return filepath.Join(s.root, id), nil
}
