// Package cache holds parsed story documents keyed by their storage id,
// with dirty tracking and asynchronous persistence through an injected
// storage collaborator.
package cache

import (
	"context"
	"errors"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/pajamadot/storyforge/internal/codec"
	"github.com/pajamadot/storyforge/internal/story"
)

// ErrNotFound is returned by Storage implementations when no document
// exists for an id. The store treats it as "no data available", not as a
// failure.
var ErrNotFound = errors.New("document not found")

// Storage is the raw-text collaborator the store fetches from and
// persists to. The store never touches storage except through this pair.
type Storage interface {
	FetchText(ctx context.Context, id string) (string, error)
	PersistText(ctx context.Context, id, text string) error
}

// Store caches parsed documents per id. It is safe for concurrent use,
// but multi-step edits against one id must still be serialized by the
// caller; the store gives no cross-call transaction.
type Store struct {
	storage Storage

	mu    sync.RWMutex
	docs  map[string]*story.Document
	dirty map[string]bool
	// gen counts edits per id; Save clears the dirty flag only when no
	// edit landed while it was persisting.
	gen map[string]uint64

	group singleflight.Group
}

// NewStore creates a store backed by the given storage collaborator.
func NewStore(storage Storage) *Store {
	return &Store{
		storage: storage,
		docs:    make(map[string]*story.Document),
		dirty:   make(map[string]bool),
		gen:     make(map[string]uint64),
	}
}

// Load returns the cached document for id, fetching and parsing it on a
// miss. Concurrent loads for one id share a single fetch. Returns nil
// when the id does not exist or its text is unreadable; both are logged,
// neither is an error the caller must handle.
func (s *Store) Load(ctx context.Context, id string) *story.Document {
	s.mu.RLock()
	doc := s.docs[id]
	s.mu.RUnlock()
	if doc != nil {
		return doc
	}

	v, err, _ := s.group.Do(id, func() (any, error) {
		text, err := s.storage.FetchText(ctx, id)
		if err != nil {
			return nil, err
		}
		return codec.Deserialize(text)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Printf("cache: load %s: not found", id)
		} else {
			log.Printf("cache: load %s: %v", id, err)
		}
		return nil
	}
	loaded := v.(*story.Document)

	s.mu.Lock()
	defer s.mu.Unlock()
	// A document already in cache may carry newer edits than the one this
	// flight parsed; never clobber it.
	if existing := s.docs[id]; existing != nil {
		return existing
	}
	s.docs[id] = loaded
	s.dirty[id] = false
	return loaded
}

// GetCached returns the cached document for id without any I/O, or nil.
func (s *Store) GetCached(id string) *story.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[id]
}

// Put inserts a document into the cache for id and marks it dirty.
func (s *Store) Put(id string, doc *story.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = doc
	s.dirty[id] = true
	s.gen[id]++
}

// GetPath reads a dotted path into the cached document. The second
// return is false for an uncached id or any unset path segment.
func (s *Store) GetPath(id, path string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := s.docs[id]
	if doc == nil {
		return nil, false
	}
	return doc.PathValue(path)
}

// SetPath writes a dotted path into the cached document and marks it
// dirty. Returns false, without loading, when no document is cached for
// id or the path refuses the write.
func (s *Store) SetPath(id, path string, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.docs[id]
	if doc == nil {
		return false
	}
	if !doc.SetPathValue(path, v) {
		return false
	}
	s.dirty[id] = true
	s.gen[id]++
	return true
}

// Apply runs a mutation against the cached document for id. The document
// is marked dirty, and its updatedAt stamped, iff fn reports success.
// Returns false when no document is cached.
func (s *Store) Apply(id string, fn func(*story.Document) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.docs[id]
	if doc == nil {
		return false
	}
	if !fn(doc) {
		return false
	}
	doc.Touch()
	s.dirty[id] = true
	s.gen[id]++
	return true
}

// IsDirty reports whether id has unsaved in-memory changes.
func (s *Store) IsDirty(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty[id]
}

// MarkDirty flags id as having unsaved changes. No-op for uncached ids.
func (s *Store) MarkDirty(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; ok {
		s.dirty[id] = true
		s.gen[id]++
	}
}

// ClearCache evicts the document for id, discarding any unsaved changes.
func (s *Store) ClearCache(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	delete(s.dirty, id)
	delete(s.gen, id)
}

// ClearAll evicts every cached document.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]*story.Document)
	s.dirty = make(map[string]bool)
	s.gen = make(map[string]uint64)
}

// Export serializes the cached document for id. The encoding runs under
// the read lock so an in-flight mutation cannot tear it. Returns
// ErrNotFound for an uncached id.
func (s *Store) Export(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := s.docs[id]
	if doc == nil {
		return "", ErrNotFound
	}
	return codec.Serialize(doc)
}

// View runs fn with the cached document for id under the read lock. fn
// must not mutate the document. Returns false when nothing is cached.
func (s *Store) View(id string, fn func(*story.Document)) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := s.docs[id]
	if doc == nil {
		return false
	}
	fn(doc)
	return true
}

// Save serializes the cached document for id and persists it. The
// encoding runs under the read lock; only the persist I/O happens
// outside it. On success the dirty flag is cleared, unless an edit
// landed while persisting, in which case the document stays dirty so the
// newer state reaches a later save. On failure the in-memory edits and
// the dirty flag are both retained so a retry does not lose work; there
// is no automatic retry.
func (s *Store) Save(ctx context.Context, id string) bool {
	s.mu.RLock()
	doc := s.docs[id]
	if doc == nil {
		s.mu.RUnlock()
		return false
	}
	genAtSerialize := s.gen[id]
	text, err := codec.Serialize(doc)
	s.mu.RUnlock()

	if err != nil {
		log.Printf("cache: save %s: %v", id, err)
		return false
	}
	if err := s.storage.PersistText(ctx, id, text); err != nil {
		log.Printf("cache: save %s: persist failed: %v", id, err)
		return false
	}

	s.mu.Lock()
	if s.gen[id] == genAtSerialize {
		s.dirty[id] = false
	}
	s.mu.Unlock()
	return true
}
