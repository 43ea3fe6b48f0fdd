// Package session tracks the open documents of one editor session.
package session

import (
	"sync"
	"sync/atomic"

	"ell/internal/lang"
	"ell/internal/text"
)

// Document pairs a buffer with the analysis compiled from it. Both halves
// always describe the same document version: updates swap the whole record,
// so a reader never sees a buffer from one edit and spans from another.
type Document struct {
	Buffer   *text.Buffer
	Analysis *lang.Analysis
}

// Store holds the session's open documents keyed by URI. Once Shutdown has
// run the store stays drained: further updates are dropped and lookups miss.
type Store struct {
	mu       sync.RWMutex
	docs     map[string]*Document
	shutdown atomic.Bool
}

// NewStore creates an initialized Store.
func NewStore() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// Put records the current document version for a URI. After shutdown it
// does nothing.
func (s *Store) Put(uri string, doc *Document) {
	if s.shutdown.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = doc
}

// Get returns the current document version for a URI.
func (s *Store) Get(uri string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	return doc, ok
}

// Delete forgets a URI.
func (s *Store) Delete(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// Len returns the number of open documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Each calls fn for every open document. It works on a snapshot of the
// table, so fn may call back into the store.
func (s *Store) Each(fn func(uri string, doc *Document)) {
	s.mu.RLock()
	uris := make([]string, 0, len(s.docs))
	docs := make([]*Document, 0, len(s.docs))
	for uri, doc := range s.docs {
		uris = append(uris, uri)
		docs = append(docs, doc)
	}
	s.mu.RUnlock()

	for i := range uris {
		fn(uris[i], docs[i])
	}
}

// Shutdown drains the store and marks the session as shutting down. The
// mark never clears.
func (s *Store) Shutdown() {
	s.shutdown.Store(true)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]*Document)
}

// ShuttingDown reports whether Shutdown has run.
func (s *Store) ShuttingDown() bool {
	return s.shutdown.Load()
}
