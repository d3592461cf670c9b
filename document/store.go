// Package document provides a thread-safe document store, byte-span
// arithmetic, and position utilities for LSP text document management.
// Documents are tracked via didOpen/didChange/didClose notifications and
// support incremental text synchronization.
package document

import (
	"sync"

	"github.com/scrutiny-lsp/scrutiny/protocol"
)

// Store is a thread-safe store of open text documents.
type Store struct {
	mu   sync.RWMutex
	docs map[protocol.DocumentURI]*Document
}

// NewStore creates a new empty document store.
func NewStore() *Store {
	return &Store{docs: make(map[protocol.DocumentURI]*Document)}
}

// Get returns the document for the given URI, or nil if not found.
func (s *Store) Get(uri protocol.DocumentURI) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// URIs returns all open document URIs.
func (s *Store) URIs() []protocol.DocumentURI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := make([]protocol.DocumentURI, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	return uris
}

// Open adds a document to the store from a didOpen notification and returns it.
func (s *Store) Open(params *protocol.DidOpenTextDocumentParams) *Document {
	doc := New(params.TextDocument)
	s.mu.Lock()
	s.docs[params.TextDocument.URI] = doc
	s.mu.Unlock()
	return doc
}

// Change applies edits from a didChange notification and returns the affected
// document together with the edit deltas (nil document if unknown URI).
func (s *Store) Change(params *protocol.DidChangeTextDocumentParams) (*Document, []EditDelta) {
	s.mu.RLock()
	doc := s.docs[params.TextDocument.URI]
	s.mu.RUnlock()

	if doc == nil {
		return nil, nil
	}
	deltas := doc.ApplyChanges(params.TextDocument.Version, params.ContentChanges)
	return doc, deltas
}

// Close removes a document from the store.
func (s *Store) Close(params *protocol.DidCloseTextDocumentParams) {
	s.mu.Lock()
	delete(s.docs, params.TextDocument.URI)
	s.mu.Unlock()
}
