package diag

import (
	"sync"

	"github.com/scrutiny-lsp/scrutiny/analysis"
	"github.com/scrutiny-lsp/scrutiny/document"
	"github.com/scrutiny-lsp/scrutiny/protocol"
)

// Finding is one persisted validation diagnostic. A Finding is only retained
// if Candidates is non-empty after self-reference exclusion.
type Finding struct {
	// PrimarySpan is the byte span of the suspicious occurrence.
	PrimarySpan document.Span
	// ReferenceSpans are all occurrences of the same reference in the
	// document, ordered by start offset.
	ReferenceSpans []document.Span
	// Candidates are the suggested replacements, excluding the reference
	// value itself.
	Candidates []analysis.Candidate
	// ReferenceValue is the original text being questioned.
	ReferenceValue string
	// Severity is informational.
	Severity protocol.DiagnosticSeverity
}

// PublishFunc mirrors a store mutation to the visual layer. The server
// provides the concrete implementation backed by the client connection.
type PublishFunc func(uri protocol.DocumentURI, findings []Finding)

// Store holds the currently published findings per document identity. Every
// mutation is mirrored to the publish function in the same logical step, so
// store and decoration layer never drift for longer than one handler call.
type Store struct {
	mu       sync.Mutex
	findings map[protocol.DocumentURI][]Finding
	publish  PublishFunc
}

// NewStore creates an empty store mirroring mutations through publish.
func NewStore(publish PublishFunc) *Store {
	return &Store{
		findings: make(map[protocol.DocumentURI][]Finding),
		publish:  publish,
	}
}

// Get returns a copy of the current findings for the document.
func (s *Store) Get(uri protocol.DocumentURI) []Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Finding(nil), s.findings[uri]...)
}

// ReplaceAll publishes a new full finding set for the document.
func (s *Store) ReplaceAll(uri protocol.DocumentURI, findings []Finding) {
	s.mu.Lock()
	s.findings[uri] = findings
	current := append([]Finding(nil), findings...)
	s.mu.Unlock()

	s.publish(uri, current)
}

// Filter keeps only findings satisfying keep and republishes immediately.
func (s *Store) Filter(uri protocol.DocumentURI, keep func(Finding) bool) {
	s.mu.Lock()
	prev := s.findings[uri]
	kept := prev[:0:0]
	for _, f := range prev {
		if keep(f) {
			kept = append(kept, f)
		}
	}
	s.findings[uri] = kept
	current := append([]Finding(nil), kept...)
	s.mu.Unlock()

	s.publish(uri, current)
}

// Clear removes all findings for the document and publishes the empty set.
func (s *Store) Clear(uri protocol.DocumentURI) {
	s.mu.Lock()
	delete(s.findings, uri)
	s.mu.Unlock()

	s.publish(uri, nil)
}
