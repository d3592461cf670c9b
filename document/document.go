package document

import (
	"path"
	"strings"
	"sync"

	"github.com/scrutiny-lsp/scrutiny/protocol"
)

// Document represents a single managed text document.
type Document struct {
	mu         sync.RWMutex
	uri        protocol.DocumentURI
	languageID string
	version    int32
	text       string
}

// New creates a new Document from an LSP TextDocumentItem.
func New(item protocol.TextDocumentItem) *Document {
	return &Document{
		uri:        item.URI,
		languageID: item.LanguageID,
		version:    item.Version,
		text:       item.Text,
	}
}

// URI returns the document's URI.
func (d *Document) URI() protocol.DocumentURI {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.uri
}

// LanguageID returns the LSP language identifier (e.g., "go", "python").
func (d *Document) LanguageID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.languageID
}

// Extension returns the lowercased file extension of the document's URI,
// including the leading dot ("" if the URI has none).
func (d *Document) Extension() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return strings.ToLower(path.Ext(string(d.uri)))
}

// Version returns the document's current version number.
func (d *Document) Version() int32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Text returns the full text content of the document.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// OffsetAt converts an LSP position to a byte offset in the document text.
func (d *Document) OffsetAt(pos protocol.Position) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return OffsetAt(d.text, pos)
}

// PositionAt converts a byte offset to an LSP position.
func (d *Document) PositionAt(offset int) protocol.Position {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return PositionAt(d.text, offset)
}

// ApplyChanges applies incremental edits, updates the version, and returns
// the edit deltas in snapshot order.
func (d *Document) ApplyChanges(version int32, changes []protocol.TextDocumentContentChangeEvent) []EditDelta {
	d.mu.Lock()
	defer d.mu.Unlock()
	newText, deltas := ApplyChanges(d.text, changes)
	d.text = newText
	d.version = version
	return deltas
}
