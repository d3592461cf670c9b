package document

import (
	"testing"

	"github.com/scrutiny-lsp/scrutiny/protocol"
)

func TestStoreLifecycle(t *testing.T) {
	s := NewStore()

	doc := s.Open(&protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        "file:///a.txt",
			LanguageID: "plaintext",
			Version:    1,
			Text:       "content",
		},
	})
	if doc == nil {
		t.Fatal("Open returned nil")
	}
	if got := s.Get("file:///a.txt"); got != doc {
		t.Error("Get did not return the opened document")
	}

	changed, deltas := s.Change(&protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///a.txt"},
			Version:                2,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: "new content"}},
	})
	if changed != doc {
		t.Error("Change returned a different document")
	}
	if len(deltas) != 1 {
		t.Errorf("got %d deltas, want 1", len(deltas))
	}
	if doc.Text() != "new content" {
		t.Errorf("text = %q", doc.Text())
	}

	// Changing an unknown document is a no-op.
	unknown, _ := s.Change(&protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///nope.txt"},
		},
	})
	if unknown != nil {
		t.Error("Change of unknown URI should return nil")
	}

	s.Close(&protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///a.txt"},
	})
	if s.Get("file:///a.txt") != nil {
		t.Error("document still present after Close")
	}
}
