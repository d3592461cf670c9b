package document

import (
	"testing"

	"github.com/scrutiny-lsp/scrutiny/protocol"
)

func TestApplyChangesFull(t *testing.T) {
	text, deltas := ApplyChanges("old content", []protocol.TextDocumentContentChangeEvent{
		{Text: "new"},
	})

	if text != "new" {
		t.Errorf("text = %q, want %q", text, "new")
	}
	if len(deltas) != 1 {
		t.Fatalf("got %d deltas, want 1", len(deltas))
	}
	if deltas[0].Span != (Span{Start: 0, End: 11}) || deltas[0].NewLength != 3 {
		t.Errorf("delta = %+v", deltas[0])
	}
}

func TestApplyChangesIncremental(t *testing.T) {
	rng := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 6},
		End:   protocol.Position{Line: 0, Character: 11},
	}
	text, deltas := ApplyChanges("hello world", []protocol.TextDocumentContentChangeEvent{
		{Range: &rng, Text: "there!"},
	})

	if text != "hello there!" {
		t.Errorf("text = %q, want %q", text, "hello there!")
	}
	if len(deltas) != 1 {
		t.Fatalf("got %d deltas, want 1", len(deltas))
	}
	d := deltas[0]
	if d.Span != (Span{Start: 6, End: 11}) {
		t.Errorf("delta span = %+v", d.Span)
	}
	if d.Shift() != 1 {
		t.Errorf("delta shift = %d, want 1", d.Shift())
	}
}

func TestApplyChangesSequence(t *testing.T) {
	// Each change is expressed against the text produced by the previous one.
	r1 := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 1},
	}
	r2 := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 2},
		End:   protocol.Position{Line: 0, Character: 2},
	}
	text, deltas := ApplyChanges("abc", []protocol.TextDocumentContentChangeEvent{
		{Range: &r1, Text: "X"},  // Xbc
		{Range: &r2, Text: "YY"}, // XbYYc
	})

	if text != "XbYYc" {
		t.Errorf("text = %q, want %q", text, "XbYYc")
	}
	if len(deltas) != 2 {
		t.Fatalf("got %d deltas, want 2", len(deltas))
	}
	if deltas[1].Span != (Span{Start: 2, End: 2}) || deltas[1].NewLength != 2 {
		t.Errorf("second delta = %+v", deltas[1])
	}
}

func TestEarliestStart(t *testing.T) {
	deltas := []EditDelta{
		{Span: Span{Start: 30, End: 35}},
		{Span: Span{Start: 7, End: 9}},
		{Span: Span{Start: 18, End: 18}},
	}
	if got := EarliestStart(deltas); got != 7 {
		t.Errorf("EarliestStart = %d, want 7", got)
	}
	if got := EarliestStart(nil); got != 0 {
		t.Errorf("EarliestStart(nil) = %d, want 0", got)
	}
}

func TestDocumentApplyChanges(t *testing.T) {
	doc := New(protocol.TextDocumentItem{
		URI:        "file:///test.txt",
		LanguageID: "plaintext",
		Version:    1,
		Text:       "hello world",
	})

	rng := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 5},
	}
	deltas := doc.ApplyChanges(2, []protocol.TextDocumentContentChangeEvent{
		{Range: &rng, Text: "goodbye"},
	})

	if doc.Text() != "goodbye world" {
		t.Errorf("text = %q", doc.Text())
	}
	if doc.Version() != 2 {
		t.Errorf("version = %d, want 2", doc.Version())
	}
	if len(deltas) != 1 || deltas[0].Shift() != 2 {
		t.Errorf("deltas = %+v", deltas)
	}
}

func TestDocumentExtension(t *testing.T) {
	doc := New(protocol.TextDocumentItem{URI: "file:///dir/Config.YAML"})
	if got := doc.Extension(); got != ".yaml" {
		t.Errorf("Extension = %q, want %q", got, ".yaml")
	}
}
