package document

import "github.com/scrutiny-lsp/scrutiny/protocol"

// EditDelta describes one applied content change in terms of the snapshot it
// was applied to: the replaced byte span and the byte length of the
// replacement text.
type EditDelta struct {
	Span      Span
	NewLength int
}

// Shift returns the signed length change this delta caused.
func (d EditDelta) Shift() int { return d.NewLength - d.Span.Len() }

// EarliestStart returns the smallest start offset across a delta batch, or 0
// for an empty batch.
func EarliestStart(deltas []EditDelta) int {
	earliest := 0
	for i, d := range deltas {
		if i == 0 || d.Span.Start < earliest {
			earliest = d.Span.Start
		}
	}
	return earliest
}

// ApplyChanges applies a set of LSP content change events to document text
// and returns the resulting text plus one EditDelta per change. Supports both
// full and incremental sync; each delta is expressed against the text the
// change was applied to.
func ApplyChanges(text string, changes []protocol.TextDocumentContentChangeEvent) (string, []EditDelta) {
	deltas := make([]EditDelta, 0, len(changes))
	for _, change := range changes {
		if change.Range == nil {
			deltas = append(deltas, EditDelta{
				Span:      Span{Start: 0, End: len(text)},
				NewLength: len(change.Text),
			})
			text = change.Text
			continue
		}

		start := OffsetAt(text, change.Range.Start)
		end := OffsetAt(text, change.Range.End)
		if start < 0 {
			start = 0
		}
		if end > len(text) {
			end = len(text)
		}
		if start > end {
			start = end
		}

		deltas = append(deltas, EditDelta{
			Span:      Span{Start: start, End: end},
			NewLength: len(change.Text),
		})
		text = text[:start] + change.Text + text[end:]
	}
	return text, deltas
}
