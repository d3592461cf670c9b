package diag

import (
	"github.com/scrutiny-lsp/scrutiny/document"
	"github.com/scrutiny-lsp/scrutiny/protocol"
)

// Region is the tracked span of the most recent paste action. Length is
// cached redundantly for fast delta arithmetic.
type Region struct {
	Span   document.Span
	Length int
}

// RegionOutcome reports how a batch of edit deltas affected the tracked region.
type RegionOutcome int

const (
	// RegionNone means tracking was abandoned (or never active): at least one
	// edit fell outside the tracked span, so the region is contaminated.
	RegionNone RegionOutcome = iota
	// RegionUnchanged means all edits fell inside the span and cancelled out.
	RegionUnchanged
	// RegionResized means all edits fell inside the span and its length shifted.
	RegionResized
)

// RegionTracker is the paste-mode state machine: *none* or *tracking(span,
// length)*. It is not safe for concurrent use; the owning Engine serializes
// access.
type RegionTracker struct {
	uri    protocol.DocumentURI
	region *Region
}

// Track (re-)enters tracking with a freshly pasted span, overwriting any
// prior state.
func (t *RegionTracker) Track(uri protocol.DocumentURI, span document.Span) {
	t.uri = uri
	t.region = &Region{Span: span, Length: span.Len()}
}

// Clear transitions to the *none* state.
func (t *RegionTracker) Clear() {
	t.uri = ""
	t.region = nil
}

// Active reports whether a region is currently tracked.
func (t *RegionTracker) Active() bool { return t.region != nil }

// URI returns the document the tracked region belongs to.
func (t *RegionTracker) URI() protocol.DocumentURI { return t.uri }

// Region returns the tracked region, if any.
func (t *RegionTracker) Region() (Region, bool) {
	if t.region == nil {
		return Region{}, false
	}
	return *t.region, true
}

// Apply processes a batch of edit deltas against the tracked region. An edit
// falling partially or fully outside the span abandons tracking; edits fully
// inside shift the cached length by the accumulated delta while the start
// offset stays put.
func (t *RegionTracker) Apply(deltas []document.EditDelta) RegionOutcome {
	if t.region == nil {
		return RegionNone
	}

	for _, d := range deltas {
		if !t.region.Span.Contains(d.Span) {
			t.Clear()
			return RegionNone
		}
	}

	shift := 0
	for _, d := range deltas {
		shift += d.Shift()
	}
	if shift == 0 {
		return RegionUnchanged
	}

	newLen := t.region.Length + shift
	t.region = &Region{
		Span:   document.Span{Start: t.region.Span.Start, End: t.region.Span.Start + newLen},
		Length: newLen,
	}
	return RegionResized
}
