package diag

import (
	"context"

	"github.com/scrutiny-lsp/scrutiny/document"
	"github.com/scrutiny-lsp/scrutiny/protocol"
)

// HandleChange reacts to a document-changed event. Both modes first
// invalidate synchronously: findings ending at or past the earliest edit are
// dropped and the trimmed set republished immediately, without waiting for a
// fresh analysis. What happens next depends on the operating mode.
func (e *Engine) HandleChange(doc *document.Document, deltas []document.EditDelta) {
	if doc == nil || len(deltas) == 0 || !e.Accepts(doc) {
		return
	}

	e.mu.Lock()
	mode := e.mode
	applying := e.applyingPaste
	e.mu.Unlock()

	if mode == protocol.ModePaste && applying {
		// The paste action's own edit application; the paste handler set up
		// the region already.
		return
	}

	earliest := document.EarliestStart(deltas)
	e.store.Filter(doc.URI(), func(f Finding) bool {
		return f.PrimarySpan.End < earliest
	})

	switch mode {
	case protocol.ModeBackground:
		e.scheduleRefresh(doc.URI(), e.visibleRangesFor(doc))

	case protocol.ModePaste:
		e.handlePasteModeChange(doc, deltas)
	}
}

// handlePasteModeChange updates the region tracker and decides whether a
// scoped refresh is warranted. Tracking abandoned means the user moved on:
// the store is fully cleared and nothing is re-requested.
func (e *Engine) handlePasteModeChange(doc *document.Document, deltas []document.EditDelta) {
	e.mu.Lock()
	if e.tracker.Active() && e.tracker.URI() != doc.URI() {
		// An edit in another document counts as an edit outside the region.
		e.tracker.Clear()
	}
	outcome := e.tracker.Apply(deltas)
	region, _ := e.tracker.Region()
	e.mu.Unlock()

	switch outcome {
	case RegionNone:
		e.store.Clear(doc.URI())

	case RegionResized:
		rng := document.RangeOf(doc.Text(), region.Span)
		e.scheduleRefresh(doc.URI(), []protocol.Range{rng})

	case RegionUnchanged:
		// Span intact; the synchronous filter above was enough.
	}
}

// HandleOpen reacts to a newly opened document. Background mode schedules an
// initial scan over the whole document; paste mode warms the analyzer cache.
func (e *Engine) HandleOpen(doc *document.Document) {
	if doc == nil || !e.Accepts(doc) {
		return
	}
	switch e.Mode() {
	case protocol.ModeBackground:
		e.scheduleRefresh(doc.URI(), e.visibleRangesFor(doc))
	case protocol.ModePaste:
		text, file := doc.Text(), string(doc.URI())
		go e.analyzer.Prefetch(text, file)
	}
}

// HandlePaste reacts to an explicit paste action: it (re-)enters tracking for
// the pasted span and refreshes it immediately. In background mode, or for a
// document outside the accepted extension set, tracking stays off.
func (e *Engine) HandlePaste(ctx context.Context, doc *document.Document, rng protocol.Range) {
	if doc == nil {
		return
	}

	e.mu.Lock()
	mode := e.mode
	e.mu.Unlock()

	if mode == protocol.ModeBackground || !e.extensions[doc.Extension()] {
		e.mu.Lock()
		e.tracker.Clear()
		e.mu.Unlock()
		return
	}

	span := document.SpanOf(doc.Text(), rng)

	e.mu.Lock()
	e.tracker.Track(doc.URI(), span)
	e.applyingPaste = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.applyingPaste = false
		e.mu.Unlock()
	}()

	e.Refresh(ctx, doc, []protocol.Range{rng})
}

// SetMode toggles the operating mode. Switching always cancels in-flight
// work and clears the current document's findings. Entering background mode
// immediately triggers a refresh; entering paste mode waits for an explicit
// paste action.
func (e *Engine) SetMode(ctx context.Context, mode protocol.Mode, doc *document.Document) {
	e.mu.Lock()
	if e.mode == mode {
		e.mu.Unlock()
		return
	}
	e.mode = mode
	e.tracker.Clear()
	e.mu.Unlock()

	e.token.Cancel()

	if doc == nil {
		return
	}
	e.store.Clear(doc.URI())

	if mode == protocol.ModeBackground && e.Accepts(doc) {
		e.Refresh(ctx, doc, e.visibleRangesFor(doc))
	}
}

// HandleVisibleRanges records the editor's visible ranges for the document
// and, in background mode, schedules a debounced refresh over them.
func (e *Engine) HandleVisibleRanges(doc *document.Document, ranges []protocol.Range) {
	if doc == nil || len(ranges) == 0 || !e.Accepts(doc) {
		return
	}

	e.mu.Lock()
	e.visible[doc.URI()] = ranges
	mode := e.mode
	e.mu.Unlock()

	if mode == protocol.ModeBackground {
		e.scheduleRefresh(doc.URI(), ranges)
	}
}

// HandleActiveEditor reacts to an editor focus change. In paste mode the
// analyzer gets a fire-and-forget warmup call for the newly focused document.
func (e *Engine) HandleActiveEditor(doc *document.Document) {
	if doc == nil || !e.Accepts(doc) {
		return
	}
	if e.Mode() != protocol.ModePaste {
		return
	}
	text, file := doc.Text(), string(doc.URI())
	go e.analyzer.Prefetch(text, file)
}

// HandleClose drops all per-document state when the editor closes a document.
func (e *Engine) HandleClose(uri protocol.DocumentURI) {
	e.mu.Lock()
	delete(e.visible, uri)
	if e.tracker.Active() && e.tracker.URI() == uri {
		e.tracker.Clear()
	}
	e.mu.Unlock()

	e.store.Clear(uri)
}

// scheduleRefresh hands parameters to the debounce scheduler using the
// currently configured delay.
func (e *Engine) scheduleRefresh(uri protocol.DocumentURI, ranges []protocol.Range) {
	e.mu.Lock()
	delay := e.opts.DebounceDelay
	e.mu.Unlock()
	e.sched.Schedule(uri, ranges, delay)
}

// visibleRangesFor returns the last known visible ranges for the document,
// falling back to one range covering the whole document.
func (e *Engine) visibleRangesFor(doc *document.Document) []protocol.Range {
	e.mu.Lock()
	ranges := e.visible[doc.URI()]
	e.mu.Unlock()
	if len(ranges) > 0 {
		return ranges
	}
	text := doc.Text()
	return []protocol.Range{document.RangeOf(text, document.Span{Start: 0, End: len(text)})}
}
