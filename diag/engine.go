// Package diag is the diagnostic refresh and invalidation engine: it decides
// when to (re)request validation, keeps at most one in-flight request
// authoritative via cancellation and mutual exclusion, debounces rapid edit
// bursts, invalidates stale findings incrementally as the document changes,
// and tracks the shifting paste region in paste mode.
package diag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/scrutiny-lsp/scrutiny/analysis"
	"github.com/scrutiny-lsp/scrutiny/document"
	"github.com/scrutiny-lsp/scrutiny/protocol"
)

// StatusFunc shows a transient status-line message. An empty string clears
// the status. The server provides the concrete implementation.
type StatusFunc func(message string)

// Options tune the refresh engine.
type Options struct {
	// Mode is the initial operating mode.
	Mode protocol.Mode
	// DebounceDelay is how long the scheduler waits for an edit burst to quiet.
	DebounceDelay time.Duration
	// BackgroundThreshold is the looser score threshold used for continuous
	// background scanning.
	BackgroundThreshold float64
	// PasteThreshold is the stricter score threshold used for explicit
	// paste-triggered scans.
	PasteThreshold float64
	// MaxEditDistance bounds candidate generation in the analyzer.
	MaxEditDistance int
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		Mode:                protocol.ModeBackground,
		DebounceDelay:       300 * time.Millisecond,
		BackgroundThreshold: 70,
		PasteThreshold:      85,
		MaxEditDistance:     2,
	}
}

// Engine is the refresh coordinator. It owns the cancellation token, the
// exclusivity gate, the debounce scheduler, the finding store, the paste
// region tracker, the operating mode, and the last known visible ranges.
// All shared mutable state funnels through its methods.
type Engine struct {
	docs     *document.Store
	analyzer analysis.Analyzer
	store    *Store
	status   StatusFunc
	logger   *slog.Logger

	token *Token
	gate  *Gate
	sched *Scheduler

	mu            sync.Mutex
	opts          Options
	mode          protocol.Mode
	tracker       RegionTracker
	visible       map[protocol.DocumentURI][]protocol.Range
	applyingPaste bool

	extensions map[string]bool
	languages  map[string]bool
}

// NewEngine creates a refresh engine over the given document store and
// analyzer. Findings are mirrored through publish; transient messages go
// through status.
func NewEngine(docs *document.Store, analyzer analysis.Analyzer, publish PublishFunc, status StatusFunc, logger *slog.Logger, opts Options) *Engine {
	if status == nil {
		status = func(string) {}
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		docs:       docs,
		analyzer:   analyzer,
		store:      NewStore(publish),
		status:     status,
		logger:     logger,
		token:      NewToken(),
		gate:       NewGate(),
		opts:       opts,
		mode:       opts.Mode,
		visible:    make(map[protocol.DocumentURI][]protocol.Range),
		extensions: make(map[string]bool),
		languages:  make(map[string]bool),
	}
	for _, ext := range analyzer.Extensions() {
		e.extensions[strings.ToLower(ext)] = true
	}
	for _, id := range analyzer.Languages() {
		e.languages[id] = true
	}
	e.sched = NewScheduler(e.runScheduled)
	return e
}

// Store exposes the finding store (read access for tests and the server).
func (e *Engine) Store() *Store { return e.store }

// Mode returns the current operating mode.
func (e *Engine) Mode() protocol.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// UpdateOptions swaps in new tuning values (hot config reload). The operating
// mode is not touched; use SetMode for that.
func (e *Engine) UpdateOptions(opts Options) {
	e.mu.Lock()
	defer e.mu.Unlock()
	mode := e.mode
	e.opts = opts
	e.mode = mode
}

// Accepts reports whether the engine touches this document at all, gated by
// the analyzer's accepted extensions and language identifiers.
func (e *Engine) Accepts(doc *document.Document) bool {
	if doc == nil {
		return false
	}
	return e.extensions[doc.Extension()] || e.languages[doc.LanguageID()]
}

// Refresh runs one full refresh cycle for the document over the given
// visible/relevant ranges. The range set must be non-empty. Any previous
// cycle is cancelled; the cycle then waits its turn on the gate, asks the
// analyzer about the union window, and on success replaces the document's
// findings. A cancelled or failed cycle leaves the store untouched.
func (e *Engine) Refresh(ctx context.Context, doc *document.Document, ranges []protocol.Range) {
	e.token.Cancel()
	release, err := e.gate.Acquire(ctx)
	if err != nil {
		return
	}
	defer release()
	e.token.Reset()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("refresh cycle panicked", "uri", doc.URI(), "panic", fmt.Sprint(r))
			e.status("")
		}
	}()

	text := doc.Text()
	window := document.UnionSpan(text, ranges)
	threshold, maxDist := e.thresholds()

	e.status("checking…")

	reports, err := e.analyzer.Analyze(ctx, analysis.Request{
		Text:            text,
		File:            string(doc.URI()),
		Window:          window,
		Threshold:       threshold,
		MaxEditDistance: maxDist,
		Flag:            e.token,
	})
	if e.token.Cancelled() {
		e.status("")
		return
	}
	if err != nil {
		e.logger.Warn("analysis failed", "uri", doc.URI(), "error", err)
		e.status("validation failed")
		return
	}

	findings := e.buildFindings(reports)
	if e.token.Cancelled() {
		e.status("")
		return
	}

	e.store.ReplaceAll(doc.URI(), findings)
	if len(findings) == 1 {
		e.status("1 suspicious span")
	} else {
		e.status(fmt.Sprintf("%d suspicious spans", len(findings)))
	}
}

// thresholds returns the score threshold for the current mode plus the edit
// distance bound. Background scanning runs looser than paste-triggered scans.
func (e *Engine) thresholds() (float64, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == protocol.ModeBackground {
		return e.opts.BackgroundThreshold, e.opts.MaxEditDistance
	}
	return e.opts.PasteThreshold, e.opts.MaxEditDistance
}

// buildFindings converts analyzer reports into retained findings, in
// collaborator order: self-referential candidates are excluded, findings left
// with zero candidates are dropped, and in paste mode re-flagging of a
// reference that already resolved clean at an earlier occurrence is
// suppressed. Background mode never suppresses this way.
func (e *Engine) buildFindings(reports []analysis.Report) []Finding {
	mode := e.Mode()

	var findings []Finding
	retained := make(map[string][]int) // reference value -> retained primary start offsets
	for _, rep := range reports {
		if e.token.Cancelled() {
			return nil
		}

		candidates := make([]analysis.Candidate, 0, len(rep.Candidates))
		for _, c := range rep.Candidates {
			if c.Value != rep.ReferenceValue {
				candidates = append(candidates, c)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		if mode == protocol.ModePaste && suppressReflag(rep, retained[rep.ReferenceValue]) {
			continue
		}

		retained[rep.ReferenceValue] = append(retained[rep.ReferenceValue], rep.Span.Start)
		findings = append(findings, Finding{
			PrimarySpan:    rep.Span,
			ReferenceSpans: rep.ReferenceSpans,
			Candidates:     candidates,
			ReferenceValue: rep.ReferenceValue,
			Severity:       protocol.SeverityInformation,
		})
	}
	return findings
}

// suppressReflag implements the paste-mode suppression rule: a diagnostic is
// suppressed when an earlier occurrence of the same reference exists and no
// earlier occurrence produced a retained diagnostic. Once a reference
// resolved clean earlier, later occurrences are not re-flagged.
func suppressReflag(rep analysis.Report, retainedStarts []int) bool {
	earlier := false
	for _, s := range rep.ReferenceSpans {
		if s.Start < rep.Span.Start {
			earlier = true
			break
		}
	}
	if !earlier {
		return false
	}
	for _, start := range retainedStarts {
		if start < rep.Span.Start {
			return false
		}
	}
	return true
}

// runScheduled is the scheduler's callback: it resolves the document and runs
// a refresh cycle with a background context.
func (e *Engine) runScheduled(uri protocol.DocumentURI, ranges []protocol.Range) {
	doc := e.docs.Get(uri)
	if doc == nil {
		return
	}
	e.Refresh(context.Background(), doc, ranges)
}
