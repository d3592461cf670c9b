// Package analysis defines the contract between the diagnostic refresh
// engine and the validation backend that computes suspicious spans, plus a
// built-in tree-sitter backed analyzer usable without any external service.
package analysis

import (
	"context"

	"github.com/scrutiny-lsp/scrutiny/document"
)

// Candidate is one suggested replacement with a confidence score. Scores are
// not normalized and may collide.
type Candidate struct {
	Value string  `json:"value"`
	Score float64 `json:"score"`
}

// Report is one suspicious occurrence returned by an analyzer. Candidates may
// still contain the reference value itself; the engine filters those out.
type Report struct {
	// Span is the byte span of the suspicious occurrence.
	Span document.Span
	// ReferenceValue is the original text being questioned.
	ReferenceValue string
	// ReferenceSpans are all occurrences of the same reference in the
	// document, ordered by start offset.
	ReferenceSpans []document.Span
	// Candidates are the suggested replacements.
	Candidates []Candidate
}

// CancelFlag is the engine's cancellation token as seen by analyzers. It is
// polled at safe points; a set flag means results will be discarded, so the
// analyzer may return early with whatever it has (or nothing).
type CancelFlag interface {
	Cancelled() bool
}

// Request carries everything an analyzer needs for one run.
type Request struct {
	// Text is the full document text.
	Text string
	// File is the document identity (URI or path), used for language selection.
	File string
	// Window restricts reporting to occurrences intersecting this byte span.
	Window document.Span
	// Threshold is the minimum candidate score to report.
	Threshold float64
	// MaxEditDistance bounds how different a candidate may be from the
	// reference value.
	MaxEditDistance int
	// Flag is the cooperative cancellation token for this run.
	Flag CancelFlag
}

// Analyzer computes suspicious spans with suggested corrections. A non-nil
// error is a hard failure, distinct from an empty result ("no findings").
// Analyze may be slow; it must either return eventually or poll req.Flag.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) ([]Report, error)

	// Languages returns the accepted LSP language identifiers.
	Languages() []string

	// Extensions returns the accepted file extensions (with leading dot).
	Extensions() []string

	// Prefetch is a fire-and-forget warmup hint for a newly focused document.
	Prefetch(text, file string)
}
