package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/agext/levenshtein"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/scrutiny-lsp/scrutiny/document"
)

// Local is a self-contained analyzer that flags likely identifier mistakes.
// It extracts identifier occurrences with tree-sitter and questions any
// occurrence whose name is rare in the document but sits within a small edit
// distance of a more established name (the classic one-off typo shape).
type Local struct {
	registry *Registry

	mu   sync.Mutex
	warm map[string]warmEntry // file -> extracted occurrences
}

type warmEntry struct {
	text string
	occs []occurrence
}

// occurrence is one identifier token in document order.
type occurrence struct {
	span document.Span
	name string
}

// NewLocal creates a local analyzer over the given language registry.
func NewLocal(registry *Registry) *Local {
	return &Local{
		registry: registry,
		warm:     make(map[string]warmEntry),
	}
}

// Languages returns the accepted LSP language identifiers.
func (l *Local) Languages() []string { return l.registry.LanguageIDs() }

// Extensions returns the accepted file extensions.
func (l *Local) Extensions() []string { return l.registry.Extensions() }

// Prefetch parses the document ahead of time so a later Analyze call can
// reuse the extracted occurrences. Errors are deliberately swallowed; this is
// a warmup hint, not an operation.
func (l *Local) Prefetch(text, file string) {
	occs, err := l.extract(text, file)
	if err != nil {
		return
	}
	l.mu.Lock()
	l.warm[file] = warmEntry{text: text, occs: occs}
	l.mu.Unlock()
}

// Analyze reports suspicious identifier occurrences inside the window.
func (l *Local) Analyze(ctx context.Context, req Request) ([]Report, error) {
	occs, err := l.occurrences(req.Text, req.File)
	if err != nil {
		return nil, err
	}

	// Group occurrence spans per name, in document order.
	spansByName := make(map[string][]document.Span)
	for _, occ := range occs {
		spansByName[occ.name] = append(spansByName[occ.name], occ.span)
	}

	var reports []Report
	for _, occ := range occs {
		if req.Flag != nil && req.Flag.Cancelled() {
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, nil
		}
		if occ.span.Start >= req.Window.End || occ.span.End <= req.Window.Start {
			continue
		}

		candidates := l.candidatesFor(occ.name, spansByName, req)
		if len(candidates) == 0 {
			continue
		}

		reports = append(reports, Report{
			Span:           occ.span,
			ReferenceValue: occ.name,
			ReferenceSpans: spansByName[occ.name],
			Candidates:     candidates,
		})
	}
	return reports, nil
}

// candidatesFor suggests replacements for name: more frequent identifiers
// within the edit-distance bound, scored by levenshtein similarity.
func (l *Local) candidatesFor(name string, spansByName map[string][]document.Span, req Request) []Candidate {
	own := len(spansByName[name])
	var out []Candidate
	for other, spans := range spansByName {
		if other == name || len(spans) <= own {
			continue
		}
		if levenshtein.Distance(name, other, nil) > req.MaxEditDistance {
			continue
		}
		score := levenshtein.Similarity(name, other, nil) * 100
		if score < req.Threshold {
			continue
		}
		out = append(out, Candidate{Value: other, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// occurrences returns the identifier occurrences for the document, reusing a
// prefetched extraction when the text still matches.
func (l *Local) occurrences(text, file string) ([]occurrence, error) {
	l.mu.Lock()
	entry, ok := l.warm[file]
	l.mu.Unlock()
	if ok && entry.text == text {
		return entry.occs, nil
	}
	return l.extract(text, file)
}

// extract parses the text and collects identifier tokens in document order.
func (l *Local) extract(text, file string) ([]occurrence, error) {
	lang, err := l.registry.LanguageFor(file)
	if err != nil {
		return nil, err
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("setting language for %s: %w", file, err)
	}

	src := []byte(text)
	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("parsing %s failed", file)
	}
	defer tree.Close()

	var occs []occurrence
	collectIdentifiers(tree.RootNode(), src, &occs)
	return occs, nil
}

func collectIdentifiers(node *tree_sitter.Node, src []byte, occs *[]occurrence) {
	if node == nil {
		return
	}
	if node.ChildCount() == 0 && strings.Contains(node.Kind(), "identifier") {
		start, end := int(node.StartByte()), int(node.EndByte())
		if start < end && end <= len(src) {
			*occs = append(*occs, occurrence{
				span: document.Span{Start: start, End: end},
				name: string(src[start:end]),
			})
		}
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		collectIdentifiers(node.Child(i), src, occs)
	}
}
