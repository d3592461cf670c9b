package analysis

import (
	"context"
	"testing"

	"github.com/scrutiny-lsp/scrutiny/document"
)

const goSource = `package main

func main() {
	counter := 0
	counter++
	counter += 2
	println(countr)
}
`

func wholeWindow(text string) document.Span {
	return document.Span{Start: 0, End: len(text)}
}

func TestLocalFlagsNearMissIdentifier(t *testing.T) {
	l := NewLocal(DefaultRegistry())

	reports, err := l.Analyze(context.Background(), Request{
		Text:            goSource,
		File:            "file:///main.go",
		Window:          wholeWindow(goSource),
		Threshold:       70,
		MaxEditDistance: 2,
	})
	if err != nil {
		t.Fatal(err)
	}

	var found *Report
	for i := range reports {
		if reports[i].ReferenceValue == "countr" {
			found = &reports[i]
		}
	}
	if found == nil {
		t.Fatalf("countr not reported; reports: %+v", reports)
	}
	if len(found.Candidates) == 0 || found.Candidates[0].Value != "counter" {
		t.Errorf("candidates = %+v, want counter first", found.Candidates)
	}
	if len(found.ReferenceSpans) != 1 {
		t.Errorf("reference spans = %+v", found.ReferenceSpans)
	}
}

func TestLocalDoesNotFlagEstablishedNames(t *testing.T) {
	l := NewLocal(DefaultRegistry())

	reports, err := l.Analyze(context.Background(), Request{
		Text:            goSource,
		File:            "file:///main.go",
		Window:          wholeWindow(goSource),
		Threshold:       70,
		MaxEditDistance: 2,
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, r := range reports {
		if r.ReferenceValue == "counter" {
			t.Error("the established name must not be questioned")
		}
	}
}

func TestLocalRespectsWindow(t *testing.T) {
	l := NewLocal(DefaultRegistry())

	// Window covering only the package clause: countr is outside.
	reports, err := l.Analyze(context.Background(), Request{
		Text:            goSource,
		File:            "file:///main.go",
		Window:          document.Span{Start: 0, End: 12},
		Threshold:       70,
		MaxEditDistance: 2,
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, r := range reports {
		if r.ReferenceValue == "countr" {
			t.Error("occurrence outside the window was reported")
		}
	}
}

func TestLocalThresholdFiltersWeakCandidates(t *testing.T) {
	l := NewLocal(DefaultRegistry())

	reports, err := l.Analyze(context.Background(), Request{
		Text:            goSource,
		File:            "file:///main.go",
		Window:          wholeWindow(goSource),
		Threshold:       99, // countr vs counter scores below this
		MaxEditDistance: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 0 {
		t.Errorf("got %d reports at threshold 99, want 0", len(reports))
	}
}

func TestLocalUnknownExtension(t *testing.T) {
	l := NewLocal(DefaultRegistry())

	_, err := l.Analyze(context.Background(), Request{
		Text:   "whatever",
		File:   "file:///file.xyz",
		Window: document.Span{Start: 0, End: 8},
	})
	if err == nil {
		t.Error("expected an error for an unregistered extension")
	}
}

type setFlag struct{}

func (setFlag) Cancelled() bool { return true }

func TestLocalCancelledRunReturnsNothing(t *testing.T) {
	l := NewLocal(DefaultRegistry())

	reports, err := l.Analyze(context.Background(), Request{
		Text:            goSource,
		File:            "file:///main.go",
		Window:          wholeWindow(goSource),
		Threshold:       70,
		MaxEditDistance: 2,
		Flag:            setFlag{},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 0 {
		t.Errorf("cancelled run returned %d reports", len(reports))
	}
}

func TestLocalPrefetchReusesExtraction(t *testing.T) {
	l := NewLocal(DefaultRegistry())
	l.Prefetch(goSource, "file:///main.go")

	l.mu.Lock()
	entry, ok := l.warm["file:///main.go"]
	l.mu.Unlock()
	if !ok || len(entry.occs) == 0 {
		t.Fatal("prefetch did not cache occurrences")
	}

	reports, err := l.Analyze(context.Background(), Request{
		Text:            goSource,
		File:            "file:///main.go",
		Window:          wholeWindow(goSource),
		Threshold:       70,
		MaxEditDistance: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) == 0 {
		t.Error("analysis over prefetched document found nothing")
	}
}

func TestRegistryLookup(t *testing.T) {
	r := DefaultRegistry()

	if _, err := r.LanguageFor("file:///x.go"); err != nil {
		t.Errorf("go lookup failed: %v", err)
	}
	if _, err := r.LanguageFor("file:///x.YAML"); err != nil {
		t.Errorf("case-insensitive lookup failed: %v", err)
	}
	if _, err := r.LanguageFor("file:///x.rs"); err == nil {
		t.Error("unregistered extension should fail")
	}

	exts := r.Extensions()
	if len(exts) != 5 {
		t.Errorf("got %d extensions, want 5: %v", len(exts), exts)
	}
}
