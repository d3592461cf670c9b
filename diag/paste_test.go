package diag

import (
	"testing"

	"github.com/scrutiny-lsp/scrutiny/document"
)

func TestRegionTrackerResize(t *testing.T) {
	var tr RegionTracker
	tr.Track("file:///a.txt", document.Span{Start: 10, End: 30})

	// Replace 5 bytes inside the region with 8 bytes: +3.
	outcome := tr.Apply([]document.EditDelta{
		{Span: document.Span{Start: 12, End: 17}, NewLength: 8},
	})
	if outcome != RegionResized {
		t.Fatalf("outcome = %v, want RegionResized", outcome)
	}

	region, ok := tr.Region()
	if !ok {
		t.Fatal("tracker should still be active")
	}
	if region.Span != (document.Span{Start: 10, End: 33}) {
		t.Errorf("region span = %+v, want {10 33}", region.Span)
	}
	if region.Length != 23 {
		t.Errorf("region length = %d, want 23", region.Length)
	}
}

func TestRegionTrackerBalancedEdits(t *testing.T) {
	var tr RegionTracker
	tr.Track("file:///a.txt", document.Span{Start: 0, End: 20})

	// A deletion and an insertion of equal size cancel out.
	outcome := tr.Apply([]document.EditDelta{
		{Span: document.Span{Start: 2, End: 5}, NewLength: 0},
		{Span: document.Span{Start: 8, End: 8}, NewLength: 3},
	})
	if outcome != RegionUnchanged {
		t.Fatalf("outcome = %v, want RegionUnchanged", outcome)
	}

	region, _ := tr.Region()
	if region.Span != (document.Span{Start: 0, End: 20}) {
		t.Errorf("region span = %+v, want {0 20}", region.Span)
	}
}

func TestRegionTrackerContamination(t *testing.T) {
	var tr RegionTracker
	tr.Track("file:///a.txt", document.Span{Start: 10, End: 30})

	// One edit inside, one outside: the whole batch abandons tracking.
	outcome := tr.Apply([]document.EditDelta{
		{Span: document.Span{Start: 12, End: 14}, NewLength: 2},
		{Span: document.Span{Start: 40, End: 41}, NewLength: 0},
	})
	if outcome != RegionNone {
		t.Fatalf("outcome = %v, want RegionNone", outcome)
	}
	if tr.Active() {
		t.Error("tracker should be inactive after contamination")
	}
}

func TestRegionTrackerStraddlingEdit(t *testing.T) {
	var tr RegionTracker
	tr.Track("file:///a.txt", document.Span{Start: 10, End: 30})

	// An edit straddling the region boundary is an outside edit.
	outcome := tr.Apply([]document.EditDelta{
		{Span: document.Span{Start: 25, End: 35}, NewLength: 1},
	})
	if outcome != RegionNone {
		t.Fatalf("outcome = %v, want RegionNone", outcome)
	}
	if tr.Active() {
		t.Error("tracker should be inactive")
	}
}

func TestRegionTrackerInactive(t *testing.T) {
	var tr RegionTracker

	outcome := tr.Apply([]document.EditDelta{
		{Span: document.Span{Start: 0, End: 1}, NewLength: 0},
	})
	if outcome != RegionNone {
		t.Errorf("outcome = %v, want RegionNone", outcome)
	}

	tr.Track("file:///a.txt", document.Span{Start: 0, End: 5})
	tr.Clear()
	if tr.Active() || tr.URI() != "" {
		t.Error("Clear should drop all state")
	}
}

func TestRegionTrackerRetrack(t *testing.T) {
	var tr RegionTracker
	tr.Track("file:///a.txt", document.Span{Start: 0, End: 5})
	tr.Track("file:///b.txt", document.Span{Start: 7, End: 9})

	if tr.URI() != "file:///b.txt" {
		t.Errorf("URI = %q, want file:///b.txt", tr.URI())
	}
	region, _ := tr.Region()
	if region.Span != (document.Span{Start: 7, End: 9}) || region.Length != 2 {
		t.Errorf("region = %+v", region)
	}
}
