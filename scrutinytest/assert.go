package scrutinytest

import (
	"testing"

	"github.com/scrutiny-lsp/scrutiny/protocol"
)

// AssertDiagnosticCount asserts the number of diagnostics in a set.
func AssertDiagnosticCount(t testing.TB, diags []protocol.Diagnostic, count int) {
	t.Helper()
	if len(diags) != count {
		t.Errorf("expected %d diagnostics, got %d: %+v", count, len(diags), diags)
	}
}

// AssertDiagnosticCode asserts that some diagnostic carries the given code
// (the questioned reference value).
func AssertDiagnosticCode(t testing.TB, diags []protocol.Diagnostic, code string) {
	t.Helper()
	for _, d := range diags {
		if d.Code == code {
			return
		}
	}
	codes := make([]string, len(diags))
	for i, d := range diags {
		codes[i] = d.Code
	}
	t.Errorf("no diagnostic with code %q, got: %v", code, codes)
}

// AssertStatusSeen asserts that the given status message was received at
// some point.
func AssertStatusSeen(t testing.TB, statuses []string, want string) {
	t.Helper()
	for _, s := range statuses {
		if s == want {
			return
		}
	}
	t.Errorf("status %q never seen, got: %v", want, statuses)
}
