package scrutinytest_test

import (
	"testing"
	"time"

	"github.com/scrutiny-lsp/scrutiny"
	"github.com/scrutiny-lsp/scrutiny/analysis"
	"github.com/scrutiny-lsp/scrutiny/config"
	"github.com/scrutiny-lsp/scrutiny/protocol"
	"github.com/scrutiny-lsp/scrutiny/scrutinytest"
)

const typoSource = `package main

func main() {
	counter := 0
	counter++
	counter += 2
	println(countr)
}
`

const fixedSource = `package main

func main() {
	counter := 0
	counter++
	counter += 2
	println(counter)
}
`

func fastSettings() *config.Settings {
	st := config.DefaultSettings()
	st.DebounceMS = 20
	st.PasteThreshold = 80
	st.StatusTimeoutMS = 0
	return st
}

func newTestServer(t *testing.T) *scrutiny.Server {
	t.Helper()
	return scrutiny.NewServer("scrutiny-test", "0.0.0",
		analysis.NewLocal(analysis.DefaultRegistry()),
		scrutiny.WithSettings(fastSettings()),
	)
}

func TestBackgroundScanOnOpen(t *testing.T) {
	client := scrutinytest.NewClient(t, newTestServer(t))

	uri := scrutinytest.FileURI("main.go")
	client.OpenWithLanguage(uri, "go", typoSource)

	diags := client.WaitForDiagnostics(uri, 3*time.Second, func(d []protocol.Diagnostic) bool {
		return len(d) > 0
	})
	scrutinytest.AssertDiagnosticCode(t, diags, "countr")

	scrutinytest.AssertStatusSeen(t, client.Statuses(), "checking…")
}

func TestEditInvalidatesAndRescans(t *testing.T) {
	client := scrutinytest.NewClient(t, newTestServer(t))

	uri := scrutinytest.FileURI("main.go")
	client.OpenWithLanguage(uri, "go", typoSource)
	client.WaitForDiagnostics(uri, 3*time.Second, func(d []protocol.Diagnostic) bool {
		return len(d) > 0
	})

	// Fixing the typo must eventually converge on an empty diagnostic set.
	client.Change(uri, 2, fixedSource)
	client.WaitForDiagnostics(uri, 3*time.Second, func(d []protocol.Diagnostic) bool {
		return len(d) == 0
	})
}

func TestPasteModeScanOnPaste(t *testing.T) {
	client := scrutinytest.NewClient(t, newTestServer(t))

	uri := scrutinytest.FileURI("main.go")
	client.OpenWithLanguage(uri, "go", typoSource)
	client.WaitForDiagnostics(uri, 3*time.Second, func(d []protocol.Diagnostic) bool {
		return len(d) > 0
	})

	// Switching to paste mode clears findings and goes quiet.
	client.SetMode(protocol.ModePaste)
	client.WaitForDiagnostics(uri, 3*time.Second, func(d []protocol.Diagnostic) bool {
		return len(d) == 0
	})

	// An explicit paste over the document triggers a strict-threshold scan.
	client.Paste(uri, scrutinytest.Rng(0, 0, 8, 0))
	diags := client.WaitForDiagnostics(uri, 3*time.Second, func(d []protocol.Diagnostic) bool {
		return len(d) > 0
	})
	scrutinytest.AssertDiagnosticCode(t, diags, "countr")
}

func TestCloseClearsDiagnostics(t *testing.T) {
	client := scrutinytest.NewClient(t, newTestServer(t))

	uri := scrutinytest.FileURI("main.go")
	client.OpenWithLanguage(uri, "go", typoSource)
	client.WaitForDiagnostics(uri, 3*time.Second, func(d []protocol.Diagnostic) bool {
		return len(d) > 0
	})

	client.Close(uri)
	client.WaitForDiagnostics(uri, 3*time.Second, func(d []protocol.Diagnostic) bool {
		return len(d) == 0
	})
}

func TestVisibleRangesDriveBackgroundScan(t *testing.T) {
	client := scrutinytest.NewClient(t, newTestServer(t))

	uri := scrutinytest.FileURI("main.go")
	client.OpenWithLanguage(uri, "go", typoSource)
	client.WaitForDiagnostics(uri, 3*time.Second, func(d []protocol.Diagnostic) bool {
		return len(d) > 0
	})

	// Narrowing the visible window to the clean top of the file drops the
	// finding on the next scan.
	client.VisibleRanges(uri, scrutinytest.Rng(0, 0, 1, 0))
	client.WaitForDiagnostics(uri, 3*time.Second, func(d []protocol.Diagnostic) bool {
		return len(d) == 0
	})
}

func TestUnsupportedDocumentIsIgnored(t *testing.T) {
	client := scrutinytest.NewClient(t, newTestServer(t))

	uri := scrutinytest.FileURI("notes.xyz")
	client.OpenWithLanguage(uri, "xyz", "whatever content")
	client.Change(uri, 2, "changed content")

	time.Sleep(200 * time.Millisecond)
	if diags := client.LatestDiagnostics(uri); len(diags) != 0 {
		t.Errorf("got %d diagnostics for unsupported document", len(diags))
	}
}
