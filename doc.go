// Package scrutiny implements an LSP server that validates textual
// references in open documents: it flags spans whose text looks like a
// near-miss of another known value and suggests corrections.
//
// The server runs in one of two modes. Background mode continuously rescans
// the visible portion of the active document with a loose threshold, debounced
// behind edit bursts. Paste mode scans only on explicit paste actions with a
// stricter threshold and tracks the pasted region across subsequent edits.
//
// A minimal server:
//
//	analyzer := analysis.NewLocal(analysis.DefaultRegistry())
//	srv := scrutiny.NewServer("scrutiny", "0.1.0", analyzer)
//	if err := scrutiny.Serve(srv, scrutiny.FromArgs()); err != nil {
//		log.Fatal(err)
//	}
package scrutiny
