// Package protocol contains the subset of LSP 3.18 types used by scrutiny,
// plus the scrutiny-specific extension types (paste, mode, visible ranges,
// transient status).
package protocol

import "encoding/json"

// DocumentURI represents the URI of a document. Diagnostics are always keyed
// by this identity.
type DocumentURI string

// Position in a text document expressed as zero-based line and UTF-16
// character offset.
type Position struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

// Range in a text document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// TextDocumentIdentifier identifies a text document.
type TextDocumentIdentifier struct {
	URI DocumentURI `json:"uri"`
}

// VersionedTextDocumentIdentifier identifies a versioned text document.
type VersionedTextDocumentIdentifier struct {
	TextDocumentIdentifier
	Version int32 `json:"version"`
}

// TextDocumentItem describes a text document with content.
type TextDocumentItem struct {
	URI        DocumentURI `json:"uri"`
	LanguageID string      `json:"languageId"`
	Version    int32       `json:"version"`
	Text       string      `json:"text"`
}

// TextDocumentContentChangeEvent describes a content change in a text
// document. A nil Range means full-content replacement.
type TextDocumentContentChangeEvent struct {
	Range       *Range `json:"range,omitempty"`
	RangeLength uint32 `json:"rangeLength,omitempty"`
	Text        string `json:"text"`
}

// --- Lifecycle types ---

// InitializeParams is sent as the first request from client to server.
type InitializeParams struct {
	ProcessID             *int32          `json:"processId"`
	RootURI               *DocumentURI    `json:"rootUri,omitempty"`
	Capabilities          json.RawMessage `json:"capabilities,omitempty"`
	InitializationOptions json.RawMessage `json:"initializationOptions,omitempty"`
}

// InitializeResult is the response to the initialize request.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

// ServerInfo identifies the server to the client.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// ServerCapabilities declares what the server supports. Scrutiny only needs
// incremental text sync; findings are pushed, never pulled.
type ServerCapabilities struct {
	TextDocumentSync *TextDocumentSyncOptions `json:"textDocumentSync,omitempty"`
}

// TextDocumentSyncKind defines how text document changes are synced.
type TextDocumentSyncKind int

const (
	SyncNone        TextDocumentSyncKind = 0
	SyncFull        TextDocumentSyncKind = 1
	SyncIncremental TextDocumentSyncKind = 2
)

// TextDocumentSyncOptions configures document synchronization.
type TextDocumentSyncOptions struct {
	OpenClose bool                 `json:"openClose,omitempty"`
	Change    TextDocumentSyncKind `json:"change,omitempty"`
}

// InitializedParams is sent after the client received the initialize result.
type InitializedParams struct{}

// --- Text document sync params ---

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// --- Diagnostics ---

// DiagnosticSeverity is the LSP severity scale.
type DiagnosticSeverity int

const (
	SeverityError       DiagnosticSeverity = 1
	SeverityWarning     DiagnosticSeverity = 2
	SeverityInformation DiagnosticSeverity = 3
	SeverityHint        DiagnosticSeverity = 4
)

// Diagnostic is a single published finding. Code carries the questioned
// reference value so clients can group findings per symbol.
type Diagnostic struct {
	Range    Range              `json:"range"`
	Severity DiagnosticSeverity `json:"severity,omitempty"`
	Code     string             `json:"code,omitempty"`
	Source   string             `json:"source,omitempty"`
	Message  string             `json:"message"`
	Data     json.RawMessage    `json:"data,omitempty"`
}

// PublishDiagnosticsParams carries diagnostics from server to client.
type PublishDiagnosticsParams struct {
	URI         DocumentURI  `json:"uri"`
	Version     *int32       `json:"version,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// --- Window messages ---

// MessageType is the LSP message severity for window messages.
type MessageType int

const (
	MessageError   MessageType = 1
	MessageWarning MessageType = 2
	MessageInfo    MessageType = 3
	MessageLog     MessageType = 4
)

type ShowMessageParams struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

type LogMessageParams struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// --- Scrutiny extensions ---

// Mode is the operating mode of the validation engine.
type Mode string

const (
	// ModeBackground scans continuously at a low threshold.
	ModeBackground Mode = "background"
	// ModePaste scans once per explicit paste action at a higher threshold.
	ModePaste Mode = "paste"
)

// PasteParams signals an explicit paste action with the selection range the
// pasted text now occupies.
type PasteParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Range        Range                  `json:"range"`
}

// SetModeParams toggles the operating mode.
type SetModeParams struct {
	Mode Mode `json:"mode"`
}

// VisibleRangesParams reports the editor's currently visible line ranges for
// a document. The range set must be non-empty.
type VisibleRangesParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Ranges       []Range                `json:"ranges"`
}

// ActiveEditorParams reports that the given document gained editor focus.
type ActiveEditorParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// StatusParams carries a transient status-line message. An empty message
// clears the status.
type StatusParams struct {
	Message string `json:"message"`
}
