package protocol

// LSP method constants.
const (
	// Lifecycle
	MethodInitialize  = "initialize"
	MethodInitialized = "initialized"
	MethodShutdown    = "shutdown"
	MethodExit        = "exit"
	MethodSetTrace    = "$/setTrace"

	// Text document sync
	MethodDidOpen   = "textDocument/didOpen"
	MethodDidChange = "textDocument/didChange"
	MethodDidClose  = "textDocument/didClose"

	// Client notifications (server -> client)
	MethodPublishDiagnostics = "textDocument/publishDiagnostics"
	MethodLogMessage         = "window/logMessage"
	MethodShowMessage        = "window/showMessage"

	// Scrutiny extensions (client -> server)
	MethodPaste         = "scrutiny/paste"
	MethodSetMode       = "scrutiny/setMode"
	MethodVisibleRanges = "scrutiny/visibleRanges"
	MethodActiveEditor  = "scrutiny/activeEditor"

	// Scrutiny extensions (server -> client)
	MethodStatus = "scrutiny/status"
)
