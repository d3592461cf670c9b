package transport

import "os"

// NodeIPC creates a transport for Node.js IPC communication, as used by the
// VS Code extension host: the parent sends on the child's fd 3 and reads
// from the child's stdout.
func NodeIPC() Transport {
	reader := os.NewFile(3, "node-ipc-in")
	return &ipcTransport{reader: reader, writer: os.Stdout}
}

type ipcTransport struct {
	reader *os.File
	writer *os.File
}

func (t *ipcTransport) Read(p []byte) (int, error)  { return t.reader.Read(p) }
func (t *ipcTransport) Write(p []byte) (int, error) { return t.writer.Write(p) }
func (t *ipcTransport) Close() error {
	t.reader.Close()
	return nil
}
