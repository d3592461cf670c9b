package scrutiny

import (
	"context"
	"sync"
	"time"
)

// statusNotifier forwards engine status messages to the client and clears
// non-empty messages again after a timeout, so the status line never shows a
// stale "checking…" forever.
type statusNotifier struct {
	client  *ClientProxy
	timeout func() time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func newStatusNotifier(client *ClientProxy, timeout func() time.Duration) *statusNotifier {
	return &statusNotifier{client: client, timeout: timeout}
}

// Show pushes a status message. An empty message clears the status
// immediately; a non-empty one self-clears after the configured timeout.
func (n *statusNotifier) Show(message string) {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	if message != "" {
		if d := n.timeout(); d > 0 {
			n.timer = time.AfterFunc(d, n.clear)
		}
	}
	n.mu.Unlock()

	_ = n.client.Status(context.Background(), message)
}

func (n *statusNotifier) clear() {
	n.mu.Lock()
	n.timer = nil
	n.mu.Unlock()
	_ = n.client.Status(context.Background(), "")
}
