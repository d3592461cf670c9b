package scrutiny

import (
	"context"
	"sync"
	"testing"

	"github.com/scrutiny-lsp/scrutiny/analysis"
	"github.com/scrutiny-lsp/scrutiny/jsonrpc"
	"github.com/scrutiny-lsp/scrutiny/protocol"
)

type noopAnalyzer struct{}

func (noopAnalyzer) Analyze(ctx context.Context, req analysis.Request) ([]analysis.Report, error) {
	return nil, nil
}

func (noopAnalyzer) Languages() []string        { return []string{"go"} }
func (noopAnalyzer) Extensions() []string       { return []string{".go"} }
func (noopAnalyzer) Prefetch(text, file string) {}

// Requests are dispatched on separate goroutines, so the lifecycle flags set
// by initialize and shutdown must be safe to read from concurrent handlers.
func TestLifecycleFlagsSafeUnderConcurrentDispatch(t *testing.T) {
	s := NewServer("scrutiny-test", "0.0.0", noopAnalyzer{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := s.dispatch(ctx, protocol.MethodInitialize, jsonrpc.RawMessage(`{}`)); err != nil {
				t.Error(err)
			}
			if _, err := s.dispatch(ctx, protocol.MethodShutdown, nil); err != nil {
				t.Error(err)
			}
		}()
		go func() {
			defer wg.Done()
			s.dispatchNotification(ctx, "unknown/notification", nil)
			s.dispatch(ctx, "unknown/request", nil)
		}()
	}
	wg.Wait()

	if !s.isInitialized() {
		t.Error("initialized flag lost")
	}
	if !s.hasShutdown() {
		t.Error("shutdown flag lost")
	}
}

func TestDispatchRejectsRequestsBeforeInitialize(t *testing.T) {
	s := NewServer("scrutiny-test", "0.0.0", noopAnalyzer{})

	_, err := s.dispatch(context.Background(), "unknown/request", nil)
	rpcErr, ok := err.(*jsonrpc.Error)
	if !ok || rpcErr.Code != jsonrpc.CodeServerNotInitialized {
		t.Errorf("err = %v, want server-not-initialized", err)
	}
}
