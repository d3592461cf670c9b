package diag

import (
	"sync"
	"time"

	"github.com/scrutiny-lsp/scrutiny/protocol"
)

// RunFunc is invoked with the recorded parameters when a scheduled refresh
// survives its debounce delay.
type RunFunc func(uri protocol.DocumentURI, ranges []protocol.Range)

// pending is the single-slot record of the most recently requested refresh.
// Last write wins; the stamp lets a woken schedule detect it was superseded.
type pending struct {
	uri    protocol.DocumentURI
	ranges []protocol.Range
	stamp  uint64
}

// Scheduler coalesces a burst of change events into a single delayed refresh.
// Any Schedule call within the delay window supersedes all earlier pending
// calls; only the last one to survive the delay performs work.
type Scheduler struct {
	mu    sync.Mutex
	stamp uint64
	state pending
	run   RunFunc
}

// NewScheduler creates a scheduler that invokes run for surviving schedules.
func NewScheduler(run RunFunc) *Scheduler {
	return &Scheduler{run: run}
}

// Schedule records the parameters with a fresh logical timestamp, waits for
// the delay, and invokes the run function only if no newer Schedule call
// superseded this one in the meantime.
func (s *Scheduler) Schedule(uri protocol.DocumentURI, ranges []protocol.Range, delay time.Duration) {
	s.mu.Lock()
	s.stamp++
	stamp := s.stamp
	s.state = pending{uri: uri, ranges: ranges, stamp: stamp}
	s.mu.Unlock()

	go func() {
		time.Sleep(delay)

		s.mu.Lock()
		live := s.state.stamp == stamp
		uri, ranges := s.state.uri, s.state.ranges
		s.mu.Unlock()

		if live {
			s.run(uri, ranges)
		}
	}()
}
