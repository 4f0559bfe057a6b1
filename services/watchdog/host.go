// services/watchdog/host.go
//go:build !rp2040 && !rp2350

package watchdog

import (
	"sync"
	"time"
)

// FakeWatchdog records arm and feed calls for host-side tests.
type FakeWatchdog struct {
	mu     sync.Mutex
	armed  time.Duration
	feeds  int
	armErr error
}

func (f *FakeWatchdog) Arm(timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.armErr != nil {
		return f.armErr
	}
	f.armed = timeout
	return nil
}

func (f *FakeWatchdog) Feed() {
	f.mu.Lock()
	f.feeds++
	f.mu.Unlock()
}

func (f *FakeWatchdog) Armed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.armed
}

func (f *FakeWatchdog) Feeds() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.feeds
}
