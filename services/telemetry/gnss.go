// services/telemetry/gnss.go
package telemetry

import (
	"sync"
	"time"

	"telemetrykit-go/types"
	"telemetrykit-go/x/timex"
)

// Tracker holds the most recent GNSS fix. The platform feed goroutine writes
// it; the poll loop reads it. A fix older than freshMax no longer counts as
// valid: a receiver that fell silent must not keep the device in
// ready-to-send on stale coordinates.
type Tracker struct {
	mu       sync.Mutex
	pos      types.PositionValue
	valid    bool
	lastMs   int64
	freshMax time.Duration
}

func NewTracker(freshMax time.Duration) *Tracker {
	if freshMax <= 0 {
		freshMax = 10 * time.Second
	}
	return &Tracker{freshMax: freshMax}
}

// Update records the latest parsed fix. Invalid fixes clear validity but
// keep the last position for diagnostics.
func (t *Tracker) Update(pos types.PositionValue, valid bool) {
	t.mu.Lock()
	if valid {
		t.pos = pos
	}
	t.valid = valid
	t.lastMs = timex.NowMs()
	t.mu.Unlock()
}

// Fix returns the current position and whether it is valid and fresh.
func (t *Tracker) Fix() (types.PositionValue, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.valid {
		return t.pos, false
	}
	if timex.NowMs()-t.lastMs > t.freshMax.Milliseconds() {
		return t.pos, false
	}
	return t.pos, true
}
