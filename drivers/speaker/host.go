// drivers/speaker/host.go
//go:build !rp2040 && !rp2350

package speaker

import "sync"

// ToneEvent is one SetToneHz/Off call as seen by the Recorder.
// FreqHz==0 means silence.
type ToneEvent struct {
	FreqHz uint32
}

// Recorder implements Beeper for host-side tests.
type Recorder struct {
	mu     sync.Mutex
	events []ToneEvent
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) SetToneHz(freqHz uint32) error {
	r.mu.Lock()
	r.events = append(r.events, ToneEvent{FreqHz: freqHz})
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Off() {
	_ = r.SetToneHz(0)
}

func (r *Recorder) Events() []ToneEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ToneEvent, len(r.events))
	copy(out, r.events)
	return out
}
