// drivers/pixel/host.go
//go:build !rp2040 && !rp2350

package pixel

import (
	"image/color"
	"sync"
)

// Recorder implements Strip for host-side tests and demos. Every Show
// appends a snapshot of the scaled frame.
type Recorder struct {
	*Buffer
	mu     sync.Mutex
	frames [][]color.RGBA

	// ShowErr, when set, is returned by Show after recording. Lets tests
	// check that callers proceed past wire errors.
	ShowErr error
}

func NewRecorder(count int, brightness uint8) *Recorder {
	return &Recorder{Buffer: NewBuffer(count, brightness)}
}

func (r *Recorder) Show() error {
	r.mu.Lock()
	r.frames = append(r.frames, r.Scaled())
	r.mu.Unlock()
	return r.ShowErr
}

// Frames returns a copy of all recorded frames.
func (r *Recorder) Frames() [][]color.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]color.RGBA, len(r.frames))
	copy(out, r.frames)
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.frames = nil
	r.mu.Unlock()
}
