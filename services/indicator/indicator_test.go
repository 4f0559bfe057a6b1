// services/indicator/indicator_test.go
package indicator

import (
	"context"
	"errors"
	"image/color"
	"testing"
	"time"

	"telemetrykit-go/drivers/pixel"
	"telemetrykit-go/drivers/speaker"
	"telemetrykit-go/status"
)

// engineTick stops the render loop after a fixed number of waits and lets a
// test hook run inside the loop (to mutate status mid-cycle).
type engineTick struct {
	calls     int
	stopAfter int
	onCall    func(n int)
}

func (e *engineTick) tick(d time.Duration) bool {
	e.calls++
	if e.onCall != nil {
		e.onCall(e.calls)
	}
	return e.calls < e.stopAfter
}

func runEngine(t *testing.T, e *Engine) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		e.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
}

func newTestEngine(s status.Status, prof Profile, et *engineTick, pixels int) (*Engine, *pixel.Recorder) {
	cell := status.NewCell(nil)
	cell.Set(s)
	rec := pixel.NewRecorder(pixels, 255)
	return New(cell, rec, speaker.NewRecorder(), prof, WithTick(et.tick)), rec
}

func isOff(c color.RGBA) bool { return c == pixel.Off }

func TestRunRendersReadyToSendCycle(t *testing.T) {
	// One full cycle: darkened strip, then 4 green flashes with gaps, then
	// the rest frame. 9 pattern frames => 9 ticks.
	et := &engineTick{stopAfter: 9}
	e, rec := newTestEngine(status.ReadyToSend, Vanilla, et, 2)
	runEngine(t, e)

	frames := rec.Frames()
	if len(frames) != 10 { // 1 clear + 9 pattern frames
		t.Fatalf("got %d frames, want 10", len(frames))
	}
	if !isOff(frames[0][0]) || !isOff(frames[0][1]) {
		t.Error("cycle did not start dark")
	}
	for i := 0; i < 4; i++ {
		on := frames[1+2*i]
		off := frames[2+2*i]
		if on[0] != green || on[1] != green {
			t.Errorf("flash %d: pixels not green: %v %v", i, on[0], on[1])
		}
		if !isOff(off[0]) || !isOff(off[1]) {
			t.Errorf("flash %d: gap not dark", i)
		}
	}
	rest := frames[9]
	if !isOff(rest[0]) || !isOff(rest[1]) {
		t.Error("rest frame not dark")
	}
}

func TestRunRendersNotReadyAntiphase(t *testing.T) {
	et := &engineTick{stopAfter: 2}
	e, rec := newTestEngine(status.NotReady, Vanilla, et, 2)
	runEngine(t, e)

	frames := rec.Frames()
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	if frames[1][0] != red || !isOff(frames[1][1]) {
		t.Errorf("phase 1: want pixel0 red, pixel1 off; got %v %v", frames[1][0], frames[1][1])
	}
	if !isOff(frames[2][0]) || frames[2][1] != red {
		t.Errorf("phase 2: want pixel0 off, pixel1 red; got %v %v", frames[2][0], frames[2][1])
	}
}

func TestRunMaintenanceRepeatsForever(t *testing.T) {
	// Four full cycles; every cycle must be identical to the first.
	et := &engineTick{stopAfter: 8}
	e, rec := newTestEngine(status.Maintenance, Vanilla, et, 2)
	runEngine(t, e)

	frames := rec.Frames()
	if len(frames) < 12 {
		t.Fatalf("got %d frames, want at least 12", len(frames))
	}
	// Cycle shape: clear, both magenta, both off.
	for cyc := 0; cyc+3 <= len(frames); cyc += 3 {
		clear, on, off := frames[cyc], frames[cyc+1], frames[cyc+2]
		if !isOff(clear[0]) || !isOff(clear[1]) {
			t.Errorf("cycle at %d: clear frame not dark", cyc)
		}
		if on[0] != magenta || on[1] != magenta {
			t.Errorf("cycle at %d: flash frame not magenta", cyc)
		}
		if !isOff(off[0]) || !isOff(off[1]) {
			t.Errorf("cycle at %d: off frame not dark", cyc)
		}
	}
}

func TestRunEventuallyRendersLastWrite(t *testing.T) {
	et := &engineTick{stopAfter: 6}
	cell := status.NewCell(nil)
	cell.Set(status.NotReady)
	rec := pixel.NewRecorder(2, 255)
	e := New(cell, rec, speaker.NewRecorder(), Vanilla, WithTick(et.tick))

	// Two writes land inside the first render cycle; only the last one is
	// guaranteed to ever be rendered.
	et.onCall = func(n int) {
		if n == 1 {
			cell.Set(status.ReadyToSend)
			cell.Set(status.WaitingGNSS)
		}
	}
	runEngine(t, e)

	frames := rec.Frames()
	sawBlue := false
	for _, f := range frames {
		if f[0] == green || f[1] == green {
			t.Fatal("intermediate ReadyToSend state was rendered")
		}
		if f[0] == blue || f[1] == blue {
			sawBlue = true
		}
	}
	if !sawBlue {
		t.Error("last written status was never rendered")
	}
}

func TestRunProceedsPastStripErrors(t *testing.T) {
	et := &engineTick{stopAfter: 4}
	e, rec := newTestEngine(status.NotReady, Vanilla, et, 2)
	rec.ShowErr = errors.New("wire stuck low")
	runEngine(t, e)

	if len(rec.Frames()) < 4 {
		t.Errorf("render loop stalled on strip error after %d frames", len(rec.Frames()))
	}
}

func TestRunTouchesOnlyFirstTwoPixels(t *testing.T) {
	et := &engineTick{stopAfter: 6}
	e, rec := newTestEngine(status.Maintenance, Vanilla, et, 4)
	runEngine(t, e)

	for i, f := range rec.Frames() {
		if !isOff(f[2]) || !isOff(f[3]) {
			t.Fatalf("frame %d wrote beyond pixel 1: %v", i, f)
		}
	}
}

func TestRunUnknownStatusStaysDark(t *testing.T) {
	et := &engineTick{stopAfter: 3}
	e, rec := newTestEngine(status.Status(99), Vanilla, et, 2)
	runEngine(t, e)

	for i, f := range rec.Frames() {
		if !isOff(f[0]) || !isOff(f[1]) {
			t.Fatalf("frame %d lit for unknown status: %v", i, f)
		}
	}
}

func TestPlayIntroIsSynchronous(t *testing.T) {
	et := &engineTick{stopAfter: 1 << 30}
	cell := status.NewCell(nil)
	spk := speaker.NewRecorder()
	e := New(cell, pixel.NewRecorder(2, 255), spk, Sensory, WithTick(et.tick))

	e.PlayIntro()

	// All tone events recorded by the time the call returns: nothing runs in
	// the background.
	if len(spk.Events()) != 6 {
		t.Errorf("got %d tone events, want 6", len(spk.Events()))
	}
	if et.calls != 3 { // three notes, no gaps
		t.Errorf("tick calls = %d, want 3", et.calls)
	}
}
